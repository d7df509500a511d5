package middleware

import (
	"net/http"
	"strings"
)

// Clients send X-Client-ID on every mutation so their own change events are
// not echoed back, and toggle archiving with PATCH. Both stay allowed
// whatever the configuration lists.
var (
	requiredCORSMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	requiredCORSHeaders = []string{"Content-Type", "Authorization", "X-Client-ID"}
)

// CORSPolicy is the parsed cross-origin configuration.
type CORSPolicy struct {
	anyOrigin bool
	origins   map[string]bool
	methods   string
	headers   string
}

// NewCORSPolicy parses comma separated origin, method and header lists. An
// origin of "*" allows every origin.
func NewCORSPolicy(allowedOrigins, allowedMethods, allowedHeaders string) *CORSPolicy {
	p := &CORSPolicy{origins: make(map[string]bool)}
	for _, o := range splitList(allowedOrigins) {
		if o == "*" {
			p.anyOrigin = true
			continue
		}
		p.origins[o] = true
	}
	p.methods = strings.Join(mergeList(splitList(strings.ToUpper(allowedMethods)), requiredCORSMethods), ",")
	p.headers = strings.Join(mergeList(splitList(allowedHeaders), requiredCORSHeaders), ",")
	return p
}

func (p *CORSPolicy) AllowsOrigin(origin string) bool {
	return p.anyOrigin || p.origins[origin]
}

// CORSMiddleware answers preflight requests itself and adds the allow
// headers to every response for a permitted origin. Requests from other
// origins get no CORS headers and a preflight from them is refused.
func CORSMiddleware(policy *CORSPolicy) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add("Vary", "Origin")
			preflight := r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != ""

			if !policy.AllowsOrigin(origin) {
				if preflight {
					w.WriteHeader(http.StatusForbidden)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")

			if preflight {
				w.Header().Set("Access-Control-Allow-Methods", policy.methods)
				w.Header().Set("Access-Control-Allow-Headers", policy.headers)
				w.Header().Set("Access-Control-Max-Age", "3600")
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// mergeList appends the entries of required missing from list, comparing
// case-insensitively.
func mergeList(list, required []string) []string {
	seen := make(map[string]bool, len(list))
	for _, v := range list {
		seen[strings.ToLower(v)] = true
	}
	for _, v := range required {
		if !seen[strings.ToLower(v)] {
			list = append(list, v)
			seen[strings.ToLower(v)] = true
		}
	}
	return list
}
