package middleware

import (
	"context"
	"net/http"
	"strings"

	"classboard/pkg/jwt"
	"classboard/pkg/response"
)

type contextKey string

const (
	UserIDKey   contextKey = "userID"
	ClientIDKey contextKey = "clientID"

	// ClientIDHeader names the connection a mutation came from. The server
	// skips that connection when it broadcasts the resulting invalidation.
	ClientIDHeader = "X-Client-ID"
)

func AuthMiddleware(jwtSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwt.ValidateTokenType(parts[1], jwtSecret, jwt.TokenTypeAccess)
			if err != nil {
				response.Unauthorized(w, "Invalid or expired token")
				return
			}

			// auth runs on a subrouter, so the outer logger only sees the
			// instructor through its writer
			if rw, ok := w.(*responseWriter); ok {
				rw.userID = claims.UserID
			}

			ctx := context.WithValue(r.Context(), UserIDKey, claims.UserID)
			if clientID := r.Header.Get(ClientIDHeader); clientID != "" {
				ctx = context.WithValue(ctx, ClientIDKey, clientID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetUserID(r *http.Request) string {
	userID, ok := r.Context().Value(UserIDKey).(string)
	if !ok {
		return ""
	}
	return userID
}

// GetClientID returns the X-Client-ID sent with an authenticated request, or
// "" when the caller did not identify its connection.
func GetClientID(r *http.Request) string {
	clientID, ok := r.Context().Value(ClientIDKey).(string)
	if !ok {
		return ""
	}
	return clientID
}
