package middleware

import (
	"bufio"
	"log"
	"net"
	"net/http"
	"time"
)

type responseWriter struct {
	http.ResponseWriter
	statusCode int
	userID     string
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}

func LoggerMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			rw := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rw, r)

			duration := time.Since(start)

			userID := rw.userID
			if userID == "" {
				userID = "anonymous"
			}

			log.Printf("[%s] %s %s - Status: %d - Duration: %v - Instructor: %s - Client: %s",
				r.Method,
				r.URL.RequestURI(),
				r.RemoteAddr,
				rw.statusCode,
				duration,
				userID,
				clientLabel(r),
			)
		})
	}
}

func clientLabel(r *http.Request) string {
	if clientID := r.Header.Get(ClientIDHeader); clientID != "" {
		return clientID
	}
	return "-"
}
