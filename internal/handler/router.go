package handler

import (
	"net/http"

	"classboard/internal/middleware"

	"github.com/gorilla/mux"
)

type RouterConfig struct {
	JWTSecret      string
	AllowedOrigins string
	AllowedMethods string
	AllowedHeaders string
}

type Handlers struct {
	Auth       *AuthHandler
	Instructor *InstructorHandler
	Student    *StudentHandler
	Timeline   *TimelineHandler
	WebSocket  *WebSocketHandler
}

func NewRouter(cfg RouterConfig, h Handlers) *mux.Router {
	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(middleware.NewCORSPolicy(
		cfg.AllowedOrigins,
		cfg.AllowedMethods,
		cfg.AllowedHeaders,
	)))

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/auth/register", h.Auth.Register).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/login", h.Auth.Login).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/refresh", h.Auth.Refresh).Methods("POST", "OPTIONS")
	api.HandleFunc("/auth/logout", h.Auth.Logout).Methods("POST", "OPTIONS")

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))

	protected.HandleFunc("/instructors/me", h.Instructor.GetMe).Methods("GET", "OPTIONS")
	protected.HandleFunc("/instructors/me", h.Instructor.UpdateMe).Methods("PUT", "OPTIONS")

	protected.HandleFunc("/timeline", h.Timeline.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/timeline", h.Timeline.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/timeline/tags", h.Timeline.Tags).Methods("GET", "OPTIONS")
	protected.HandleFunc("/timeline/{id}", h.Timeline.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/timeline/{id}", h.Timeline.Delete).Methods("DELETE", "OPTIONS")

	protected.HandleFunc("/students", h.Student.List).Methods("GET", "OPTIONS")
	protected.HandleFunc("/students", h.Student.Create).Methods("POST", "OPTIONS")
	protected.HandleFunc("/students/{id}", h.Student.Get).Methods("GET", "OPTIONS")
	protected.HandleFunc("/students/{id}", h.Student.Update).Methods("PUT", "OPTIONS")
	protected.HandleFunc("/students/{id}/archive", h.Student.ToggleArchive).Methods("PATCH", "OPTIONS")
	protected.HandleFunc("/students/{id}", h.Student.Delete).Methods("DELETE", "OPTIONS")

	if h.WebSocket != nil {
		r.HandleFunc("/ws", h.WebSocket.HandleConnection)
	}

	r.HandleFunc("/health", healthHandler).Methods("GET")

	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"classboard"}`))
}
