package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classboard/internal/config"
	"classboard/internal/handler"
	"classboard/internal/repository"
	"classboard/internal/service"
	"classboard/internal/websocket"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	client, err := kivik.New("couch", cfg.Database.URL())
	if err != nil {
		log.Fatalf("Failed to connect to CouchDB: %v", err)
	}

	ctx := context.Background()

	exists, err := client.DBExists(ctx, cfg.Database.Name)
	if err != nil {
		log.Fatalf("Failed to check database existence: %v", err)
	}

	if !exists {
		if err := client.CreateDB(ctx, cfg.Database.Name); err != nil {
			log.Fatalf("Failed to create database: %v", err)
		}
		log.Printf("Created database: %s", cfg.Database.Name)
	}

	if err := repository.EnsureIndexes(ctx, client, cfg.Database.Name); err != nil {
		log.Fatalf("Failed to create indexes: %v", err)
	}

	instructorRepo := repository.NewInstructorRepository(client, cfg.Database.Name)
	studentRepo := repository.NewStudentRepository(client, cfg.Database.Name)
	timelineRepo := repository.NewTimelineRepository(client, cfg.Database.Name)
	archiveRepo := repository.NewArchiveRepository(client, cfg.Database.Name)

	wsManager := websocket.NewManager(
		cfg.WebSocket.MaxConnPerUser,
		cfg.WebSocket.WriteWait,
		cfg.WebSocket.PongWait,
		cfg.WebSocket.PingPeriod,
	)
	wsManager.SetMessageHandler(handler.NewWebSocketMessageHandler(wsManager))
	go wsManager.Run()

	notifier := service.NewHubNotifier(wsManager)

	authService := service.NewAuthService(instructorRepo, cfg.JWT.Secret, cfg.JWT.Expiration, cfg.JWT.RefreshTokenExpiration)
	instructorService := service.NewInstructorService(instructorRepo)
	studentService := service.NewStudentService(studentRepo, archiveRepo, notifier, cfg.Pagination.PageSize)
	timelineService := service.NewTimelineService(timelineRepo, archiveRepo, instructorRepo, notifier, cfg.Pagination.PageSize)

	r := handler.NewRouter(handler.RouterConfig{
		JWTSecret:      cfg.JWT.Secret,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		AllowedMethods: cfg.CORS.AllowedMethods,
		AllowedHeaders: cfg.CORS.AllowedHeaders,
	}, handler.Handlers{
		Auth:       handler.NewAuthHandler(authService),
		Instructor: handler.NewInstructorHandler(instructorService),
		Student:    handler.NewStudentHandler(studentService),
		Timeline:   handler.NewTimelineHandler(timelineService),
		WebSocket: handler.NewWebSocketHandler(
			wsManager,
			authService,
			cfg.WebSocket.ReadBufferSize,
			cfg.WebSocket.WriteBufferSize,
			cfg.WebSocket.MaxMessageSize,
		),
	})

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting classboard server on %s (env: %s, page size: %d)", addr, cfg.Server.Env, cfg.Pagination.PageSize)
		log.Printf("Connected to CouchDB at %s:%s", cfg.Database.Host, cfg.Database.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}
