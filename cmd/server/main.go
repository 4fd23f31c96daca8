package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"intersect-backend/internal/aggregate"
	"intersect-backend/internal/auth"
	"intersect-backend/internal/cache"
	"intersect-backend/internal/events"
	"intersect-backend/internal/github"
	"intersect-backend/internal/handlers"
	"intersect-backend/internal/natsbus"
	"intersect-backend/internal/resolve"
	"intersect-backend/internal/services"
	"intersect-backend/internal/storage"
	"intersect-backend/internal/workers"
)

func main() {
	if os.Getenv("JWT_SECRET") == "" {
		log.Fatal("JWT_SECRET is required")
	}

	// Database connection (with retries)
	var db *sqlx.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sqlx.Connect("postgres", buildDSN())
		if err == nil {
			break
		}
		log.Printf("DB connection attempt %d failed: %v", i+1, err)
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to database")

	// NATS connection
	natsClient, err := natsbus.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsClient.Close()

	// Redis cache
	redisClient, err := cache.NewRedisClient()
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redisClient.Close()

	// Storage
	store := storage.New(db)

	// External clients
	ghClient := github.NewClient()
	aiClient := services.NewOpenRouterClient()
	publisher := events.NewPublisher(natsClient.JS())

	// Services
	devReports := services.NewDevReportService(store, redisClient, ghClient, aiClient, publisher)

	// Resolvers
	identity := resolve.NewIdentityResolver(store)
	orgs := resolve.NewOrganizationResolver(store)

	// Dashboard aggregator
	agg := aggregate.New(store, ghClient, devReports)

	// Background refresh of daily dev reports
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	workers.StartDevReportRefresher(ctx, store, devReports)

	// HTTP handlers
	authHandler := auth.NewHandler(identity, store)
	h := handlers.New(store, authHandler, orgs, agg, aiClient, ghClient, devReports, redisClient, publisher)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{getEnv("FRONTEND_ORIGIN", "*")},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	h.RegisterRoutes(r)

	server := &http.Server{
		Addr:    ":8080",
		Handler: r,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		log.Println("Shutting down...")
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		_ = server.Shutdown(shutdownCtx)
	}()

	log.Println("Server starting on :8080")
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}

func buildDSN() string {
	return "host=" + getEnv("DB_HOST", "localhost") +
		" user=" + getEnv("DB_USER", "intersect_user") +
		" password=" + getEnv("DB_PASSWORD", "intersect_pass") +
		" dbname=" + getEnv("DB_NAME", "intersect") +
		" sslmode=disable"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
