package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/syncforge/tracksync/internal/config"
	"github.com/syncforge/tracksync/internal/dispatch"
	"github.com/syncforge/tracksync/internal/dlq"
	"github.com/syncforge/tracksync/internal/handlers"
	"github.com/syncforge/tracksync/internal/logging"
	"github.com/syncforge/tracksync/internal/ratelimit"
	"github.com/syncforge/tracksync/internal/reconcile"
	"github.com/syncforge/tracksync/internal/repository"
	"github.com/syncforge/tracksync/internal/server"
	"github.com/syncforge/tracksync/internal/service"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize structured logging
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("tracksync"))
	logging.SetDefault(logger)

	slog.Info("Starting tracksync service",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Logging.Level),
		slog.String("delete_mode", cfg.Sync.DeleteMode),
		slog.String("unknown_event_policy", cfg.Sync.UnknownEventPolicy),
	)
	if *configPath != "" {
		slog.Info("Loaded configuration", slog.String("config_path", *configPath))
	}

	// Initialize store
	var store repository.Store
	switch cfg.Database.Driver {
	case "postgres":
		// Run schema migrations before opening the pool
		m, err := migrate.New("file://"+cfg.Database.MigrationsPath, cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to initialize migrations: %v", err)
		}
		if err := m.Up(); err != nil && err != migrate.ErrNoChange {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		log.Println("Database migrations completed")

		pg, err := repository.NewPostgresStore(context.Background(), cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		store = pg
	case "memory":
		log.Println("WARNING: memory store does not survive restarts; for development only")
		store = repository.NewInMemoryStore()
	}
	defer store.Close()

	// Initialize rate limiter
	var rateLimiter ratelimit.RateLimiter
	if cfg.Redis.Enabled && cfg.Webhook.RateLimitEnabled {
		limiter, err := ratelimit.NewRedisRateLimiter(
			cfg.Redis.URL,
			cfg.Webhook.RateLimitRequests,
			cfg.Webhook.RateLimitWindow,
		)
		if err != nil {
			log.Printf("WARNING: Failed to initialize Redis rate limiter: %v", err)
			log.Println("Continuing without rate limiting")
			rateLimiter = &ratelimit.NoOpRateLimiter{}
		} else {
			rateLimiter = limiter
			log.Printf("Rate limiting enabled: %d requests per %s", cfg.Webhook.RateLimitRequests, cfg.Webhook.RateLimitWindow)
		}
	} else {
		rateLimiter = &ratelimit.NoOpRateLimiter{}
	}
	defer rateLimiter.Close()

	// Initialize Dead Letter Queue
	var dlqWriter dlq.Writer
	if cfg.DLQ.Enabled {
		jsDLQ, err := dlq.NewJetStreamQueue(context.Background(), cfg.DLQ.NatsURL)
		if err != nil {
			log.Fatalf("Failed to initialize JetStream DLQ: %v", err)
		}
		dlqWriter = jsDLQ
		defer jsDLQ.Close()
		log.Printf("Dead Letter Queue enabled (nats: %s)", cfg.DLQ.NatsURL)
	} else {
		log.Println("Dead Letter Queue disabled")
	}

	// Wire the pipeline: reconciler, processor registry, sync service
	reconciler := reconcile.New(store, cfg.Sync.DeleteMode == "soft")
	registry := dispatch.NewDefaultRegistry(reconciler)
	slog.Info("Processor registry initialized",
		slog.Int("event_types", len(registry.EventTypes())),
	)

	syncService := service.NewSyncService(registry, dlqWriter, cfg.Sync.UnknownEventPolicy == "accept")

	// Initialize HTTP handlers
	handler := handlers.NewWebhookHandler(
		syncService,
		rateLimiter,
		store,
		cfg.Webhook.Secret,
		cfg.Webhook.MaxPayloadSize,
	)
	router := server.NewRouter(handler)

	// Create server with config values
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Printf("tracksync service listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
