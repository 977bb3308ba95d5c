// Package main is the entry point for the relay API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/relaydesk/relay/internal/config"
	"github.com/relaydesk/relay/internal/handler"
	"github.com/relaydesk/relay/internal/middleware"
	natsclient "github.com/relaydesk/relay/internal/nats"
	"github.com/relaydesk/relay/internal/service"
	"github.com/relaydesk/relay/internal/store"
	"github.com/relaydesk/relay/pkg/logger"
	"github.com/relaydesk/relay/pkg/tracing"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	logger.SetGlobal(log)

	log.Info("starting relay server")

	// Initialize tracing if enabled
	ctx := context.Background()
	if cfg.TracingEnabled {
		tp, err := tracing.InitTracer(ctx, "webhook-relay", cfg.TracingEndpoint)
		if err != nil {
			log.Warn("failed to initialize tracing", zap.Error(err))
		} else {
			defer tracing.Shutdown(ctx, tp)
		}
	}

	// Connect to the volatile store
	volatile, err := store.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		log.Error("failed to connect to redis", zap.Error(err))
		os.Exit(1)
	}
	defer volatile.Close()

	// Connect to the durable store
	users, err := store.NewPostgresUsers(cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to postgres", zap.Error(err))
		os.Exit(1)
	}

	// Connect to NATS when the event relay is configured
	var events service.EventPublisher
	var eventsConn handler.ConnChecker
	if cfg.NATSURL != "" {
		nc, err := natsclient.Connect(natsclient.Config{
			URL:      cfg.NATSURL,
			CAFile:   cfg.NATSCAFile,
			CertFile: cfg.NATSCertFile,
			KeyFile:  cfg.NATSKeyFile,
			Token:    cfg.NATSToken,
		}, log)
		if err != nil {
			log.Error("failed to connect to NATS", zap.Error(err))
			os.Exit(1)
		}
		defer nc.Close()

		relay := natsclient.NewEventRelay(nc)
		if err := relay.EnsureStream(ctx); err != nil {
			log.Error("failed to ensure stream", zap.Error(err))
			os.Exit(1)
		}
		events = relay
		eventsConn = nc
	}

	// Outbound notifier, only when an automation URL is configured
	var notifier service.EventNotifier
	if cfg.AutomationURL != "" {
		notifier = service.NewNotifier(cfg.AutomationURL, log)
	}

	// Initialize services
	memorySvc := service.NewMemoryService(volatile, users, cfg.UserCacheTTL, log)
	transcriptSvc := service.NewTranscriptService(volatile, cfg.SessionTTL, log)
	relaySvc := service.NewRelayService(memorySvc, transcriptSvc, notifier, events, log)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(volatile, users, eventsConn)
	authHandler := handler.NewAuthHandler(cfg.APIKey, cfg.JWTSecret, cfg.JWTExpiration, log)
	userHandler := handler.NewUserHandler(memorySvc, transcriptSvc, log)
	webhookHandler := handler.NewWebhookHandler(relaySvc, log)

	// Create router
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(log))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"X-Correlation-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health endpoints (no auth required)
	r.Get("/health", healthHandler.Health)
	r.Get("/ready", healthHandler.Ready)

	// Metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Token issuance (API-key gated inside the handler)
	r.Post("/auth/token", authHandler.Token)

	// Provider callback; providers cannot send our credentials
	r.Post("/webhook/message", webhookHandler.Receive)

	// API routes with authentication
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.APIKey, cfg.JWTSecret))
		r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))

		r.Route("/users", func(r chi.Router) {
			r.Post("/", userHandler.Upsert)
			r.Get("/{phone}", userHandler.Get)
			r.Get("/{phone}/memory", userHandler.Memory)
		})
	})

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      r,
		ReadTimeout:  cfg.ServerReadTimeout,
		WriteTimeout: cfg.ServerWriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info("server listening", zap.String("port", cfg.ServerPort))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	log.Info("server stopped")
}
