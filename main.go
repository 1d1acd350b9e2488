package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	appLogger "github.com/FACorreiaa/go-event-scout/app/logger"
	"github.com/FACorreiaa/go-event-scout/app/observability/metrics"
	"github.com/FACorreiaa/go-event-scout/app/tracer"
	"github.com/FACorreiaa/go-event-scout/config"
	"github.com/FACorreiaa/go-event-scout/internal/api/events"
	generativeAI "github.com/FACorreiaa/go-event-scout/internal/api/generative_ai"
	"github.com/FACorreiaa/go-event-scout/internal/api/qa"
	"github.com/FACorreiaa/go-event-scout/internal/api/recommendation"
	"github.com/FACorreiaa/go-event-scout/internal/api/session"
	"github.com/FACorreiaa/go-event-scout/internal/api/weather"
	"github.com/FACorreiaa/go-event-scout/internal/api/websearch"
	api "github.com/FACorreiaa/go-event-scout/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger()
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tracer.InitTracingAndMetrics()
	metrics.InitAppMetrics()

	// --- Collaborator Setup ---
	catalogKey := os.Getenv("TICKETMASTER_API_KEY")
	if catalogKey == "" {
		logger.Error("TICKETMASTER_API_KEY is not set")
		os.Exit(1)
	}

	eventsRepo := events.NewRepository(&cfg, catalogKey, logger)
	weatherRepo := weather.NewRepository(&cfg, logger)
	searchRepo := websearch.NewRepository(logger)

	judge, err := generativeAI.NewAIClient(ctx, &cfg, os.Getenv("GOOGLE_GEMINI_API_KEY"))
	if err != nil {
		logger.Error("Failed to initialize judge client", slog.Any("error", err))
		os.Exit(1)
	}

	// --- Dependency Injection ---
	sessions := session.NewStore(cfg.Sessions.TTL)

	recommendationService := recommendation.NewService(eventsRepo, weatherRepo, judge, &cfg, logger)
	recommendationHandler := recommendation.NewHandler(recommendationService, sessions, logger)

	qaService := qa.NewService(judge, searchRepo, &cfg, logger)
	qaHandler := qa.NewHandler(qaService, sessions, logger)

	// --- Router Setup ---
	routerConfig := &api.Config{
		RecommendationHandler: recommendationHandler,
		QAHandler:             qaHandler,
	}
	mainRouter := api.SetupRouter(routerConfig)

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Handle("/metrics", promhttp.Handler())
	router.Mount("/", mainRouter)

	// --- HTTP Server Setup ---
	serverAddress := fmt.Sprintf(":%s", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         serverAddress,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", serverAddress))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel()
		}
	}()

	<-ctx.Done()

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger() *slog.Logger {
	var logger *slog.Logger
	env := os.Getenv("APP_ENV")

	if env == "development" || env == "" {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug,
			TimeFormat: time.Kitchen,
			AddSource:  true,
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)")
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
