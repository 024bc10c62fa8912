// Command api is the GOLEX data API server.
//
// Usage:
//
//	golex-api
//	API_PORT=8080 golex-api

// @title GOLEX Data API
// @version 1.0.0
// @description Football fixtures, teams, and statistics synced from API-Football into Postgres, with assets mirrored to object storage.
// @host localhost:8000
// @BasePath /
// @schemes http https
// @contact.name GOLEX
// @license.name MIT
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/golexhq/golex-data/internal/api"
	"github.com/golexhq/golex-data/internal/config"
	"github.com/golexhq/golex-data/internal/db"
	"github.com/golexhq/golex-data/internal/provider/apifootball"
	"github.com/golexhq/golex-data/internal/storage"
	"github.com/golexhq/golex-data/internal/store"
	syncer "github.com/golexhq/golex-data/internal/sync"

	_ "github.com/golexhq/golex-data/docs" // swagger docs
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database
	logger.Info("Connecting to database...")
	pool, err := db.New(ctx, cfg)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("Database connected",
		"min_conns", cfg.DBPoolMinConns,
		"max_conns", cfg.DBPoolMaxConns)

	st := store.New(pool.Pool, cfg.StoragePublicURL)

	// Start the sync scheduler when enabled
	if cfg.SchedulerEnabled {
		if err := startScheduler(ctx, cfg, st, logger); err != nil {
			logger.Error("Failed to start sync scheduler", "error", err)
			os.Exit(1)
		}
	} else {
		logger.Info("Sync scheduler disabled (SCHEDULER_ENABLED=false)")
	}

	// Create router
	router := api.NewRouter(pool, st, cfg)

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting GOLEX Data API",
			"addr", addr,
			"environment", cfg.Environment,
			"docs", fmt.Sprintf("http://localhost:%d/docs/", cfg.APIPort))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}

// startScheduler wires the sync worker and cron triggers into the server
// process.
func startScheduler(ctx context.Context, cfg *config.Config, st *store.Store, logger *slog.Logger) error {
	if cfg.FootballAPIKey == "" {
		return fmt.Errorf("API_FOOTBALL_KEY is required when the scheduler is enabled")
	}

	source := apifootball.NewClient(cfg.FootballAPIBaseURL, cfg.FootballAPIKey, cfg.FootballAPISeason, cfg.FootballAPIRPM, logger)

	var mirror syncer.Mirror
	if cfg.StorageEndpoint != "" {
		sc, err := storage.New(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("create storage client: %w", err)
		}
		mirror = sc
	} else {
		logger.Info("Object storage not configured, logo backfill disabled")
	}

	worker, err := syncer.NewWorker(source, st, mirror, syncer.Options{
		Leagues:            cfg.SyncLeagues,
		UpstreamLogoPrefix: cfg.UpstreamLogoPrefix,
		CountEmptyStats:    cfg.CountEmptyStats,
		OpTimeout:          cfg.SyncOpTimeout,
	}, logger)
	if err != nil {
		return err
	}

	sched := syncer.NewScheduler(syncer.SchedulerConfig{
		DailySpec:  cfg.DailySyncSpec,
		LiveSpec:   cfg.LiveSyncSpec,
		WindowDays: cfg.SyncWindowDays,
		LogoLimit:  cfg.LogoBatchLimit,
	}, worker, logger)

	return sched.Start(ctx)
}
