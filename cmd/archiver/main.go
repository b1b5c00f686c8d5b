package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mwhittaker/remotegate/internal/api"
	"github.com/mwhittaker/remotegate/internal/archive"
	"github.com/mwhittaker/remotegate/internal/auth"
	"github.com/mwhittaker/remotegate/internal/config"
	"github.com/mwhittaker/remotegate/internal/database"
	"github.com/mwhittaker/remotegate/internal/model"
	"github.com/mwhittaker/remotegate/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/archiver.local.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting archiver",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"gateway_url", cfg.Gateway.BaseURL,
		"connections", len(cfg.Archive.Connections),
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Connect to database
	logger.Info("connecting to database",
		"host", cfg.Database.Postgres.Host,
		"port", cfg.Database.Postgres.Port,
		"database", cfg.Database.Postgres.Name,
	)

	pool, err := database.Connect(ctx, cfg.Database.Postgres)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	logger.Info("database connected")

	// Create API client with the configured token source
	tokens := tokenSource(cfg.Gateway)
	apiClient := api.NewClient(
		cfg.Gateway.BaseURL,
		tokens,
		api.WithLogger(logger),
		api.WithTimeout(cfg.Gateway.Timeout),
	)

	// Wire buffer -> writer -> syncer
	buffer := archive.NewBuffer[model.HistoryRecord](cfg.Archive.BufferSize)

	writer := archive.NewHistoryWriter(archive.WriterConfig{
		BatchSize:     cfg.Archive.BatchSize,
		FlushInterval: cfg.Archive.FlushInterval,
	}, buffer, pool, logger)

	syncer := archive.NewSyncer(archive.Config{
		Interval:    cfg.Archive.Interval,
		Concurrency: cfg.Archive.Concurrency,
		Timeout:     cfg.Gateway.Timeout,
	}, apiClient, archive.StaticIdentifiers(cfg.Archive.Connections), buffer, logger)

	// Start health server early so we can monitor sync progress
	healthServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Health.Port),
		Handler: createHealthHandler(pool, buffer, writer, logger),
	}

	go func() {
		logger.Info("starting health server", "port", cfg.Health.Port)
		if err := healthServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("health server error", "error", err)
		}
	}()

	if err := writer.Start(ctx); err != nil {
		logger.Error("failed to start writer", "error", err)
		os.Exit(1)
	}
	if err := syncer.Start(ctx); err != nil {
		logger.Error("failed to start syncer", "error", err)
		os.Exit(1)
	}

	logger.Info("archiver running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Health.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	syncer.Stop(shutdownCtx)
	buffer.Close()
	writer.Stop(shutdownCtx)
	healthServer.Shutdown(shutdownCtx)

	logger.Info("archiver stopped")
}

// tokenSource picks a token source from the gateway config: a pre-issued
// token takes precedence, otherwise log in with credentials.
func tokenSource(cfg config.GatewayConfig) auth.TokenSource {
	if cfg.Token != "" {
		return auth.StaticTokenSource(cfg.Token)
	}
	return auth.NewSessionTokenSource(cfg.BaseURL, cfg.Username, cfg.Password)
}

// createHealthHandler creates the HTTP handler for health checks.
func createHealthHandler(pool *pgxpool.Pool, buffer *archive.Buffer[model.HistoryRecord], writer *archive.HistoryWriter, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		health := struct {
			Status     string                 `json:"status"`
			Components map[string]interface{} `json:"components"`
		}{
			Status:     "healthy",
			Components: make(map[string]interface{}),
		}

		// Check database
		if err := pool.Ping(ctx); err != nil {
			health.Status = "unhealthy"
			health.Components["postgres"] = map[string]string{
				"status": "disconnected",
				"error":  err.Error(),
			}
		} else {
			health.Components["postgres"] = "connected"
		}

		bufStats := buffer.Stats()
		health.Components["buffer"] = map[string]interface{}{
			"count":     bufStats.Count,
			"capacity":  bufStats.Capacity,
			"total_in":  bufStats.TotalIn,
			"total_out": bufStats.TotalOut,
		}

		wStats := writer.Stats()
		health.Components["writer"] = map[string]interface{}{
			"inserts":   wStats.Inserts,
			"conflicts": wStats.Conflicts,
			"errors":    wStats.Errors,
			"flushes":   wStats.Flushes,
		}

		w.Header().Set("Content-Type", "application/json")
		if health.Status == "unhealthy" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		json.NewEncoder(w).Encode(health)
	})

	return mux
}
