/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the SLA deadline server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (YAML file + environment)
  2. Set up the logger for the environment
  3. Initialize SQLite store
  4. Create the SLA service and API handler
  5. Configure HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to a YAML config file (default: $CONFIG_PATH, else env only)
  -db      SQLite database path, overrides storage_path
           Use ":memory:" for in-memory database

LOGGING:
  local: text, debug
  dev:   JSON, debug
  prod:  JSON, info

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with the local config
  ./server -config=./config/local.yaml

  # Run with in-memory database
  ENV=local ./server -db=":memory:"

SEE ALSO:
  - config/config.go: Configuration fields and defaults
  - api/server.go: Router configuration
  - sla/service.go: Deadline service
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
	_ "time/tzdata"

	"github.com/warp/sla-engine/api"
	"github.com/warp/sla-engine/config"
	"github.com/warp/sla-engine/sla"
	"github.com/warp/sla-engine/store/sqlite"
	"github.com/warp/sla-engine/workcal"
)

func main() {
	// Flags
	configPath := flag.String("config", "", "Path to YAML config (default $CONFIG_PATH)")
	dbPath := flag.String("db", "", "SQLite database path (overrides storage_path)")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	if *dbPath != "" {
		cfg.StoragePath = *dbPath
	}

	log := setupLogger(cfg.Env)
	log.Info("starting sla-engine", slog.String("env", cfg.Env))

	// Initialize store
	if cfg.StoragePath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.StoragePath), 0o755); err != nil {
			log.Error("failed to create storage directory", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}
	store, err := sqlite.New(cfg.StoragePath)
	if err != nil {
		log.Error("failed to open db", slog.String("path", cfg.StoragePath), slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer store.Close()

	// Service and handler
	svc := sla.NewService(store, store)
	svc.Engine = workcal.Engine{Budget: workcal.StepBudget(cfg.StepBudget)}
	svc.LeaveLookahead = cfg.LeaveLookahead
	svc.Log = log

	handler := api.NewHandler(svc, store, log)
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Info("server started", slog.String("address", cfg.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", slog.String("error", err.Error()))
		return
	}

	log.Info("server stopped")
}

func setupLogger(env string) *slog.Logger {
	var handler slog.Handler

	switch env {
	case config.EnvLocal:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	case config.EnvDev:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	default:
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	return slog.New(handler)
}
