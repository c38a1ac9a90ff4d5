package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/movelaria/search-service/internal/app"
	"github.com/movelaria/search-service/internal/config"
	"github.com/movelaria/search-service/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from environment variables.
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Initialize structured logger.
	log := logger.New("search-service", cfg.LogLevel)
	log.Info("starting search service",
		slog.String("environment", cfg.Environment),
		slog.String("engine", cfg.SearchEngine),
		slog.Int("http_port", cfg.HTTPPort),
	)

	// Create a context that is canceled on SIGINT or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Create the application with all dependencies wired.
	application, err := app.NewApp(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("initialize application: %w", err)
	}

	// Run the application. This blocks until shutdown.
	if err := application.Run(ctx); err != nil {
		return fmt.Errorf("run application: %w", err)
	}

	log.Info("search service stopped")
	return nil
}
