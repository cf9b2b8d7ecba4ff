package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moviedata/reception/internal/adapter/httpserver"
	"github.com/moviedata/reception/internal/adapter/metrics"
	"github.com/moviedata/reception/internal/bootstrap"
	"github.com/moviedata/reception/internal/platform/config"
	"github.com/moviedata/reception/internal/platform/logging"
	"github.com/moviedata/reception/internal/platform/version"
)

func runGracefulShutdown(srv *httpserver.Server, components *bootstrap.Components) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		components.Close()
		close(done)
	}()

	return done
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func main() {
	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", version.Version)

	components, err := bootstrap.Build(context.Background(), cfg, bootstrap.Options{Storage: true, Migrate: true})
	if err != nil {
		slog.Error("Failed to initialize", "error", err)
		os.Exit(1)
	}

	srv := httpserver.NewServer(cfg, components.Service, components.Metrics.HTTP,
		metrics.Handler(components.Registry), components.HealthChecks())

	done := runGracefulShutdown(srv, components)

	slog.Info("Server starting", "port", cfg.Port, "storage", components.Pool != nil, "redis", components.Redis != nil)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
