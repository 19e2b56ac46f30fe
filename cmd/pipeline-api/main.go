package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-analytics-pipeline/internal/api"
	"go-analytics-pipeline/internal/config"
	"go-analytics-pipeline/internal/logger"
	"go-analytics-pipeline/internal/service"
	"go-analytics-pipeline/pkg/utils"
)

// @title Analytics Pipeline API
// @version 1.0
// @description Runs the warehouse report pipeline and refreshes the analytics dashboard.
// @host localhost:8080
// @BasePath /api/v1
func main() {
	configPath := flag.String("config", "config.yaml", "Path to the YAML settings file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Init("info")
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	logger.Init(cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, err := service.Build(ctx, cfg)
	if err != nil {
		slog.Error("failed to build service", "error", err)
		os.Exit(1)
	}
	defer svc.Close()

	r := api.NewRouter(svc)
	srv := r.Server(cfg.Server.APIAddr)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("api listening", "addr", cfg.Server.APIAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
		return
	case <-ctx.Done():
	}

	timeout := utils.ParseDuration(cfg.Server.ShutdownTimeout, 10*time.Second)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	slog.Info("shutting down", "timeout", timeout.String())
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("graceful shutdown failed", "error", err)
	}
}
