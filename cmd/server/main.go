package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/dreamflow/config"
	"github.com/spacesedan/dreamflow/internal/api"
	"github.com/spacesedan/dreamflow/internal/app"
	"github.com/spacesedan/dreamflow/internal/logging"
)

func main() {
	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "dev"
	}
	config.LoadEnv(env)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("[Main] Invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("[Main] Failed to start", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer a.Close()

	opts := api.Options{Logger: logger, Store: a.Store, NERHealthy: a.NERHealth}
	if a.Valkey != nil {
		opts.Cache = a.Valkey
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(api.NewHandler(a.Journal, opts)),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("[Main] API listening", slog.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("[Main] Server failed", slog.String("error", err.Error()))
		}
	case <-ctx.Done():
	}

	logger.Info("[Main] Shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("[Main] Shutdown failed", slog.String("error", err.Error()))
	}
}
