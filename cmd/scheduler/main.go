package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/dreamflow/config"
	"github.com/spacesedan/dreamflow/internal/app"
	"github.com/spacesedan/dreamflow/internal/logging"
	"github.com/spacesedan/dreamflow/internal/scheduler"
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

	s, err := scheduler.New(a.Journal, cfg.Scheduler.Periods, cfg.Scheduler.Interval, logger)
	if err != nil {
		logger.Error("[Main] Invalid scheduler config", slog.String("error", err.Error()))
		a.Close()
		stop()
		os.Exit(1)
	}
	s.Run(ctx)
}
