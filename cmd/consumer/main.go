package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spacesedan/dreamflow/config"
	"github.com/spacesedan/dreamflow/internal/app"
	"github.com/spacesedan/dreamflow/internal/clients/kafka_client"
	"github.com/spacesedan/dreamflow/internal/consumers"
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

	factory := kafka_client.NewConsumerFactory(cfg.Kafka)
	factory.Register(kafka_client.KAFKA_TOPIC_DREAM_ENTRIES, consumers.NewEntryConsumer(a.Journal).Handler())

	code := consume(ctx, logger, func(ctx context.Context) error {
		return factory.Start(ctx, kafka_client.KAFKA_TOPIC_DREAM_ENTRIES)
	}, a.Close)
	stop()
	os.Exit(code)
}

// consume blocks in start, releases the app's resources and returns the
// process exit code. A start error exits non-zero.
func consume(ctx context.Context, logger *slog.Logger, start func(context.Context) error, release func()) int {
	defer release()

	if err := start(ctx); err != nil {
		logger.Error("[Main] Consumer stopped", slog.String("error", err.Error()))
		return 1
	}
	logger.Info("[Main] Consumer shut down")
	return 0
}
