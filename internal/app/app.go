// Package app assembles the journal service and its backing clients from
// configuration. Every binary under cmd/ starts here.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/dreamflow/config"
	"github.com/spacesedan/dreamflow/internal/analysis"
	"github.com/spacesedan/dreamflow/internal/clients"
	"github.com/spacesedan/dreamflow/internal/clients/kafka_client"
	"github.com/spacesedan/dreamflow/internal/db"
	"github.com/spacesedan/dreamflow/internal/journal"
	"github.com/spacesedan/dreamflow/internal/lexicon"
	"github.com/spacesedan/dreamflow/internal/monitoring"
	"github.com/spacesedan/dreamflow/internal/ner"
	"github.com/spacesedan/dreamflow/internal/tuning"
)

const kafkaInitDelay = 5 * time.Second

type Store interface {
	journal.EntryStore
	Ping(ctx context.Context) error
}

type App struct {
	Journal   *journal.Service
	Store     Store
	Valkey    *clients.ValkeyClient
	Producer  *kafka_client.Producer
	NERHealth *atomic.Bool

	closers []func()
}

// Build connects every configured backend. On error whatever was already
// opened is closed again.
func Build(ctx context.Context, cfg config.Config, logger *slog.Logger) (_ *App, err error) {
	a := &App{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.Store, err = a.openStore(ctx, cfg); err != nil {
		return nil, err
	}

	var cache journal.SummaryCache
	if cfg.Valkey.Enabled {
		vc, err := clients.NewValkeyClient(cfg.Valkey)
		if err != nil {
			return nil, err
		}
		a.Valkey = vc
		a.closers = append(a.closers, vc.Close)
		cache = db.NewValkeySummaryCache(vc, cfg.Valkey.TTL)
	}

	var events journal.EventPublisher
	if cfg.Kafka.Enabled {
		p, err := connectProducer(ctx, cfg.Kafka)
		if err != nil {
			return nil, err
		}
		a.Producer = p
		a.closers = append(a.closers, p.Close)
		events = p
	}

	built, err := ner.New(ctx, cfg.NER)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, built.Close)
	if built.Service != nil {
		a.NERHealth = built.Health
		go monitoring.MonitorNERHealth(ctx, built.Service, built.Health, monitoring.HEALTHCHECK_INTERVAL)
	}

	params := tuning.Default()
	catalog := lexicon.Default()
	a.Journal, err = journal.New(journal.Deps{
		Store:    a.Store,
		Analyzer: analysis.New(catalog, params, built.Extractor, logger),
		Catalog:  catalog,
		Params:   params,
		Cache:    cache,
		Events:   events,
		Logger:   logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Info("[App] Journal service ready",
		slog.String("store", cfg.Store.Backend),
		slog.String("ner", cfg.NER.Backend),
		slog.Bool("cache", cache != nil),
		slog.Bool("events", events != nil))
	return a, nil
}

func (a *App) openStore(ctx context.Context, cfg config.Config) (Store, error) {
	switch cfg.Store.Backend {
	case "", "memory":
		return db.NewMemoryStore(), nil
	case "dynamodb":
		if _, err := clients.InitAWS(ctx, cfg.AWS); err != nil {
			return nil, err
		}
		return db.NewDynamoStore(clients.NewDynamoDBClient(), cfg.AWS.EntriesTable, cfg.AWS.SummariesTable), nil
	case "postgres":
		pg, err := clients.NewPostgresClient(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		store := db.NewPostgresStore(pg.DB)
		if cfg.Postgres.AutoMigrate {
			if err := store.Migrate(ctx); err != nil {
				return nil, err
			}
		}
		return store, nil
	default:
		return nil, fmt.Errorf("[App] unknown store backend %q", cfg.Store.Backend)
	}
}

// connectProducer keeps retrying while the brokers come up.
func connectProducer(ctx context.Context, cfg config.KafkaConfig) (*kafka_client.Producer, error) {
	var errs []error
	for attempt := 1; attempt <= kafka_client.MAX_RETRIES; attempt++ {
		p, err := kafka_client.NewProducer(ctx, cfg)
		if err == nil {
			return p, nil
		}
		errs = append(errs, err)
		slog.Warn("[App] Kafka init failed, retrying...",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(kafkaInitDelay):
		}
	}
	return nil, fmt.Errorf("[App] kafka producer unavailable: %w", errors.Join(errs...))
}

// Close releases clients in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
