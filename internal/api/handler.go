package api

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/go-playground/validator/v10"
	"github.com/spacesedan/dreamflow/internal/journal"
)

// Pinger is any dependency the health endpoint checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Options struct {
	Logger *slog.Logger

	// Store failing its ping turns /health into a 503.
	Store Pinger
	// Cache failing its ping only degrades /health.
	Cache Pinger
	// NERHealthy is flipped by the NER health monitor. Nil means no remote
	// extractor is configured.
	NERHealthy *atomic.Bool
}

type Handler struct {
	journal  *journal.Service
	validate *validator.Validate
	logger   *slog.Logger
	store    Pinger
	cache    Pinger
	ner      *atomic.Bool
}

func NewHandler(svc *journal.Service, opts Options) *Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		journal:  svc,
		validate: validator.New(),
		logger:   logger,
		store:    opts.Store,
		cache:    opts.Cache,
		ner:      opts.NERHealthy,
	}
}
