// Package ner holds the entity extractors the analyzer can be wired with.
package ner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/spacesedan/dreamflow/config"
	"github.com/spacesedan/dreamflow/internal/analysis"
	"github.com/spacesedan/dreamflow/internal/clients"
	"github.com/spacesedan/dreamflow/internal/models"
)

// ErrUnavailable is returned by an extractor whose backend is known to be down.
var ErrUnavailable = errors.New("entity service unavailable")

// Noop finds nothing. It stands in when extraction is switched off.
type Noop struct{}

func (Noop) Extract(context.Context, string) (models.Entities, error) {
	return models.EmptyEntities(), nil
}

// Chain asks each extractor in turn and returns the first success.
type Chain []analysis.EntityExtractor

func (c Chain) Extract(ctx context.Context, text string) (models.Entities, error) {
	var errs []error
	for i, x := range c {
		entities, err := x.Extract(ctx, text)
		if err == nil {
			return entities, nil
		}
		slog.Debug("[NER] Extractor failed, trying next",
			slog.Int("position", i),
			slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return models.EmptyEntities(), nil
	}
	return models.Entities{}, errors.Join(errs...)
}

// Built is an extractor together with whatever must be released on shutdown.
type Built struct {
	Extractor analysis.EntityExtractor
	// Service and Health are set for the http backend so a monitor can
	// keep the flag current.
	Service *clients.NERServiceClient
	Health  *atomic.Bool
	Close   func()
}

// New builds the extractor selected by cfg.Backend. An http backend falls
// back to OpenAI when an API key is also configured.
func New(ctx context.Context, cfg config.NERConfig) (Built, error) {
	built := Built{Extractor: Noop{}, Close: func() {}}

	switch cfg.Backend {
	case "", "none":
		return built, nil
	case "hugot":
		x, err := NewHugotExtractor(cfg.ModelName, cfg.ModelDir)
		if err != nil {
			return Built{}, err
		}
		built.Extractor = x
		built.Close = x.Close
	case "openai":
		built.Extractor = NewOpenAIExtractor(clients.NewOpenAIClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)
	case "http":
		svc := clients.NewNERServiceClient(ctx, cfg)
		healthy := &atomic.Bool{}
		healthy.Store(true)
		var x analysis.EntityExtractor = NewHTTPExtractor(svc).WithHealth(healthy)
		if cfg.OpenAIAPIKey != "" {
			x = Chain{x, NewOpenAIExtractor(clients.NewOpenAIClient(cfg.OpenAIAPIKey), cfg.OpenAIModel)}
		}
		built.Extractor = x
		built.Service = svc
		built.Health = healthy
	default:
		return Built{}, fmt.Errorf("[NER] unknown backend %q", cfg.Backend)
	}

	slog.Info("[NER] Entity extractor ready", slog.String("backend", cfg.Backend))
	return built, nil
}
