package ner

import (
	"context"
	"sync/atomic"

	"github.com/spacesedan/dreamflow/internal/models"
)

type entityService interface {
	ExtractEntities(ctx context.Context, text string) (models.EntityResponse, error)
}

// HTTPExtractor calls the remote entity service. Once a health flag is
// attached, requests fail fast with ErrUnavailable while it reads false.
type HTTPExtractor struct {
	service entityService
	healthy *atomic.Bool
}

func NewHTTPExtractor(service entityService) *HTTPExtractor {
	return &HTTPExtractor{service: service}
}

func (x *HTTPExtractor) WithHealth(healthy *atomic.Bool) *HTTPExtractor {
	x.healthy = healthy
	return x
}

func (x *HTTPExtractor) Extract(ctx context.Context, text string) (models.Entities, error) {
	if x.healthy != nil && !x.healthy.Load() {
		return models.Entities{}, ErrUnavailable
	}
	resp, err := x.service.ExtractEntities(ctx, text)
	if err != nil {
		return models.Entities{}, err
	}
	return resp.Entities(), nil
}
