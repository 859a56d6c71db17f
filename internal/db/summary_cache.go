package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/spacesedan/dreamflow/internal/models"
)

const summaryKeyPrefix = "dreamflow:summary:"

// KeyValue is the slice of the Valkey client the summary cache needs.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, bool, error)
	SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ValkeySummaryCache stores generated summaries as JSON under a TTL.
type ValkeySummaryCache struct {
	kv  KeyValue
	ttl time.Duration
}

func NewValkeySummaryCache(kv KeyValue, ttl time.Duration) *ValkeySummaryCache {
	return &ValkeySummaryCache{kv: kv, ttl: ttl}
}

func (c *ValkeySummaryCache) GetSummary(ctx context.Context, key string) (models.PeriodSummary, bool, error) {
	raw, ok, err := c.kv.Get(ctx, summaryKeyPrefix+key)
	if err != nil {
		return models.PeriodSummary{}, false, fmt.Errorf("[SummaryCache] get %s: %w", key, err)
	}
	if !ok {
		return models.PeriodSummary{}, false, nil
	}

	var summary models.PeriodSummary
	if err := json.Unmarshal([]byte(raw), &summary); err != nil {
		slog.Warn("[SummaryCache] Dropping unreadable cached summary",
			slog.String("key", key),
			slog.String("error", err.Error()))
		if delErr := c.kv.Delete(ctx, summaryKeyPrefix+key); delErr != nil {
			slog.Warn("[SummaryCache] Failed to delete cached summary",
				slog.String("key", key),
				slog.String("error", delErr.Error()))
		}
		return models.PeriodSummary{}, false, nil
	}
	return summary, true, nil
}

func (c *ValkeySummaryCache) SetSummary(ctx context.Context, key string, summary models.PeriodSummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("[SummaryCache] marshal summary: %w", err)
	}
	if err := c.kv.SetWithTTL(ctx, summaryKeyPrefix+key, string(body), c.ttl); err != nil {
		return fmt.Errorf("[SummaryCache] set %s: %w", key, err)
	}
	return nil
}
