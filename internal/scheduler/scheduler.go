// Package scheduler generates period summaries on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spacesedan/dreamflow/internal/journal"
	"github.com/spacesedan/dreamflow/internal/models"
)

type SummaryGenerator interface {
	GenerateSummary(ctx context.Context, periodType models.PeriodType, end time.Time) (models.PeriodSummary, error)
}

type Scheduler struct {
	generator SummaryGenerator
	periods   []models.PeriodType
	interval  time.Duration
	logger    *slog.Logger
}

// New parses the configured period names up front so a typo fails at start
// rather than on the first tick.
func New(generator SummaryGenerator, periods []string, interval time.Duration, logger *slog.Logger) (*Scheduler, error) {
	if interval <= 0 {
		return nil, errors.New("[Scheduler] interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	parsed := make([]models.PeriodType, 0, len(periods))
	for _, p := range periods {
		pt, err := models.ParsePeriodType(p)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, pt)
	}
	return &Scheduler{generator: generator, periods: parsed, interval: interval, logger: logger}, nil
}

// Run generates once immediately and then on every tick until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("[Scheduler] Shutting down scheduler gracefully...")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce generates one summary per period and returns how many succeeded.
// Empty periods are skipped quietly.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	generated := 0
	for _, p := range s.periods {
		if ctx.Err() != nil {
			return generated
		}
		summary, err := s.generator.GenerateSummary(ctx, p, time.Time{})
		switch {
		case err == nil:
			generated++
			s.logger.Info("[Scheduler] Summary generated",
				slog.String("period_type", string(p)),
				slog.String("summary_id", summary.ID))
		case errors.Is(err, journal.ErrNoEntries):
			s.logger.Info("[Scheduler] No entries for period, skipping",
				slog.String("period_type", string(p)))
		default:
			s.logger.Error("[Scheduler] Failed to generate summary",
				slog.String("period_type", string(p)),
				slog.String("error", err.Error()))
		}
	}
	return generated
}
