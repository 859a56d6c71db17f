package journal

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/spacesedan/dreamflow/internal/insights"
	"github.com/spacesedan/dreamflow/internal/models"
)

// window returns [now-days, now) after checking days.
func (s *Service) window(days int) (time.Time, time.Time, error) {
	if days <= 0 || days > MaxWindowDays {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: days must be between 1 and %d", ErrValidation, MaxWindowDays)
	}
	end := s.now()
	return end.AddDate(0, 0, -days), end, nil
}

// snapshot reads one window from the store. Every aggregate in a single call
// works off the slice returned here.
func (s *Service) snapshot(ctx context.Context, start, end time.Time) ([]models.AnalyzedEntry, error) {
	entries, err := s.store.ListEntries(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("[Journal] list entries: %w", err)
	}
	return entries, nil
}

func (s *Service) Timeline(ctx context.Context, days int) ([]models.TrendPoint, error) {
	start, end, err := s.window(days)
	if err != nil {
		return nil, err
	}
	entries, err := s.snapshot(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return models.TrendPoints(entries), nil
}

type Overview struct {
	Stats insights.PeriodStats  `json:"stats"`
	Mood  insights.MoodForecast `json:"mood"`
}

// Overview aggregates the last days. An empty window is ErrNoEntries.
func (s *Service) Overview(ctx context.Context, days int) (Overview, error) {
	start, end, err := s.window(days)
	if err != nil {
		return Overview{}, err
	}
	entries, err := s.snapshot(ctx, start, end)
	if err != nil {
		return Overview{}, err
	}

	points := models.TrendPoints(entries)
	stats, err := insights.AggregatePeriod(points, start, end, s.params)
	if err != nil {
		if errors.Is(err, insights.ErrInsufficientHistory) {
			return Overview{}, ErrNoEntries
		}
		return Overview{}, err
	}

	return Overview{
		Stats: stats,
		Mood:  insights.PredictMood(insights.SentimentPoints(points), s.params),
	}, nil
}

func (s *Service) Patterns(ctx context.Context, days int) (insights.PatternReport, error) {
	start, end, err := s.window(days)
	if err != nil {
		return insights.PatternReport{}, err
	}
	entries, err := s.snapshot(ctx, start, end)
	if err != nil {
		return insights.PatternReport{}, err
	}

	params := s.params
	params.PatternLookbackDays = days
	return insights.DetectPatterns(entries, end, s.catalog, params), nil
}

func (s *Service) MoodForecast(ctx context.Context, days int) (insights.MoodForecast, error) {
	start, end, err := s.window(days)
	if err != nil {
		return insights.MoodForecast{}, err
	}
	entries, err := s.snapshot(ctx, start, end)
	if err != nil {
		return insights.MoodForecast{}, err
	}
	return insights.PredictMood(insights.SentimentPoints(models.TrendPoints(entries)), s.params), nil
}

// ThemeTopN bounds the theme frequency listing.
const ThemeTopN = 20

// ThemeCounts ranks every theme seen in the last days.
func (s *Service) ThemeCounts(ctx context.Context, days int) ([]insights.ThemeCount, error) {
	start, end, err := s.window(days)
	if err != nil {
		return nil, err
	}
	entries, err := s.snapshot(ctx, start, end)
	if err != nil {
		return nil, err
	}
	return insights.RankThemes(entries, s.catalog, ThemeTopN), nil
}

// EntityFrequencies lists the most frequent people, places and symbols in
// the last days.
func (s *Service) EntityFrequencies(ctx context.Context, days int) (models.EntityFrequencies, error) {
	start, end, err := s.window(days)
	if err != nil {
		return models.EntityFrequencies{}, err
	}
	entries, err := s.snapshot(ctx, start, end)
	if err != nil {
		return models.EntityFrequencies{}, err
	}
	return insights.EntityFrequencies(entries, s.params), nil
}

// PersonalInsights reads journaling habits over the last days.
func (s *Service) PersonalInsights(ctx context.Context, days int) (insights.PersonalInsights, error) {
	start, end, err := s.window(days)
	if err != nil {
		return insights.PersonalInsights{}, err
	}
	entries, err := s.snapshot(ctx, start, end)
	if err != nil {
		return insights.PersonalInsights{}, err
	}
	return insights.Personalize(entries, s.params), nil
}

// SummaryCacheKey identifies a summary by its window, the config version that
// produced it and the fingerprint of the entries it was built from.
func SummaryCacheKey(periodType models.PeriodType, start, end time.Time, version, fingerprint string) string {
	return fmt.Sprintf("summary:%s:%d:%d:%s:%s", periodType, start.Unix(), end.Unix(), version, fingerprint)
}

// SnapshotFingerprint changes whenever an entry is added to, removed from or
// rewritten within the snapshot. Order does not matter.
func SnapshotFingerprint(entries []models.AnalyzedEntry) string {
	ids := make([]int, len(entries))
	for i := range ids {
		ids[i] = i
	}
	sort.Slice(ids, func(a, b int) bool {
		return entries[ids[a]].Entry.ID < entries[ids[b]].Entry.ID
	})

	h := fnv.New64a()
	for _, i := range ids {
		e := entries[i].Entry
		fmt.Fprintf(h, "%s\x00%d\x00%s\x00", e.ID, e.UpdatedAt.UnixNano(), e.Content)
	}
	return strconv.FormatUint(h.Sum64(), 16)
}

// GenerateSummary builds the summary for the period ending at end. A zero end
// means the next full hour, so repeated calls within an hour share a cache
// entry until an entry in the lookback changes.
func (s *Service) GenerateSummary(ctx context.Context, periodType models.PeriodType, end time.Time) (models.PeriodSummary, error) {
	days := periodType.Days()
	if days == 0 {
		return models.PeriodSummary{}, fmt.Errorf("%w: unknown period type %q", ErrValidation, periodType)
	}
	if end.IsZero() {
		end = s.now().Truncate(time.Hour).Add(time.Hour)
	}
	end = end.UTC()
	start := end.AddDate(0, 0, -days)

	// personal insights read the lookback; everything else reads the period
	lookbackStart := end.AddDate(0, 0, -s.params.PatternLookbackDays)
	if start.Before(lookbackStart) {
		lookbackStart = start
	}
	entries, err := s.snapshot(ctx, lookbackStart, end)
	if err != nil {
		return models.PeriodSummary{}, err
	}

	key := SummaryCacheKey(periodType, start, end, s.params.Version, SnapshotFingerprint(entries))
	if s.cache != nil {
		cached, ok, err := s.cache.GetSummary(ctx, key)
		if err != nil {
			s.logger.Warn("[Journal] Summary cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		} else if ok {
			s.logger.Debug("[Journal] Summary cache hit", slog.String("key", key))
			return cached, nil
		}
	}

	periodEntries := insights.WindowEntries(entries, start, end)
	points := models.TrendPoints(periodEntries)
	stats, err := insights.AggregatePeriod(points, start, end, s.params)
	if err != nil {
		if errors.Is(err, insights.ErrInsufficientHistory) {
			return models.PeriodSummary{}, ErrNoEntries
		}
		return models.PeriodSummary{}, err
	}

	mood := insights.PredictMood(insights.SentimentPoints(points), s.params)
	periodParams := s.params
	periodParams.PatternLookbackDays = days
	patterns := insights.DetectPatterns(periodEntries, end, s.catalog, periodParams)
	personal := insights.Personalize(entries, s.params)

	summary := insights.Summarize(periodType, stats, patterns, mood, personal, s.params)
	summary.ID = uuid.NewString()
	summary.CreatedAt = s.now()

	if err := s.store.SaveSummary(ctx, summary); err != nil {
		return models.PeriodSummary{}, fmt.Errorf("[Journal] save summary: %w", err)
	}

	s.logger.Info("[Journal] Summary generated",
		slog.String("period_type", string(periodType)),
		slog.Int("entries", summary.TotalEntries),
		slog.String("stress_trend", string(summary.StressTrend)))

	if s.cache != nil {
		if err := s.cache.SetSummary(ctx, key, summary); err != nil {
			s.logger.Warn("[Journal] Summary cache write failed",
				slog.String("key", key),
				slog.String("error", err.Error()))
		}
	}
	if s.events != nil {
		if err := s.events.PublishSummaryGenerated(ctx, summary); err != nil {
			s.logger.Warn("[Journal] Failed to publish summary-generated event",
				slog.String("summary_id", summary.ID),
				slog.String("error", err.Error()))
		}
	}
	return summary, nil
}

func (s *Service) ListSummaries(ctx context.Context) ([]models.PeriodSummary, error) {
	return s.store.ListSummaries(ctx)
}
