package insights

import (
	"fmt"
	"sort"
	"time"

	"github.com/spacesedan/dreamflow/internal/lexicon"
	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/tuning"
)

// PeriodStats is the aggregate of every point in [Start, End).
type PeriodStats struct {
	Start               time.Time             `json:"start"`
	End                 time.Time             `json:"end"`
	TotalEntries        int                   `json:"total_entries"`
	AvgSentiment        float64               `json:"avg_sentiment"`
	AvgStress           float64               `json:"avg_stress"`
	AvgIntensity        float64               `json:"avg_intensity"`
	DominantEmotion     string                `json:"dominant_emotion"`
	EmotionTotals       lexicon.EmotionVector `json:"emotion_totals"`
	EmotionDistribution lexicon.EmotionVector `json:"emotion_distribution"`
	StressTrend         models.Trend          `json:"stress_trend"`
}

// WindowPoints returns the points with start <= date < end, stably sorted by date.
func WindowPoints(points []models.TrendPoint, start, end time.Time) []models.TrendPoint {
	in := make([]models.TrendPoint, 0, len(points))
	for _, p := range points {
		if !p.Date.Before(start) && p.Date.Before(end) {
			in = append(in, p)
		}
	}
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].Date.Before(in[j].Date)
	})
	return in
}

// AggregatePeriod summarizes the points that fall in [start, end). Bounds are
// checked before anything else. A window with one point still aggregates but
// its stress trend is insufficient_data.
func AggregatePeriod(points []models.TrendPoint, start, end time.Time, params tuning.Params) (PeriodStats, error) {
	if !start.Before(end) {
		return PeriodStats{}, fmt.Errorf("%w: start %s, end %s",
			ErrInvalidPeriodBounds, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}

	window := WindowPoints(points, start, end)
	if len(window) == 0 {
		return PeriodStats{}, ErrInsufficientHistory
	}

	stats := PeriodStats{
		Start:        start,
		End:          end,
		TotalEntries: len(window),
	}

	var sentimentSum, stressSum, intensitySum float64
	for _, p := range window {
		sentimentSum += p.SentimentScore
		stressSum += p.StressLevel
		intensitySum += p.DreamIntensity
		stats.EmotionTotals = stats.EmotionTotals.Add(p.Emotions)
	}

	n := float64(len(window))
	stats.AvgSentiment = tuning.Clamp(sentimentSum/n, -1, 1)
	stats.AvgStress = tuning.Clamp01(stressSum / n)
	stats.AvgIntensity = tuning.Clamp01(intensitySum / n)
	stats.DominantEmotion = stats.EmotionTotals.DominantName()
	stats.EmotionDistribution = stats.EmotionTotals.Normalized()
	stats.StressTrend = stressTrend(window, params)

	return stats, nil
}

// stressTrend compares mean stress of the first floor(n/2) points against the
// rest. Points must already be in date order.
func stressTrend(window []models.TrendPoint, params tuning.Params) models.Trend {
	if len(window) < params.MinTrendEntries {
		return models.TrendInsufficientData
	}

	half := len(window) / 2
	first := meanStress(window[:half])
	second := meanStress(window[half:])

	switch delta := second - first; {
	case delta > params.StressTrendDelta:
		return models.TrendIncreasing
	case delta < -params.StressTrendDelta:
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

func meanStress(points []models.TrendPoint) float64 {
	var sum float64
	for _, p := range points {
		sum += p.StressLevel
	}
	return sum / float64(len(points))
}
