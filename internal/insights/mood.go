package insights

import (
	"sort"
	"time"

	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/tuning"
	"gonum.org/v1/gonum/stat"
)

type SentimentPoint struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
}

type ForecastPoint struct {
	Date      time.Time `json:"date"`
	Sentiment float64   `json:"predicted_sentiment"`
}

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// MoodForecast carries a fitted line only when Fitted is set. An
// insufficient_data result has no slope and no forecast.
type MoodForecast struct {
	Trend      models.Trend    `json:"trend"`
	Points     int             `json:"points"`
	Fitted     bool            `json:"fitted"`
	Slope      float64         `json:"slope,omitempty"`
	Intercept  float64         `json:"intercept,omitempty"`
	CurrentAvg float64         `json:"current_avg,omitempty"`
	Forecast   []ForecastPoint `json:"forecast"`
	Confidence Confidence      `json:"confidence,omitempty"`
}

func SentimentPoints(points []models.TrendPoint) []SentimentPoint {
	out := make([]SentimentPoint, len(points))
	for i, p := range points {
		out[i] = SentimentPoint{Date: p.Date, Score: p.SentimentScore}
	}
	return out
}

// PredictMood fits sentiment against fractional days since the first point
// and extrapolates ForecastDays ahead.
func PredictMood(points []SentimentPoint, params tuning.Params) MoodForecast {
	insufficient := MoodForecast{
		Trend:    models.TrendInsufficientData,
		Points:   len(points),
		Forecast: []ForecastPoint{},
	}
	if len(points) < params.MinMoodPoints {
		return insufficient
	}

	sorted := make([]SentimentPoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	origin := sorted[0].Date
	xs := make([]float64, len(sorted))
	ys := make([]float64, len(sorted))
	for i, p := range sorted {
		xs[i] = ordinal(origin, p.Date)
		ys[i] = p.Score
	}
	if xs[len(xs)-1] == xs[0] {
		// every point on the same instant; no line to fit
		return insufficient
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)

	forecast := MoodForecast{
		Points:     len(sorted),
		Fitted:     true,
		Slope:      slope,
		Intercept:  intercept,
		CurrentAvg: stat.Mean(ys, nil),
		Forecast:   make([]ForecastPoint, 0, params.ForecastDays),
		Confidence: confidenceFor(len(sorted)),
	}

	switch {
	case slope > params.MoodSlopeEpsilon:
		forecast.Trend = models.TrendImproving
	case slope < -params.MoodSlopeEpsilon:
		forecast.Trend = models.TrendDeclining
	default:
		forecast.Trend = models.TrendStable
	}

	last := sorted[len(sorted)-1].Date
	lastX := xs[len(xs)-1]
	for k := 1; k <= params.ForecastDays; k++ {
		y := intercept + slope*(lastX+float64(k))
		forecast.Forecast = append(forecast.Forecast, ForecastPoint{
			Date:      last.AddDate(0, 0, k),
			Sentiment: tuning.Clamp(y, -1, 1),
		})
	}

	return forecast
}

func ordinal(origin, t time.Time) float64 {
	return t.Sub(origin).Hours() / 24
}

func confidenceFor(n int) Confidence {
	switch {
	case n < 14:
		return ConfidenceLow
	case n < 30:
		return ConfidenceMedium
	default:
		return ConfidenceHigh
	}
}
