// Package tuning pins every numeric heuristic used by the analysis and
// insight packages in one versioned struct.
package tuning

import (
	"errors"
	"fmt"
	"math"
)

// Version changes whenever a default below changes.
const Version = "2025.2"

// IntensityWeights blend the normalized intensity sub-factors.
type IntensityWeights struct {
	Length      float64
	Punctuation float64
	Emotion     float64
	Stress      float64
}

func (w IntensityWeights) sum() float64 {
	return w.Length + w.Punctuation + w.Emotion + w.Stress
}

// Params defines all configurable parameters for scoring and aggregation.
type Params struct {
	Version string

	// Sentiment fusion
	MinSentimentTokens int
	VaderWeight        float64
	PolarityWeight     float64

	// Saturation constants: score = min(1, matches / K)
	EmotionSaturation float64
	StressSaturation  float64

	// Stress blends weighted cue matches with negative sentiment
	StressCueWeight        float64
	StressNegativityWeight float64

	// Intensity
	IntensityReferenceWords int
	Intensity               IntensityWeights

	// Trend aggregation
	StressTrendDelta float64
	MinTrendEntries  int

	// Pattern detection
	PatternLookbackDays    int
	PatternTopN            int
	WeekdayExcessThreshold float64
	MinWeekdayHits         int
	MinCycleOccurrences    int
	CycleVarianceRatio     float64
	EntityTopPeople        int
	EntityTopPlaces        int
	EntityTopSymbols       int
	MorningEndHour         int
	EmotionPairFloor       float64
	EmotionPairTopN        int

	// Mood prediction
	MinMoodPoints    int
	MoodSlopeEpsilon float64
	ForecastDays     int

	// Recommendations
	SentimentHigh             float64
	SentimentLow              float64
	SleepCorrelationThreshold float64
	MinCorrelationPoints      int
	MaxRecommendations        int

	// Personal insights over the most recent entries
	MinPersonalEntries int
	RecentEntries      int
	NightmareSentiment float64
	NightmareMinCount  int
	RecentStressHigh   float64
	LowDreamsPerWeek   float64
	HighDreamsPerWeek  float64
}

// Default returns the pinned parameter set.
func Default() Params {
	return Params{
		Version: Version,

		MinSentimentTokens: 3,
		VaderWeight:        0.6,
		PolarityWeight:     0.4,

		EmotionSaturation: 3,
		StressSaturation:  4,

		StressCueWeight:        0.7,
		StressNegativityWeight: 0.3,

		IntensityReferenceWords: 300,
		Intensity: IntensityWeights{
			Length:      0.25,
			Punctuation: 0.15,
			Emotion:     0.35,
			Stress:      0.25,
		},

		StressTrendDelta: 0.05,
		MinTrendEntries:  2,

		PatternLookbackDays:    90,
		PatternTopN:            5,
		WeekdayExcessThreshold: 0.5,
		MinWeekdayHits:         2,
		MinCycleOccurrences:    3,
		CycleVarianceRatio:     0.5,
		EntityTopPeople:        10,
		EntityTopPlaces:        10,
		EntityTopSymbols:       15,
		MorningEndHour:         12,
		EmotionPairFloor:       0.1,
		EmotionPairTopN:        3,

		MinMoodPoints:    3,
		MoodSlopeEpsilon: 0.01,
		ForecastDays:     7,

		SentimentHigh:             0.3,
		SentimentLow:              -0.3,
		SleepCorrelationThreshold: 0.3,
		MinCorrelationPoints:      3,
		MaxRecommendations:        4,

		MinPersonalEntries: 5,
		RecentEntries:      7,
		NightmareSentiment: -0.5,
		NightmareMinCount:  3,
		RecentStressHigh:   0.6,
		LowDreamsPerWeek:   2,
		HighDreamsPerWeek:  5,
	}
}

var ErrInvalidParams = errors.New("invalid tuning params")

// Validate reports the first inconsistent setting.
func (p Params) Validate() error {
	if p.Version == "" {
		return fmt.Errorf("%w: version is empty", ErrInvalidParams)
	}
	if p.MinSentimentTokens < 0 {
		return fmt.Errorf("%w: min sentiment tokens must not be negative", ErrInvalidParams)
	}
	if !unit(p.VaderWeight) || !unit(p.PolarityWeight) || !near(p.VaderWeight+p.PolarityWeight, 1) {
		return fmt.Errorf("%w: fusion weights must be in [0,1] and sum to 1", ErrInvalidParams)
	}
	if p.EmotionSaturation <= 0 || p.StressSaturation <= 0 {
		return fmt.Errorf("%w: saturation constants must be positive", ErrInvalidParams)
	}
	if !unit(p.StressCueWeight) || !unit(p.StressNegativityWeight) {
		return fmt.Errorf("%w: stress weights must be in [0,1]", ErrInvalidParams)
	}
	if p.IntensityReferenceWords <= 0 {
		return fmt.Errorf("%w: intensity reference length must be positive", ErrInvalidParams)
	}
	w := p.Intensity
	if !unit(w.Length) || !unit(w.Punctuation) || !unit(w.Emotion) || !unit(w.Stress) || w.sum() > 1+1e-9 {
		return fmt.Errorf("%w: intensity weights must be in [0,1] and sum to at most 1", ErrInvalidParams)
	}
	if p.StressTrendDelta < 0 || p.MoodSlopeEpsilon < 0 {
		return fmt.Errorf("%w: dead-zone thresholds must not be negative", ErrInvalidParams)
	}
	if p.MinTrendEntries < 2 || p.MinMoodPoints < 2 {
		return fmt.Errorf("%w: trend minimums must be at least 2", ErrInvalidParams)
	}
	if p.PatternLookbackDays <= 0 || p.PatternTopN <= 0 || p.ForecastDays <= 0 {
		return fmt.Errorf("%w: windows and counts must be positive", ErrInvalidParams)
	}
	if p.MorningEndHour < 0 || p.MorningEndHour > 24 {
		return fmt.Errorf("%w: morning end hour must be within a day", ErrInvalidParams)
	}
	if p.EmotionPairTopN <= 0 || p.RecentEntries <= 0 || p.NightmareMinCount <= 0 {
		return fmt.Errorf("%w: windows and counts must be positive", ErrInvalidParams)
	}
	if p.LowDreamsPerWeek > p.HighDreamsPerWeek {
		return fmt.Errorf("%w: low dream frequency exceeds high", ErrInvalidParams)
	}
	if p.MaxRecommendations <= 0 {
		return fmt.Errorf("%w: at least one recommendation must be allowed", ErrInvalidParams)
	}
	return nil
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp01 bounds v to [0, 1].
func Clamp01(v float64) float64 {
	return Clamp(v, 0, 1)
}
