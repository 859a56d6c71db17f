package models

import (
	"time"

	"github.com/spacesedan/dreamflow/internal/lexicon"
)

type Entities struct {
	People  []string `json:"people"`
	Places  []string `json:"places"`
	Symbols []string `json:"symbols"`
}

// EmptyEntities has non-nil lists so it encodes as [] rather than null.
func EmptyEntities() Entities {
	return Entities{
		People:  []string{},
		Places:  []string{},
		Symbols: []string{},
	}
}

type AnalysisResult struct {
	EntryID        string                `json:"entry_id"`
	SentimentScore float64               `json:"sentiment_score"`
	Emotions       lexicon.EmotionVector `json:"emotions"`
	StressLevel    float64               `json:"stress_level"`
	DreamIntensity float64               `json:"dream_intensity"`
	Themes         []string              `json:"themes"`
	Entities       Entities              `json:"entities"`
	ConfigVersion  string                `json:"config_version"`
}

// TrendPoint is the per-entry view the aggregators work on. It is derived
// and never stored.
type TrendPoint struct {
	Date           time.Time             `json:"date"`
	SentimentScore float64               `json:"sentiment_score"`
	StressLevel    float64               `json:"stress_level"`
	DreamIntensity float64               `json:"dream_intensity"`
	Emotions       lexicon.EmotionVector `json:"emotions"`
}

func (a AnalyzedEntry) TrendPoint() TrendPoint {
	return TrendPoint{
		Date:           a.Entry.DreamDate,
		SentimentScore: a.Analysis.SentimentScore,
		StressLevel:    a.Analysis.StressLevel,
		DreamIntensity: a.Analysis.DreamIntensity,
		Emotions:       a.Analysis.Emotions,
	}
}

func TrendPoints(entries []AnalyzedEntry) []TrendPoint {
	points := make([]TrendPoint, len(entries))
	for i, e := range entries {
		points[i] = e.TrendPoint()
	}
	return points
}
