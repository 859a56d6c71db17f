package models

import (
	"fmt"
	"time"

	"github.com/spacesedan/dreamflow/internal/lexicon"
)

type PeriodType string

const (
	PeriodWeekly  PeriodType = "weekly"
	PeriodMonthly PeriodType = "monthly"
)

// Days is the window length of the period.
func (p PeriodType) Days() int {
	switch p {
	case PeriodWeekly:
		return 7
	case PeriodMonthly:
		return 30
	default:
		return 0
	}
}

func ParsePeriodType(s string) (PeriodType, error) {
	switch p := PeriodType(s); p {
	case PeriodWeekly, PeriodMonthly:
		return p, nil
	default:
		return "", fmt.Errorf("unknown period type %q", s)
	}
}

// Trend is a direction label. InsufficientData is its own value and never
// stands in for Stable.
type Trend string

const (
	TrendIncreasing       Trend = "increasing"
	TrendDecreasing       Trend = "decreasing"
	TrendImproving        Trend = "improving"
	TrendDeclining        Trend = "declining"
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type EntityFrequencies struct {
	People  []NamedCount `json:"people"`
	Places  []NamedCount `json:"places"`
	Symbols []NamedCount `json:"symbols"`
}

type PeriodSummary struct {
	ID                  string                `json:"id"`
	PeriodType          PeriodType            `json:"period_type"`
	PeriodStart         time.Time             `json:"period_start"`
	PeriodEnd           time.Time             `json:"period_end"`
	TotalEntries        int                   `json:"total_entries"`
	AvgSentiment        float64               `json:"avg_sentiment"`
	DominantEmotion     string                `json:"dominant_emotion"`
	EmotionDistribution lexicon.EmotionVector `json:"emotion_distribution"`
	StressTrend         Trend                 `json:"stress_trend"`
	MoodTrend           Trend                 `json:"mood_trend"`
	RecurringThemes     []string              `json:"recurring_themes"`
	CommonEntities      EntityFrequencies     `json:"common_entities"`
	Recommendations     []string              `json:"recommendations"`
	SummaryText         string                `json:"summary_text"`
	ConfigVersion       string                `json:"config_version"`
	CreatedAt           time.Time             `json:"created_at"`
}
