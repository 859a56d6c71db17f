package insights

import (
	"math"
	"sort"

	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/tuning"
	"gonum.org/v1/gonum/stat"
)

type Frequency string

const (
	FrequencyLow     Frequency = "low"
	FrequencyRegular Frequency = "regular"
	FrequencyHigh    Frequency = "high"
)

// PersonalInsights reads habits off the journal as a whole and off its most
// recent RecentEntries. Everything but TotalEntries is zero unless
// Sufficient is set.
type PersonalInsights struct {
	TotalEntries    int       `json:"total_entries"`
	Sufficient      bool      `json:"sufficient"`
	RecentEntries   int       `json:"recent_entries"`
	RecentSentiment float64   `json:"recent_sentiment"`
	RecentStress    float64   `json:"recent_stress"`
	Nightmares      int       `json:"nightmares"`
	DreamsPerWeek   float64   `json:"dreams_per_week"`
	Frequency       Frequency `json:"frequency,omitempty"`
}

// Personalize needs MinPersonalEntries entries. Dreams per week divide the
// entry count by the whole days between the first and last entry, at least one.
func Personalize(entries []models.AnalyzedEntry, params tuning.Params) PersonalInsights {
	out := PersonalInsights{TotalEntries: len(entries)}
	if len(entries) == 0 || len(entries) < params.MinPersonalEntries {
		return out
	}

	sorted := make([]models.AnalyzedEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Entry.DreamDate.Before(sorted[j].Entry.DreamDate)
	})

	recent := sorted
	if len(recent) > params.RecentEntries {
		recent = recent[len(recent)-params.RecentEntries:]
	}

	sentiment := make([]float64, len(recent))
	stress := make([]float64, len(recent))
	for i, e := range recent {
		sentiment[i] = e.Analysis.SentimentScore
		stress[i] = e.Analysis.StressLevel
		if e.Analysis.SentimentScore < params.NightmareSentiment {
			out.Nightmares++
		}
	}

	span := sorted[len(sorted)-1].Entry.DreamDate.Sub(sorted[0].Entry.DreamDate)
	spanDays := math.Max(math.Floor(span.Hours()/24), 1)
	perWeek := float64(len(sorted)) / spanDays * 7

	out.Sufficient = true
	out.RecentEntries = len(recent)
	out.RecentSentiment = stat.Mean(sentiment, nil)
	out.RecentStress = stat.Mean(stress, nil)
	out.DreamsPerWeek = math.Round(perWeek*10) / 10
	switch {
	case perWeek < params.LowDreamsPerWeek:
		out.Frequency = FrequencyLow
	case perWeek > params.HighDreamsPerWeek:
		out.Frequency = FrequencyHigh
	default:
		out.Frequency = FrequencyRegular
	}
	return out
}
