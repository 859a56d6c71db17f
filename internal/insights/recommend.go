package insights

import (
	"github.com/spacesedan/dreamflow/internal/lexicon"
	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/tuning"
)

const (
	MsgNightmares       = "You've had several nightmares recently. Consider speaking with a healthcare professional if nightmares persist."
	MsgStressIncreasing = "Stress levels in your dreams are increasing. Try meditation or relaxation exercises."
	MsgMoodDeclining    = "Your dream mood has been declining. Try journaling worries before sleep."
	MsgHighStress       = "High stress shows up in your recent dreams. Practice relaxation exercises and reduce screen time in the evening."
	MsgNegative         = "Your dreams show negative sentiment. Consider stress-reduction practices before bed."
	MsgFear             = "Fear is prominent in your dreams. Consider journaling before bed to process anxieties."
	MsgSadness          = "Notice sadness themes. Reach out to friends or consider speaking with a counselor."
	MsgAnger            = "Anger shows up often in your dreams. Physical activity during the day can help release tension."
	MsgSleepPositive    = "Your dreams are brighter after better sleep. Protect a consistent sleep schedule."
	MsgSleepNegative    = "Your dreams turn darker after nights you rate as restful. Note what happens on those evenings."
	MsgRecordMore       = "You're recording dreams infrequently. Try setting a morning reminder to record dreams."
	MsgStressEasing     = "Stress in your dreams is easing. Keep doing what has been helping."
	MsgMoodImproving    = "Your dream mood is improving. Continue your current sleep routine."
	MsgPositive         = "Your dreams are predominantly positive. Keep up your good sleep hygiene!"
	MsgGreatRecall      = "Excellent dream recall! Your detailed records will provide rich insights."
	MsgDefault          = "Your dream patterns look balanced. Continue regular journaling for best insights."
)

// Signals are the aggregate inputs the recommendation rules read. An
// AvgSentiment is only considered when Entries is non-zero.
type Signals struct {
	Entries          int
	AvgSentiment     float64
	DominantEmotion  string
	StressTrend      models.Trend
	MoodTrend        models.Trend
	SleepCorrelation Correlation
	Personal         PersonalInsights
}

type rule struct {
	applies func(s Signals, p tuning.Params) bool
	message string
	// positive messages are held back while stress or mood is worsening
	positive bool
}

// rules are listed from highest to lowest priority.
var rules = []rule{
	{message: MsgNightmares, applies: func(s Signals, p tuning.Params) bool {
		return s.Personal.Sufficient && s.Personal.Nightmares >= p.NightmareMinCount
	}},
	{message: MsgStressIncreasing, applies: func(s Signals, _ tuning.Params) bool {
		return s.StressTrend == models.TrendIncreasing
	}},
	{message: MsgMoodDeclining, applies: func(s Signals, _ tuning.Params) bool {
		return s.MoodTrend == models.TrendDeclining
	}},
	{message: MsgHighStress, applies: func(s Signals, p tuning.Params) bool {
		return s.Personal.Sufficient && s.Personal.RecentStress > p.RecentStressHigh
	}},
	{message: MsgNegative, applies: func(s Signals, p tuning.Params) bool {
		return s.Entries > 0 && s.AvgSentiment < p.SentimentLow
	}},
	{message: MsgFear, applies: dominant(lexicon.Fear)},
	{message: MsgSadness, applies: dominant(lexicon.Sadness)},
	{message: MsgAnger, applies: dominant(lexicon.Anger)},
	{message: MsgSleepPositive, applies: func(s Signals, p tuning.Params) bool {
		return s.SleepCorrelation.Valid && s.SleepCorrelation.Coefficient > p.SleepCorrelationThreshold
	}},
	{message: MsgSleepNegative, applies: func(s Signals, p tuning.Params) bool {
		return s.SleepCorrelation.Valid && s.SleepCorrelation.Coefficient < -p.SleepCorrelationThreshold
	}},
	{message: MsgRecordMore, applies: func(s Signals, _ tuning.Params) bool {
		return s.Personal.Frequency == FrequencyLow
	}},
	{message: MsgStressEasing, applies: func(s Signals, _ tuning.Params) bool {
		return s.StressTrend == models.TrendDecreasing
	}},
	{message: MsgMoodImproving, positive: true, applies: func(s Signals, _ tuning.Params) bool {
		return s.MoodTrend == models.TrendImproving
	}},
	{message: MsgPositive, positive: true, applies: func(s Signals, p tuning.Params) bool {
		return s.Entries > 0 && s.AvgSentiment > p.SentimentHigh
	}},
	{message: MsgGreatRecall, positive: true, applies: func(s Signals, _ tuning.Params) bool {
		return s.Personal.Frequency == FrequencyHigh
	}},
}

func dominant(e lexicon.Emotion) func(Signals, tuning.Params) bool {
	name := e.String()
	return func(s Signals, _ tuning.Params) bool {
		return s.DominantEmotion == name
	}
}

// Recommend walks the rules in priority order and returns at most
// MaxRecommendations messages. It always returns at least one.
func Recommend(s Signals, params tuning.Params) []string {
	worsening := s.StressTrend == models.TrendIncreasing || s.MoodTrend == models.TrendDeclining

	out := make([]string, 0, params.MaxRecommendations)
	seen := make(map[string]bool, len(rules))
	for _, r := range rules {
		if len(out) >= params.MaxRecommendations {
			break
		}
		if r.positive && worsening {
			continue
		}
		if seen[r.message] || !r.applies(s, params) {
			continue
		}
		seen[r.message] = true
		out = append(out, r.message)
	}

	if len(out) == 0 {
		out = append(out, MsgDefault)
	}
	return out
}
