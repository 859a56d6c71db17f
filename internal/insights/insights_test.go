package insights

import (
	"testing"
	"time"

	"github.com/spacesedan/dreamflow/internal/lexicon"
	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/tuning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Monday
var base = time.Date(2025, 3, 3, 8, 0, 0, 0, time.UTC)

func at(days int) time.Time {
	return base.AddDate(0, 0, days)
}

func point(days int, sentiment, stress float64) models.TrendPoint {
	return models.TrendPoint{Date: at(days), SentimentScore: sentiment, StressLevel: stress}
}

func analyzed(days int, sentiment float64, themes ...string) models.AnalyzedEntry {
	if themes == nil {
		themes = []string{}
	}
	return models.AnalyzedEntry{
		Entry: models.DreamEntry{ID: at(days).Format(time.RFC3339), DreamDate: at(days)},
		Analysis: models.AnalysisResult{
			SentimentScore: sentiment,
			Themes:         themes,
			Entities:       models.EmptyEntities(),
		},
	}
}

func intPtr(v int) *int {
	return &v
}

func TestAggregatePeriodRejectsBadBounds(t *testing.T) {
	t.Parallel()

	p := tuning.Default()
	points := []models.TrendPoint{point(0, 0.5, 0.5)}

	_, err := AggregatePeriod(points, at(7), at(0), p)
	assert.ErrorIs(t, err, ErrInvalidPeriodBounds)

	_, err = AggregatePeriod(points, at(0), at(0), p)
	assert.ErrorIs(t, err, ErrInvalidPeriodBounds)

	_, err = AggregatePeriod(nil, at(7), at(0), p)
	assert.ErrorIs(t, err, ErrInvalidPeriodBounds, "bounds are checked before the window")
}

func TestAggregatePeriodEmptyWindow(t *testing.T) {
	t.Parallel()

	_, err := AggregatePeriod([]models.TrendPoint{point(10, 0.1, 0.1)}, at(0), at(7), tuning.Default())
	assert.ErrorIs(t, err, ErrInsufficientHistory)
}

func TestAggregatePeriodSingleEntry(t *testing.T) {
	t.Parallel()

	stats, err := AggregatePeriod([]models.TrendPoint{point(1, 0.4, 0.9)}, at(0), at(7), tuning.Default())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEntries)
	assert.Equal(t, models.TrendInsufficientData, stats.StressTrend)
	assert.InDelta(t, 0.4, stats.AvgSentiment, 1e-12)
	assert.Equal(t, lexicon.Neutral, stats.DominantEmotion)
}

func TestAggregatePeriodHalfOpenWindow(t *testing.T) {
	t.Parallel()

	points := []models.TrendPoint{
		point(0, 1, 0),
		point(3, 0, 0),
		point(7, -1, 0), // on the end bound, excluded
	}
	stats, err := AggregatePeriod(points, at(0), at(7), tuning.Default())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalEntries)
	assert.InDelta(t, 0.5, stats.AvgSentiment, 1e-12)
}

func TestAggregatePeriodStressTrend(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		stress   []float64
		expected models.Trend
	}{
		{"rising", []float64{0.1, 0.2, 0.6, 0.7}, models.TrendIncreasing},
		{"falling", []float64{0.8, 0.7, 0.2, 0.1}, models.TrendDecreasing},
		{"inside dead zone", []float64{0.5, 0.5, 0.52, 0.54}, models.TrendStable},
		{"two entries", []float64{0.2, 0.9}, models.TrendIncreasing},
		{"odd count puts the middle in the second half", []float64{0.2, 0.2, 0.2}, models.TrendStable},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			// listed out of order on purpose; the aggregator sorts by date
			points := make([]models.TrendPoint, 0, len(tc.stress))
			for i := len(tc.stress) - 1; i >= 0; i-- {
				points = append(points, point(i, 0, tc.stress[i]))
			}
			stats, err := AggregatePeriod(points, at(0), at(30), tuning.Default())
			require.NoError(t, err)
			assert.Equal(t, tc.expected, stats.StressTrend)
		})
	}
}

func TestAggregatePeriodDominantEmotionTie(t *testing.T) {
	t.Parallel()

	a := point(0, 0, 0)
	a.Emotions[lexicon.Anger] = 0.5
	b := point(1, 0, 0)
	b.Emotions[lexicon.Sadness] = 0.5

	for i := 0; i < 5; i++ {
		stats, err := AggregatePeriod([]models.TrendPoint{a, b}, at(0), at(7), tuning.Default())
		require.NoError(t, err)
		assert.Equal(t, "sadness", stats.DominantEmotion)
		assert.InDelta(t, 0.5, stats.EmotionDistribution[lexicon.Sadness], 1e-12)
		assert.InDelta(t, 1.0, stats.EmotionDistribution.Sum(), 1e-12)
	}
}

func sentimentSeries(scores ...float64) []SentimentPoint {
	out := make([]SentimentPoint, len(scores))
	for i, s := range scores {
		out[i] = SentimentPoint{Date: at(i), Score: s}
	}
	return out
}

func TestPredictMoodImproving(t *testing.T) {
	t.Parallel()

	f := PredictMood(sentimentSeries(0.1, 0.2, 0.3, 0.4, 0.5), tuning.Default())
	require.True(t, f.Fitted)
	assert.Equal(t, models.TrendImproving, f.Trend)
	assert.InDelta(t, 0.1, f.Slope, 1e-9)
	require.Len(t, f.Forecast, 7)
	assert.Greater(t, f.Forecast[0].Sentiment, 0.5)
	assert.Equal(t, at(5), f.Forecast[0].Date)
	assert.Equal(t, ConfidenceLow, f.Confidence)
	assert.InDelta(t, 0.3, f.CurrentAvg, 1e-9)
	for _, p := range f.Forecast {
		assert.LessOrEqual(t, p.Sentiment, 1.0)
	}
}

func TestPredictMoodForecastIsClamped(t *testing.T) {
	t.Parallel()

	f := PredictMood(sentimentSeries(-0.2, -0.6, -1), tuning.Default())
	assert.Equal(t, models.TrendDeclining, f.Trend)
	for _, p := range f.Forecast {
		assert.Equal(t, -1.0, p.Sentiment)
	}
}

func TestPredictMoodInsufficientData(t *testing.T) {
	t.Parallel()

	p := tuning.Default()

	for _, points := range [][]SentimentPoint{
		nil,
		sentimentSeries(0.3),
		sentimentSeries(0.1, 0.9),
		{{Date: at(0), Score: 0.1}, {Date: at(0), Score: 0.5}, {Date: at(0), Score: 0.9}},
	} {
		f := PredictMood(points, p)
		assert.Equal(t, models.TrendInsufficientData, f.Trend)
		assert.False(t, f.Fitted)
		assert.Empty(t, f.Forecast)
		assert.Zero(t, f.Slope)
	}
}

func TestPredictMoodStableAndUnordered(t *testing.T) {
	t.Parallel()

	points := sentimentSeries(0.2, 0.21, 0.2, 0.21, 0.2)
	points[0], points[4] = points[4], points[0]

	f := PredictMood(points, tuning.Default())
	assert.Equal(t, models.TrendStable, f.Trend)
}

func TestConfidenceFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ConfidenceLow, confidenceFor(13))
	assert.Equal(t, ConfidenceMedium, confidenceFor(14))
	assert.Equal(t, ConfidenceMedium, confidenceFor(29))
	assert.Equal(t, ConfidenceHigh, confidenceFor(30))
}

func TestDetectPatternsRecurringThemes(t *testing.T) {
	t.Parallel()

	asOf := at(60)
	entries := []models.AnalyzedEntry{
		analyzed(1, 0, "water", "flying"),
		analyzed(2, 0, "water"),
		analyzed(3, 0, "falling"),
		analyzed(4, 0, "flying"),
		analyzed(5, 0, "chase"),
		analyzed(5, 0, "home"),
		analyzed(-200, 0, "death", "death"), // outside the lookback
	}

	report := DetectPatterns(entries, asOf, lexicon.Default(), tuning.Default())
	assert.Equal(t, 6, report.TotalEntries)

	// flying and water both occur twice; flying was seen last
	// chase and home tie on count and date; catalog order puts chase first
	assert.Equal(t, []string{"flying", "water", "chase", "home", "falling"}, report.ThemeNames())
	assert.Equal(t, 2, report.RecurringThemes[0].Count)
	assert.Equal(t, at(4), report.RecurringThemes[0].LastSeen)
}

func TestDetectPatternsWeekdayCycle(t *testing.T) {
	t.Parallel()

	// four Mondays and one Thursday
	entries := []models.AnalyzedEntry{
		analyzed(0, 0, "work"),
		analyzed(7, 0, "work"),
		analyzed(14, 0, "work"),
		analyzed(21, 0, "work"),
		analyzed(24, 0, "work"),
		analyzed(25, 0, "flying"),
	}

	report := DetectPatterns(entries, at(30), lexicon.Default(), tuning.Default())
	require.Len(t, report.WeekdayCycles, 1)
	c := report.WeekdayCycles[0]
	assert.Equal(t, "work", c.Theme)
	assert.Equal(t, time.Monday, c.Weekday)
	assert.Equal(t, 4, c.Count)
	assert.InDelta(t, 5.0/7.0, c.Expected, 1e-12)
}

func TestDetectPatternsIntervalCycle(t *testing.T) {
	t.Parallel()

	entries := []models.AnalyzedEntry{
		analyzed(0, 0, "water"),
		analyzed(5, 0, "water"),
		analyzed(10, 0, "water"),
		analyzed(15, 0, "water"),
		analyzed(1, 0, "school"),
		analyzed(2, 0, "school"),
		analyzed(20, 0, "school"),
	}

	report := DetectPatterns(entries, at(30), lexicon.Default(), tuning.Default())
	require.Len(t, report.IntervalCycles, 1)
	assert.Equal(t, "water", report.IntervalCycles[0].Theme)
	assert.Equal(t, 5.0, report.IntervalCycles[0].AvgIntervalDays)
	assert.Equal(t, 4, report.IntervalCycles[0].Occurrences)
}

func TestDetectPatternsWeekdaySentiment(t *testing.T) {
	t.Parallel()

	entries := []models.AnalyzedEntry{
		analyzed(0, 0.5),  // Monday
		analyzed(7, 0.3),  // Monday
		analyzed(2, -0.6), // Wednesday
		analyzed(4, 0.1),  // Friday
	}

	report := DetectPatterns(entries, at(30), lexicon.Default(), tuning.Default())
	require.NotNil(t, report.WeekdaySentiment.Best)
	require.NotNil(t, report.WeekdaySentiment.Worst)
	assert.Equal(t, time.Monday, report.WeekdaySentiment.Best.Weekday)
	assert.InDelta(t, 0.4, report.WeekdaySentiment.Best.Mean, 1e-12)
	assert.Equal(t, time.Wednesday, report.WeekdaySentiment.Worst.Weekday)

	empty := DetectPatterns(nil, at(30), lexicon.Default(), tuning.Default())
	assert.Nil(t, empty.WeekdaySentiment.Best)
	assert.Empty(t, empty.RecurringThemes)
}

func TestSleepCorrelation(t *testing.T) {
	t.Parallel()

	p := tuning.Default()
	rated := func(days, sleep int, sentiment float64) models.AnalyzedEntry {
		e := analyzed(days, sentiment)
		e.Entry.SleepQuality = intPtr(sleep)
		return e
	}

	positive := SleepCorrelation([]models.AnalyzedEntry{
		rated(0, 2, -0.5), rated(1, 5, 0), rated(2, 9, 0.6), analyzed(3, 0.9),
	}, p)
	assert.True(t, positive.Valid)
	assert.Equal(t, 3, positive.Points)
	assert.Greater(t, positive.Coefficient, 0.9)

	tooFew := SleepCorrelation([]models.AnalyzedEntry{rated(0, 2, -0.5), rated(1, 9, 0.5)}, p)
	assert.False(t, tooFew.Valid)
	assert.Equal(t, 2, tooFew.Points)

	flat := SleepCorrelation([]models.AnalyzedEntry{rated(0, 5, -0.5), rated(1, 5, 0), rated(2, 5, 0.5)}, p)
	assert.False(t, flat.Valid)
	assert.Zero(t, flat.Coefficient)
}

func TestDetectPatternsEntityFrequencies(t *testing.T) {
	t.Parallel()

	a := analyzed(0, 0)
	a.Analysis.Entities = models.Entities{People: []string{"Mom", "Sam"}, Places: []string{"Paris"}, Symbols: []string{}}
	b := analyzed(1, 0)
	b.Analysis.Entities = models.Entities{People: []string{"mom"}, Places: []string{}, Symbols: []string{"key"}}

	report := DetectPatterns([]models.AnalyzedEntry{a, b}, at(30), lexicon.Default(), tuning.Default())
	assert.Equal(t, []models.NamedCount{{Name: "Mom", Count: 2}, {Name: "Sam", Count: 1}}, report.EntityFrequencies.People)
	assert.Equal(t, []models.NamedCount{{Name: "Paris", Count: 1}}, report.EntityFrequencies.Places)
	assert.Equal(t, []models.NamedCount{{Name: "key", Count: 1}}, report.EntityFrequencies.Symbols)
}

func TestRecommend(t *testing.T) {
	t.Parallel()

	p := tuning.Default()
	valid := func(r float64) Correlation { return Correlation{Valid: true, Coefficient: r, Points: 5} }

	testCases := []struct {
		name     string
		signals  Signals
		expected []string
	}{
		{"nothing to say", Signals{}, []string{MsgDefault}},
		{"neutral entries", Signals{Entries: 3, AvgSentiment: 0.1, DominantEmotion: "joy", StressTrend: models.TrendStable}, []string{MsgDefault}},
		{
			"stress rising suppresses positive messages",
			Signals{Entries: 4, AvgSentiment: 0.6, StressTrend: models.TrendIncreasing, MoodTrend: models.TrendImproving},
			[]string{MsgStressIncreasing},
		},
		{
			"priority order",
			Signals{Entries: 4, AvgSentiment: -0.5, DominantEmotion: "fear", StressTrend: models.TrendDecreasing, SleepCorrelation: valid(0.6)},
			[]string{MsgNegative, MsgFear, MsgSleepPositive, MsgStressEasing},
		},
		{
			"capped at four",
			Signals{Entries: 4, AvgSentiment: -0.5, DominantEmotion: "sadness", StressTrend: models.TrendIncreasing, MoodTrend: models.TrendDeclining, SleepCorrelation: valid(-0.5)},
			[]string{MsgStressIncreasing, MsgMoodDeclining, MsgNegative, MsgSadness},
		},
		{
			"all good",
			Signals{Entries: 4, AvgSentiment: 0.5, DominantEmotion: "joy", StressTrend: models.TrendStable, MoodTrend: models.TrendImproving},
			[]string{MsgMoodImproving, MsgPositive},
		},
		{"invalid correlation is ignored", Signals{Entries: 2, SleepCorrelation: Correlation{Coefficient: 0.9}}, []string{MsgDefault}},
		{"insufficient data is not stable", Signals{StressTrend: models.TrendInsufficientData, MoodTrend: models.TrendInsufficientData}, []string{MsgDefault}},
		{
			"nightmares come first",
			Signals{Entries: 5, AvgSentiment: -0.5, StressTrend: models.TrendIncreasing, Personal: PersonalInsights{Sufficient: true, Nightmares: 3, RecentStress: 0.7}},
			[]string{MsgNightmares, MsgStressIncreasing, MsgHighStress, MsgNegative},
		},
		{
			"infrequent journaling",
			Signals{Entries: 2, AvgSentiment: 0.1, Personal: PersonalInsights{Sufficient: true, Frequency: FrequencyLow}},
			[]string{MsgRecordMore},
		},
		{
			"great recall",
			Signals{Entries: 4, AvgSentiment: 0.5, StressTrend: models.TrendStable, Personal: PersonalInsights{Sufficient: true, Frequency: FrequencyHigh}},
			[]string{MsgPositive, MsgGreatRecall},
		},
		{
			"great recall held back while mood declines",
			Signals{Entries: 4, MoodTrend: models.TrendDeclining, Personal: PersonalInsights{Sufficient: true, Frequency: FrequencyHigh}},
			[]string{MsgMoodDeclining},
		},
		{
			"personal signals need enough entries",
			Signals{Personal: PersonalInsights{TotalEntries: 2, Nightmares: 2, RecentStress: 0.9}},
			[]string{MsgDefault},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, Recommend(tc.signals, p))
		})
	}
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	p := tuning.Default()
	points := []models.TrendPoint{point(0, 0.5, 0.1), point(1, 0.4, 0.1)}
	points[0].Emotions[lexicon.Joy] = 1

	stats, err := AggregatePeriod(points, at(0), at(7), p)
	require.NoError(t, err)
	mood := PredictMood(SentimentPoints(points), p)
	patterns := DetectPatterns([]models.AnalyzedEntry{analyzed(0, 0.5, "flying")}, at(7), lexicon.Default(), p)

	s := Summarize(models.PeriodWeekly, stats, patterns, mood, PersonalInsights{}, p)
	assert.Equal(t, models.PeriodWeekly, s.PeriodType)
	assert.Equal(t, 2, s.TotalEntries)
	assert.Equal(t, "joy", s.DominantEmotion)
	assert.Equal(t, models.TrendStable, s.StressTrend)
	assert.Equal(t, models.TrendInsufficientData, s.MoodTrend)
	assert.Equal(t, []string{"flying"}, s.RecurringThemes)
	assert.Equal(t, []string{MsgPositive}, s.Recommendations)
	assert.Equal(t,
		"During this weekly period, you recorded 2 dreams. Your dominant emotion was joy with an average sentiment of 0.45. Stress levels are stable.",
		s.SummaryText)

	troubled := Summarize(models.PeriodWeekly, stats, patterns, mood, PersonalInsights{Sufficient: true, Nightmares: 4}, p)
	assert.Equal(t, []string{MsgNightmares, MsgPositive}, troubled.Recommendations)
}

func TestDetectPatternsTimeOfDay(t *testing.T) {
	t.Parallel()

	evening := analyzed(2, -0.2)
	evening.Entry.DreamDate = evening.Entry.DreamDate.Add(12 * time.Hour)

	report := DetectPatterns([]models.AnalyzedEntry{analyzed(0, 0.6), analyzed(1, 0.4), evening}, at(30), lexicon.Default(), tuning.Default())
	tod := report.TimeOfDay
	require.True(t, tod.Valid)
	assert.Equal(t, 2, tod.MorningCount)
	assert.Equal(t, 1, tod.EveningCount)
	assert.InDelta(t, 0.5, tod.MorningMean, 1e-12)
	assert.InDelta(t, -0.2, tod.EveningMean, 1e-12)
	assert.Equal(t, "morning", tod.MorePositive())

	mornings := DetectPatterns([]models.AnalyzedEntry{analyzed(0, 0.6), analyzed(1, 0.4)}, at(30), lexicon.Default(), tuning.Default())
	assert.False(t, mornings.TimeOfDay.Valid)
	assert.Equal(t, 2, mornings.TimeOfDay.MorningCount)
	assert.Empty(t, mornings.TimeOfDay.MorePositive())
}

func TestDetectPatternsEmotionPairs(t *testing.T) {
	t.Parallel()

	withEmotions := func(days int, scores map[lexicon.Emotion]float64) models.AnalyzedEntry {
		e := analyzed(days, 0)
		for k, v := range scores {
			e.Analysis.Emotions[k] = v
		}
		return e
	}

	entries := []models.AnalyzedEntry{
		withEmotions(0, map[lexicon.Emotion]float64{lexicon.Fear: 0.8, lexicon.Sadness: 0.5}),
		withEmotions(1, map[lexicon.Emotion]float64{lexicon.Sadness: 0.9, lexicon.Fear: 0.3}),
		withEmotions(2, map[lexicon.Emotion]float64{lexicon.Joy: 0.7, lexicon.Trust: 0.05}),
		withEmotions(3, map[lexicon.Emotion]float64{lexicon.Joy: 0.6, lexicon.Surprise: 0.4}),
		withEmotions(4, nil),
	}

	p := tuning.Default()
	report := DetectPatterns(entries, at(30), lexicon.Default(), p)
	assert.Equal(t, []EmotionPair{
		{Emotions: [2]string{"sadness", "fear"}, Count: 2},
		{Emotions: [2]string{"joy", "surprise"}, Count: 1},
	}, report.EmotionPairs)

	p.EmotionPairTopN = 1
	report = DetectPatterns(entries, at(30), lexicon.Default(), p)
	assert.Len(t, report.EmotionPairs, 1)

	empty := DetectPatterns(nil, at(30), lexicon.Default(), tuning.Default())
	assert.Empty(t, empty.EmotionPairs)
}

func TestPersonalize(t *testing.T) {
	t.Parallel()

	p := tuning.Default()

	t.Run("too few entries", func(t *testing.T) {
		t.Parallel()
		got := Personalize([]models.AnalyzedEntry{analyzed(0, -0.9), analyzed(1, -0.9), analyzed(2, -0.9), analyzed(3, -0.9)}, p)
		assert.False(t, got.Sufficient)
		assert.Equal(t, 4, got.TotalEntries)
		assert.Zero(t, got.Nightmares)
		assert.Empty(t, got.Frequency)
	})

	t.Run("recent nightmares and high recall", func(t *testing.T) {
		t.Parallel()
		scores := []float64{-0.9, 0.2, -0.6, -0.7, 0.1, -0.8, 0.0, 0.3}
		entries := make([]models.AnalyzedEntry, 0, len(scores))
		for i := len(scores) - 1; i >= 0; i-- {
			e := analyzed(i, scores[i])
			e.Analysis.StressLevel = 0.7
			entries = append(entries, e)
		}

		got := Personalize(entries, p)
		require.True(t, got.Sufficient)
		assert.Equal(t, 8, got.TotalEntries)
		assert.Equal(t, 7, got.RecentEntries)
		assert.Equal(t, 3, got.Nightmares, "the oldest entry falls outside the recent window")
		assert.InDelta(t, -1.5/7, got.RecentSentiment, 1e-9)
		assert.InDelta(t, 0.7, got.RecentStress, 1e-9)
		assert.InDelta(t, 8.0, got.DreamsPerWeek, 1e-9)
		assert.Equal(t, FrequencyHigh, got.Frequency)
	})

	t.Run("sparse journal", func(t *testing.T) {
		t.Parallel()
		entries := []models.AnalyzedEntry{analyzed(0, 0), analyzed(10, 0), analyzed(20, 0), analyzed(30, 0), analyzed(40, 0)}
		got := Personalize(entries, p)
		require.True(t, got.Sufficient)
		assert.InDelta(t, 0.9, got.DreamsPerWeek, 1e-9)
		assert.Equal(t, FrequencyLow, got.Frequency)
	})

	t.Run("same day entries count as one day", func(t *testing.T) {
		t.Parallel()
		entries := []models.AnalyzedEntry{analyzed(0, 0), analyzed(0, 0), analyzed(0, 0), analyzed(0, 0), analyzed(0, 0)}
		got := Personalize(entries, p)
		assert.InDelta(t, 35.0, got.DreamsPerWeek, 1e-9)
		assert.Equal(t, FrequencyHigh, got.Frequency)
	})
}
