package insights

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spacesedan/dreamflow/internal/lexicon"
	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/tuning"
	"gonum.org/v1/gonum/stat"
)

const day = 24 * time.Hour

type ThemeCount struct {
	Theme    string    `json:"theme"`
	Count    int       `json:"count"`
	LastSeen time.Time `json:"last_seen"`
}

// WeekdayCycle flags a theme that lands on one weekday more than chance.
type WeekdayCycle struct {
	Theme    string       `json:"theme"`
	Weekday  time.Weekday `json:"weekday"`
	Count    int          `json:"count"`
	Expected float64      `json:"expected"`
}

// IntervalCycle is a theme that recurs at a steady spacing.
type IntervalCycle struct {
	Theme           string  `json:"theme"`
	Occurrences     int     `json:"occurrences"`
	AvgIntervalDays float64 `json:"avg_interval_days"`
}

type WeekdayMean struct {
	Weekday time.Weekday `json:"weekday"`
	Mean    float64      `json:"mean_sentiment"`
	Count   int          `json:"count"`
}

type WeekdaySentiment struct {
	Best  *WeekdayMean `json:"best,omitempty"`
	Worst *WeekdayMean `json:"worst,omitempty"`
}

// Correlation is only meaningful when Valid is set; an invalid result is
// never reported as a zero coefficient.
type Correlation struct {
	Valid       bool    `json:"valid"`
	Coefficient float64 `json:"coefficient,omitempty"`
	Points      int     `json:"points"`
}

// TimeOfDay compares mean sentiment of entries dated before MorningEndHour
// with the rest. Valid is set only when both halves have entries.
type TimeOfDay struct {
	Valid        bool    `json:"valid"`
	MorningMean  float64 `json:"morning_mean,omitempty"`
	EveningMean  float64 `json:"evening_mean,omitempty"`
	MorningCount int     `json:"morning_count"`
	EveningCount int     `json:"evening_count"`
}

// MorePositive names the half of the day with the higher mean, evening on a tie.
func (t TimeOfDay) MorePositive() string {
	if !t.Valid {
		return ""
	}
	if t.MorningMean > t.EveningMean {
		return "morning"
	}
	return "evening"
}

// EmotionPair counts entries whose two strongest emotions were these two.
type EmotionPair struct {
	Emotions [2]string `json:"emotions"`
	Count    int       `json:"count"`
}

type PatternReport struct {
	WindowStart       time.Time                `json:"window_start"`
	WindowEnd         time.Time                `json:"window_end"`
	TotalEntries      int                      `json:"total_entries"`
	RecurringThemes   []ThemeCount             `json:"recurring_themes"`
	WeekdayCycles     []WeekdayCycle           `json:"weekday_cycles"`
	IntervalCycles    []IntervalCycle          `json:"interval_cycles"`
	WeekdaySentiment  WeekdaySentiment         `json:"weekday_sentiment"`
	TimeOfDay         TimeOfDay                `json:"time_of_day"`
	EmotionPairs      []EmotionPair            `json:"emotion_pairs"`
	SleepCorrelation  Correlation              `json:"sleep_correlation"`
	EntityFrequencies models.EntityFrequencies `json:"entity_frequencies"`
}

// ThemeNames lists the recurring theme names in rank order.
func (r PatternReport) ThemeNames() []string {
	names := make([]string, len(r.RecurringThemes))
	for i, t := range r.RecurringThemes {
		names[i] = t.Theme
	}
	return names
}

// WindowEntries returns the entries dated in [start, end), stably sorted by date.
func WindowEntries(entries []models.AnalyzedEntry, start, end time.Time) []models.AnalyzedEntry {
	in := make([]models.AnalyzedEntry, 0, len(entries))
	for _, e := range entries {
		d := e.Entry.DreamDate
		if !d.Before(start) && d.Before(end) {
			in = append(in, e)
		}
	}
	sort.SliceStable(in, func(i, j int) bool {
		return in[i].Entry.DreamDate.Before(in[j].Entry.DreamDate)
	})
	return in
}

// DetectPatterns looks back PatternLookbackDays from asOf. Weekdays are read
// in each entry's own location.
func DetectPatterns(entries []models.AnalyzedEntry, asOf time.Time, catalog *lexicon.Catalog, params tuning.Params) PatternReport {
	if catalog == nil {
		catalog = lexicon.Default()
	}
	start := asOf.Add(-time.Duration(params.PatternLookbackDays) * day)
	window := WindowEntries(entries, start, asOf)

	occurrences := themeOccurrences(window)

	return PatternReport{
		WindowStart:       start,
		WindowEnd:         asOf,
		TotalEntries:      len(window),
		RecurringThemes:   rankThemes(occurrences, catalog, params.PatternTopN),
		WeekdayCycles:     weekdayCycles(occurrences, catalog, params),
		IntervalCycles:    intervalCycles(occurrences, catalog, params),
		WeekdaySentiment:  weekdaySentiment(window),
		TimeOfDay:         timeOfDay(window, params),
		EmotionPairs:      emotionPairs(window, params),
		SleepCorrelation:  SleepCorrelation(window, params),
		EntityFrequencies: EntityFrequencies(window, params),
	}
}

// RankThemes counts every theme across entries and keeps the topN.
func RankThemes(entries []models.AnalyzedEntry, catalog *lexicon.Catalog, topN int) []ThemeCount {
	if catalog == nil {
		catalog = lexicon.Default()
	}
	sorted := make([]models.AnalyzedEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Entry.DreamDate.Before(sorted[j].Entry.DreamDate)
	})
	return rankThemes(themeOccurrences(sorted), catalog, topN)
}

// themeOccurrences maps each theme to the dates it appeared on, in date order.
func themeOccurrences(window []models.AnalyzedEntry) map[string][]time.Time {
	out := make(map[string][]time.Time)
	for _, e := range window {
		for _, theme := range e.Analysis.Themes {
			out[theme] = append(out[theme], e.Entry.DreamDate)
		}
	}
	return out
}

// sortedThemes orders theme names by catalog position, then name.
func sortedThemes(occurrences map[string][]time.Time, catalog *lexicon.Catalog) []string {
	names := make([]string, 0, len(occurrences))
	for name := range occurrences {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, oj := catalog.ThemeOrder(names[i]), catalog.ThemeOrder(names[j])
		if oi != oj {
			return oi < oj
		}
		return names[i] < names[j]
	})
	return names
}

// rankThemes orders by count, then most recent occurrence, then catalog order.
func rankThemes(occurrences map[string][]time.Time, catalog *lexicon.Catalog, topN int) []ThemeCount {
	ranked := make([]ThemeCount, 0, len(occurrences))
	for _, name := range sortedThemes(occurrences, catalog) {
		dates := occurrences[name]
		ranked = append(ranked, ThemeCount{
			Theme:    name,
			Count:    len(dates),
			LastSeen: dates[len(dates)-1],
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].LastSeen.After(ranked[j].LastSeen)
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

func weekdayCycles(occurrences map[string][]time.Time, catalog *lexicon.Catalog, params tuning.Params) []WeekdayCycle {
	cycles := make([]WeekdayCycle, 0)
	for _, name := range sortedThemes(occurrences, catalog) {
		dates := occurrences[name]
		if len(dates) < params.MinCycleOccurrences {
			continue
		}

		var buckets [7]int
		for _, d := range dates {
			buckets[d.Weekday()]++
		}

		expected := float64(len(dates)) / 7
		limit := expected * (1 + params.WeekdayExcessThreshold)
		for wd, count := range buckets {
			if float64(count) > limit && count >= params.MinWeekdayHits {
				cycles = append(cycles, WeekdayCycle{
					Theme:    name,
					Weekday:  time.Weekday(wd),
					Count:    count,
					Expected: expected,
				})
			}
		}
	}
	return cycles
}

// intervalCycles keeps themes whose gaps between occurrences vary less than
// CycleVarianceRatio times their mean.
func intervalCycles(occurrences map[string][]time.Time, catalog *lexicon.Catalog, params tuning.Params) []IntervalCycle {
	cycles := make([]IntervalCycle, 0)
	for _, name := range sortedThemes(occurrences, catalog) {
		dates := occurrences[name]
		if len(dates) < params.MinCycleOccurrences {
			continue
		}

		intervals := make([]float64, 0, len(dates)-1)
		for i := 1; i < len(dates); i++ {
			intervals = append(intervals, dates[i].Sub(dates[i-1]).Hours()/24)
		}

		mean, variance := stat.PopMeanVariance(intervals, nil)
		if mean <= 0 || variance >= mean*params.CycleVarianceRatio {
			continue
		}
		cycles = append(cycles, IntervalCycle{
			Theme:           name,
			Occurrences:     len(dates),
			AvgIntervalDays: math.Round(mean*10) / 10,
		})
	}
	return cycles
}

// weekdaySentiment picks the weekdays with the highest and lowest mean
// sentiment. Ties go to the earlier weekday, Sunday first.
func weekdaySentiment(window []models.AnalyzedEntry) WeekdaySentiment {
	var sums [7]float64
	var counts [7]int
	for _, e := range window {
		wd := e.Entry.DreamDate.Weekday()
		sums[wd] += e.Analysis.SentimentScore
		counts[wd]++
	}

	var out WeekdaySentiment
	for wd := range sums {
		if counts[wd] == 0 {
			continue
		}
		m := WeekdayMean{
			Weekday: time.Weekday(wd),
			Mean:    sums[wd] / float64(counts[wd]),
			Count:   counts[wd],
		}
		if out.Best == nil || m.Mean > out.Best.Mean {
			best := m
			out.Best = &best
		}
		if out.Worst == nil || m.Mean < out.Worst.Mean {
			worst := m
			out.Worst = &worst
		}
	}
	return out
}

// timeOfDay splits entries on the clock hour of DreamDate in its own location.
func timeOfDay(window []models.AnalyzedEntry, params tuning.Params) TimeOfDay {
	var morning, evening []float64
	for _, e := range window {
		if e.Entry.DreamDate.Hour() < params.MorningEndHour {
			morning = append(morning, e.Analysis.SentimentScore)
		} else {
			evening = append(evening, e.Analysis.SentimentScore)
		}
	}

	out := TimeOfDay{MorningCount: len(morning), EveningCount: len(evening)}
	if len(morning) == 0 || len(evening) == 0 {
		return out
	}
	out.Valid = true
	out.MorningMean = stat.Mean(morning, nil)
	out.EveningMean = stat.Mean(evening, nil)
	return out
}

// emotionPairs counts the two strongest emotions of each entry when the
// runner-up clears EmotionPairFloor. Pairs are named in catalog order and
// ranked by count, then catalog order.
func emotionPairs(window []models.AnalyzedEntry, params tuning.Params) []EmotionPair {
	type key [2]lexicon.Emotion
	counts := make(map[key]int)
	for _, e := range window {
		first, second, ok := topTwo(e.Analysis.Emotions)
		if !ok || e.Analysis.Emotions[second] <= params.EmotionPairFloor {
			continue
		}
		if second < first {
			first, second = second, first
		}
		counts[key{first, second}]++
	}

	keys := make([]key, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		if keys[i][0] != keys[j][0] {
			return keys[i][0] < keys[j][0]
		}
		return keys[i][1] < keys[j][1]
	})
	if len(keys) > params.EmotionPairTopN {
		keys = keys[:params.EmotionPairTopN]
	}

	out := make([]EmotionPair, len(keys))
	for i, k := range keys {
		out[i] = EmotionPair{
			Emotions: [2]string{k[0].String(), k[1].String()},
			Count:    counts[k],
		}
	}
	return out
}

// topTwo returns the two highest scoring emotions. Ties go to catalog order.
func topTwo(v lexicon.EmotionVector) (lexicon.Emotion, lexicon.Emotion, bool) {
	first, ok := v.Dominant()
	if !ok {
		return 0, 0, false
	}
	second, found := lexicon.Emotion(0), false
	for _, e := range lexicon.Emotions() {
		if e == first {
			continue
		}
		if !found || v[e] > v[second] {
			second, found = e, true
		}
	}
	return first, second, found
}

// SleepCorrelation is the Pearson correlation between sleep quality and
// sentiment over entries that carry a rating.
func SleepCorrelation(entries []models.AnalyzedEntry, params tuning.Params) Correlation {
	sleep := make([]float64, 0, len(entries))
	mood := make([]float64, 0, len(entries))
	for _, e := range entries {
		if e.Entry.SleepQuality == nil {
			continue
		}
		sleep = append(sleep, float64(*e.Entry.SleepQuality))
		mood = append(mood, e.Analysis.SentimentScore)
	}

	c := Correlation{Points: len(sleep)}
	if len(sleep) < params.MinCorrelationPoints {
		return c
	}
	if stat.Variance(sleep, nil) == 0 || stat.Variance(mood, nil) == 0 {
		return c
	}

	r := stat.Correlation(sleep, mood, nil)
	if math.IsNaN(r) {
		return c
	}
	c.Valid = true
	c.Coefficient = tuning.Clamp(r, -1, 1)
	return c
}

// EntityFrequencies counts people, places and symbols across entries, keeping
// the configured top N of each.
func EntityFrequencies(window []models.AnalyzedEntry, params tuning.Params) models.EntityFrequencies {
	people := newCounter()
	places := newCounter()
	symbols := newCounter()
	for _, e := range window {
		people.addAll(e.Analysis.Entities.People)
		places.addAll(e.Analysis.Entities.Places)
		symbols.addAll(e.Analysis.Entities.Symbols)
	}
	return models.EntityFrequencies{
		People:  people.top(params.EntityTopPeople),
		Places:  places.top(params.EntityTopPlaces),
		Symbols: symbols.top(params.EntityTopSymbols),
	}
}

// counter folds names case-insensitively and reports the smallest spelling.
type counter struct {
	counts   map[string]int
	spelling map[string]string
}

func newCounter() *counter {
	return &counter{
		counts:   make(map[string]int),
		spelling: make(map[string]string),
	}
}

func (c *counter) addAll(names []string) {
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		c.counts[key]++
		if cur, ok := c.spelling[key]; !ok || name < cur {
			c.spelling[key] = name
		}
	}
}

func (c *counter) top(n int) []models.NamedCount {
	out := make([]models.NamedCount, 0, len(c.counts))
	for key, count := range c.counts {
		out = append(out, models.NamedCount{Name: c.spelling[key], Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
