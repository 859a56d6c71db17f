package insights

import (
	"fmt"
	"strings"

	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/tuning"
)

// Summarize assembles a period summary from results computed over one
// snapshot. The caller sets ID and CreatedAt.
func Summarize(periodType models.PeriodType, stats PeriodStats, patterns PatternReport, mood MoodForecast, personal PersonalInsights, params tuning.Params) models.PeriodSummary {
	recs := Recommend(Signals{
		Entries:          stats.TotalEntries,
		AvgSentiment:     stats.AvgSentiment,
		DominantEmotion:  stats.DominantEmotion,
		StressTrend:      stats.StressTrend,
		MoodTrend:        mood.Trend,
		SleepCorrelation: patterns.SleepCorrelation,
		Personal:         personal,
	}, params)

	return models.PeriodSummary{
		PeriodType:          periodType,
		PeriodStart:         stats.Start,
		PeriodEnd:           stats.End,
		TotalEntries:        stats.TotalEntries,
		AvgSentiment:        stats.AvgSentiment,
		DominantEmotion:     stats.DominantEmotion,
		EmotionDistribution: stats.EmotionDistribution,
		StressTrend:         stats.StressTrend,
		MoodTrend:           mood.Trend,
		RecurringThemes:     patterns.ThemeNames(),
		CommonEntities:      patterns.EntityFrequencies,
		Recommendations:     recs,
		SummaryText:         RenderSummary(periodType, stats, mood),
		ConfigVersion:       params.Version,
	}
}

func RenderSummary(periodType models.PeriodType, stats PeriodStats, mood MoodForecast) string {
	var b strings.Builder

	noun := "dreams"
	if stats.TotalEntries == 1 {
		noun = "dream"
	}
	fmt.Fprintf(&b, "During this %s period, you recorded %d %s. ", periodType, stats.TotalEntries, noun)
	fmt.Fprintf(&b, "Your dominant emotion was %s with an average sentiment of %.2f. ",
		stats.DominantEmotion, stats.AvgSentiment)

	if stats.StressTrend == models.TrendInsufficientData {
		b.WriteString("There are not enough entries yet to tell how your stress is trending.")
	} else {
		fmt.Fprintf(&b, "Stress levels are %s.", stats.StressTrend)
	}

	if mood.Trend != models.TrendInsufficientData && mood.Trend != "" {
		fmt.Fprintf(&b, " Your overall mood is %s.", mood.Trend)
	}
	return b.String()
}
