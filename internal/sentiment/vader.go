package sentiment

import (
	"github.com/jonreiter/govader"
	"github.com/spacesedan/dreamflow/internal/tuning"
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

// Scorer fuses VADER with the lexicon polarity estimator.
type Scorer struct {
	minTokens      int
	vaderWeight    float64
	polarityWeight float64
}

func NewScorer(params tuning.Params) *Scorer {
	return &Scorer{
		minTokens:      params.MinSentimentTokens,
		vaderWeight:    params.VaderWeight,
		polarityWeight: params.PolarityWeight,
	}
}

// Score returns the fused sentiment in [-1, 1]. Text shorter than the
// configured minimum scores a neutral 0.
func (s *Scorer) Score(t Text) float64 {
	if len(t.Tokens) < s.minTokens {
		return 0
	}
	vader := AnalyzeWithVADER(t.Plain)
	polarity := LexiconPolarity(t.Tokens)
	return tuning.Clamp(s.vaderWeight*vader+s.polarityWeight*polarity, -1, 1)
}

// AnalyzeWithVADER returns the VADER compound score of already plain text.
func AnalyzeWithVADER(plain string) float64 {
	if plain == "" {
		return 0
	}
	return tuning.Clamp(analyzer.PolarityScores(plain).Compound, -1, 1)
}

// Label buckets a fused score for display.
func Label(score float64) string {
	switch {
	case score >= 0.20:
		return "positive"
	case score <= -0.20:
		return "negative"
	default:
		return "neutral"
	}
}
