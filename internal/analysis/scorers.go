package analysis

import (
	"math"

	"github.com/spacesedan/dreamflow/internal/lexicon"
	"github.com/spacesedan/dreamflow/internal/sentiment"
	"github.com/spacesedan/dreamflow/internal/tuning"
)

func saturate(v, k float64) float64 {
	return math.Min(1, v/k)
}

// scoreEmotions scores each category independently as min(1, matches/K).
func scoreEmotions(c *lexicon.Catalog, p tuning.Params, tokens []string) lexicon.EmotionVector {
	var v lexicon.EmotionVector
	if len(tokens) == 0 {
		return v
	}
	for _, e := range lexicon.Emotions() {
		if n := c.EmotionMatches(e, tokens); n > 0 {
			v[e] = tuning.Clamp01(saturate(float64(n), p.EmotionSaturation))
		}
	}
	return v
}

func matchThemes(c *lexicon.Catalog, tokens []string) []string {
	return c.MatchThemes(tokens)
}

// scoreStress blends weighted cue matches with how negative the entry is.
func scoreStress(c *lexicon.Catalog, p tuning.Params, tokens []string, sentimentScore float64) float64 {
	if len(tokens) == 0 {
		return 0
	}
	cue := saturate(c.StressWeight(tokens), p.StressSaturation)
	negativity := math.Max(0, -sentimentScore)
	return tuning.Clamp01(p.StressCueWeight*cue + p.StressNegativityWeight*negativity)
}

func scoreIntensity(p tuning.Params, t sentiment.Text, emotions lexicon.EmotionVector, stress float64) float64 {
	if t.Empty() {
		return 0
	}
	w := p.Intensity

	length := saturate(float64(t.WordCount()), float64(p.IntensityReferenceWords))

	var punctuation float64
	if t.Sentences > 0 {
		punctuation = saturate(float64(t.Exclamations+t.Questions), float64(t.Sentences))
	}

	emotion := math.Min(1, emotions.Sum())

	return tuning.Clamp01(w.Length*length + w.Punctuation*punctuation + w.Emotion*emotion + w.Stress*stress)
}
