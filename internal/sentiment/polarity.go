package sentiment

import (
	"strings"

	"github.com/spacesedan/dreamflow/internal/tuning"
)

// Word polarities for the general-purpose estimator. Values are in [-1, 1].
var polarityLexicon = map[string]float64{
	"good": 0.7, "great": 0.8, "wonderful": 1.0, "amazing": 0.6, "awesome": 1.0,
	"beautiful": 0.85, "happy": 0.8, "joyful": 0.8, "glad": 0.5, "excited": 0.4,
	"love": 0.5, "loved": 0.7, "lovely": 0.5, "nice": 0.6, "pleasant": 0.73,
	"peaceful": 0.6, "calm": 0.3, "safe": 0.5, "warm": 0.6, "bright": 0.7,
	"fun": 0.3, "funny": 0.25, "best": 1.0, "better": 0.5, "perfect": 1.0,
	"delighted": 0.7, "cheerful": 0.8, "content": 0.4, "comfortable": 0.4,
	"free": 0.4, "hopeful": 0.5, "relieved": 0.4, "kind": 0.6, "friendly": 0.4,
	"bad": -0.7, "terrible": -1.0, "horrible": -1.0, "awful": -1.0,
	"sad": -0.5, "unhappy": -0.6, "angry": -0.5, "afraid": -0.6, "scared": -0.6,
	"scary": -0.5, "terrified": -0.8, "terrifying": -0.8, "frightening": -0.7,
	"worried": -0.4, "anxious": -0.4, "lonely": -0.5, "lost": -0.3, "dark": -0.15,
	"cold": -0.6, "ugly": -0.7, "worst": -1.0, "worse": -0.4, "painful": -0.7,
	"hurt": -0.5, "sick": -0.7, "dead": -0.2, "dying": -0.4, "evil": -1.0,
	"strange": -0.05, "weird": -0.5, "nasty": -1.0, "disgusting": -1.0,
	"miserable": -1.0, "depressed": -0.6, "crying": -0.4, "trapped": -0.5,
	"helpless": -0.6, "panic": -0.6, "nightmare": -0.7, "furious": -0.8,
	"frustrated": -0.7, "embarrassed": -0.5, "ashamed": -0.5, "guilty": -0.5,
}

// Intensifier multipliers applied to the word that follows.
var intensifiers = map[string]float64{
	"very": 1.3, "really": 1.2, "so": 1.2, "extremely": 1.5, "incredibly": 1.4,
	"super": 1.3, "totally": 1.2, "absolutely": 1.4, "completely": 1.3,
	"quite": 1.1, "pretty": 1.1, "somewhat": 0.7, "slightly": 0.5,
	"barely": 0.4, "kinda": 0.7, "little": 0.8,
}

var negators = map[string]bool{
	"not": true, "no": true, "never": true, "nothing": true, "nobody": true,
	"neither": true, "nor": true, "none": true, "cannot": true, "without": true,
}

// negationFactor flips and dampens a negated polarity.
const negationFactor = -0.5

func isNegator(tok string) bool {
	return negators[tok] || strings.HasSuffix(tok, "n't")
}

// LexiconPolarity averages the polarity of every lexicon word in tokens.
// A preceding intensifier scales a word and a negator right before the word
// or its intensifier flips it. Text with no lexicon words scores 0.
func LexiconPolarity(tokens []string) float64 {
	var sum float64
	matched := 0

	for i, tok := range tokens {
		p, ok := polarityLexicon[tok]
		if !ok {
			continue
		}

		prev := i - 1
		if prev >= 0 {
			if m, ok := intensifiers[tokens[prev]]; ok {
				p *= m
				prev--
			}
		}
		if prev >= 0 && isNegator(tokens[prev]) {
			p *= negationFactor
		}

		sum += tuning.Clamp(p, -1, 1)
		matched++
	}

	if matched == 0 {
		return 0
	}
	return tuning.Clamp(sum/float64(matched), -1, 1)
}
