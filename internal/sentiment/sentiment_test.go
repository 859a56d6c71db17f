package sentiment

import (
	"strings"
	"testing"

	"github.com/spacesedan/dreamflow/internal/tuning"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	text := Normalize("I was **flying** over [the city](https://example.com/x)!  Was it real? https://foo.bar/baz")

	assert.NotContains(t, text.Plain, "<")
	assert.NotContains(t, text.Plain, "http")
	assert.NotContains(t, text.Plain, "  ")
	assert.Contains(t, text.Plain, "the city")
	assert.Equal(t, []string{"i", "was", "flying", "over", "the", "city", "was", "it", "real"}, text.Tokens)
	assert.Equal(t, 1, text.Exclamations)
	assert.Equal(t, 1, text.Questions)
	assert.Equal(t, 2, text.Sentences)
}

func TestNormalizeEmpty(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "   ", "\n\n", "!!!"} {
		text := Normalize(in)
		assert.Empty(t, text.Tokens, "input %q", in)
		assert.True(t, text.Empty())
		assert.Zero(t, text.Sentences)
	}
}

func TestNormalizeKeepsContractions(t *testing.T) {
	t.Parallel()

	text := Normalize("I couldn't move. It wasn’t fun")
	assert.Contains(t, text.Tokens, "couldn't")
	assert.Contains(t, text.Tokens, "wasn't")
	assert.Equal(t, 2, text.Sentences)
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		in       string
		expected []string
	}{
		{"hello world", []string{"hello", "world"}},
		{"room 101, again", []string{"room", "101", "again"}},
		{"'quoted' words", []string{"quoted", "words"}},
		{"don't", []string{"don't"}},
		{"", []string{}},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.expected, Tokenize(tc.in), tc.in)
	}
}

func TestLexiconPolarity(t *testing.T) {
	t.Parallel()

	assert.Zero(t, LexiconPolarity(nil))
	assert.Zero(t, LexiconPolarity([]string{"the", "table", "was", "there"}))
	assert.Greater(t, LexiconPolarity([]string{"a", "wonderful", "day"}), 0.0)
	assert.Less(t, LexiconPolarity([]string{"a", "terrible", "day"}), 0.0)

	plain := LexiconPolarity([]string{"it", "was", "good"})
	negated := LexiconPolarity([]string{"it", "was", "not", "good"})
	assert.InDelta(t, plain*negationFactor, negated, 1e-12)

	boosted := LexiconPolarity([]string{"it", "was", "very", "good"})
	assert.Greater(t, boosted, plain)

	negBoosted := LexiconPolarity([]string{"it", "wasn't", "very", "good"})
	assert.Less(t, negBoosted, 0.0)

	assert.InDelta(t, 1.0, LexiconPolarity([]string{"extremely", "perfect"}), 1e-12)
}

func TestScorerShortInputIsNeutral(t *testing.T) {
	t.Parallel()

	s := NewScorer(tuning.Default())
	assert.Zero(t, s.Score(Normalize("")))
	assert.Zero(t, s.Score(Normalize("so happy")))
}

func TestScorerDirection(t *testing.T) {
	t.Parallel()

	s := NewScorer(tuning.Default())
	pos := s.Score(Normalize("It was a wonderful, happy and beautiful dream. I loved it."))
	neg := s.Score(Normalize("It was a terrible, horrible nightmare. I was terrified and sad."))

	assert.Greater(t, pos, 0.2)
	assert.Less(t, neg, -0.2)
	assert.Equal(t, "positive", Label(pos))
	assert.Equal(t, "negative", Label(neg))
	assert.Equal(t, "neutral", Label(0))
}

func TestScorerBounds(t *testing.T) {
	t.Parallel()

	s := NewScorer(tuning.Default())
	inputs := []string{
		strings.Repeat("wonderful amazing perfect best ", 200),
		strings.Repeat("horrible awful worst evil ", 200),
		strings.Repeat("?!", 500),
		"日本語のテキスト and some english words here",
	}
	for _, in := range inputs {
		score := s.Score(Normalize(in))
		assert.GreaterOrEqual(t, score, -1.0)
		assert.LessOrEqual(t, score, 1.0)
	}
}
