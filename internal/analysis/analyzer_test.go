package analysis

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spacesedan/dreamflow/internal/lexicon"
	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/sentiment"
	"github.com/spacesedan/dreamflow/internal/tuning"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubExtractor struct {
	entities models.Entities
	err      error
	calls    int
	mu       sync.Mutex
}

func (s *stubExtractor) Extract(_ context.Context, _ string) (models.Entities, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.entities, s.err
}

func newTestAnalyzer(extractor EntityExtractor) *Analyzer {
	return New(lexicon.Default(), tuning.Default(), extractor, nil)
}

func entry(content string) models.DreamEntry {
	return models.DreamEntry{
		ID:        "entry-1",
		Content:   content,
		DreamDate: time.Date(2025, 3, 1, 7, 0, 0, 0, time.UTC),
	}
}

func assertBounds(t *testing.T, r models.AnalysisResult) {
	t.Helper()
	assert.GreaterOrEqual(t, r.SentimentScore, -1.0)
	assert.LessOrEqual(t, r.SentimentScore, 1.0)
	assert.GreaterOrEqual(t, r.StressLevel, 0.0)
	assert.LessOrEqual(t, r.StressLevel, 1.0)
	assert.GreaterOrEqual(t, r.DreamIntensity, 0.0)
	assert.LessOrEqual(t, r.DreamIntensity, 1.0)
	for _, e := range lexicon.Emotions() {
		assert.GreaterOrEqual(t, r.Emotions[e], 0.0, e.String())
		assert.LessOrEqual(t, r.Emotions[e], 1.0, e.String())
	}
}

func TestAnalyzeScoreBounds(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer(nil)
	inputs := []string{
		"",
		"ok",
		"I was chased through the school, terrified, late for an exam, my teeth falling out!!!",
		strings.Repeat("scared afraid terrified panic nightmare horror ", 300),
		strings.Repeat("happy joyful wonderful love peaceful ", 300),
		strings.Repeat("?!?!", 1000),
		"# Heading\n\n* list item one\n* list item two\n\n> quote with [link](https://example.com)",
	}

	for _, in := range inputs {
		assertBounds(t, a.Analyze(context.Background(), entry(in)))
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	t.Parallel()

	ex := &stubExtractor{entities: models.Entities{People: []string{"Mom", "mom", " Anna "}, Places: []string{"Paris"}}}
	a := newTestAnalyzer(ex)
	e := entry("I was flying over Paris with mom and Anna. It was wonderful but then I fell!")

	first := a.Analyze(context.Background(), e)
	second := a.Analyze(context.Background(), e)
	assert.Equal(t, first, second)
}

func TestAnalyzeConcurrentCallsAgree(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer(nil)
	e := entry("A scary dream where I was chased by a dog near the ocean. I woke up crying.")
	want := a.Analyze(context.Background(), e)

	var wg sync.WaitGroup
	results := make([]models.AnalysisResult, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = a.Analyze(context.Background(), e)
		}(i)
	}
	wg.Wait()

	for _, got := range results {
		assert.Equal(t, want, got)
	}
}

func TestAnalyzeEmptyInputIsNeutral(t *testing.T) {
	t.Parallel()

	ex := &stubExtractor{entities: models.Entities{People: []string{"ghost"}}}
	a := newTestAnalyzer(ex)

	for _, in := range []string{"", "   \n\t "} {
		r := a.Analyze(context.Background(), entry(in))
		assert.Zero(t, r.SentimentScore)
		assert.Equal(t, lexicon.EmotionVector{}, r.Emotions)
		assert.Zero(t, r.StressLevel)
		assert.Zero(t, r.DreamIntensity)
		assert.NotNil(t, r.Themes)
		assert.Empty(t, r.Themes)
		assert.Equal(t, models.EmptyEntities(), r.Entities)
		assert.Equal(t, "entry-1", r.EntryID)
	}
	assert.Zero(t, ex.calls, "empty text never reaches the extractor")
}

func TestAnalyzeThemes(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer(nil)
	assert.Equal(t, []string{"falling"}, a.Analyze(context.Background(), entry("I was falling and falling in my dream")).Themes)
	assert.Empty(t, a.Analyze(context.Background(), entry("I went to the store")).Themes)
}

func TestAnalyzeMissingExtractor(t *testing.T) {
	t.Parallel()

	failing := &stubExtractor{err: errors.New("connection refused")}
	for _, ex := range []EntityExtractor{nil, failing} {
		r := newTestAnalyzer(ex).Analyze(context.Background(), entry("My brother and I walked through Rome at night."))
		assert.Equal(t, models.EmptyEntities(), r.Entities)
		assert.NotEqual(t, 0.0, r.DreamIntensity)
	}
	assert.Equal(t, 1, failing.calls)
}

func TestAnalyzeCleansEntities(t *testing.T) {
	t.Parallel()

	ex := &stubExtractor{entities: models.Entities{
		People:  []string{"mom", "Zoe", "  Mom ", ""},
		Places:  nil,
		Symbols: []string{"key", "Key", "door"},
	}}
	r := newTestAnalyzer(ex).Analyze(context.Background(), entry("Mom gave Zoe a key to the door."))

	assert.Equal(t, []string{"Mom", "Zoe"}, r.Entities.People)
	assert.Equal(t, []string{}, r.Entities.Places)
	assert.Equal(t, []string{"door", "Key"}, r.Entities.Symbols)
}

func TestAnalyzeStressfulEntry(t *testing.T) {
	t.Parallel()

	a := newTestAnalyzer(nil)
	calm := a.Analyze(context.Background(), entry("I sat in a peaceful garden with my family and felt happy."))
	tense := a.Analyze(context.Background(), entry("I was chased and trapped, late for the exam, and my teeth were falling out. I was terrified."))

	assert.Greater(t, tense.StressLevel, calm.StressLevel)
	assert.Greater(t, tense.Emotions[lexicon.Fear], 0.0)
	assert.Greater(t, calm.Emotions[lexicon.Joy], 0.0)
	assert.Contains(t, tense.Themes, "chase")
	assert.Contains(t, tense.Themes, "school")
}

func TestScoreEmotionsSaturates(t *testing.T) {
	t.Parallel()

	c, p := lexicon.Default(), tuning.Default()

	one := scoreEmotions(c, p, []string{"i", "was", "scared"})
	assert.InDelta(t, 1.0/3.0, one[lexicon.Fear], 1e-12)
	assert.Zero(t, one[lexicon.Joy])

	many := scoreEmotions(c, p, []string{"scared", "scared", "scared", "scared", "scared"})
	assert.Equal(t, 1.0, many[lexicon.Fear])
}

func TestScoreStress(t *testing.T) {
	t.Parallel()

	c, p := lexicon.Default(), tuning.Default()

	assert.Zero(t, scoreStress(c, p, nil, -1))
	assert.Zero(t, scoreStress(c, p, []string{"a", "quiet", "walk"}, 0.5))
	assert.InDelta(t, 0.3, scoreStress(c, p, []string{"a", "quiet", "walk"}, -1), 1e-12)

	// chased (1.0) + trapped (1.0) = 2.0 / 4
	got := scoreStress(c, p, []string{"chased", "and", "trapped"}, 0)
	assert.InDelta(t, 0.7*0.5, got, 1e-12)
}

func TestScoreIntensity(t *testing.T) {
	t.Parallel()

	p := tuning.Default()
	assert.Zero(t, scoreIntensity(p, sentiment.Text{}, lexicon.EmotionVector{}, 0))

	text := sentiment.Normalize("Help! Where am I?")
	var emotions lexicon.EmotionVector
	emotions[lexicon.Fear] = 0.5

	// 4 words, 2 marks over 2 sentences
	want := 0.25*(4.0/300.0) + 0.15*1 + 0.35*0.5 + 0.25*0.2
	assert.InDelta(t, want, scoreIntensity(p, text, emotions, 0.2), 1e-12)
}

func TestCleanEntitiesNilLists(t *testing.T) {
	t.Parallel()

	got := CleanEntities(models.Entities{})
	require.NotNil(t, got.People)
	require.NotNil(t, got.Places)
	require.NotNil(t, got.Symbols)
}
