// Package analysis turns one journal entry into an AnalysisResult.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/spacesedan/dreamflow/internal/lexicon"
	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/sentiment"
	"github.com/spacesedan/dreamflow/internal/tuning"
)

// ErrMissingCollaborator marks an entity extractor that is absent or failed.
// Analyze logs it and carries on with empty entity lists.
var ErrMissingCollaborator = errors.New("entity extractor unavailable")

// EntityExtractor finds people, places and symbols in plain text.
type EntityExtractor interface {
	Extract(ctx context.Context, text string) (models.Entities, error)
}

// Analyzer is safe for concurrent use; it holds only read-only state.
type Analyzer struct {
	catalog   *lexicon.Catalog
	params    tuning.Params
	scorer    *sentiment.Scorer
	extractor EntityExtractor
	logger    *slog.Logger
}

func New(catalog *lexicon.Catalog, params tuning.Params, extractor EntityExtractor, logger *slog.Logger) *Analyzer {
	if catalog == nil {
		catalog = lexicon.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{
		catalog:   catalog,
		params:    params,
		scorer:    sentiment.NewScorer(params),
		extractor: extractor,
		logger:    logger,
	}
}

// ConfigVersion identifies the catalog and params every result is computed with.
func (a *Analyzer) ConfigVersion() string {
	return a.catalog.Version() + "/" + a.params.Version
}

// Analyze scores an entry's content. It never fails: a missing or failing
// entity extractor only leaves the entity lists empty.
func (a *Analyzer) Analyze(ctx context.Context, entry models.DreamEntry) models.AnalysisResult {
	result := a.AnalyzeText(ctx, entry.Content)
	result.EntryID = entry.ID
	return result
}

// AnalyzeText scores content that is not tied to a stored entry.
func (a *Analyzer) AnalyzeText(ctx context.Context, content string) models.AnalysisResult {
	text := sentiment.Normalize(content)

	score := a.scorer.Score(text)
	emotions := scoreEmotions(a.catalog, a.params, text.Tokens)
	stress := scoreStress(a.catalog, a.params, text.Tokens, score)

	return models.AnalysisResult{
		SentimentScore: score,
		Emotions:       emotions,
		StressLevel:    stress,
		DreamIntensity: scoreIntensity(a.params, text, emotions, stress),
		Themes:         matchThemes(a.catalog, text.Tokens),
		Entities:       a.extractEntities(ctx, text),
		ConfigVersion:  a.ConfigVersion(),
	}
}

func (a *Analyzer) extractEntities(ctx context.Context, text sentiment.Text) models.Entities {
	if text.Empty() {
		return models.EmptyEntities()
	}

	if a.extractor == nil {
		a.logger.Debug("[Analyzer] No entity extractor configured",
			slog.String("error", ErrMissingCollaborator.Error()))
		return models.EmptyEntities()
	}

	entities, err := a.extractor.Extract(ctx, text.Plain)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrMissingCollaborator, err)
		a.logger.Warn("[Analyzer] Entity extraction failed, continuing without entities",
			slog.String("error", err.Error()))
		return models.EmptyEntities()
	}

	return CleanEntities(entities)
}

// CleanEntities trims, de-duplicates case-insensitively and sorts each list so
// results do not depend on extractor ordering.
func CleanEntities(e models.Entities) models.Entities {
	return models.Entities{
		People:  cleanList(e.People),
		Places:  cleanList(e.Places),
		Symbols: cleanList(e.Symbols),
	}
}

func cleanList(items []string) []string {
	// one spelling per case-folded key; the smallest wins so input order
	// never shows through
	best := make(map[string]string, len(items))
	for _, item := range items {
		item = strings.Join(strings.Fields(item), " ")
		if item == "" {
			continue
		}
		key := strings.ToLower(item)
		if cur, ok := best[key]; !ok || item < cur {
			best[key] = item
		}
	}

	keys := make([]string, 0, len(best))
	for k := range best {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = best[k]
	}
	return out
}
