package journal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/spacesedan/dreamflow/internal/analysis"
	"github.com/spacesedan/dreamflow/internal/insights"
	"github.com/spacesedan/dreamflow/internal/lexicon"
	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/tuning"
)

// MaxWindowDays bounds the days parameter of the analytics reads.
const MaxWindowDays = 3650

// EntryStore persists analyzed entries and summaries. ListEntries must return
// a fresh slice ordered by dream date for the half-open window.
type EntryStore interface {
	SaveEntry(ctx context.Context, entry models.AnalyzedEntry) error
	GetEntry(ctx context.Context, id string) (models.AnalyzedEntry, error)
	DeleteEntry(ctx context.Context, id string) error
	ListEntries(ctx context.Context, start, end time.Time) ([]models.AnalyzedEntry, error)
	SaveSummary(ctx context.Context, summary models.PeriodSummary) error
	ListSummaries(ctx context.Context) ([]models.PeriodSummary, error)
}

// SummaryCache is optional.
type SummaryCache interface {
	GetSummary(ctx context.Context, key string) (models.PeriodSummary, bool, error)
	SetSummary(ctx context.Context, key string, summary models.PeriodSummary) error
}

// EventPublisher is optional. Failures are logged and never fail a write.
type EventPublisher interface {
	PublishEntryAnalyzed(ctx context.Context, entry models.AnalyzedEntry) error
	PublishSummaryGenerated(ctx context.Context, summary models.PeriodSummary) error
}

type Deps struct {
	Store    EntryStore
	Analyzer *analysis.Analyzer
	Catalog  *lexicon.Catalog
	Params   tuning.Params
	Cache    SummaryCache
	Events   EventPublisher
	Logger   *slog.Logger
	Now      func() time.Time
}

type Service struct {
	store    EntryStore
	analyzer *analysis.Analyzer
	catalog  *lexicon.Catalog
	params   tuning.Params
	cache    SummaryCache
	events   EventPublisher
	logger   *slog.Logger
	now      func() time.Time
	validate *validator.Validate
}

func New(deps Deps) (*Service, error) {
	if deps.Store == nil {
		return nil, errors.New("[Journal] store is required")
	}
	if deps.Params.Version == "" {
		deps.Params = tuning.Default()
	}
	if err := deps.Params.Validate(); err != nil {
		return nil, fmt.Errorf("[Journal] invalid params: %w", err)
	}
	if deps.Catalog == nil {
		deps.Catalog = lexicon.Default()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Analyzer == nil {
		deps.Analyzer = analysis.New(deps.Catalog, deps.Params, nil, deps.Logger)
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Service{
		store:    deps.Store,
		analyzer: deps.Analyzer,
		catalog:  deps.Catalog,
		params:   deps.Params,
		cache:    deps.Cache,
		events:   deps.Events,
		logger:   deps.Logger,
		now:      func() time.Time { return deps.Now().UTC() },
		validate: validator.New(),
	}, nil
}

func (s *Service) validateInput(in models.EntryInput) error {
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content must not be empty", ErrValidation)
	}
	if err := s.validate.Struct(in); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	return nil
}

// CreateEntry validates, analyzes and stores a new entry.
func (s *Service) CreateEntry(ctx context.Context, in models.EntryInput) (models.AnalyzedEntry, error) {
	return s.create(ctx, uuid.NewString(), in)
}

func (s *Service) create(ctx context.Context, id string, in models.EntryInput) (models.AnalyzedEntry, error) {
	if err := s.validateInput(in); err != nil {
		return models.AnalyzedEntry{}, err
	}
	return s.analyzeAndSave(ctx, s.newEntry(id, in))
}

func (s *Service) newEntry(id string, in models.EntryInput) models.DreamEntry {
	now := s.now()
	entry := models.DreamEntry{
		ID:           id,
		Title:        strings.TrimSpace(in.Title),
		Content:      in.Content,
		DreamDate:    now,
		Tags:         cleanTags(in.Tags),
		SleepQuality: in.SleepQuality,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.DreamDate != nil {
		entry.DreamDate = in.DreamDate.UTC()
	}
	return entry
}

// UpdateEntry replaces an entry's fields and recomputes its analysis.
func (s *Service) UpdateEntry(ctx context.Context, id string, in models.EntryInput) (models.AnalyzedEntry, error) {
	if err := s.validateInput(in); err != nil {
		return models.AnalyzedEntry{}, err
	}

	current, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return models.AnalyzedEntry{}, err
	}

	entry := current.Entry
	entry.Title = strings.TrimSpace(in.Title)
	entry.Content = in.Content
	entry.Tags = cleanTags(in.Tags)
	entry.SleepQuality = in.SleepQuality
	entry.UpdatedAt = s.now()
	if in.DreamDate != nil {
		entry.DreamDate = in.DreamDate.UTC()
	}

	return s.analyzeAndSave(ctx, entry)
}

// IngestEntry stores an entry that arrived from the message bus. A known id
// is treated as an edit so redelivery does not create duplicates.
func (s *Service) IngestEntry(ctx context.Context, msg models.EntryMessage) (models.AnalyzedEntry, error) {
	if msg.ID == "" {
		return s.CreateEntry(ctx, msg.EntryInput)
	}
	if _, err := uuid.Parse(msg.ID); err != nil {
		return models.AnalyzedEntry{}, fmt.Errorf("%w: id %q is not a uuid", ErrValidation, msg.ID)
	}

	_, err := s.store.GetEntry(ctx, msg.ID)
	switch {
	case err == nil:
		return s.UpdateEntry(ctx, msg.ID, msg.EntryInput)
	case errors.Is(err, ErrNotFound):
		return s.create(ctx, msg.ID, msg.EntryInput)
	default:
		return models.AnalyzedEntry{}, err
	}
}

func (s *Service) analyzeAndSave(ctx context.Context, entry models.DreamEntry) (models.AnalyzedEntry, error) {
	analyzed := models.AnalyzedEntry{
		Entry:    entry,
		Analysis: s.analyzer.Analyze(ctx, entry),
	}

	if err := s.store.SaveEntry(ctx, analyzed); err != nil {
		return models.AnalyzedEntry{}, fmt.Errorf("[Journal] save entry: %w", err)
	}

	s.logger.Info("[Journal] Entry analyzed",
		slog.String("entry_id", entry.ID),
		slog.Float64("sentiment", analyzed.Analysis.SentimentScore),
		slog.String("dominant_emotion", analyzed.Analysis.Emotions.DominantName()))

	s.publishAnalyzed(ctx, analyzed)
	return analyzed, nil
}

func (s *Service) publishAnalyzed(ctx context.Context, analyzed models.AnalyzedEntry) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEntryAnalyzed(ctx, analyzed); err != nil {
		s.logger.Warn("[Journal] Failed to publish entry-analyzed event",
			slog.String("entry_id", analyzed.Entry.ID),
			slog.String("error", err.Error()))
	}
}

func (s *Service) GetEntry(ctx context.Context, id string) (models.AnalyzedEntry, error) {
	return s.store.GetEntry(ctx, id)
}

func (s *Service) DeleteEntry(ctx context.Context, id string) error {
	return s.store.DeleteEntry(ctx, id)
}

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ListQuery filters entry listings. Zero bounds are open and Tag matches
// exactly after lowercasing.
type ListQuery struct {
	Start   time.Time
	End     time.Time
	Tag     string
	Page    int
	PerPage int
}

type EntryPage struct {
	Entries     []models.AnalyzedEntry `json:"entries"`
	Total       int                    `json:"total"`
	Pages       int                    `json:"pages"`
	CurrentPage int                    `json:"current_page"`
}

// ListEntries pages through matching entries, newest dream first.
func (s *Service) ListEntries(ctx context.Context, q ListQuery) (EntryPage, error) {
	end := q.End
	if end.IsZero() {
		end = farFuture
	}
	if !q.Start.Before(end) {
		return EntryPage{}, insights.ErrInvalidPeriodBounds
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.PerPage <= 0 {
		q.PerPage = DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		q.PerPage = MaxPerPage
	}

	entries, err := s.store.ListEntries(ctx, q.Start, end)
	if err != nil {
		return EntryPage{}, fmt.Errorf("[Journal] list entries: %w", err)
	}

	tag := strings.ToLower(strings.TrimSpace(q.Tag))
	matched := make([]models.AnalyzedEntry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		if tag != "" && !hasTag(entries[i].Entry.Tags, tag) {
			continue
		}
		matched = append(matched, entries[i])
	}

	page := EntryPage{
		Entries:     []models.AnalyzedEntry{},
		Total:       len(matched),
		Pages:       (len(matched) + q.PerPage - 1) / q.PerPage,
		CurrentPage: q.Page,
	}
	from := (q.Page - 1) * q.PerPage
	if from < len(matched) {
		to := min(from+q.PerPage, len(matched))
		page.Entries = matched[from:to]
	}
	return page, nil
}

func hasTag(tags []string, tag string) bool {
	for _, t := range tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AnalyzeText previews an analysis without storing anything.
func (s *Service) AnalyzeText(ctx context.Context, content string) (models.AnalysisResult, error) {
	if strings.TrimSpace(content) == "" {
		return models.AnalysisResult{}, fmt.Errorf("%w: content must not be empty", ErrValidation)
	}
	return s.analyzer.AnalyzeText(ctx, content), nil
}

// Tags returns every tag in use, sorted and unique.
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	entries, err := s.store.ListEntries(ctx, time.Time{}, farFuture)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	tags := make([]string, 0)
	for _, e := range entries {
		for _, t := range e.Entry.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			tags = append(tags, t)
		}
	}
	sort.Strings(tags)
	return tags, nil
}

var farFuture = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

func cleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
