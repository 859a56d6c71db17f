package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spacesedan/dreamflow/internal/models"
)

// MemoryStore keeps entries and summaries in process. Reads return copies so
// callers always work on a snapshot.
type MemoryStore struct {
	mu        sync.RWMutex
	entries   map[string]models.AnalyzedEntry
	summaries []models.PeriodSummary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]models.AnalyzedEntry),
	}
}

func (m *MemoryStore) SaveEntry(_ context.Context, entry models.AnalyzedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[entry.Entry.ID] = cloneEntry(entry)
	return nil
}

func (m *MemoryStore) SaveEntries(_ context.Context, entries []models.AnalyzedEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range entries {
		m.entries[e.Entry.ID] = cloneEntry(e)
	}
	return nil
}

func (m *MemoryStore) GetEntry(_ context.Context, id string) (models.AnalyzedEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	entry, ok := m.entries[id]
	if !ok {
		return models.AnalyzedEntry{}, ErrNotFound
	}
	return cloneEntry(entry), nil
}

func (m *MemoryStore) DeleteEntry(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[id]; !ok {
		return ErrNotFound
	}
	delete(m.entries, id)
	return nil
}

// ListEntries returns entries dated in [start, end) ordered by dream date,
// then id.
func (m *MemoryStore) ListEntries(_ context.Context, start, end time.Time) ([]models.AnalyzedEntry, error) {
	m.mu.RLock()
	out := make([]models.AnalyzedEntry, 0, len(m.entries))
	for _, e := range m.entries {
		d := e.Entry.DreamDate
		if !d.Before(start) && d.Before(end) {
			out = append(out, cloneEntry(e))
		}
	}
	m.mu.RUnlock()

	SortEntries(out)
	return out, nil
}

func (m *MemoryStore) SaveSummary(_ context.Context, summary models.PeriodSummary) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.summaries = append(m.summaries, summary)
	return nil
}

// ListSummaries returns summaries newest first.
func (m *MemoryStore) ListSummaries(_ context.Context) ([]models.PeriodSummary, error) {
	m.mu.RLock()
	out := make([]models.PeriodSummary, len(m.summaries))
	copy(out, m.summaries)
	m.mu.RUnlock()

	SortSummaries(out)
	return out, nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// SortEntries orders by dream date, then id, so listings are stable.
func SortEntries(entries []models.AnalyzedEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].Entry.DreamDate, entries[j].Entry.DreamDate
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return entries[i].Entry.ID < entries[j].Entry.ID
	})
}

func SortSummaries(summaries []models.PeriodSummary) {
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].CreatedAt.After(summaries[j].CreatedAt)
	})
}

func cloneEntry(e models.AnalyzedEntry) models.AnalyzedEntry {
	e.Entry.Tags = append([]string{}, e.Entry.Tags...)
	if e.Entry.SleepQuality != nil {
		q := *e.Entry.SleepQuality
		e.Entry.SleepQuality = &q
	}
	e.Analysis.Themes = append([]string{}, e.Analysis.Themes...)
	e.Analysis.Entities = models.Entities{
		People:  append([]string{}, e.Analysis.Entities.People...),
		Places:  append([]string{}, e.Analysis.Entities.Places...),
		Symbols: append([]string{}, e.Analysis.Entities.Symbols...),
	}
	return e
}
