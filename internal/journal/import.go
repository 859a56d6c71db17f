package journal

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/spacesedan/dreamflow/internal/utils"
)

const (
	MaxImportEntries = 500
	importBatchSize  = 25
)

// BatchSaver is implemented by stores that write many entries per round trip.
type BatchSaver interface {
	SaveEntries(ctx context.Context, entries []models.AnalyzedEntry) error
}

// ImportEntries validates every input first and writes nothing if any is
// invalid. Valid inputs are analyzed and stored in batches.
func (s *Service) ImportEntries(ctx context.Context, inputs []models.EntryInput) ([]models.AnalyzedEntry, error) {
	if len(inputs) == 0 {
		return nil, fmt.Errorf("%w: no entries to import", ErrValidation)
	}
	if len(inputs) > MaxImportEntries {
		return nil, fmt.Errorf("%w: at most %d entries per import", ErrValidation, MaxImportEntries)
	}
	for i, in := range inputs {
		if err := s.validateInput(in); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
	}

	buffer := utils.NewBatchBuffer[models.AnalyzedEntry](importBatchSize)
	imported := make([]models.AnalyzedEntry, 0, len(inputs))

	for _, in := range inputs {
		entry := s.newEntry(uuid.NewString(), in)
		full := buffer.Add(models.AnalyzedEntry{
			Entry:    entry,
			Analysis: s.analyzer.Analyze(ctx, entry),
		})
		if full {
			batch, err := s.flushImport(ctx, buffer)
			imported = append(imported, batch...)
			if err != nil {
				return imported, err
			}
		}
	}
	if buffer.HasData() {
		batch, err := s.flushImport(ctx, buffer)
		imported = append(imported, batch...)
		if err != nil {
			return imported, err
		}
	}

	s.logger.Info("[Journal] Entries imported", slog.Int("count", len(imported)))
	return imported, nil
}

// flushImport returns only the entries that were written.
func (s *Service) flushImport(ctx context.Context, buffer *utils.BatchBuffer[models.AnalyzedEntry]) ([]models.AnalyzedEntry, error) {
	batch := buffer.GetAndClear()

	if saver, ok := s.store.(BatchSaver); ok {
		if err := saver.SaveEntries(ctx, batch); err != nil {
			return nil, fmt.Errorf("[Journal] save batch: %w", err)
		}
	} else {
		for i, e := range batch {
			if err := s.store.SaveEntry(ctx, e); err != nil {
				return batch[:i], fmt.Errorf("[Journal] save entry: %w", err)
			}
		}
	}

	for _, e := range batch {
		s.publishAnalyzed(ctx, e)
	}
	return batch, nil
}
