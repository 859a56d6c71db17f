package db

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/spacesedan/dreamflow/internal/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

// PostgresStore keeps entries in dream_entries with the analysis as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...interface{}) {
	slog.Info("[Migrations] " + fmt.Sprintf(format, v...))
}

func (gooseLogger) Fatalf(format string, v ...interface{}) {
	slog.Error("[Migrations] " + fmt.Sprintf(format, v...))
}

// Migrate applies the embedded migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(s.pool)
	defer db.Close()

	goose.SetLogger(gooseLogger{})
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("[Postgres] failed to set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("[Postgres] failed to run migrations: %w", err)
	}
	return nil
}

const entryColumns = `id, title, content, dream_date, tags, sleep_quality, analysis, created_at, updated_at`

const upsertEntrySQL = `
	INSERT INTO dream_entries (` + entryColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		content = EXCLUDED.content,
		dream_date = EXCLUDED.dream_date,
		tags = EXCLUDED.tags,
		sleep_quality = EXCLUDED.sleep_quality,
		analysis = EXCLUDED.analysis,
		updated_at = EXCLUDED.updated_at`

func (s *PostgresStore) SaveEntry(ctx context.Context, entry models.AnalyzedEntry) error {
	analysis, err := json.Marshal(entry.Analysis)
	if err != nil {
		return fmt.Errorf("[Postgres] failed to marshal analysis: %w", err)
	}

	e := entry.Entry
	_, err = s.pool.Exec(ctx, upsertEntrySQL,
		e.ID, e.Title, e.Content, e.DreamDate, nonNil(e.Tags), e.SleepQuality, analysis, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("[Postgres] failed to save entry: %w", err)
	}
	return nil
}

func scanEntry(row pgx.Row) (models.AnalyzedEntry, error) {
	var (
		e        models.DreamEntry
		analysis []byte
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Content, &e.DreamDate, &e.Tags, &e.SleepQuality, &analysis, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return models.AnalyzedEntry{}, err
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(analysis, &result); err != nil {
		return models.AnalyzedEntry{}, fmt.Errorf("decode analysis: %w", err)
	}

	e.DreamDate = e.DreamDate.UTC()
	e.CreatedAt = e.CreatedAt.UTC()
	e.UpdatedAt = e.UpdatedAt.UTC()
	return cloneEntry(models.AnalyzedEntry{Entry: e, Analysis: result}), nil
}

func (s *PostgresStore) GetEntry(ctx context.Context, id string) (models.AnalyzedEntry, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM dream_entries WHERE id = $1`, id)
	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.AnalyzedEntry{}, ErrNotFound
	}
	if err != nil {
		return models.AnalyzedEntry{}, fmt.Errorf("[Postgres] failed to get entry: %w", err)
	}
	return entry, nil
}

func (s *PostgresStore) DeleteEntry(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM dream_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("[Postgres] failed to delete entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListEntries(ctx context.Context, start, end time.Time) ([]models.AnalyzedEntry, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+entryColumns+` FROM dream_entries
		WHERE dream_date >= $1 AND dream_date < $2
		ORDER BY dream_date, id`, start, end)
	if err != nil {
		return nil, fmt.Errorf("[Postgres] failed to list entries: %w", err)
	}
	defer rows.Close()

	entries := make([]models.AnalyzedEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("[Postgres] failed to scan entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[Postgres] failed to read entries: %w", err)
	}
	return entries, nil
}

// SaveEntries upserts entries in a single batch round trip.
func (s *PostgresStore) SaveEntries(ctx context.Context, entries []models.AnalyzedEntry) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("[Postgres] failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, entry := range entries {
		analysis, err := json.Marshal(entry.Analysis)
		if err != nil {
			return fmt.Errorf("[Postgres] failed to marshal analysis: %w", err)
		}
		e := entry.Entry
		batch.Queue(upsertEntrySQL,
			e.ID, e.Title, e.Content, e.DreamDate, nonNil(e.Tags), e.SleepQuality, analysis, e.CreatedAt, e.UpdatedAt)
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("[Postgres] failed to write batch: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("[Postgres] failed to commit batch: %w", err)
	}
	slog.Info("[Postgres] Stored entries", slog.Int("count", len(entries)))
	return nil
}

func (s *PostgresStore) SaveSummary(ctx context.Context, summary models.PeriodSummary) error {
	body, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("[Postgres] failed to marshal summary: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO period_summaries (id, period_type, period_start, period_end, body, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET body = EXCLUDED.body`,
		summary.ID, string(summary.PeriodType), summary.PeriodStart, summary.PeriodEnd, body, summary.CreatedAt)
	if err != nil {
		return fmt.Errorf("[Postgres] failed to save summary: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSummaries(ctx context.Context) ([]models.PeriodSummary, error) {
	rows, err := s.pool.Query(ctx, `SELECT body FROM period_summaries ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("[Postgres] failed to list summaries: %w", err)
	}
	defer rows.Close()

	summaries := make([]models.PeriodSummary, 0)
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("[Postgres] failed to scan summary: %w", err)
		}
		var summary models.PeriodSummary
		if err := json.Unmarshal(body, &summary); err != nil {
			return nil, fmt.Errorf("[Postgres] failed to decode summary: %w", err)
		}
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[Postgres] failed to read summaries: %w", err)
	}
	return summaries, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func nonNil(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
