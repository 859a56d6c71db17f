package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/spacesedan/dreamflow/config"
	"github.com/spacesedan/dreamflow/internal/db"
	"github.com/spacesedan/dreamflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildMemory(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	a, err := Build(context.Background(), cfg, quietLogger())
	require.NoError(t, err)
	defer a.Close()

	assert.IsType(t, &db.MemoryStore{}, a.Store)
	assert.Nil(t, a.Producer)
	assert.Nil(t, a.Valkey)
	assert.Nil(t, a.NERHealth)

	entry, err := a.Journal.CreateEntry(context.Background(), models.EntryInput{Content: "A quiet walk by the lake"})
	require.NoError(t, err)
	assert.Equal(t, []string{"water"}, entry.Analysis.Themes)
}

func TestBuildRejectsUnknownStore(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Store.Backend = "sqlite"

	a, err := Build(context.Background(), cfg, quietLogger())
	assert.Error(t, err)
	assert.Nil(t, a)
}

func TestBuildHTTPNERTracksHealth(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.NER.Backend = "http"
	cfg.NER.URL = "http://127.0.0.1:1/extract"

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := Build(ctx, cfg, quietLogger())
	require.NoError(t, err)
	defer a.Close()
	require.NotNil(t, a.NERHealth)
}
