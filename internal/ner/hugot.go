package ner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/knights-analytics/hugot"
	"github.com/knights-analytics/hugot/pipelines"
	"github.com/spacesedan/dreamflow/internal/models"
)

type tokenClassifier interface {
	RunPipeline(inputs []string) (*pipelines.TokenClassificationOutput, error)
}

// HugotExtractor runs a local ONNX token-classification model. PER maps to
// people, LOC to places, ORG and MISC to symbols.
type HugotExtractor struct {
	session  *hugot.Session
	pipeline tokenClassifier
	mu       sync.Mutex
}

func NewHugotExtractor(modelName, modelDir string) (*HugotExtractor, error) {
	modelPath, err := ensureModel(modelName, modelDir)
	if err != nil {
		return nil, err
	}

	session, err := hugot.NewORTSession()
	if err != nil {
		return nil, fmt.Errorf("[HugotExtractor] failed to initialize session: %w", err)
	}

	config := hugot.TokenClassificationConfig{
		ModelPath: modelPath,
		Name:      "dreamEntityPipeline",
		Options: []hugot.TokenClassificationOption{
			pipelines.WithSimpleAggregation(),
			pipelines.WithIgnoreLabels([]string{"O"}),
		},
	}
	pipeline, err := hugot.NewPipeline(session, config)
	if err != nil {
		session.Destroy()
		return nil, fmt.Errorf("[HugotExtractor] failed to initialize pipeline: %w", err)
	}

	return &HugotExtractor{session: session, pipeline: pipeline}, nil
}

// ensureModel downloads the model into modelDir unless it is already there.
func ensureModel(modelName, modelDir string) (string, error) {
	if err := os.MkdirAll(modelDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("[HugotExtractor] failed to create model directory: %w", err)
	}

	modelPath := filepath.Join(modelDir, strings.ReplaceAll(modelName, "/", "_"))
	if _, err := os.Stat(modelPath); err == nil {
		slog.Info("[HugotExtractor] Using existing model", slog.String("path", modelPath))
		return modelPath, nil
	}

	slog.Info("[HugotExtractor] Model not found, downloading...", slog.String("model", modelName))
	path, err := hugot.DownloadModel(modelName, modelDir, hugot.NewDownloadOptions())
	if err != nil {
		return "", fmt.Errorf("[HugotExtractor] failed to download model: %w", err)
	}
	slog.Info("[HugotExtractor] Model downloaded successfully", slog.String("path", path))
	return path, nil
}

func (x *HugotExtractor) Extract(ctx context.Context, text string) (models.Entities, error) {
	if err := ctx.Err(); err != nil {
		return models.Entities{}, err
	}

	x.mu.Lock()
	output, err := x.pipeline.RunPipeline([]string{text})
	x.mu.Unlock()
	if err != nil {
		return models.Entities{}, fmt.Errorf("[HugotExtractor] pipeline failed: %w", err)
	}
	return entitiesFromTokens(output), nil
}

func entitiesFromTokens(output *pipelines.TokenClassificationOutput) models.Entities {
	entities := models.EmptyEntities()
	if output == nil {
		return entities
	}
	for _, sentence := range output.Entities {
		for _, e := range sentence {
			word := strings.TrimSpace(strings.ReplaceAll(e.Word, " ##", ""))
			if word == "" {
				continue
			}
			switch entityLabel(e.Entity) {
			case "PER":
				entities.People = append(entities.People, word)
			case "LOC":
				entities.Places = append(entities.Places, word)
			case "ORG", "MISC":
				entities.Symbols = append(entities.Symbols, word)
			}
		}
	}
	return entities
}

// entityLabel drops a BIO prefix if aggregation left one on.
func entityLabel(label string) string {
	label = strings.ToUpper(label)
	if len(label) > 2 && (label[:2] == "B-" || label[:2] == "I-") {
		return label[2:]
	}
	return label
}

func (x *HugotExtractor) Close() {
	if x.session == nil {
		return
	}
	if err := x.session.Destroy(); err != nil {
		slog.Warn("[HugotExtractor] Failed to destroy session",
			slog.String("error", err.Error()))
	}
}
