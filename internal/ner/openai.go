package ner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/spacesedan/dreamflow/internal/clients"
	"github.com/spacesedan/dreamflow/internal/models"
)

const (
	openAIRetryAttempts = 3
	openAIRetryDelay    = 2 * time.Second
)

const entityPrompt = `You extract entities from dream journal entries.
Return only a JSON object with three arrays of strings:
{"people": [...], "places": [...], "symbols": [...]}
people are named or described persons, places are locations or settings,
symbols are notable objects, animals or images. Use the wording from the entry.
Return empty arrays when nothing fits.`

// OpenAIExtractor asks a chat model for the entity lists.
type OpenAIExtractor struct {
	client     *openai.Client
	model      string
	retryDelay time.Duration
}

func NewOpenAIExtractor(client *clients.OpenAIClient, model string) *OpenAIExtractor {
	return &OpenAIExtractor{
		client:     client.Client,
		model:      model,
		retryDelay: openAIRetryDelay,
	}
}

func (x *OpenAIExtractor) Extract(ctx context.Context, text string) (models.Entities, error) {
	var lastErr error
	for attempt := 1; attempt <= openAIRetryAttempts; attempt++ {
		start := time.Now()
		entities, err := x.complete(ctx, text)
		if err == nil {
			slog.Debug("[OpenAIExtractor] Entities extracted",
				slog.Duration("elapsed", time.Since(start)))
			return entities, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}

		slog.Warn("[OpenAIExtractor] Extraction failed, retrying...",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))

		if attempt < openAIRetryAttempts {
			select {
			case <-ctx.Done():
				return models.Entities{}, ctx.Err()
			case <-time.After(x.retryDelay):
			}
		}
	}
	return models.Entities{}, fmt.Errorf("[OpenAIExtractor] failed after %d attempts: %w", openAIRetryAttempts, lastErr)
}

func (x *OpenAIExtractor) complete(ctx context.Context, text string) (models.Entities, error) {
	completion, err := x.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(entityPrompt),
			openai.UserMessage(text),
		}),
		Model:       openai.F(openai.ChatModel(x.model)),
		Temperature: openai.Float(0),
	})
	if err != nil {
		return models.Entities{}, err
	}
	if len(completion.Choices) == 0 {
		return models.Entities{}, errors.New("empty completion")
	}

	slog.Debug("[OpenAIExtractor] Finish reason",
		slog.String("finish_reason", string(completion.Choices[0].FinishReason)))

	var resp models.EntityResponse
	raw := cleanOpenAIResponse(completion.Choices[0].Message.Content)
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return models.Entities{}, fmt.Errorf("parse completion: %w", err)
	}
	return resp.Entities(), nil
}

// cleanOpenAIResponse strips code fences and curly quotes the model sometimes
// wraps its JSON in.
func cleanOpenAIResponse(response string) string {
	response = strings.TrimSpace(response)
	response = strings.TrimPrefix(response, "```json")
	response = strings.TrimPrefix(response, "```")
	response = strings.TrimSuffix(response, "```")

	response = strings.ReplaceAll(response, "“", `"`)
	response = strings.ReplaceAll(response, "”", `"`)

	return strings.TrimSpace(response)
}
