package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/google/uuid"
	"github.com/spacesedan/dreamflow/internal/clients/kafka_client"
	"github.com/spacesedan/dreamflow/internal/journal"
	"github.com/spacesedan/dreamflow/internal/models"
)

const (
	ingestAttempts = 3
	ingestBackoff  = 500 * time.Millisecond
)

type EntryIngester interface {
	IngestEntry(ctx context.Context, msg models.EntryMessage) (models.AnalyzedEntry, error)
}

type MessageSource interface {
	Next() (*kafka.Message, error)
}

type Committer interface {
	Commit(msg *kafka.Message) error
}

// EntryConsumer analyzes and stores entries from the dream-entries topic. An
// offset is committed only after its entry is written, or once the message
// is known to be unprocessable.
type EntryConsumer struct {
	ingester EntryIngester
	backoff  time.Duration
}

func NewEntryConsumer(ingester EntryIngester) *EntryConsumer {
	return &EntryConsumer{ingester: ingester, backoff: ingestBackoff}
}

// Handler plugs the consumer into a kafka_client.ConsumerFactory.
func (c *EntryConsumer) Handler() kafka_client.ConsumerFunc {
	return func(ctx context.Context, consumer *kafka.Consumer) error {
		return c.Run(ctx,
			kafka_client.NewKafkaMessageIterator(ctx, consumer),
			kafka_client.NewCommitHandler(ctx, consumer))
	}
}

// Run returns nil when ctx is cancelled and an error when the source fails
// or an entry cannot be stored after retries. The failed message stays
// uncommitted so it is redelivered.
func (c *EntryConsumer) Run(ctx context.Context, source MessageSource, committer Committer) error {
	slog.Info("[EntryConsumer] Listening for entries...")

	for {
		msg, err := source.Next()
		if err != nil {
			if ctx.Err() != nil {
				slog.Warn("[EntryConsumer] Stopping consumer...")
				return nil
			}
			return fmt.Errorf("[EntryConsumer] read message: %w", err)
		}

		if err := c.handle(ctx, msg); err != nil {
			if ctx.Err() != nil {
				slog.Warn("[EntryConsumer] Stopping consumer...")
				return nil
			}
			return err
		}

		if err := committer.Commit(msg); err != nil {
			slog.Warn("[EntryConsumer] Failed to commit offset",
				slog.String("error", err.Error()))
		}
	}
}

// handle returns an error only when the message should be redelivered.
func (c *EntryConsumer) handle(ctx context.Context, msg *kafka.Message) error {
	var payload models.EntryMessage
	if err := json.Unmarshal(msg.Value, &payload); err != nil {
		slog.Warn("[EntryConsumer] Failed to deserialize message, skipping...",
			slog.String("offset", msg.TopicPartition.Offset.String()),
			slog.String("error", err.Error()))
		return nil
	}
	if payload.ID == "" && len(msg.Key) > 0 {
		if _, err := uuid.ParseBytes(msg.Key); err == nil {
			payload.ID = string(msg.Key)
		}
	}

	backoff := c.backoff
	var err error
	for attempt := 1; attempt <= ingestAttempts; attempt++ {
		var entry models.AnalyzedEntry
		entry, err = c.ingester.IngestEntry(ctx, payload)
		if err == nil {
			slog.Debug("[EntryConsumer] Entry stored",
				slog.String("entry_id", entry.Entry.ID))
			return nil
		}
		if errors.Is(err, journal.ErrValidation) {
			slog.Warn("[EntryConsumer] Rejected invalid entry, skipping...",
				slog.String("entry_id", payload.ID),
				slog.String("error", err.Error()))
			return nil
		}

		slog.Warn("[EntryConsumer] Failed to store entry, retrying...",
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()))

		if attempt < ingestAttempts {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}
	return fmt.Errorf("[EntryConsumer] store entry after %d attempts: %w", ingestAttempts, err)
}
