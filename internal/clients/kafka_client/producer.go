package kafka_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/dreamflow/config"
	"github.com/spacesedan/dreamflow/internal/models"
)

// Producer publishes JSON events. With a transactional id every message is
// written in its own transaction; otherwise each publish waits for its
// delivery report.
type Producer struct {
	producer      *kafka.Producer
	transactional bool
	// transactions on one producer cannot overlap
	mu sync.Mutex
}

func NewProducer(ctx context.Context, cfg config.KafkaConfig) (*Producer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...",
		slog.String("broker", cfg.BootstrapServers),
		slog.Bool("transactional", cfg.TransactionalID != ""))

	p, err := kafka.NewProducer(producerConfigMap(cfg))
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	if cfg.TransactionalID != "" {
		if err := p.InitTransactions(ctx); err != nil {
			p.Close()
			return nil, fmt.Errorf("[KafkaClient] Failed to init transactions: %w", err)
		}
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &Producer{producer: p, transactional: cfg.TransactionalID != ""}, nil
}

func (p *Producer) Close() {
	slog.Info("[KafkaClient] Shutting down Kafka producer...")
	if p == nil || p.producer == nil {
		return
	}
	if remaining := p.producer.Flush(FLUSH_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.producer.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}

func (p *Producer) PublishEntryAnalyzed(ctx context.Context, entry models.AnalyzedEntry) error {
	return p.PublishJSON(ctx, KAFKA_TOPIC_ENTRY_ANALYZED, entry.Entry.ID, entry)
}

func (p *Producer) PublishSummaryGenerated(ctx context.Context, summary models.PeriodSummary) error {
	return p.PublishJSON(ctx, KAFKA_TOPIC_SUMMARY_GENERATED, summary.ID, summary)
}

// PublishJSON serializes v and writes it to topic under key.
func (p *Producer) PublishJSON(ctx context.Context, topic, key string, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("[KafkaClient] failed to serialize message: %w", err)
	}

	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Key:            []byte(key),
		Value:          value,
	}

	if p.transactional {
		err = p.publishTransactional(ctx, msg)
	} else {
		err = p.publishAndWait(ctx, msg)
	}
	if err != nil {
		return err
	}

	slog.Debug("[KafkaClient] Published message",
		slog.String("topic", topic),
		slog.String("key", key))
	return nil
}

func (p *Producer) publishTransactional(ctx context.Context, msg *kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.producer.BeginTransaction(); err != nil {
		return fmt.Errorf("[KafkaClient] failed to begin transaction: %w", err)
	}

	var err error
	for i := 0; i < 3; i++ {
		err = p.producer.Produce(msg, nil)
		if err == nil {
			break
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
	}
	if err != nil {
		if abortErr := p.producer.AbortTransaction(ctx); abortErr != nil {
			return fmt.Errorf("[KafkaClient] failed to abort transaction after produce error: %w", abortErr)
		}
		return fmt.Errorf("[KafkaClient] failed to produce message: %w", err)
	}

	var commitErr error
	for i := 0; i < 3; i++ {
		commitErr = p.producer.CommitTransaction(ctx)
		if commitErr == nil {
			break
		}
		var kafkaErr kafka.Error
		if errors.As(commitErr, &kafkaErr) && kafkaErr.TxnRequiresAbort() {
			break
		}
		slog.Warn("[KafkaClient] Failed to commit transaction, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", commitErr.Error()))
	}
	if commitErr != nil {
		if abortErr := p.producer.AbortTransaction(ctx); abortErr != nil {
			slog.Error("[KafkaClient] Failed to abort transaction",
				slog.String("error", abortErr.Error()))
		}
		return fmt.Errorf("[KafkaClient] failed to commit transaction: %w", commitErr)
	}
	return nil
}

func (p *Producer) publishAndWait(ctx context.Context, msg *kafka.Message) error {
	delivery := make(chan kafka.Event, 1)
	if err := p.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("[KafkaClient] failed to produce message: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case ev := <-delivery:
		m, ok := ev.(*kafka.Message)
		if !ok {
			return fmt.Errorf("[KafkaClient] unexpected delivery event: %v", ev)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("[KafkaClient] delivery failed: %w", m.TopicPartition.Error)
		}
		return nil
	}
}
