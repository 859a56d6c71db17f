package kafka_client

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/dreamflow/config"
)

type ConsumerFunc func(ctx context.Context, consumer *kafka.Consumer) error

// ConsumerFactory maps a topic to the handler that drains it.
type ConsumerFactory struct {
	cfg      config.KafkaConfig
	registry map[string]ConsumerFunc
}

func NewConsumerFactory(cfg config.KafkaConfig) *ConsumerFactory {
	return &ConsumerFactory{
		cfg:      cfg,
		registry: make(map[string]ConsumerFunc),
	}
}

func (f *ConsumerFactory) Register(topic string, fn ConsumerFunc) {
	f.registry[topic] = fn
}

// Start subscribes to topic and blocks in its handler until ctx is done or
// the handler fails.
func (f *ConsumerFactory) Start(ctx context.Context, topic string) error {
	consumerFunc, exists := f.registry[topic]
	if !exists {
		return fmt.Errorf("[ConsumerFactory] No consumer found for topic: %s", topic)
	}

	consumer, err := NewConsumer(f.cfg, topic)
	if err != nil {
		return fmt.Errorf("[ConsumerFactory] Failed to initialize Kafka consumer: %w", err)
	}
	defer consumer.Close()

	slog.Info("[ConsumerFactory] Starting consumer for topic...", slog.String("topic", topic))
	return consumerFunc(ctx, consumer)
}
