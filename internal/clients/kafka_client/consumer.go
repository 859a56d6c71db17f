package kafka_client

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/dreamflow/config"
)

// NewConsumer creates a manually committed, read_committed consumer
// subscribed to topics.
func NewConsumer(cfg config.KafkaConfig, topics ...string) (*kafka.Consumer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Consumer...",
		slog.String("broker", cfg.BootstrapServers),
		slog.String("group_id", cfg.GroupID),
		slog.String("topics", strings.Join(topics, ", ")))

	c, err := kafka.NewConsumer(consumerConfigMap(cfg))
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create consumer: %w", err)
	}

	if err := c.SubscribeTopics(topics, nil); err != nil {
		c.Close()
		return nil, fmt.Errorf("[KafkaClient] Failed to subscribe to topics: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Consumer initialized successfully")
	return c, nil
}
