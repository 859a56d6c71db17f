package kafka_client

import (
	"github.com/confluentinc/confluent-kafka-go/kafka"
	"github.com/spacesedan/dreamflow/config"
)

func consumerConfigMap(cfg config.KafkaConfig) *kafka.ConfigMap {
	return &kafka.ConfigMap{
		"bootstrap.servers":  cfg.BootstrapServers,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": false,
		"isolation.level":    "read_committed",
	}
}

func producerConfigMap(cfg config.KafkaConfig) *kafka.ConfigMap {
	cm := &kafka.ConfigMap{
		"bootstrap.servers":                     cfg.BootstrapServers,
		"security.protocol":                     "PLAINTEXT",
		"api.version.request":                   "true",
		"enable.idempotence":                    true,
		"acks":                                  "all",
		"max.in.flight.requests.per.connection": 1,
	}
	if cfg.TransactionalID != "" {
		_ = cm.SetKey("transactional.id", cfg.TransactionalID)
	}
	return cm
}
