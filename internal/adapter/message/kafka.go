package message

import (
	"fmt"
	"strings"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
)

// KafkaConfig はブローカー接続の設定です。
type KafkaConfig struct {
	Brokers []string
	GroupID string
}

// NewKafkaClients はカタログイベント用のコンシューマと DLQ 用のプロデューサを生成します。
func NewKafkaClients(cfg KafkaConfig) (*kafka.Consumer, *kafka.Producer, error) {
	servers := strings.Join(cfg.Brokers, ",")

	consumer, err := kafka.NewConsumer(&kafka.ConfigMap{
		"bootstrap.servers":  servers,
		"group.id":           cfg.GroupID,
		"auto.offset.reset":  "earliest",
		"enable.auto.commit": true,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kafka consumer: %w", err)
	}

	producer, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers": servers,
		"acks":              "all",
	})
	if err != nil {
		_ = consumer.Close()
		return nil, nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}

	return consumer, producer, nil
}
