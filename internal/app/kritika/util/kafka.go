package util

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"kritika/pkg/metrics"
)

// KafkaProducer - обертка над Kafka writer для отправки событий
type KafkaProducer struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaProducer создает producer для указанного топика.
// brokers - список брокеров Kafka в формате ["host:port"].
func NewKafkaProducer(brokers []string, topic string) *KafkaProducer {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(brokers...),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
		// Маленький таймаут батча: письма и события должны уходить быстро
		BatchSize:    100,
		BatchTimeout: 100 * time.Millisecond,
	}

	return &KafkaProducer{writer: writer, topic: topic}
}

// PublishMessage отправляет сообщение в Kafka.
// key используется для партиционирования.
func (p *KafkaProducer) PublishMessage(ctx context.Context, key string, value []byte) error {
	message := kafka.Message{
		Key:   []byte(key),
		Value: value,
		Time:  time.Now(),
	}

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		metrics.RecordKafkaError(serviceName, p.topic, "produce")
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	metrics.RecordKafkaMessageProduced(serviceName, p.topic)
	return nil
}

// Close закрывает Kafka writer и освобождает ресурсы
func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}
