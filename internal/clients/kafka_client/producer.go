package kafka_client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/confluentinc/confluent-kafka-go/kafka"
)

// Record is one message to publish. Value is encoded as JSON.
type Record struct {
	Key   string
	Value any
}

type Producer struct {
	p *kafka.Producer
}

func NewProducer(cfg KafkaConfig) (*Producer, error) {
	slog.Info("[KafkaClient] Initializing Kafka Producer...", slog.String("broker", cfg.Broker))

	p, err := kafka.NewProducer(cfg.producerConfig())
	if err != nil {
		return nil, fmt.Errorf("[KafkaClient] Failed to create producer: %w", err)
	}

	slog.Info("[KafkaClient] Kafka Producer initialized successfully")
	return &Producer{p: p}, nil
}

// PublishBatch produces every record to topic and waits until each one is
// acknowledged by the broker or the context ends.
func (p *Producer) PublishBatch(ctx context.Context, topic string, records []Record) error {
	if len(records) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, DELIVERY_WAIT)
	defer cancel()

	deliveries := make(chan kafka.Event, len(records))
	for _, rec := range records {
		data, err := json.Marshal(rec.Value)
		if err != nil {
			return fmt.Errorf("[KafkaClient] failed to marshal record %q: %w", rec.Key, err)
		}

		msg := &kafka.Message{
			TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
			Key:            []byte(rec.Key),
			Value:          data,
		}
		if err := p.produce(msg, deliveries); err != nil {
			return err
		}
	}

	var errs []error
	for range records {
		select {
		case <-ctx.Done():
			return fmt.Errorf("[KafkaClient] waiting for delivery: %w", ctx.Err())
		case ev := <-deliveries:
			m, ok := ev.(*kafka.Message)
			if ok && m.TopicPartition.Error != nil {
				errs = append(errs, m.TopicPartition.Error)
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("[KafkaClient] %d of %d records not delivered: %w", len(errs), len(records), errors.Join(errs...))
	}

	slog.Debug("[KafkaClient] Published batch",
		slog.String("topic", topic),
		slog.Int("count", len(records)))
	return nil
}

func (p *Producer) produce(msg *kafka.Message, deliveries chan kafka.Event) error {
	var err error
	for i := 0; i < MAX_RETRIES; i++ {
		err = p.p.Produce(msg, deliveries)
		if err == nil {
			return nil
		}
		slog.Warn("[KafkaClient] Failed to produce message, retrying...",
			slog.Int("attempt", i+1),
			slog.String("error", err.Error()))
		p.p.Flush(100)
	}
	return fmt.Errorf("[KafkaClient] failed to produce message: %w", err)
}

func (p *Producer) Close() {
	slog.Info("[KafkaClient] Flushing Kafka producer before shutdown...")
	if remaining := p.p.Flush(FLUSH_TIMEOUT_MS); remaining > 0 {
		slog.Warn("[KafkaClient] Not all messages were delivered before shutdown",
			slog.Int("remaining", remaining))
	}
	p.p.Close()
	slog.Info("[KafkaClient] Kafka producer shut down")
}
