package producer

import (
	"context"
	"log/slog"
	"time"

	"github.com/spacesedan/sentiflow-kv/internal/clients/kafka_client"
	"github.com/spacesedan/sentiflow-kv/internal/metrics"
	"github.com/spacesedan/sentiflow-kv/internal/models"
	"github.com/spacesedan/sentiflow-kv/internal/utils"
)

const DEFAULT_FLUSH_INTERVAL = 5 * time.Second

// BatchPublisher is satisfied by *kafka_client.Producer.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, topic string, records []kafka_client.Record) error
}

// ResultPublisher collects classification results and ships them to a topic
// in batches. Publish never blocks the caller; failed batches are dropped.
type ResultPublisher struct {
	publisher     BatchPublisher
	topic         string
	buffer        *utils.BatchBuffer[models.SentimentAnalysisResult]
	flushInterval time.Duration
	flushCh       chan struct{}
}

type Option func(*ResultPublisher)

func WithBatchSize(n int) Option {
	return func(r *ResultPublisher) {
		r.buffer = utils.NewBatchBuffer[models.SentimentAnalysisResult](n)
	}
}

func WithFlushInterval(d time.Duration) Option {
	return func(r *ResultPublisher) { r.flushInterval = d }
}

func NewResultPublisher(publisher BatchPublisher, topic string, opts ...Option) *ResultPublisher {
	if topic == "" {
		topic = kafka_client.KAFKA_TOPIC_SENTIMENT_RESULTS
	}
	r := &ResultPublisher{
		publisher:     publisher,
		topic:         topic,
		buffer:        utils.NewBatchBuffer[models.SentimentAnalysisResult](utils.DefaultBatchSize),
		flushInterval: DEFAULT_FLUSH_INTERVAL,
		flushCh:       make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *ResultPublisher) Publish(result models.SentimentAnalysisResult) {
	if !r.buffer.Add(result) {
		return
	}
	select {
	case r.flushCh <- struct{}{}:
	default:
	}
}

// Run flushes the buffer whenever it fills up or the flush interval passes.
// It performs one last flush after ctx is cancelled.
func (r *ResultPublisher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.flushInterval)
	defer ticker.Stop()

	slog.Info("[ResultPublisher] Started",
		slog.String("topic", r.topic),
		slog.Duration("flush_interval", r.flushInterval))

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), kafka_client.DELIVERY_WAIT)
			r.Flush(shutdownCtx)
			cancel()
			slog.Info("[ResultPublisher] Stopped")
			return
		case <-r.flushCh:
			r.Flush(ctx)
		case <-ticker.C:
			r.Flush(ctx)
		}
	}
}

// Flush publishes whatever is buffered right now.
func (r *ResultPublisher) Flush(ctx context.Context) {
	batch := r.buffer.GetAndClear()
	if len(batch) == 0 {
		return
	}

	records := make([]kafka_client.Record, 0, len(batch))
	for _, result := range batch {
		records = append(records, kafka_client.Record{Key: result.Sentence, Value: result})
	}

	ok := utils.BestEffort(ctx, "publish_results", func(ctx context.Context) error {
		return r.publisher.PublishBatch(ctx, r.topic, records)
	})
	if !ok {
		metrics.ResultsDropped.Add(float64(len(records)))
		return
	}

	metrics.ResultsPublished.Add(float64(len(records)))
	slog.Debug("[ResultPublisher] Flushed results", slog.Int("count", len(records)))
}
