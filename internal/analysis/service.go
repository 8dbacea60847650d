package analysis

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/spacesedan/sentiflow-kv/internal/metrics"
	"github.com/spacesedan/sentiflow-kv/internal/models"
	"github.com/spacesedan/sentiflow-kv/internal/sentiment"
	"github.com/spacesedan/sentiflow-kv/internal/utils"
)

type Classifier interface {
	Classify(ctx context.Context, sentence string) (sentiment.Sentiment, error)
}

type Cache interface {
	LookupSentiment(ctx context.Context, key string) (sentiment.Sentiment, bool)
	Store(ctx context.Context, key string, value []byte) error
}

// ResultSink receives every fresh classification. Publish must not block.
type ResultSink interface {
	Publish(result models.SentimentAnalysisResult)
}

type Result struct {
	Sentiment  sentiment.Sentiment
	Recognized bool
	Cached     bool
}

func (r Result) Response() models.SentimentAnalysisResponse {
	if !r.Recognized {
		return models.SentimentAnalysisResponse{Sentiment: ""}
	}
	return models.SentimentAnalysisResponse{Sentiment: r.Sentiment.String()}
}

type Service struct {
	cache      Cache
	classifier Classifier
	sink       ResultSink
	provider   string
}

type Option func(*Service)

func WithResultSink(sink ResultSink) Option {
	return func(s *Service) { s.sink = sink }
}

// WithProvider names the model backend in metrics and published results.
func WithProvider(name string) Option {
	return func(s *Service) { s.provider = name }
}

func NewService(cache Cache, classifier Classifier, opts ...Option) *Service {
	s := &Service{
		cache:      cache,
		classifier: classifier,
		provider:   "unknown",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze classifies an already normalized sentence, consulting the cache first.
// Only inference failures are returned as errors; unrecognized model output
// yields a Result with Recognized == false and leaves the cache untouched.
func (s *Service) Analyze(ctx context.Context, sentence string) (Result, error) {
	slog.Debug("[Analysis] Performing sentiment analysis", slog.String("sentence", sentence))

	if cached, ok := s.cache.LookupSentiment(ctx, sentence); ok {
		slog.Info("[Analysis] Found sentence in cache, returning cached sentiment",
			slog.String("sentiment", cached.String()))
		return Result{Sentiment: cached, Recognized: true, Cached: true}, nil
	}

	start := time.Now()
	sent, err := s.classifier.Classify(ctx, sentence)
	metrics.InferenceDuration.WithLabelValues(s.provider).Observe(time.Since(start).Seconds())

	switch {
	case errors.Is(err, sentiment.ErrUnrecognizedLabel):
		slog.Warn("[Analysis] Model output was not a known label",
			slog.String("error", err.Error()))
		return Result{}, nil
	case err != nil:
		metrics.InferenceFailures.WithLabelValues(s.provider).Inc()
		return Result{}, err
	}

	slog.Info("[Analysis] Caching sentiment", slog.String("sentiment", sent.String()))
	stored := utils.BestEffort(ctx, "cache_store", func(ctx context.Context) error {
		return s.cache.Store(ctx, sentence, sent.Bytes())
	})
	if !stored {
		metrics.CacheWriteFailures.Inc()
	}

	if s.sink != nil {
		s.sink.Publish(models.SentimentAnalysisResult{
			Sentence:       sentence,
			SentimentLabel: sent.String(),
			Provider:       s.provider,
			AnalyzedAt:     time.Now().UTC(),
		})
	}

	return Result{Sentiment: sent, Recognized: true}, nil
}

// Handle runs the whole request: decode, analyze, encode.
func (s *Service) Handle(ctx context.Context, body []byte) ([]byte, error) {
	req, err := DecodeRequest(body)
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("decode_error").Inc()
		return nil, err
	}

	result, err := s.Analyze(ctx, req.Sentence)
	if err != nil {
		outcome := "internal_error"
		if errors.Is(err, sentiment.ErrInference) {
			outcome = "inference_error"
		}
		metrics.RequestsTotal.WithLabelValues(outcome).Inc()
		return nil, err
	}

	out, err := EncodeResponse(result.Response())
	if err != nil {
		metrics.RequestsTotal.WithLabelValues("internal_error").Inc()
		return nil, err
	}

	if result.Recognized {
		metrics.RequestsTotal.WithLabelValues("ok").Inc()
	} else {
		metrics.RequestsTotal.WithLabelValues("unrecognized").Inc()
	}
	return out, nil
}
