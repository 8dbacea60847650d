package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request metrics
var (
	// RequestsTotal counts sentiment analysis requests by outcome
	// (ok, unrecognized, decode_error, inference_error, internal_error).
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_requests_total",
			Help: "Total sentiment analysis requests by outcome",
		},
		[]string{"outcome"},
	)
)

// Cache metrics
var (
	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_cache_lookups_total",
			Help: "Sentiment cache lookups by result (hit, miss, error, corrupt)",
		},
		[]string{"result"},
	)

	CacheWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentiment_cache_write_failures_total",
			Help: "Cache writes that failed and were skipped",
		},
	)
)

// Model metrics
var (
	InferenceDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentiment_inference_duration_seconds",
			Help:    "Model invocation latency in seconds",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)

	InferenceFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_inference_failures_total",
			Help: "Model invocations that failed",
		},
		[]string{"provider"},
	)

	// ModelHealthy is 1 when the last model health probe succeeded.
	ModelHealthy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentiment_model_healthy",
			Help: "Result of the last model health probe (1=healthy)",
		},
	)
)

// Results feed metrics
var (
	ResultsPublished = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentiment_results_published_total",
			Help: "Classification results published to the results topic",
		},
	)

	ResultsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sentiment_results_dropped_total",
			Help: "Classification results dropped after a failed publish",
		},
	)
)
