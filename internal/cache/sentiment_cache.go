package cache

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spacesedan/sentiflow-kv/internal/db"
	"github.com/spacesedan/sentiflow-kv/internal/metrics"
	"github.com/spacesedan/sentiflow-kv/internal/sentiment"
)

// SentimentCache memoizes classifications by exact sentence. Read failures of
// any kind are reported as misses.
type SentimentCache struct {
	store db.Store
}

func NewSentimentCache(store db.Store) *SentimentCache {
	return &SentimentCache{store: store}
}

// Lookup returns the raw cached value for key.
func (c *SentimentCache) Lookup(ctx context.Context, key string) ([]byte, bool) {
	value, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		return value, true
	case errors.Is(err, db.ErrNotFound):
		metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()
	default:
		metrics.CacheLookupsTotal.WithLabelValues("error").Inc()
		slog.Warn("[SentimentCache] Lookup failed, treating as miss",
			slog.String("error", err.Error()))
	}
	return nil, false
}

// LookupSentiment is Lookup decoded into a label. Values that are not a
// canonical label count as a miss so the sentence gets reclassified.
func (c *SentimentCache) LookupSentiment(ctx context.Context, key string) (sentiment.Sentiment, bool) {
	value, ok := c.Lookup(ctx, key)
	if !ok {
		return 0, false
	}

	s, ok := sentiment.TryParse(string(value))
	if !ok {
		metrics.CacheLookupsTotal.WithLabelValues("corrupt").Inc()
		slog.Warn("[SentimentCache] Ignoring non-canonical cached value",
			slog.String("value", string(value)))
		return 0, false
	}

	metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
	return s, true
}

func (c *SentimentCache) Store(ctx context.Context, key string, value []byte) error {
	return c.store.Set(ctx, key, value)
}
