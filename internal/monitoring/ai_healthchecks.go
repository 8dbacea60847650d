package monitoring

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/spacesedan/sentiflow-kv/internal/metrics"
)

const HEALTHCHECK_TIMER = 15 * time.Second

const probeTimeout = 5 * time.Second

// HealthChecker is implemented by model backends that can be probed.
type HealthChecker interface {
	HealthCheck(ctx context.Context) bool
}

// MonitorModelHealth probes checker immediately and then on every interval
// until ctx is cancelled, storing each result in healthy.
func MonitorModelHealth(ctx context.Context, checker HealthChecker, interval time.Duration, healthy *atomic.Bool) {
	if interval <= 0 {
		interval = HEALTHCHECK_TIMER
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	probe(ctx, checker, healthy)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			probe(ctx, checker, healthy)
		}
	}
}

func probe(ctx context.Context, checker HealthChecker, healthy *atomic.Bool) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	isHealthy := checker.HealthCheck(probeCtx)
	wasHealthy := healthy.Swap(isHealthy)
	if isHealthy {
		metrics.ModelHealthy.Set(1)
		if !wasHealthy {
			slog.Info("[HealthCheck] Model is healthy")
		}
		return
	}
	metrics.ModelHealthy.Set(0)
	slog.Warn("[HealthCheck] Model is unhealthy")
}
