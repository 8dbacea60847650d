package utils

import (
	"context"
	"log/slog"
)

// BestEffort runs fn and swallows its error after logging it. It reports
// whether fn succeeded so callers can count failures, but the outcome must
// never change the result the caller returns.
func BestEffort(ctx context.Context, name string, fn func(context.Context) error) bool {
	if err := fn(ctx); err != nil {
		slog.Warn("[BestEffort] Operation failed, continuing",
			slog.String("operation", name),
			slog.String("error", err.Error()))
		return false
	}
	return true
}
