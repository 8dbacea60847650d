package clients

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/valkey-io/valkey-go"
)

const valkeyPingTimeout = 3 * time.Second

type ValkeyOptions struct {
	Address  string
	Password string
	TLS      bool
}

// NewValkeyClient connects to a Valkey server and waits for it to answer a
// PING, retrying with exponential backoff.
func NewValkeyClient(ctx context.Context, opts ValkeyOptions) (valkey.Client, error) {
	clientOpts := valkey.ClientOption{
		InitAddress:      []string{opts.Address},
		Password:         opts.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if opts.TLS {
		clientOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = INITIAL_BACKOFF
	eb.MaxInterval = MAX_BACKOFF
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, MAX_RETRIES-1), ctx)

	attempt := 0
	client, err := backoff.RetryWithData(func() (valkey.Client, error) {
		attempt++
		c, err := valkey.NewClient(clientOpts)
		if err != nil {
			slog.Warn("[ValkeyClient] Failed to connect, will retry",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return nil, err
		}

		pingCtx, cancel := context.WithTimeout(ctx, valkeyPingTimeout)
		defer cancel()
		if err := c.Do(pingCtx, c.B().Ping().Build()).Error(); err != nil {
			c.Close()
			slog.Warn("[ValkeyClient] Ping failed, will retry",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			return nil, err
		}
		return c, nil
	}, policy)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to connect to %s: %w", opts.Address, err)
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", opts.Address))
	return client, nil
}
