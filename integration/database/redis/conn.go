package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Connect creates a Redis client and verifies connectivity with a ping.
// Connection attempts retry with a linear backoff bounded by
// Config.ConnectTimeout.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.ConnectionURL == "" {
		return nil, ErrEmptyConnectionURL
	}

	opts, err := redis.ParseURL(cfg.ConnectionURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToParseRedisConnString, err)
	}

	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	client := redis.NewClient(opts)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		if attempt < attempts {
			select {
			case <-ctx.Done():
				_ = client.Close()
				return nil, fmt.Errorf("%w: %v", ErrRedisNotReady, ctx.Err())
			case <-time.After(cfg.RetryInterval * time.Duration(attempt)):
			}
		}
	}

	_ = client.Close()
	return nil, fmt.Errorf("%w: %v", ErrRedisNotReady, lastErr)
}

// Healthcheck returns a function suitable for readiness probes.
func Healthcheck(client *redis.Client) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrHealthcheckFailed, err)
		}
		return nil
	}
}
