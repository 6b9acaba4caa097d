package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates a PostgreSQL connection pool and verifies connectivity.
// Connection attempts retry with a linear backoff so service restarts do not
// stampede a recovering database.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	if cfg.ConnectionString == "" {
		return nil, ErrEmptyConnectionString
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToParseConfig, err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}
	if cfg.HealthCheckPeriod > 0 {
		poolConfig.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}

	attempts := cfg.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var pool *pgxpool.Pool
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		pool, lastErr = pgxpool.NewWithConfig(ctx, poolConfig)
		if lastErr == nil {
			if lastErr = pool.Ping(ctx); lastErr == nil {
				return pool, nil
			}
			pool.Close()
		}

		if attempt < attempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrNotReady, ctx.Err())
			case <-time.After(cfg.RetryInterval * time.Duration(attempt)):
			}
		}
	}

	return nil, fmt.Errorf("%w: %v", ErrNotReady, lastErr)
}

// Healthcheck returns a function suitable for readiness probes. The returned
// function reports ErrHealthcheckFailed when the pool cannot reach the
// database.
func Healthcheck(pool *pgxpool.Pool) func(context.Context) error {
	return func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return fmt.Errorf("%w: %v", ErrHealthcheckFailed, err)
		}
		return nil
	}
}
