package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool and pings until the database answers or timeout elapses.
// A zero timeout tries once.
func Connect(ctx context.Context, connString string, timeout time.Duration) (*pgxpool.Pool, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	ping := func() (struct{}, error) {
		if err := pool.Ping(ctx); err != nil {
			slog.WarnContext(ctx, "database not ready", "error", err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	}

	if timeout <= 0 {
		_, err = ping()
	} else {
		bo := backoff.NewExponentialBackOff()
		bo.MaxInterval = 5 * time.Second
		_, err = backoff.Retry(ctx, ping, backoff.WithBackOff(bo), backoff.WithMaxElapsedTime(timeout))
	}
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
