package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	portidempotency "github.com/alanyang/product-catalog/internal/port/idempotency"
)

var _ portidempotency.Store = (*Repository)(nil)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lookup returns the stored response for key if it has not expired.
func (r *Repository) Lookup(ctx context.Context, key string) ([]byte, bool, error) {
	query := `SELECT result_jsonb FROM processed_operations WHERE idempotency_key = $1 AND expires_at > NOW()`

	var result []byte
	err := r.pool.QueryRow(ctx, query, key).Scan(&result)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("checking idempotency key: %w", err)
	}
	return result, true, nil
}

// Save records the response for key. A live entry wins; an expired one is replaced.
func (r *Repository) Save(ctx context.Context, key string, response []byte, ttl time.Duration) error {
	query := `
		INSERT INTO processed_operations (idempotency_key, result_jsonb, created_at, expires_at)
		VALUES ($1, $2, NOW(), NOW() + make_interval(secs => $3))
		ON CONFLICT (idempotency_key) DO UPDATE
			SET result_jsonb = EXCLUDED.result_jsonb,
			    created_at   = EXCLUDED.created_at,
			    expires_at   = EXCLUDED.expires_at
			WHERE processed_operations.expires_at <= NOW()`

	_, err := r.pool.Exec(ctx, query, key, response, ttl.Seconds())
	if err != nil {
		return fmt.Errorf("storing idempotency key: %w", err)
	}
	return nil
}

// Purge deletes expired keys and reports how many were removed.
func (r *Repository) Purge(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM processed_operations WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("purging idempotency keys: %w", err)
	}
	return tag.RowsAffected(), nil
}
