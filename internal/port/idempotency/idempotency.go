package idempotency

import (
	"context"
	"time"
)

// Store remembers the response produced for an idempotency key so a retried
// request can be answered without re-running the mutation.
type Store interface {
	// Lookup returns the stored response and whether the key is known.
	Lookup(ctx context.Context, key string) ([]byte, bool, error)
	// Save records the response for key. An existing entry is kept.
	Save(ctx context.Context, key string, response []byte, ttl time.Duration) error
}
