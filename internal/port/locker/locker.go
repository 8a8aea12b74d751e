package locker

import "context"

// AdvisoryLocker runs fn while holding a cluster-wide lock identified by key.
// The migrator uses it so concurrently starting replicas apply the schema once.
type AdvisoryLocker interface {
	WithLock(ctx context.Context, key int64, fn func(ctx context.Context) error) error
}
