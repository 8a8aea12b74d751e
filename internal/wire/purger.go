package wire

import (
	"context"
	"log/slog"
	"time"
)

// purger is satisfied by both idempotency stores.
type purger interface {
	Purge(ctx context.Context) (int64, error)
}

// startPurger sweeps expired idempotency records every interval until ctx is
// cancelled. Lookups already ignore expired rows; the sweep only bounds storage.
func startPurger(ctx context.Context, p purger, interval time.Duration) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				purgeOnce(ctx, p)
			}
		}
	}()
}

func purgeOnce(ctx context.Context, p purger) {
	n, err := p.Purge(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "purger: purge failed", "error", err)
		return
	}
	if n > 0 {
		slog.InfoContext(ctx, "purger: expired idempotency records removed", "count", n)
	}
}
