package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"sort"

	"github.com/jackc/pgx/v5/pgxpool"

	portlocker "github.com/alanyang/product-catalog/internal/port/locker"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// migrationLockKey identifies the advisory lock held while migrating.
const migrationLockKey int64 = 0x70726f64756374

// Migrate applies every embedded migration not yet recorded in
// schema_migrations, in file-name order. Each file runs in its own transaction.
func Migrate(ctx context.Context, pool *pgxpool.Pool, locker portlocker.AdvisoryLocker) error {
	return locker.WithLock(ctx, migrationLockKey, func(ctx context.Context) error {
		if _, err := pool.Exec(ctx, `
			CREATE TABLE IF NOT EXISTS schema_migrations (
				version    TEXT PRIMARY KEY,
				applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`); err != nil {
			return fmt.Errorf("creating schema_migrations: %w", err)
		}

		names, err := fs.Glob(migrationFS, "migrations/*.sql")
		if err != nil {
			return fmt.Errorf("listing migrations: %w", err)
		}
		sort.Strings(names)

		for _, name := range names {
			if err := applyMigration(ctx, pool, name); err != nil {
				return err
			}
		}
		return nil
	})
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, name string) error {
	var applied bool
	if err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)`, name,
	).Scan(&applied); err != nil {
		return fmt.Errorf("checking migration %s: %w", name, err)
	}
	if applied {
		return nil
	}

	body, err := migrationFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("reading migration %s: %w", name, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning migration %s: %w", name, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, string(body)); err != nil {
		return fmt.Errorf("applying migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("recording migration %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing migration %s: %w", name, err)
	}

	slog.InfoContext(ctx, "migration applied", "version", name)
	return nil
}
