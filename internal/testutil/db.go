//go:build integration

package testutil

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	pgadapter "github.com/alanyang/product-catalog/internal/adapter/postgres"
	"github.com/alanyang/product-catalog/internal/adapter/postgres/locker"
)

var (
	containerOnce sync.Once
	containerURL  string
	containerErr  error
)

// SetupTestDB returns a migrated pool. TEST_DATABASE_URL wins when set;
// otherwise one Postgres container is started per test binary.
// All callers share the same database, so tests must use unique names.
func SetupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()
	ctx := context.Background()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		url = startContainer(t)
	}

	pool, err := pgadapter.Connect(ctx, url, 10*time.Second)
	if err != nil {
		t.Fatalf("connect to test DB: %v", err)
	}
	if err := pgadapter.Migrate(ctx, pool, locker.New(pool)); err != nil {
		pool.Close()
		t.Fatalf("migrate test DB: %v", err)
	}

	t.Cleanup(func() { pool.Close() })
	return pool
}

func startContainer(t *testing.T) string {
	t.Helper()
	containerOnce.Do(func() {
		ctx := context.Background()
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("catalog_test"),
			postgres.WithUsername("catalog"),
			postgres.WithPassword("catalog"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second),
			),
		)
		if err != nil {
			containerErr = err
			return
		}
		containerURL, containerErr = container.ConnectionString(ctx, "sslmode=disable")
	})
	if containerErr != nil {
		t.Skipf("no TEST_DATABASE_URL and postgres container unavailable: %v", containerErr)
	}
	return containerURL
}

// DBIntegrationSuite gives testify suites a migrated pool.
type DBIntegrationSuite struct {
	suite.Suite
	Pool *pgxpool.Pool
}

func (s *DBIntegrationSuite) SetupSuite() {
	s.Pool = SetupTestDB(s.T())
}
