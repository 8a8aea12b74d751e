//go:build integration

package idempotency_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pgidempotency "github.com/alanyang/product-catalog/internal/adapter/postgres/idempotency"
	"github.com/alanyang/product-catalog/internal/testutil"
)

func TestIdempotency_SaveLookup(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgidempotency.New(pool)
	key := "key-" + uuid.New().String()

	_, found, err := repo.Lookup(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Save(ctx, key, []byte(`{"status":201}`), time.Minute))
	require.NoError(t, repo.Save(ctx, key, []byte(`{"status":500}`), time.Minute))

	got, found, err := repo.Lookup(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"status":201}`, string(got))
}

func TestIdempotency_ExpiredIsReplaced(t *testing.T) {
	pool := testutil.SetupTestDB(t)
	ctx := context.Background()
	repo := pgidempotency.New(pool)
	key := "key-" + uuid.New().String()

	require.NoError(t, repo.Save(ctx, key, []byte(`{"v":1}`), -time.Second))
	_, found, err := repo.Lookup(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, repo.Save(ctx, key, []byte(`{"v":2}`), time.Minute))
	got, found, err := repo.Lookup(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"v":2}`, string(got))

	_, err = repo.Purge(ctx)
	require.NoError(t, err)
}
