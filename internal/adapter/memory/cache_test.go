package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_LookupIgnoresExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Save(ctx, "k", []byte("v"), time.Minute))
	got, ok, err := c.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	now = now.Add(2 * time.Minute)
	_, ok, err = c.Lookup(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_SaveKeepsFirstResponse(t *testing.T) {
	ctx := context.Background()
	c := NewCache()

	require.NoError(t, c.Save(ctx, "key", []byte("first"), time.Hour))
	require.NoError(t, c.Save(ctx, "key", []byte("second"), time.Hour))

	got, ok, err := c.Lookup(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("first"), got)
}

func TestCache_LookupMissing(t *testing.T) {
	got, ok, err := NewCache().Lookup(context.Background(), "nope")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestCache_SaveReplacesExpiredEntry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Save(ctx, "key", []byte("old"), time.Minute))
	now = now.Add(time.Hour)
	require.NoError(t, c.Save(ctx, "key", []byte("new"), time.Minute))

	got, ok, err := c.Lookup(ctx, "key")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("new"), got)
}

func TestCache_PurgeRemovesOnlyExpired(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Save(ctx, "short", []byte("a"), time.Minute))
	require.NoError(t, c.Save(ctx, "long", []byte("b"), time.Hour))

	now = now.Add(2 * time.Minute)
	n, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, found, err := c.Lookup(ctx, "long")
	require.NoError(t, err)
	assert.True(t, found)
}
