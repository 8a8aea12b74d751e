package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alanyang/product-catalog/internal/adapter/memory"
	"github.com/alanyang/product-catalog/internal/domain/event"
	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
)

func strPtr(s string) *string { return &s }

func newProduct(name string, sku *string) domainproduct.NewProduct {
	return domainproduct.NewProduct{
		Name:     name,
		Price:    domainproduct.MustPrice(10),
		Quantity: domainproduct.MustQuantity(1),
		SKU:      sku,
		IsActive: true,
	}
}

func TestProductRepository_CreateAssignsIdentity(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository(nil)

	p, err := repo.Create(ctx, newProduct("Phone", nil))
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, p.ID)
	assert.False(t, p.CreatedAt.IsZero())
	assert.Equal(t, p.CreatedAt, p.UpdatedAt)

	got, found, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, p, got)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestProductRepository_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository(nil)

	_, err := repo.Create(ctx, newProduct("A", strPtr("X1")))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newProduct("A", nil))
	assert.ErrorIs(t, err, domainproduct.ErrDuplicateName)

	_, err = repo.Create(ctx, newProduct("B", strPtr("X1")))
	assert.ErrorIs(t, err, domainproduct.ErrDuplicateSKU)

	_, err = repo.Create(ctx, newProduct("C", nil))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newProduct("D", nil))
	assert.NoError(t, err, "null SKUs never conflict")
}

func TestProductRepository_NameClashReportedBeforeSKUClash(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository(nil)

	// Enough rows that map iteration order would otherwise vary.
	for i := 0; i < 20; i++ {
		_, err := repo.Create(ctx, newProduct(uuid.NewString(), strPtr(uuid.NewString())))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, newProduct("Taken", nil))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newProduct("Other", strPtr("SKU-1")))
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		_, err = repo.Create(ctx, newProduct("Taken", strPtr("SKU-1")))
		require.ErrorIs(t, err, domainproduct.ErrDuplicateName)
	}
}

func TestProductRepository_ListsNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository(nil)

	first, err := repo.Create(ctx, newProduct("first", nil))
	require.NoError(t, err)
	second, err := repo.Create(ctx, newProduct("second", nil))
	require.NoError(t, err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, second.ID, all[0].ID)
	assert.Equal(t, first.ID, all[1].ID)
}

func TestProductRepository_UpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewProductRepository(nil)

	p, err := repo.Create(ctx, newProduct("A", nil))
	require.NoError(t, err)

	updated, found, err := repo.Update(ctx, p.ID, domainproduct.Patch{IsActive: domainproduct.Some(false)})
	require.NoError(t, err)
	require.True(t, found)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "A", updated.Name)

	active, err := repo.FindActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	_, found, err = repo.Update(ctx, uuid.New(), domainproduct.Patch{})
	require.NoError(t, err)
	assert.False(t, found)

	deleted, err := repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	exists, err := repo.Exists(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestProductRepository_PublishesChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus := memory.NewEventBus()
	repo := memory.NewProductRepository(bus)

	var (
		mu  sync.Mutex
		got []event.Type
	)
	_, err := bus.Subscribe(ctx, event.ChannelProduct, func(_ context.Context, e event.Event) {
		mu.Lock()
		got = append(got, e.Type)
		mu.Unlock()
	})
	require.NoError(t, err)

	p, err := repo.Create(ctx, newProduct("A", nil))
	require.NoError(t, err)
	_, _, err = repo.Update(ctx, p.ID, domainproduct.Patch{Name: domainproduct.Some("B")})
	require.NoError(t, err)
	_, err = repo.Delete(ctx, p.ID)
	require.NoError(t, err)

	want := []event.Type{
		event.TypeProductCreated,
		event.TypeProductUpdated,
		event.TypeProductDeleted,
	}
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return assert.ObjectsAreEqual(want, got)
	}, time.Second, 5*time.Millisecond)
}
