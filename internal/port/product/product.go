package product

import (
	"context"

	"github.com/google/uuid"

	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
)

// Repository is the storage contract the product use-cases depend on.
// [DIP] service/product depends on this interface, not on a concrete store.
// [LSP] Postgres and in-memory implementations are both valid substitutes.
//
// The bool returned by the Find* lookups and Update is false when no row matched;
// that is not an error.
type Repository interface {
	// FindAll, FindByCategory and FindActive return newest first.
	FindAll(ctx context.Context) ([]domainproduct.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (domainproduct.Product, bool, error)
	FindByName(ctx context.Context, name string) (domainproduct.Product, bool, error)
	FindBySKU(ctx context.Context, sku string) (domainproduct.Product, bool, error)
	FindByCategory(ctx context.Context, category string) ([]domainproduct.Product, error)
	FindActive(ctx context.Context) ([]domainproduct.Product, error)

	Create(ctx context.Context, p domainproduct.NewProduct) (domainproduct.Product, error)
	Update(ctx context.Context, id uuid.UUID, patch domainproduct.Patch) (domainproduct.Product, bool, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id uuid.UUID) (bool, error)

	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	Count(ctx context.Context) (int64, error)
}
