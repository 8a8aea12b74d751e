package project

import (
	"context"

	domainproject "github.com/alanyang/product-catalog/internal/domain/project"
)

// Repository manages project persistence.
// [DIP] service/project depends on this interface, not on a concrete storage.
type Repository interface {
	Create(ctx context.Context, p domainproject.NewProject) (domainproject.Project, error)
	// List returns projects that are not soft-deleted, newest first.
	List(ctx context.Context) ([]domainproject.Project, error)
}
