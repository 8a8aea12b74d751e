package product

import (
	"context"
	"fmt"

	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	portproduct "github.com/alanyang/product-catalog/internal/port/product"
)

type GetAllRequest struct {
	ActiveOnly bool
	Category   string
}

type GetAllResponse struct {
	Products []domainproduct.Product
	Total    int
}

type GetAllUseCase struct {
	repo portproduct.Repository
}

func NewGetAllUseCase(repo portproduct.Repository) *GetAllUseCase {
	return &GetAllUseCase{repo: repo}
}

// Execute picks one repository query: by category when set, else active only
// when requested, else everything. Only the category+activeOnly combination is
// narrowed a second time, in memory, to active products.
func (uc *GetAllUseCase) Execute(ctx context.Context, req GetAllRequest) (GetAllResponse, error) {
	var (
		products []domainproduct.Product
		err      error
	)
	switch {
	case req.Category != "":
		products, err = uc.repo.FindByCategory(ctx, req.Category)
	case req.ActiveOnly:
		products, err = uc.repo.FindActive(ctx)
	default:
		products, err = uc.repo.FindAll(ctx)
	}
	if err != nil {
		return GetAllResponse{}, fmt.Errorf("list products: %w", err)
	}

	if req.ActiveOnly && req.Category != "" {
		active := make([]domainproduct.Product, 0, len(products))
		for _, p := range products {
			if p.IsActive {
				active = append(active, p)
			}
		}
		products = active
	}

	if products == nil {
		products = []domainproduct.Product{}
	}
	return GetAllResponse{Products: products, Total: len(products)}, nil
}
