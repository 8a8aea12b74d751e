package product

import (
	"context"
	"fmt"

	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	portproduct "github.com/alanyang/product-catalog/internal/port/product"
)

type GetByIDRequest struct {
	ID string
}

type GetByIDResponse struct {
	Product domainproduct.Product
}

type GetByIDUseCase struct {
	repo portproduct.Repository
}

func NewGetByIDUseCase(repo portproduct.Repository) *GetByIDUseCase {
	return &GetByIDUseCase{repo: repo}
}

func (uc *GetByIDUseCase) Execute(ctx context.Context, req GetByIDRequest) (GetByIDResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return GetByIDResponse{}, err
	}

	p, found, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return GetByIDResponse{}, fmt.Errorf("get product: %w", err)
	}
	if !found {
		return GetByIDResponse{}, domainproduct.ErrNotFound
	}
	return GetByIDResponse{Product: p}, nil
}
