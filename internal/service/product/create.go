package product

import (
	"context"
	"fmt"

	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	portproduct "github.com/alanyang/product-catalog/internal/port/product"
)

type CreateRequest struct {
	Name        string
	Description *string
	Price       float64
	Quantity    float64
	Category    *string
	SKU         *string
}

type CreateResponse struct {
	Product domainproduct.Product
}

type CreateUseCase struct {
	repo portproduct.Repository
}

func NewCreateUseCase(repo portproduct.Repository) *CreateUseCase {
	return &CreateUseCase{repo: repo}
}

// Execute checks, in order: name uniqueness, SKU uniqueness, price, quantity and
// name format. The first failing rule wins; nothing is written on failure.
func (uc *CreateUseCase) Execute(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	if _, found, err := uc.repo.FindByName(ctx, req.Name); err != nil {
		return CreateResponse{}, fmt.Errorf("create product: find by name: %w", err)
	} else if found {
		return CreateResponse{}, domainproduct.ErrDuplicateName
	}

	sku := nonEmpty(req.SKU)
	if sku != nil {
		if _, found, err := uc.repo.FindBySKU(ctx, *sku); err != nil {
			return CreateResponse{}, fmt.Errorf("create product: find by sku: %w", err)
		} else if found {
			return CreateResponse{}, domainproduct.ErrDuplicateSKU
		}
	}

	price, err := domainproduct.NewPrice(req.Price)
	if err != nil {
		return CreateResponse{}, err
	}
	quantity, err := domainproduct.QuantityFromFloat(req.Quantity)
	if err != nil {
		return CreateResponse{}, err
	}
	if err := validateName(req.Name); err != nil {
		return CreateResponse{}, err
	}

	created, err := uc.repo.Create(ctx, domainproduct.NewProduct{
		Name:        req.Name,
		Description: nonEmpty(req.Description),
		Price:       price,
		Quantity:    quantity,
		Category:    nonEmpty(req.Category),
		SKU:         sku,
		IsActive:    true,
	})
	if err != nil {
		return CreateResponse{}, fmt.Errorf("create product: %w", err)
	}
	return CreateResponse{Product: created}, nil
}
