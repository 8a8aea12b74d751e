package product

import (
	"context"
	"fmt"

	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	portproduct "github.com/alanyang/product-catalog/internal/port/product"
)

// UpdateRequest carries the id plus any subset of fields. Unset fields are left
// untouched; a set nullable field holding nil clears the column.
type UpdateRequest struct {
	ID          string
	Name        domainproduct.Optional[string]
	Description domainproduct.Optional[*string]
	Price       domainproduct.Optional[float64]
	Quantity    domainproduct.Optional[float64]
	Category    domainproduct.Optional[*string]
	SKU         domainproduct.Optional[*string]
	IsActive    domainproduct.Optional[bool]
}

type UpdateResponse struct {
	Product domainproduct.Product
}

type UpdateUseCase struct {
	repo portproduct.Repository
}

func NewUpdateUseCase(repo portproduct.Repository) *UpdateUseCase {
	return &UpdateUseCase{repo: repo}
}

func (uc *UpdateUseCase) Execute(ctx context.Context, req UpdateRequest) (UpdateResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return UpdateResponse{}, err
	}

	patch := domainproduct.Patch{
		Description: blankToNil(req.Description),
		Category:    blankToNil(req.Category),
		SKU:         blankToNil(req.SKU),
		IsActive:    req.IsActive,
	}
	if v, ok := req.Price.Get(); ok {
		price, err := domainproduct.NewPrice(v)
		if err != nil {
			return UpdateResponse{}, err
		}
		patch.Price = domainproduct.Some(price)
	}
	if v, ok := req.Quantity.Get(); ok {
		quantity, err := domainproduct.QuantityFromFloat(v)
		if err != nil {
			return UpdateResponse{}, err
		}
		patch.Quantity = domainproduct.Some(quantity)
	}
	name, hasName := req.Name.Get()
	if hasName {
		if err := validateName(name); err != nil {
			return UpdateResponse{}, err
		}
		patch.Name = req.Name
	}

	existing, found, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("update product: find by id: %w", err)
	}
	if !found {
		return UpdateResponse{}, domainproduct.ErrNotFound
	}

	if hasName && name != existing.Name {
		other, found, err := uc.repo.FindByName(ctx, name)
		if err != nil {
			return UpdateResponse{}, fmt.Errorf("update product: find by name: %w", err)
		}
		if found && other.ID != existing.ID {
			return UpdateResponse{}, domainproduct.ErrDuplicateName
		}
	}

	if sku, ok := patch.SKU.Get(); ok && sku != nil && !sameString(sku, existing.SKU) {
		other, found, err := uc.repo.FindBySKU(ctx, *sku)
		if err != nil {
			return UpdateResponse{}, fmt.Errorf("update product: find by sku: %w", err)
		}
		if found && other.ID != existing.ID {
			return UpdateResponse{}, domainproduct.ErrDuplicateSKU
		}
	}

	updated, found, err := uc.repo.Update(ctx, id, patch)
	if err != nil {
		return UpdateResponse{}, fmt.Errorf("update product: %w", err)
	}
	if !found {
		return UpdateResponse{}, domainproduct.ErrUpdateFailed
	}
	return UpdateResponse{Product: updated}, nil
}

// blankToNil stores a set-but-empty nullable string as NULL, matching Create.
func blankToNil(o domainproduct.Optional[*string]) domainproduct.Optional[*string] {
	v, ok := o.Get()
	if !ok {
		return o
	}
	return domainproduct.Some(nonEmpty(v))
}

func sameString(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
