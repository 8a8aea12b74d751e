package product

import (
	"context"
	"fmt"

	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	portproduct "github.com/alanyang/product-catalog/internal/port/product"
)

const deletedMessage = "Product deleted successfully"

type DeleteRequest struct {
	ID string
}

type DeleteResponse struct {
	Success bool
	Message string
}

type DeleteUseCase struct {
	repo portproduct.Repository
}

func NewDeleteUseCase(repo portproduct.Repository) *DeleteUseCase {
	return &DeleteUseCase{repo: repo}
}

// Execute hard-deletes the product. No rule currently blocks deletion; pending
// orders or archiving would be checked between the lookup and the delete.
func (uc *DeleteUseCase) Execute(ctx context.Context, req DeleteRequest) (DeleteResponse, error) {
	id, err := parseID(req.ID)
	if err != nil {
		return DeleteResponse{}, err
	}

	if _, found, err := uc.repo.FindByID(ctx, id); err != nil {
		return DeleteResponse{}, fmt.Errorf("delete product: find by id: %w", err)
	} else if !found {
		return DeleteResponse{}, domainproduct.ErrNotFound
	}

	deleted, err := uc.repo.Delete(ctx, id)
	if err != nil {
		return DeleteResponse{}, fmt.Errorf("delete product: %w", err)
	}
	if !deleted {
		return DeleteResponse{}, domainproduct.ErrDeleteFailed
	}
	return DeleteResponse{Success: true, Message: deletedMessage}, nil
}
