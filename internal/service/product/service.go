package product

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	portproduct "github.com/alanyang/product-catalog/internal/port/product"
)

// Service bundles the product use-cases so the transport can be wired with a
// single value. Each use-case is independent and holds only the repository.
// [DIP] Depends on the repository port, never on adapters or transport.
type Service struct {
	Create  *CreateUseCase
	GetByID *GetByIDUseCase
	GetAll  *GetAllUseCase
	Update  *UpdateUseCase
	Delete  *DeleteUseCase
}

func NewService(repo portproduct.Repository) *Service {
	return &Service{
		Create:  NewCreateUseCase(repo),
		GetByID: NewGetByIDUseCase(repo),
		GetAll:  NewGetAllUseCase(repo),
		Update:  NewUpdateUseCase(repo),
		Delete:  NewDeleteUseCase(repo),
	}
}

func parseID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: product ID is required", domainproduct.ErrInvalidArgument)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: product ID must be a valid UUID", domainproduct.ErrInvalidArgument)
	}
	return id, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: product name is required", domainproduct.ErrInvalidName)
	}
	if utf8.RuneCountInString(name) > domainproduct.MaxNameLength {
		return fmt.Errorf("%w: product name cannot exceed 255 characters", domainproduct.ErrInvalidName)
	}
	return nil
}

// nonEmpty collapses nil and "" to nil.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
