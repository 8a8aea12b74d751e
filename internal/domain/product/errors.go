package product

import "errors"

// Named failure conditions of the product use-cases. Callers wrap them with a
// descriptive message; the transport classifies with errors.Is.
var (
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrInvalidName          = errors.New("invalid product name")
	ErrInvalidPrice         = errors.New("invalid product price")
	ErrInvalidQuantity      = errors.New("invalid product quantity")
	ErrInsufficientQuantity = errors.New("insufficient product quantity")
	ErrDuplicateName        = errors.New("product with this name already exists")
	ErrDuplicateSKU         = errors.New("product with this SKU already exists")
	ErrNotFound             = errors.New("product not found")
	ErrUpdateFailed         = errors.New("failed to update product")
	ErrDeleteFailed         = errors.New("failed to delete product")
)
