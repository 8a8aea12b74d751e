package product

import (
	"time"

	"github.com/google/uuid"
)

const MaxNameLength = 255

type Product struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Price       Price     `json:"price"`
	Quantity    Quantity  `json:"quantity"`
	Category    *string   `json:"category"`
	SKU         *string   `json:"sku"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (p Product) IsInStock() bool { return p.Quantity.IsInStock() }

// NewProduct is the creation payload handed to a repository. The store assigns
// the id and both timestamps.
type NewProduct struct {
	Name        string
	Description *string
	Price       Price
	Quantity    Quantity
	Category    *string
	SKU         *string
	IsActive    bool
}
