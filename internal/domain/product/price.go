package product

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// MaxPrice is the largest price a product may carry (numeric(10,2) column).
var MaxPrice = decimal.RequireFromString("999999.99")

// Price is a non-negative monetary amount. The zero value is a valid price of 0.
type Price struct {
	d decimal.Decimal
}

func NewPrice(v float64) (Price, error) {
	if v < 0 {
		return Price{}, fmt.Errorf("%w: product price cannot be negative", ErrInvalidPrice)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Price{}, fmt.Errorf("%w: product price must be a valid number", ErrInvalidPrice)
	}
	d := decimal.NewFromFloat(v)
	if d.GreaterThan(MaxPrice) {
		return Price{}, fmt.Errorf("%w: product price cannot exceed 999,999.99", ErrInvalidPrice)
	}
	return Price{d: d}, nil
}

// MustPrice is NewPrice for constants and fixtures; it panics on invalid input.
func MustPrice(v float64) Price {
	p, err := NewPrice(v)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Price) Decimal() decimal.Decimal { return p.d }

func (p Price) Float64() float64 { return p.d.InexactFloat64() }

func (p Price) Equal(other Price) bool { return p.d.Equal(other.d) }

// String renders the price with exactly two decimals.
func (p Price) String() string { return p.d.StringFixed(2) }

func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.d.String()), nil
}

func (p *Price) UnmarshalJSON(data []byte) error {
	var d decimal.Decimal
	if err := d.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPrice, err)
	}
	np, err := NewPrice(d.InexactFloat64())
	if err != nil {
		return err
	}
	*p = np
	return nil
}
