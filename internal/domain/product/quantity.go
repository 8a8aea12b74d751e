package product

import (
	"fmt"
	"math"
	"strconv"
)

const MaxQuantity = 999999

// Quantity is a whole, non-negative stock count.
type Quantity struct {
	v int
}

func NewQuantity(v int) (Quantity, error) {
	if v < 0 {
		return Quantity{}, fmt.Errorf("%w: product quantity cannot be negative", ErrInvalidQuantity)
	}
	if v > MaxQuantity {
		return Quantity{}, fmt.Errorf("%w: product quantity cannot exceed 999,999", ErrInvalidQuantity)
	}
	return Quantity{v: v}, nil
}

// QuantityFromFloat accepts a JSON-style number and rejects fractional values.
func QuantityFromFloat(v float64) (Quantity, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return Quantity{}, fmt.Errorf("%w: product quantity must be an integer", ErrInvalidQuantity)
	}
	if v < 0 {
		return Quantity{}, fmt.Errorf("%w: product quantity cannot be negative", ErrInvalidQuantity)
	}
	if v > MaxQuantity {
		return Quantity{}, fmt.Errorf("%w: product quantity cannot exceed 999,999", ErrInvalidQuantity)
	}
	return Quantity{v: int(v)}, nil
}

func MustQuantity(v int) Quantity {
	q, err := NewQuantity(v)
	if err != nil {
		panic(err)
	}
	return q
}

func ZeroQuantity() Quantity { return Quantity{} }

func (q Quantity) Int() int { return q.v }

func (q Quantity) IsInStock() bool { return q.v > 0 }

// Add fails with ErrInvalidQuantity when the sum exceeds MaxQuantity.
func (q Quantity) Add(other Quantity) (Quantity, error) {
	return NewQuantity(q.v + other.v)
}

func (q Quantity) Subtract(other Quantity) (Quantity, error) {
	n := q.v - other.v
	if n < 0 {
		return Quantity{}, fmt.Errorf("%w: cannot subtract more quantity than available", ErrInsufficientQuantity)
	}
	return NewQuantity(n)
}

func (q Quantity) Equal(other Quantity) bool { return q.v == other.v }

func (q Quantity) String() string { return strconv.Itoa(q.v) }

func (q Quantity) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Itoa(q.v)), nil
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidQuantity, err)
	}
	nq, err := QuantityFromFloat(f)
	if err != nil {
		return err
	}
	*q = nq
	return nil
}
