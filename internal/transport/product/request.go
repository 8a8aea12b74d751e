package product

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"

	domainproduct "github.com/alanyang/product-catalog/internal/domain/product"
	productsvc "github.com/alanyang/product-catalog/internal/service/product"
)

// normalizer is implemented by request bodies that trim and clean themselves
// before validation.
type normalizer interface {
	normalize() error
}

// maxBodyBytes caps a product request body.
const maxBodyBytes = 1 << 20

// decodeJSON rejects unknown fields, normalizes, then runs the binding tags.
func decodeJSON(c *gin.Context, dst normalizer) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return fmt.Errorf("reading body: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return errors.New("request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := dst.normalize(); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(dst)
}

type createProductReq struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Description *string  `json:"description"`
	Price       *float64 `json:"price" binding:"required"`
	Quantity    *float64 `json:"quantity" binding:"required"`
	Category    *string  `json:"category" binding:"omitempty,max=100"`
	SKU         *string  `json:"sku" binding:"omitempty,max=50"`
}

func (r *createProductReq) normalize() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Description = trimToNil(r.Description)
	r.Category = trimToNil(r.Category)
	r.SKU = trimToNil(r.SKU)
	if r.Price != nil && !maxTwoDecimals(*r.Price) {
		return errors.New("price must have at most 2 decimal places")
	}
	return nil
}

func (r *createProductReq) toRequest() productsvc.CreateRequest {
	return productsvc.CreateRequest{
		Name:        r.Name,
		Description: r.Description,
		Price:       *r.Price,
		Quantity:    *r.Quantity,
		Category:    r.Category,
		SKU:         r.SKU,
	}
}

// field records whether a JSON key was present and whether it held null.
type field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

func (f *field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if string(bytes.TrimSpace(b)) == "null" {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

type updateProductReq struct {
	Name        field[string]  `json:"name"`
	Description field[string]  `json:"description"`
	Price       field[float64] `json:"price"`
	Quantity    field[float64] `json:"quantity"`
	Category    field[string]  `json:"category"`
	SKU         field[string]  `json:"sku"`
	IsActive    field[bool]    `json:"isActive"`

	// populated by normalize for the binding tags
	NameValue     *string `json:"-" binding:"omitempty,max=255"`
	CategoryValue *string `json:"-" binding:"omitempty,max=100"`
	SKUValue      *string `json:"-" binding:"omitempty,max=50"`
}

func (r *updateProductReq) normalize() error {
	for _, f := range []struct {
		key  string
		null bool
	}{
		{"name", r.Name.Null},
		{"price", r.Price.Null},
		{"quantity", r.Quantity.Null},
		{"isActive", r.IsActive.Null},
	} {
		if f.null {
			return fmt.Errorf("%s cannot be null", f.key)
		}
	}
	if r.Price.Set && !maxTwoDecimals(r.Price.Value) {
		return errors.New("price must have at most 2 decimal places")
	}

	if r.Name.Set {
		r.Name.Value = strings.TrimSpace(r.Name.Value)
		r.NameValue = &r.Name.Value
	}
	r.CategoryValue = nullable(r.Category)
	r.SKUValue = nullable(r.SKU)
	return nil
}

func (r *updateProductReq) toRequest(id string) productsvc.UpdateRequest {
	req := productsvc.UpdateRequest{ID: id}
	if r.Name.Set {
		req.Name = domainproduct.Some(r.Name.Value)
	}
	if r.Description.Set {
		req.Description = domainproduct.Some(nullable(r.Description))
	}
	if r.Price.Set {
		req.Price = domainproduct.Some(r.Price.Value)
	}
	if r.Quantity.Set {
		req.Quantity = domainproduct.Some(r.Quantity.Value)
	}
	if r.Category.Set {
		req.Category = domainproduct.Some(r.CategoryValue)
	}
	if r.SKU.Set {
		req.SKU = domainproduct.Some(r.SKUValue)
	}
	if r.IsActive.Set {
		req.IsActive = domainproduct.Some(r.IsActive.Value)
	}
	return req
}

// nullable maps null and blank strings to nil and trims the rest.
func nullable(f field[string]) *string {
	if !f.Set || f.Null {
		return nil
	}
	v := strings.TrimSpace(f.Value)
	if v == "" {
		return nil
	}
	return &v
}

func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func maxTwoDecimals(v float64) bool {
	return decimal.NewFromFloat(v).Exponent() >= -2
}
