package product_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/alanyang/product-catalog/internal/domain/product"
)

func TestNewPrice(t *testing.T) {
	tests := []struct {
		name    string
		in      float64
		wantErr bool
	}{
		{name: "zero", in: 0},
		{name: "typical", in: 999.99},
		{name: "upper bound", in: 999999.99},
		{name: "one over upper bound", in: 1000000, wantErr: true},
		{name: "just over upper bound", in: 999999.991, wantErr: true},
		{name: "negative", in: -1, wantErr: true},
		{name: "negative cent", in: -0.01, wantErr: true},
		{name: "NaN", in: math.NaN(), wantErr: true},
		{name: "+Inf", in: math.Inf(1), wantErr: true},
		{name: "-Inf", in: math.Inf(-1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPrice(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPrice_StringHasTwoDecimals(t *testing.T) {
	assert.Equal(t, "10.00", MustPrice(10).String())
	assert.Equal(t, "10.50", MustPrice(10.5).String())
	assert.Equal(t, "999999.99", MustPrice(999999.99).String())
}

func TestPrice_Equal(t *testing.T) {
	assert.True(t, MustPrice(1.5).Equal(MustPrice(1.50)))
	assert.False(t, MustPrice(1.5).Equal(MustPrice(1.51)))
}

func TestPrice_JSON(t *testing.T) {
	data, err := json.Marshal(MustPrice(12.5))
	require.NoError(t, err)
	assert.Equal(t, "12.5", string(data))

	var p Price
	require.NoError(t, json.Unmarshal([]byte("42.42"), &p))
	assert.Equal(t, "42.42", p.String())

	assert.ErrorIs(t, json.Unmarshal([]byte("-3"), &p), ErrInvalidPrice)
}
