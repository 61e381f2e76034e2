package basket

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jcmexdev/shop-api/internal/catalog"
)

func products(prices ...string) []catalog.Product {
	out := make([]catalog.Product, len(prices))
	for i, p := range prices {
		out[i] = catalog.Product{ID: int64(i + 1), Name: "p", Price: decimal.RequireFromString(p)}
	}
	return out
}

func TestComputeTotal(t *testing.T) {
	tests := []struct {
		name     string
		prices   []string
		discount string
		want     string
	}{
		{"no discount", []string{"12.40", "51.00"}, "0", "63.40"},
		{"ten percent", []string{"12.40", "51.00"}, "0.10", "57.06"},
		{"single item", []string{"19.99"}, "0", "19.99"},
		{"full discount", []string{"10.00", "5.50"}, "1", "0.00"},
		{"empty basket", nil, "0.25", "0.00"},
		{"discount needs rounding", []string{"0.10", "0.05"}, "0.33", "0.10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			total := Quantize(ComputeTotal(products(tt.prices...), decimal.RequireFromString(tt.discount)))
			assert.Equal(t, tt.want, total.StringFixed(2))
		})
	}
}

func TestComputeTotalIsExact(t *testing.T) {
	// 0.1 + 0.2 is the classic binary-float trap; the decimal path must
	// produce exactly 0.3.
	total := ComputeTotal(products("0.10", "0.20"), decimal.Zero)
	require.True(t, total.Equal(decimal.RequireFromString("0.3")), "got %s", total)
}

func TestQuantize(t *testing.T) {
	assert.Equal(t, "70.00", Quantize(decimal.RequireFromString("70")).StringFixed(2))
	assert.Equal(t, "57.06", Quantize(decimal.RequireFromString("57.06")).StringFixed(2))
	assert.Equal(t, "1.24", Quantize(decimal.RequireFromString("1.235")).StringFixed(2))
}
