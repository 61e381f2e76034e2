package basket

import (
	"github.com/shopspring/decimal"

	"github.com/jcmexdev/shop-api/internal/catalog"
)

// ComputeTotal is the pricing engine: sum of line-item prices scaled by
// (1 - discount). Pure decimal arithmetic end to end; the result is NOT
// quantized here — rounding happens only at output and comparison
// boundaries (see Quantize).
func ComputeTotal(items []catalog.Product, discount decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		sum = sum.Add(item.Price)
	}
	return sum.Sub(sum.Mul(discount))
}

// Quantize rounds a monetary value to 2 fraction digits, the precision of
// every stored price and every user-visible amount.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
