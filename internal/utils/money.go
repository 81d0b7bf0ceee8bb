package utils

import "github.com/shopspring/decimal"

// Round2 rounds a monetary value to 2 decimal places. Used only at
// emission boundaries; internal accumulation keeps full precision.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}
