// Package money holds the ringgit rounding and formatting rules shared by fee,
// voucher and reporting code.
package money

import (
	"math"

	"github.com/shopspring/decimal"
)

// Round2 rounds to cents, half-up: floor(x*100 + 0.5) / 100.
func Round2(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Floor(x*100+0.5) / 100
}

// Decimal converts an already rounded amount for exact summation.
func Decimal(x float64) decimal.Decimal {
	return decimal.NewFromFloat(x).Round(2)
}

// Float converts a decimal sum back to the float representation used in JSON.
func Float(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// Format renders an amount with exactly two decimals, e.g. "90.62".
func Format(x float64) string {
	return Decimal(x).StringFixed(2)
}
