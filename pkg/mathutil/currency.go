// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

var currencyTolerance = decimal.NewFromFloat(constants.CurrencyTolerance)

// RoundCurrency rounds a decimal to the smallest currency unit, halves away
// from zero.
func RoundCurrency(val decimal.Decimal) decimal.Decimal {
	return val.Round(constants.CurrencyPlaces)
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance decimal.Decimal) bool {
	return val1.Sub(val2).Abs().LessThanOrEqual(tolerance)
}

// WithinCent checks if two values differ by at most the smallest currency unit
func WithinCent(val1, val2 decimal.Decimal) bool {
	return WithinTolerance(val1, val2, currencyTolerance)
}

// MinDecimal returns the minimum of two decimal values
func MinDecimal(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MaxInt returns the maximum of two int values
func MaxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// PowInt raises base to a non-negative integer power by repeated squaring,
// rounding intermediate products to places decimal places.
func PowInt(base decimal.Decimal, exp int, places int32) decimal.Decimal {
	result := decimal.NewFromInt(1)
	for exp > 0 {
		if exp&1 == 1 {
			result = result.Mul(base).Round(places)
		}
		exp >>= 1
		if exp > 0 {
			base = base.Mul(base).Round(places)
		}
	}
	return result
}
