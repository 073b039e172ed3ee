// Package format renders monetary amounts for display.
package format

import (
	"sort"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/shopspring/decimal"
)

var symbols = map[string]string{
	"USD": "$",
	"EUR": "€",
	"CAD": "CA$",
}

// SupportedCurrencies returns the currency codes with a known display symbol, sorted.
func SupportedCurrencies() []string {
	codes := make([]string, 0, len(symbols))
	for code := range symbols {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Symbol returns the display symbol for a currency code. Unknown codes fall
// back to "$".
func Symbol(code string) string {
	if symbol, ok := symbols[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return symbol
	}
	return symbols[constants.DefaultCurrency]
}

// Currency returns the amount with the currency symbol and thousands
// separators (e.g., "$ 1,234.56", "-€ 10.00").
func Currency(amount decimal.Decimal, code string) string {
	formatted := formatPositiveCurrency(amount.Abs())
	if amount.Round(constants.CurrencyPlaces).IsNegative() {
		return "-" + Symbol(code) + " " + formatted
	}
	return Symbol(code) + " " + formatted
}

// NumericCurrency returns a currency string without a currency symbol but with separators (e.g., "-1,234.56").
func NumericCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.Round(constants.CurrencyPlaces).IsNegative() {
		sign = "-"
	}
	return sign + formatPositiveCurrency(amount.Abs())
}

func formatPositiveCurrency(value decimal.Decimal) string {
	formatted := value.StringFixed(constants.CurrencyPlaces)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := parts[0]
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}

	if len(intPart) > 3 {
		var builder strings.Builder
		for i, digit := range intPart {
			if i > 0 && (len(intPart)-i)%3 == 0 {
				builder.WriteByte(',')
			}
			builder.WriteRune(digit)
		}
		intPart = builder.String()
	}

	return intPart + "." + decPart
}
