package amortization

import (
	"fmt"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

// Arithmetic selects the number representation used inside the schedule loop.
type Arithmetic string

const (
	// ArithmeticDecimal keeps every intermediate value as a decimal rounded to
	// constants.WorkingPlaces, so long terms do not accumulate binary error.
	ArithmeticDecimal Arithmetic = constants.ArithmeticDecimal

	// ArithmeticFloat runs the loop in float64 and converts each row to
	// decimals on output.
	ArithmeticFloat Arithmetic = constants.ArithmeticFloat
)

// KnownArithmetics lists every supported Arithmetic.
var KnownArithmetics = []Arithmetic{
	ArithmeticDecimal,
	ArithmeticFloat,
}

// ParseArithmetic converts a configuration value into an Arithmetic. An empty
// value selects ArithmeticDecimal.
func ParseArithmetic(value string) (Arithmetic, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return ArithmeticDecimal, nil
	}
	for _, a := range KnownArithmetics {
		if string(a) == trimmed {
			return a, nil
		}
	}
	return "", fmt.Errorf("expected arithmetic of %s or %s, got %s",
		ArithmeticDecimal, ArithmeticFloat, value)
}
