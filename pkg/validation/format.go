// Package validation provides common validation utilities.
package validation

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
)

// ValidateOutputFormat checks if the output format is one of the supported formats.
func ValidateOutputFormat(format string) error {
	if format != constants.OutputFormatPretty && format != constants.OutputFormatCSV {
		return fmt.Errorf("expected output format of %s or %s, got %s",
			constants.OutputFormatPretty, constants.OutputFormatCSV, format)
	}
	return nil
}

// ValidateArithmetic checks if the arithmetic is one of the supported number
// representations, using the same case-insensitive matching as
// amortization.ParseArithmetic. An empty value selects the default.
func ValidateArithmetic(arithmetic string) error {
	_, err := amortization.ParseArithmetic(arithmetic)
	return err
}
