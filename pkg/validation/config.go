// Package validation provides configuration validation utilities.
package validation

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/format"
)

// ValidateCurrency returns a warning when the currency code has no known
// display symbol.
func ValidateCurrency(code string) string {
	if code == "" {
		return ""
	}
	normalized := strings.ToUpper(strings.TrimSpace(code))
	for _, supported := range format.SupportedCurrencies() {
		if normalized == supported {
			return ""
		}
	}
	return fmt.Sprintf("Currency '%s' is not one of %s - amounts will be shown with '%s'",
		code, strings.Join(format.SupportedCurrencies(), ", "), format.Symbol(constants.DefaultCurrency))
}

// ValidateTermYears returns a warning when the term is not a whole number of
// months, since the schedule rounds the period count down.
func ValidateTermYears(termYears float64) string {
	months := termYears * constants.MonthsPerYear
	if termYears <= 0 || math.Abs(months-math.Round(months)) < 1e-9 {
		return ""
	}
	periods := int(math.Max(math.Floor(months), 1))
	return fmt.Sprintf("Term of %g years is %.2f months - schedule will use %d payments",
		termYears, months, periods)
}

// MaturityDate returns the month of the final payment for a loan whose first
// payment is due in startDate.
func MaturityDate(startDate string, periodCount int) (string, error) {
	if periodCount < 1 {
		return "", fmt.Errorf("period count must be at least 1, got %d", periodCount)
	}
	return datetime.OffsetMonth(startDate, periodCount-1)
}

// LoanInputs holds the raw loan inputs as read from a config file or flags.
type LoanInputs struct {
	Principal         float64
	AnnualRatePercent float64
	TermYears         float64
	Currency          string
	StartDate         string
}

// ValidateAll returns warnings for inputs that are accepted but probably not
// what the user meant. Hard errors are left to the calculator.
func (li LoanInputs) ValidateAll() []string {
	var warnings []string

	if li.AnnualRatePercent == 0 {
		warnings = append(warnings, "Annual rate is 0% - payments will be straight-line principal only")
	}
	if warning := ValidateTermYears(li.TermYears); warning != "" {
		warnings = append(warnings, warning)
	}
	if warning := ValidateCurrency(li.Currency); warning != "" {
		warnings = append(warnings, warning)
	}
	if li.StartDate != "" {
		if _, err := datetime.ParseMonth(li.StartDate); err != nil {
			warnings = append(warnings, fmt.Sprintf("Start date '%s' is not in %s format",
				li.StartDate, datetime.DateTimeLayout))
		}
	}

	return warnings
}
