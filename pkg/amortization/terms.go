package amortization

import (
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
)

var (
	monthsPerYear       = decimal.NewFromInt(constants.MonthsPerYear)
	percentageDivisor   = decimal.NewFromFloat(constants.PercentageMultiplier)
	periodicRateDivisor = monthsPerYear.Mul(percentageDivisor)
	maxAnnualRate       = decimal.NewFromFloat(constants.MaxAnnualRatePercent)
	maxTermYears        = decimal.NewFromInt(constants.MaxTermYears)
)

// LoanTerms holds the inputs of one calculation. It is a value type; copies
// are independent.
type LoanTerms struct {
	Principal         decimal.Decimal
	AnnualRatePercent decimal.Decimal
	// TermYears may carry a fraction; the period count is rounded down with a
	// minimum of one period.
	TermYears decimal.Decimal
	// StartDate is the optional YYYY-MM month of the first payment.
	StartDate string
}

// NewLoanTerms builds LoanTerms from float inputs, as read from configuration
// files and flags.
func NewLoanTerms(principal, annualRatePercent, termYears float64) LoanTerms {
	return LoanTerms{
		Principal:         decimal.NewFromFloat(principal),
		AnnualRatePercent: decimal.NewFromFloat(annualRatePercent),
		TermYears:         decimal.NewFromFloat(termYears),
	}
}

// PeriodCount returns the number of monthly payments.
func (t LoanTerms) PeriodCount() int {
	months := t.TermYears.Mul(monthsPerYear).Floor().IntPart()
	return mathutil.MaxInt(int(months), 1)
}

// PeriodicRate returns the monthly interest rate as a fraction.
func (t LoanTerms) PeriodicRate() decimal.Decimal {
	return PeriodicRate(t.AnnualRatePercent)
}

// PeriodicRate converts an annual percentage into a monthly fraction.
func PeriodicRate(annualRatePercent decimal.Decimal) decimal.Decimal {
	return annualRatePercent.Div(periodicRateDivisor)
}

// Validate checks the terms against the input contract of the engine.
func (t LoanTerms) Validate() error {
	if !t.Principal.IsPositive() {
		return &InvalidTermsError{Field: "principal", Value: t.Principal.String(), Reason: "must be positive"}
	}
	if t.AnnualRatePercent.IsNegative() || t.AnnualRatePercent.GreaterThan(maxAnnualRate) {
		return &InvalidTermsError{Field: "annualRatePercent", Value: t.AnnualRatePercent.String(),
			Reason: "must be between 0 and 100"}
	}
	if !t.TermYears.IsPositive() || t.TermYears.GreaterThan(maxTermYears) {
		return &InvalidTermsError{Field: "termYears", Value: t.TermYears.String(), Reason: "must be between 0 and 100"}
	}
	if t.StartDate != "" {
		if _, err := datetime.ParseMonth(t.StartDate); err != nil {
			return &InvalidTermsError{Field: "startDate", Value: t.StartDate,
				Reason: "expected format " + constants.DateTimeLayout}
		}
	}
	return nil
}
