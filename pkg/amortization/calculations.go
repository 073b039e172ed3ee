// Package amortization computes fixed-rate loan payments and amortization
// schedules.
package amortization

import (
	"math"
	"strconv"

	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/datetime"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var one = decimal.NewFromInt(1)

// Calculator computes payments and schedules. It keeps no per-call state, so
// a single Calculator may be used from many goroutines.
type Calculator struct {
	logger     *zap.Logger
	arithmetic Arithmetic
}

// NewCalculator creates a new calculator instance. An empty or unknown
// arithmetic selects ArithmeticDecimal.
func NewCalculator(logger *zap.Logger, arithmetic Arithmetic) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	parsed, err := ParseArithmetic(string(arithmetic))
	if err != nil {
		logger.Warn("unknown arithmetic, using decimal",
			zap.String("op", "amortization.NewCalculator"),
			zap.String("arithmetic", string(arithmetic)),
		)
		parsed = ArithmeticDecimal
	}
	return &Calculator{logger: logger, arithmetic: parsed}
}

// Arithmetic reports the number representation used by the calculator.
func (c *Calculator) Arithmetic() Arithmetic {
	return c.arithmetic
}

// Calculate validates the terms, computes the payment and builds the schedule.
func (c *Calculator) Calculate(terms LoanTerms) (*Result, error) {
	if err := terms.Validate(); err != nil {
		return nil, err
	}

	periodCount := terms.PeriodCount()
	payment, err := c.ComputePayment(terms.Principal, terms.PeriodicRate(), periodCount)
	if err != nil {
		return nil, err
	}

	var dueDates []string
	if terms.StartDate != "" {
		dueDates, err = datetime.MonthSequence(terms.StartDate, periodCount)
		if err != nil {
			return nil, &InvalidTermsError{Field: "startDate", Value: terms.StartDate, Reason: err.Error()}
		}
	}

	return c.buildSchedule(terms.Principal, payment, constantRates(terms.AnnualRatePercent, periodCount), dueDates)
}

// ComputePayment calculates the constant periodic payment using the standard
// annuity formula. Non-zero-rate payments are rounded half away from zero to
// the smallest currency unit; zero-rate payments are principal/periodCount.
func (c *Calculator) ComputePayment(principal, periodicRate decimal.Decimal, periodCount int) (decimal.Decimal, error) {
	if !principal.IsPositive() {
		return decimal.Zero, &InvalidTermsError{Field: "principal", Value: principal.String(), Reason: "must be positive"}
	}
	if periodCount <= 0 {
		return decimal.Zero, &InvalidTermsError{Field: "periodCount", Value: strconv.Itoa(periodCount), Reason: "must be at least 1"}
	}
	if periodicRate.IsNegative() {
		return decimal.Zero, &InvalidTermsError{Field: "periodicRate", Value: periodicRate.String(), Reason: "must not be negative"}
	}

	var payment decimal.Decimal
	switch c.arithmetic {
	case ArithmeticFloat:
		payment = paymentFloat(principal.InexactFloat64(), periodicRate.InexactFloat64(), periodCount)
	default:
		payment = paymentDecimal(principal, periodicRate, periodCount)
	}

	c.logger.Debug("computed periodic payment",
		zap.String("op", "amortization.ComputePayment"),
		zap.String("principal", principal.String()),
		zap.String("periodicRate", periodicRate.String()),
		zap.Int("periodCount", periodCount),
		zap.String("payment", payment.String()),
		zap.String("arithmetic", string(c.arithmetic)),
	)
	return payment, nil
}

func paymentDecimal(principal, periodicRate decimal.Decimal, periodCount int) decimal.Decimal {
	n := decimal.NewFromInt(int64(periodCount))
	if periodicRate.IsZero() {
		return principal.Div(n)
	}
	factor := mathutil.PowInt(one.Add(periodicRate), periodCount, constants.CompoundingPlaces)
	denominator := factor.Sub(one)
	if denominator.IsZero() {
		return principal.Div(n)
	}
	return mathutil.RoundCurrency(principal.Mul(periodicRate).Mul(factor).Div(denominator))
}

func paymentFloat(principal, periodicRate float64, periodCount int) decimal.Decimal {
	n := float64(periodCount)
	if periodicRate == 0 {
		return decimal.NewFromFloat(principal / n)
	}
	factor := math.Pow(1+periodicRate, n)
	if factor-1 == 0 {
		return decimal.NewFromFloat(principal / n)
	}
	var payment float64
	if math.IsInf(factor, 1) {
		// factor/(factor-1) tends to 1
		payment = principal * periodicRate
	} else {
		payment = principal * periodicRate * factor / (factor - 1)
	}
	return mathutil.RoundCurrency(decimal.NewFromFloat(payment))
}

// BuildSchedule expands a periodic payment into the full amortization
// schedule. The final row absorbs whatever balance remains so the schedule
// always ends at exactly zero.
func (c *Calculator) BuildSchedule(principal, payment, annualRatePercent decimal.Decimal, periodCount int) (*Result, error) {
	if periodCount < 1 {
		return nil, &ScheduleBuildError{Field: "periodCount", Value: strconv.Itoa(periodCount), Reason: "must be at least 1"}
	}
	if annualRatePercent.IsNegative() {
		return nil, &ScheduleBuildError{Field: "annualRatePercent", Value: annualRatePercent.String(), Reason: "must not be negative"}
	}
	return c.buildSchedule(principal, payment, constantRates(annualRatePercent, periodCount), nil)
}

func constantRates(annualRatePercent decimal.Decimal, periodCount int) []decimal.Decimal {
	rates := make([]decimal.Decimal, periodCount)
	for i := range rates {
		rates[i] = annualRatePercent
	}
	return rates
}

// buildSchedule takes one annual rate per period. dueDates is either nil or
// has one entry per period.
func (c *Calculator) buildSchedule(principal, payment decimal.Decimal, rates []decimal.Decimal, dueDates []string) (*Result, error) {
	periodCount := len(rates)
	if periodCount < 1 {
		return nil, &ScheduleBuildError{Field: "periodCount", Value: strconv.Itoa(periodCount), Reason: "must be at least 1"}
	}
	if !principal.IsPositive() {
		return nil, &ScheduleBuildError{Field: "principal", Value: principal.String(), Reason: "must be positive"}
	}
	if payment.IsNegative() {
		return nil, &ScheduleBuildError{Field: "payment", Value: payment.String(), Reason: "must not be negative"}
	}

	var rows []ScheduleRow
	switch c.arithmetic {
	case ArithmeticFloat:
		rows = rowsFloat(principal, payment, rates)
	default:
		rows = rowsDecimal(principal, payment, rates)
	}
	for i := range dueDates {
		rows[i].DueDate = dueDates[i]
	}

	result := &Result{
		periodicPayment: payment,
		totalPayment:    payment.Mul(decimal.NewFromInt(int64(periodCount))),
		arithmetic:      c.arithmetic,
		rows:            rows,
	}

	last := rows[len(rows)-1]
	c.logger.Debug("built amortization schedule",
		zap.String("op", "amortization.BuildSchedule"),
		zap.Int("periodCount", periodCount),
		zap.String("payment", payment.String()),
		zap.String("finalPrincipal", last.Principal.String()),
		zap.String("arithmetic", string(c.arithmetic)),
	)
	return result, nil
}

func rowsDecimal(principal, payment decimal.Decimal, rates []decimal.Decimal) []ScheduleRow {
	periodCount := len(rates)
	rows := make([]ScheduleRow, periodCount)
	balance := principal
	for i, annualRate := range rates {
		periodicRate := PeriodicRate(annualRate)
		interest := balance.Mul(periodicRate).Round(constants.WorkingPlaces)

		var principalPart, remaining decimal.Decimal
		if i < periodCount-1 {
			principalPart = mathutil.MinDecimal(payment.Sub(interest), balance)
			if principalPart.IsNegative() {
				// A payment rounded down below the interest due would grow
				// the balance.
				principalPart = decimal.Zero
			}
			remaining = balance.Sub(principalPart)
		} else {
			principalPart = balance
			remaining = decimal.Zero
		}

		rows[i] = ScheduleRow{
			Period:              i + 1,
			InterestRatePercent: annualRate,
			Payment:             payment,
			Interest:            interest,
			Principal:           principalPart,
			RemainingBalance:    remaining,
		}
		balance = remaining
	}
	return rows
}

func rowsFloat(principal, payment decimal.Decimal, rates []decimal.Decimal) []ScheduleRow {
	periodCount := len(rates)
	rows := make([]ScheduleRow, periodCount)
	balance := principal.InexactFloat64()
	paymentF := payment.InexactFloat64()
	for i, annualRate := range rates {
		periodicRate := PeriodicRate(annualRate).InexactFloat64()
		interest := balance * periodicRate

		var principalPart, remaining float64
		if i < periodCount-1 {
			principalPart = math.Max(math.Min(paymentF-interest, balance), 0)
			remaining = balance - principalPart
		} else {
			principalPart = balance
			remaining = 0
		}

		rows[i] = ScheduleRow{
			Period:              i + 1,
			InterestRatePercent: annualRate,
			Payment:             payment,
			Interest:            decimal.NewFromFloat(interest),
			Principal:           decimal.NewFromFloat(principalPart),
			RemainingBalance:    decimal.NewFromFloat(remaining),
		}
		balance = remaining
	}
	return rows
}
