package amortization

import (
	"github.com/shopspring/decimal"
)

// ScheduleRow holds the values for a given payment period.
type ScheduleRow struct {
	Period              int
	DueDate             string
	InterestRatePercent decimal.Decimal
	Payment             decimal.Decimal
	Interest            decimal.Decimal
	Principal           decimal.Decimal
	RemainingBalance    decimal.Decimal
}

// Result is a computed amortization schedule. It is never modified after
// BuildSchedule returns it, so it may be shared between goroutines.
type Result struct {
	periodicPayment decimal.Decimal
	totalPayment    decimal.Decimal
	arithmetic      Arithmetic
	rows            []ScheduleRow
}

// PeriodicPayment is the rounded constant payment used for every row.
func (r *Result) PeriodicPayment() decimal.Decimal {
	return r.periodicPayment
}

// TotalPayment is the nominal total: PeriodicPayment times the period count.
func (r *Result) TotalPayment() decimal.Decimal {
	return r.totalPayment
}

// ActualTotalPayment sums interest and principal over every row. It differs
// from TotalPayment by the final-period correction.
func (r *Result) ActualTotalPayment() decimal.Decimal {
	total := decimal.Zero
	for _, row := range r.rows {
		total = total.Add(row.Interest).Add(row.Principal)
	}
	return total
}

// TotalInterest sums the interest portion of every row.
func (r *Result) TotalInterest() decimal.Decimal {
	total := decimal.Zero
	for _, row := range r.rows {
		total = total.Add(row.Interest)
	}
	return total
}

// Arithmetic reports the number representation the schedule was built with.
func (r *Result) Arithmetic() Arithmetic {
	return r.arithmetic
}

// Len returns the number of rows.
func (r *Result) Len() int {
	return len(r.rows)
}

// Row returns the row at index i (0-based).
func (r *Result) Row(i int) ScheduleRow {
	return r.rows[i]
}

// Rows returns a copy of the ordered schedule.
func (r *Result) Rows() []ScheduleRow {
	rows := make([]ScheduleRow, len(r.rows))
	copy(rows, r.rows)
	return rows
}
