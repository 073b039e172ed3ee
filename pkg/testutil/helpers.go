// Package testutil provides common utility functions for testing.
package testutil

import (
	"fmt"

	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/mathutil"
)

// ScheduleViolations checks the correctness properties every amortization
// schedule must satisfy and describes each violation found. An empty slice
// means the schedule is sound.
func ScheduleViolations(result *amortization.Result) []string {
	var violations []string
	rows := result.Rows()
	if len(rows) == 0 {
		return []string{"schedule has no rows"}
	}

	for i, row := range rows {
		if row.Period != i+1 {
			violations = append(violations, fmt.Sprintf("row %d has period %d", i+1, row.Period))
		}
		if row.RemainingBalance.IsNegative() {
			violations = append(violations, fmt.Sprintf("period %d has negative balance %s", row.Period, row.RemainingBalance))
		}
		if i > 0 && row.RemainingBalance.GreaterThan(rows[i-1].RemainingBalance) {
			violations = append(violations, fmt.Sprintf("period %d balance %s exceeds previous %s",
				row.Period, row.RemainingBalance, rows[i-1].RemainingBalance))
		}
		if i < len(rows)-1 && !mathutil.WithinCent(row.Interest.Add(row.Principal), row.Payment) {
			violations = append(violations, fmt.Sprintf("period %d interest %s + principal %s != payment %s",
				row.Period, row.Interest, row.Principal, row.Payment))
		}
	}

	if last := rows[len(rows)-1]; !last.RemainingBalance.IsZero() {
		violations = append(violations, fmt.Sprintf("final balance is %s, expected 0", last.RemainingBalance))
	}
	return violations
}
