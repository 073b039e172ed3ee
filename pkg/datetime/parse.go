// Package datetime provides the month arithmetic behind schedule due dates.
package datetime

import (
	"fmt"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/constants"
)

const (
	// DateTimeLayout is the format of loan start dates and schedule due dates.
	DateTimeLayout = constants.DateTimeLayout
)

// ParseMonth parses a YYYY-MM string.
func ParseMonth(date string) (time.Time, error) {
	return time.Parse(DateTimeLayout, date)
}

// OffsetMonth returns the YYYY-MM month the given number of months after date.
// On a parse error the input is returned unchanged alongside the error.
func OffsetMonth(date string, months int) (string, error) {
	t, err := ParseMonth(date)
	if err != nil {
		return date, err
	}
	return t.AddDate(0, months, 0).Format(DateTimeLayout), nil
}

// MonthSequence returns count consecutive YYYY-MM months beginning at start.
func MonthSequence(start string, count int) ([]string, error) {
	if count < 0 {
		return nil, fmt.Errorf("month count must not be negative, got %d", count)
	}
	startT, err := ParseMonth(start)
	if err != nil {
		return nil, err
	}
	months := make([]string, count)
	for i := range months {
		months[i] = startT.AddDate(0, i, 0).Format(DateTimeLayout)
	}
	return months, nil
}
