// Package output provides utilities for formatting and displaying amortization results.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/format"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CSV column names. The due date column is only written when the schedule
// carries due dates.
const (
	ColumnPeriod           = "Period"
	ColumnDueDate          = "Due Date"
	ColumnInterestRate     = "Interest Rate (%)"
	ColumnPayment          = "Payment"
	ColumnInterest         = "Interest"
	ColumnPrincipal        = "Principal"
	ColumnRemainingBalance = "Remaining Balance"
)

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, result *amortization.Result, currency string) error {
	p := message.NewPrinter(language.English)
	symbol := format.Symbol(currency)
	rows := result.Rows()

	header := []string{
		fmt.Sprintf("Monthly payment:    %s", format.Currency(result.PeriodicPayment(), currency)),
		fmt.Sprintf("Total payment:      %s", format.Currency(result.TotalPayment(), currency)),
		fmt.Sprintf("Total interest:     %s", format.Currency(result.TotalInterest(), currency)),
		fmt.Sprintf("Number of payments: %d", len(rows)),
		"",
		"Period | Due     | Rate (%) | Payment | Interest | Principal | Balance",
		"______ | _______ | ________ | _______ | ________ | _________ | _______",
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, "\n")); err != nil {
		return err
	}

	for _, row := range rows {
		due := row.DueDate
		if due == "" {
			due = "-"
		}
		_, err := p.Fprintf(w, "%6d | %-7s | %8.2f | %s%s | %s%s | %s%s | %s%s\n",
			row.Period,
			due,
			row.InterestRatePercent.InexactFloat64(),
			symbol, format.NumericCurrency(row.Payment),
			symbol, format.NumericCurrency(row.Interest),
			symbol, format.NumericCurrency(row.Principal),
			symbol, format.NumericCurrency(row.RemainingBalance),
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat outputs in comma-separated value format: one header row of field
// names, then one row per period with amounts at two decimal places.
func CsvFormat(w io.Writer, result *amortization.Result) error {
	rows := result.Rows()
	withDueDates := len(rows) > 0 && rows[0].DueDate != ""

	columns := []string{ColumnPeriod}
	if withDueDates {
		columns = append(columns, ColumnDueDate)
	}
	columns = append(columns, ColumnInterestRate, ColumnPayment, ColumnInterest, ColumnPrincipal, ColumnRemainingBalance)
	if _, err := fmt.Fprintln(w, quoteAll(columns)); err != nil {
		return err
	}

	for _, row := range rows {
		fields := []string{fmt.Sprintf("%d", row.Period)}
		if withDueDates {
			fields = append(fields, row.DueDate)
		}
		fields = append(fields,
			fixed(row.InterestRatePercent),
			fixed(row.Payment),
			fixed(row.Interest),
			fixed(row.Principal),
			fixed(row.RemainingBalance),
		)
		if _, err := fmt.Fprintln(w, quoteAll(fields)); err != nil {
			return err
		}
	}
	return nil
}

// CsvString returns the CsvFormat output as a string.
func CsvString(result *amortization.Result) string {
	var builder strings.Builder
	// strings.Builder never fails a write
	_ = CsvFormat(&builder, result)
	return builder.String()
}

func quoteAll(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
	}
	return strings.Join(quoted, ",")
}

func fixed(value decimal.Decimal) string {
	return value.StringFixed(constants.CurrencyPlaces)
}
