package integration

import (
	"bufio"
	"strings"
	"testing"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"github.com/iwvelando/loan-calculator/pkg/testutil"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TestMainIntegrationBaseline runs the configuration through the calculator
// and CSV output exactly as main() does and checks known values.
func TestMainIntegrationBaseline(t *testing.T) {
	logger := zap.NewNop()

	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("ValidateConfiguration() warnings = %v", warnings)
	}
	if err := conf.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	calc := amortization.NewCalculator(logger, conf.Arithmetic())
	result, err := calc.Calculate(conf.LoanTerms())
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	if violations := testutil.ScheduleViolations(result); len(violations) != 0 {
		t.Fatalf("schedule violations: %v", violations)
	}

	baselineChecks := []struct {
		name     string
		got      decimal.Decimal
		expected string
	}{
		{"periodic payment", result.PeriodicPayment(), "1380.51"},
		{"total payment", result.TotalPayment(), "496983.60"},
		{"first interest", result.Row(0).Interest, "1093.75"},
		{"first principal", result.Row(0).Principal, "286.76"},
		{"first balance", result.Row(0).RemainingBalance, "249713.24"},
		{"final balance", result.Row(359).RemainingBalance, "0.00"},
	}
	for _, check := range baselineChecks {
		if got := check.got.StringFixed(2); got != check.expected {
			t.Errorf("%s = %s, expected %s", check.name, got, check.expected)
		}
	}

	validateCSV(t, output.CsvString(result))
}

func validateCSV(t *testing.T, csv string) {
	t.Helper()

	scanner := bufio.NewScanner(strings.NewReader(csv))
	lines := 0
	var first, last string
	for scanner.Scan() {
		switch lines {
		case 0:
			if !strings.HasPrefix(scanner.Text(), `"Period","Due Date",`) {
				t.Errorf("unexpected CSV header: %s", scanner.Text())
			}
		case 1:
			first = scanner.Text()
		}
		last = scanner.Text()
		lines++
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("failed to scan CSV: %v", err)
	}

	if lines != 361 {
		t.Errorf("expected 361 CSV lines, got %d", lines)
	}
	if first != `"1","2025-01","5.25","1380.51","1093.75","286.76","249713.24"` {
		t.Errorf("unexpected first CSV row: %s", first)
	}
	if !strings.HasPrefix(last, `"360","2054-12",`) || !strings.HasSuffix(last, `,"0.00"`) {
		t.Errorf("unexpected last CSV row: %s", last)
	}
}

// TestArithmeticModesAgree checks that float and decimal schedules stay
// within a cent of each other row by row.
func TestArithmeticModesAgree(t *testing.T) {
	conf, err := config.LoadConfiguration("../test_config.yaml")
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	terms := conf.LoanTerms()

	decimalResult, err := amortization.NewCalculator(zap.NewNop(), amortization.ArithmeticDecimal).Calculate(terms)
	if err != nil {
		t.Fatalf("Calculate(decimal) error = %v", err)
	}
	floatResult, err := amortization.NewCalculator(zap.NewNop(), amortization.ArithmeticFloat).Calculate(terms)
	if err != nil {
		t.Fatalf("Calculate(float) error = %v", err)
	}

	if !decimalResult.PeriodicPayment().Equal(floatResult.PeriodicPayment()) {
		t.Fatalf("payments differ: decimal %s, float %s", decimalResult.PeriodicPayment(), floatResult.PeriodicPayment())
	}
	cent := decimal.New(1, -2)
	for i := 0; i < decimalResult.Len(); i++ {
		d := decimalResult.Row(i).RemainingBalance
		f := floatResult.Row(i).RemainingBalance
		if d.Sub(f).Abs().GreaterThan(cent) {
			t.Fatalf("period %d balances differ: decimal %s, float %s", i+1, d, f)
		}
	}
}
