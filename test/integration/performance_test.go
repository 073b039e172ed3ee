package integration

import (
	"os"
	"testing"
	"time"

	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"go.uber.org/zap"
)

// TestMain runs the integration tests.
func TestMain(m *testing.M) {
	code := m.Run()
	os.Exit(code)
}

// TestLongTermPerformance makes sure the longest accepted term stays quick.
func TestLongTermPerformance(t *testing.T) {
	terms := amortization.NewLoanTerms(1000000, 18, 100)

	for _, arithmetic := range amortization.KnownArithmetics {
		calc := amortization.NewCalculator(zap.NewNop(), arithmetic)

		start := time.Now()
		result, err := calc.Calculate(terms)
		elapsed := time.Since(start)
		if err != nil {
			t.Fatalf("Calculate(%s) error = %v", arithmetic, err)
		}
		if result.Len() != 1200 {
			t.Fatalf("Calculate(%s) produced %d rows, expected 1200", arithmetic, result.Len())
		}
		if elapsed > 5*time.Second {
			t.Errorf("Calculate(%s) took %v, expected well under 5s", arithmetic, elapsed)
		}
		t.Logf("%s: 1200 periods in %v", arithmetic, elapsed)
	}
}

func BenchmarkCalculateMortgage(b *testing.B) {
	calc := amortization.NewCalculator(zap.NewNop(), amortization.ArithmeticDecimal)
	terms := amortization.NewLoanTerms(250000, 5.25, 30)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := calc.Calculate(terms); err != nil {
			b.Fatal(err)
		}
	}
}
