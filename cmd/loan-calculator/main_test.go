package main

import (
	"testing"

	"github.com/iwvelando/loan-calculator/internal/config"
)

func TestParseFlagsOverrides(t *testing.T) {
	f, err := parseFlags([]string{"-principal", "1200", "-rate", "0", "-years", "1", "-currency", "EUR", "-output-format", "csv"})
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if !f.loanFlagsGiven() {
		t.Fatalf("expected loan flags to be recognized")
	}

	conf := &config.Configuration{
		Loan: config.LoanConfig{Principal: 250000, AnnualRatePercent: 5.25, TermYears: 30, StartDate: "2025-01"},
	}
	f.apply(conf)

	if conf.Loan.Principal != 1200 || conf.Loan.AnnualRatePercent != 0 || conf.Loan.TermYears != 1 {
		t.Errorf("apply() loan = %+v, expected flag values", conf.Loan)
	}
	if conf.Loan.StartDate != "2025-01" {
		t.Errorf("apply() should keep unset values, got start date %q", conf.Loan.StartDate)
	}
	if conf.Loan.Currency != "EUR" {
		t.Errorf("apply() currency = %s, expected EUR", conf.Loan.Currency)
	}
	if conf.Output.Format != "csv" {
		t.Errorf("apply() output format = %s, expected csv", conf.Output.Format)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	f, err := parseFlags(nil)
	if err != nil {
		t.Fatalf("parseFlags() error = %v", err)
	}
	if f.loanFlagsGiven() {
		t.Errorf("expected no loan flags")
	}
	if f.configLocation != "config.yaml" {
		t.Errorf("configLocation = %s, expected config.yaml", f.configLocation)
	}

	conf := &config.Configuration{}
	f.apply(conf)
	if conf.Output.Format != "pretty" {
		t.Errorf("apply() output format = %s, expected pretty", conf.Output.Format)
	}
	if conf.Loan.Currency != "USD" {
		t.Errorf("apply() currency = %s, expected USD", conf.Loan.Currency)
	}
}

func TestParseFlagsInvalid(t *testing.T) {
	if _, err := parseFlags([]string{"-principal", "lots"}); err == nil {
		t.Errorf("parseFlags() expected error for non-numeric principal")
	}
}
