// Package config defines the data structures related to configuration and
// includes functions for loading and parsing the config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// DateTimeLayout is the format expected in config files for the loan start
// date and is also the schedule due date format.
const DateTimeLayout = constants.DateTimeLayout

// Configuration holds all configuration for loan-calculator.
type Configuration struct {
	Loan        LoanConfig        `yaml:"loan"`
	Calculation CalculationConfig `yaml:"calculation,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
	Output      OutputConfig      `yaml:"output,omitempty"`
}

// LoanConfig holds the terms of the loan to amortize.
type LoanConfig struct {
	Principal         float64 `yaml:"principal"`
	AnnualRatePercent float64 `yaml:"annualRatePercent"`
	TermYears         float64 `yaml:"termYears"`
	Currency          string  `yaml:"currency,omitempty"`  // USD, EUR, CAD
	StartDate         string  `yaml:"startDate,omitempty"` // YYYY-MM of the first payment
}

// CalculationConfig holds calculation options
type CalculationConfig struct {
	Arithmetic string `yaml:"arithmetic,omitempty"` // decimal, float
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config, %s", err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix("LOAN_CALCULATOR")
	// loan.principal is read from LOAN_CALCULATOR_LOAN_PRINCIPAL
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("loan.currency", constants.DefaultCurrency)
	v.SetDefault("calculation.arithmetic", constants.ArithmeticDecimal)
	v.SetDefault("output.format", constants.OutputFormatPretty)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	err := v.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	return &configuration, nil
}

// LoanTerms converts the loan section into calculator input.
func (c *Configuration) LoanTerms() amortization.LoanTerms {
	terms := amortization.LoanTerms{
		Principal:         decimal.NewFromFloat(c.Loan.Principal),
		AnnualRatePercent: decimal.NewFromFloat(c.Loan.AnnualRatePercent),
		TermYears:         decimal.NewFromFloat(c.Loan.TermYears),
		StartDate:         c.Loan.StartDate,
	}
	return terms
}

// Arithmetic returns the configured number representation. Values Validate
// rejects fall back to decimal.
func (c *Configuration) Arithmetic() amortization.Arithmetic {
	arithmetic, err := amortization.ParseArithmetic(c.Calculation.Arithmetic)
	if err != nil {
		return amortization.ArithmeticDecimal
	}
	return arithmetic
}

// Validate rejects configuration the calculator cannot run with.
func (c *Configuration) Validate() error {
	if err := c.LoanTerms().Validate(); err != nil {
		return err
	}
	if err := validation.ValidateArithmetic(c.Calculation.Arithmetic); err != nil {
		return err
	}
	if c.Output.Format != "" {
		if err := validation.ValidateOutputFormat(c.Output.Format); err != nil {
			return err
		}
	}
	return nil
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	inputs := validation.LoanInputs{
		Principal:         c.Loan.Principal,
		AnnualRatePercent: c.Loan.AnnualRatePercent,
		TermYears:         c.Loan.TermYears,
		Currency:          c.Loan.Currency,
		StartDate:         c.Loan.StartDate,
	}
	return inputs.ValidateAll()
}
