package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/iwvelando/loan-calculator/internal/config"
	"github.com/iwvelando/loan-calculator/internal/logging"
	"github.com/iwvelando/loan-calculator/pkg/amortization"
	"github.com/iwvelando/loan-calculator/pkg/constants"
	"github.com/iwvelando/loan-calculator/pkg/output"
	"github.com/iwvelando/loan-calculator/pkg/validation"
	"go.uber.org/zap"
)

type flags struct {
	configLocation string
	principal      float64
	rate           float64
	years          float64
	currency       string
	startDate      string
	arithmetic     string
	outputFormat   string
	logLevel       string
	set            map[string]bool
}

func parseFlags(args []string) (*flags, error) {
	f := &flags{}
	fs := flag.NewFlagSet("loan-calculator", flag.ContinueOnError)
	fs.StringVar(&f.configLocation, "config", constants.DefaultConfigFile, "path to configuration file")
	fs.Float64Var(&f.principal, "principal", 0, "loan principal override")
	fs.Float64Var(&f.rate, "rate", 0, "annual interest rate override, in percent")
	fs.Float64Var(&f.years, "years", 0, "loan term override, in years")
	fs.StringVar(&f.currency, "currency", "", "display currency override: USD, EUR, CAD")
	fs.StringVar(&f.startDate, "start-date", "", "month of the first payment override (YYYY-MM)")
	fs.StringVar(&f.arithmetic, "arithmetic", "", "arithmetic override: decimal, float")
	fs.StringVar(&f.outputFormat, "output-format", "", "type of output override: pretty, csv")
	fs.StringVar(&f.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	f.set = make(map[string]bool)
	fs.Visit(func(fl *flag.Flag) {
		f.set[fl.Name] = true
	})
	return f, nil
}

// loanFlagsGiven reports whether the flags alone describe a loan.
func (f *flags) loanFlagsGiven() bool {
	return f.set["principal"] && f.set["rate"] && f.set["years"]
}

// apply overlays explicitly set flags onto the configuration.
func (f *flags) apply(conf *config.Configuration) {
	if f.set["principal"] {
		conf.Loan.Principal = f.principal
	}
	if f.set["rate"] {
		conf.Loan.AnnualRatePercent = f.rate
	}
	if f.set["years"] {
		conf.Loan.TermYears = f.years
	}
	if f.set["currency"] {
		conf.Loan.Currency = f.currency
	}
	if f.set["start-date"] {
		conf.Loan.StartDate = f.startDate
	}
	if f.set["arithmetic"] {
		conf.Calculation.Arithmetic = f.arithmetic
	}
	if f.outputFormat != "" {
		conf.Output.Format = f.outputFormat
	}
	if conf.Output.Format == "" {
		conf.Output.Format = constants.OutputFormatPretty
	}
	if conf.Loan.Currency == "" {
		conf.Loan.Currency = constants.DefaultCurrency
	}
}

func main() {
	// Process command line flags first to get config location
	f, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	// Load the config file to get logging configuration
	conf, err := config.LoadConfiguration(f.configLocation)
	if err != nil {
		if !f.loanFlagsGiven() {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", f.configLocation, err)
			os.Exit(1)
		}
		conf = &config.Configuration{}
	}
	f.apply(conf)

	// Initialize logging based on config and CLI override
	logger, err := logging.New(conf.Logging, f.logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	if err := validation.ValidateOutputFormat(conf.Output.Format); err != nil {
		logger.Fatal(err.Error(),
			zap.String("op", "main"),
		)
	}

	// Validate configuration and display any warnings
	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if err := conf.Validate(); err != nil {
		logger.Fatal("invalid loan configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	calc := amortization.NewCalculator(logger, conf.Arithmetic())
	result, err := calc.Calculate(conf.LoanTerms())
	if err != nil {
		logger.Fatal("failed to compute amortization schedule",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	if conf.Loan.StartDate != "" {
		if maturity, err := validation.MaturityDate(conf.Loan.StartDate, result.Len()); err == nil {
			logger.Info("final payment due",
				zap.String("op", "main"),
				zap.String("maturityDate", maturity),
			)
		}
	}

	// Handle output.
	switch conf.Output.Format {
	case constants.OutputFormatPretty:
		err = output.PrettyFormat(os.Stdout, result, conf.Loan.Currency)
	case constants.OutputFormatCSV:
		err = output.CsvFormat(os.Stdout, result)
	}
	if err != nil {
		logger.Fatal("failed to write output",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
