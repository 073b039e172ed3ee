// Package constants provides shared constants for the loan-calculator application.
package constants

import "time"

// DateTimeLayout is the format expected for loan start dates and is also the
// format of schedule due dates.
const DateTimeLayout = "2006-01"

// Financial constants
const (
	// MonthsPerYear is the number of payment periods in a year
	MonthsPerYear = 12

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0

	// MaxAnnualRatePercent is the highest accepted annual interest rate
	MaxAnnualRatePercent = 100.0

	// MaxTermYears is the longest accepted loan term
	MaxTermYears = 100

	// CurrencyPlaces is the number of decimal places of the smallest currency unit
	CurrencyPlaces int32 = 2

	// WorkingPlaces is the number of decimal places kept for intermediate
	// schedule values in decimal arithmetic
	WorkingPlaces int32 = 16

	// CompoundingPlaces is the number of decimal places kept while raising the
	// compounding factor to the period count
	CompoundingPlaces int32 = 32

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01
)

// Arithmetic constants
const (
	// ArithmeticDecimal computes the schedule with arbitrary-precision decimals
	ArithmeticDecimal = "decimal"

	// ArithmeticFloat computes the schedule with float64
	ArithmeticFloat = "float"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

// DefaultCurrency is the currency code used when none is configured.
const DefaultCurrency = "USD"

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// DefaultServerConfigFile is the default server configuration file name
	DefaultServerConfigFile = "server-config.yaml"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxBodySizeBytes is the default maximum request body size (64 KB)
	DefaultMaxBodySizeBytes int64 = 64 * 1024

	// DefaultCacheTTL is how long a computed schedule stays cached
	DefaultCacheTTL = 24 * time.Hour

	// DefaultJobWorkers is the default number of background calculation workers
	DefaultJobWorkers = 4

	// DefaultJobQueueSize is the default number of jobs that may wait for a worker
	DefaultJobQueueSize = 64

	// DefaultJobRetention is how long a finished background job stays queryable
	DefaultJobRetention = time.Hour
)
