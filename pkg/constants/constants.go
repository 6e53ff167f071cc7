// Package constants provides shared constants for the zinsrechner application.
package constants

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPrecision is the precision for currency rounding (2 decimal places)
	DecimalPrecision = 100

	// CurrencyTolerance is the tolerance for currency comparisons (1 cent)
	CurrencyTolerance = 0.01

	// PercentageMultiplier is used for percentage conversions
	PercentageMultiplier = 100.0
)

// Compound frequencies expressed as compounding periods per year.
const (
	// CompoundMonthly compounds twelve times per year
	CompoundMonthly = 12

	// CompoundQuarterly compounds four times per year
	CompoundQuarterly = 4

	// CompoundAnnually compounds once per year
	CompoundAnnually = 1
)

// German capital-gains tax parameters.
const (
	// AbgeltungsteuerRate is the flat capital-gains tax rate in percent
	AbgeltungsteuerRate = 25.0

	// SolidaritaetszuschlagRate is the solidarity surcharge in percent,
	// applied on top of the capital-gains tax amount
	SolidaritaetszuschlagRate = 5.5

	// Sparerpauschbetrag is the annual tax-free allowance on capital
	// gains in euros (single filer, since 2023)
	Sparerpauschbetrag = 1000.0

	// KirchensteuerBayernBW is the church tax rate in percent for
	// Bayern and Baden-Wuerttemberg
	KirchensteuerBayernBW = 8.0

	// KirchensteuerDefault is the church tax rate in percent for all
	// other states
	KirchensteuerDefault = 9.0
)

// Plausibility limits used by the business-rule validators.
const (
	// MaxPlausiblePrincipal is the principal in euros above which a
	// warning is emitted
	MaxPlausiblePrincipal = 10000000.0

	// SuspiciousAnnualRate is the annual interest rate in percent above
	// which a warning is emitted
	SuspiciousAnnualRate = 25.0

	// HighAnnualRate is the annual interest rate in percent above which
	// returns are considered unusually optimistic
	HighAnnualRate = 15.0

	// AdvisoryRateLow and AdvisoryRateHigh bound the rate band suggested
	// for medium-risk investing
	AdvisoryRateLow  = 2.0
	AdvisoryRateHigh = 8.0

	// MaxPlausibleYears is the investment horizon in years above which a
	// warning is emitted
	MaxPlausibleYears = 100

	// MaxYears is the hard upper bound on the investment horizon
	MaxYears = 200

	// SuspiciousInflationRate is the inflation rate in percent above
	// which a warning is emitted
	SuspiciousInflationRate = 10.0

	// SuspiciousPaymentRatio flags a monthly payment exceeding this
	// multiple of the principal
	SuspiciousPaymentRatio = 2.0

	// HighPaymentRatio flags a monthly payment exceeding this fraction
	// of the principal
	HighPaymentRatio = 0.5
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"
)

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

	// DefaultStorePath is the default SQLite database path for the
	// calculation history
	DefaultStorePath = "zinsrechner.db"

	// DefaultMaxRequestBytes is the default maximum JSON request body size (64 KB)
	DefaultMaxRequestBytes int64 = 64 * 1024
)
