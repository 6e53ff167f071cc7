// Package config defines the application configuration and loads it from
// a YAML file via viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
	"github.com/zinswerk/zinsrechner/pkg/constants"
)

// Configuration holds all configuration for zinsrechner.
type Configuration struct {
	Calculator CalculatorConfig `yaml:"calculator,omitempty"`
	Logging    LoggingConfig    `yaml:"logging,omitempty"`
	Output     OutputConfig     `yaml:"output,omitempty"`
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

// CalculatorConfig holds calculation defaults applied when a request does
// not specify them.
type CalculatorConfig struct {
	CompoundFrequency int     `yaml:"compoundFrequency,omitempty"` // 12, 4, or 1
	ApplyTax          bool    `yaml:"applyTax,omitempty"`
	ChurchTaxRate     float64 `yaml:"churchTaxRate,omitempty"` // percent: 0, 8, or 9
	AllowanceUsed     float64 `yaml:"allowanceUsed,omitempty"` // euros of the Sparerpauschbetrag already consumed
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	viper.SetConfigFile(configPath)
	viper.AutomaticEnv()

	viper.SetConfigType("yml")

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	var configuration Configuration
	err := viper.Unmarshal(&configuration)
	if err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}

	configuration.applyDefaults()
	return &configuration, nil
}

// Default returns a configuration with all defaults applied, for callers
// that operate without a config file.
func Default() *Configuration {
	conf := &Configuration{}
	conf.applyDefaults()
	return conf
}

func (c *Configuration) applyDefaults() {
	if c.Calculator.CompoundFrequency == 0 {
		c.Calculator.CompoundFrequency = constants.CompoundMonthly
	}
	if c.Output.Format == "" {
		c.Output.Format = constants.OutputFormatPretty
	}
}

// ValidateConfiguration performs general validation of the configuration
// and returns warnings. Problems here are advisory; loading still
// succeeds with defaults.
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	switch c.Calculator.CompoundFrequency {
	case constants.CompoundMonthly, constants.CompoundQuarterly, constants.CompoundAnnually:
	default:
		warnings = append(warnings, fmt.Sprintf(
			"compoundFrequency %d is unsupported (expected %d, %d, or %d); falling back to monthly",
			c.Calculator.CompoundFrequency, constants.CompoundMonthly,
			constants.CompoundQuarterly, constants.CompoundAnnually))
		c.Calculator.CompoundFrequency = constants.CompoundMonthly
	}

	switch c.Calculator.ChurchTaxRate {
	case 0, constants.KirchensteuerBayernBW, constants.KirchensteuerDefault:
	default:
		warnings = append(warnings, fmt.Sprintf(
			"churchTaxRate %.1f is not a German church tax rate (expected 0, %.0f, or %.0f)",
			c.Calculator.ChurchTaxRate, constants.KirchensteuerBayernBW, constants.KirchensteuerDefault))
	}

	if c.Calculator.AllowanceUsed < 0 {
		warnings = append(warnings, "allowanceUsed is negative; treating as 0")
		c.Calculator.AllowanceUsed = 0
	}
	if c.Calculator.AllowanceUsed > constants.Sparerpauschbetrag {
		warnings = append(warnings, fmt.Sprintf(
			"allowanceUsed %.2f exceeds the Sparerpauschbetrag of %.2f",
			c.Calculator.AllowanceUsed, constants.Sparerpauschbetrag))
	}

	if c.Output.Format != constants.OutputFormatPretty && c.Output.Format != constants.OutputFormatCSV {
		warnings = append(warnings, fmt.Sprintf(
			"output format %q is unsupported; falling back to %s", c.Output.Format, constants.OutputFormatPretty))
		c.Output.Format = constants.OutputFormatPretty
	}

	return warnings
}
