package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/zinswerk/zinsrechner/internal/calculator"
	"github.com/zinswerk/zinsrechner/internal/config"
	"github.com/zinswerk/zinsrechner/internal/server"
	"github.com/zinswerk/zinsrechner/internal/store"
	"github.com/zinswerk/zinsrechner/internal/validation"
	"github.com/zinswerk/zinsrechner/pkg/constants"
	"github.com/zinswerk/zinsrechner/pkg/output"
)

// initializeLogger creates a zap logger based on configuration and CLI override
func initializeLogger(loggingConfig config.LoggingConfig, logLevelOverride string) (*zap.Logger, error) {
	// Determine log level (CLI override takes precedence)
	level := loggingConfig.Level
	if logLevelOverride != "" {
		level = logLevelOverride
	}
	if level == "" {
		level = "info"
	}

	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn", "warning":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		return nil, fmt.Errorf("invalid log level: %s", level)
	}

	format := loggingConfig.Format
	if format == "" {
		format = "json"
	}

	var zapConfig zap.Config
	switch format {
	case "console":
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	case "json":
		zapConfig = zap.NewProductionConfig()
		zapConfig.Level = zap.NewAtomicLevelAt(zapLevel)
	default:
		return nil, fmt.Errorf("invalid log format: %s", format)
	}

	if loggingConfig.OutputFile != "" {
		if dir := filepath.Dir(loggingConfig.OutputFile); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create log directory %s: %v", dir, err)
			}
		}

		// Test if we can create/write to the file
		if file, err := os.OpenFile(loggingConfig.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %v", loggingConfig.OutputFile, err)
		} else {
			_ = file.Close()
		}

		zapConfig.OutputPaths = []string{loggingConfig.OutputFile}
		zapConfig.ErrorOutputPaths = []string{loggingConfig.OutputFile}
	}

	return zapConfig.Build()
}

func main() {
	configLocation := flag.String("config", constants.DefaultConfigFile, "path to calculator configuration file")
	serverConfigLocation := flag.String("server-config", constants.DefaultServerConfigFile, "path to server configuration file")
	serve := flag.Bool("serve", false, "run the HTTP API server instead of a one-shot calculation")
	outputFormatFlag := flag.String("output-format", "", "type of output override: pretty, csv")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")

	principal := flag.String("principal", "", "starting capital, e.g. 10.000,00")
	monthlyPayment := flag.String("monthly-payment", "", "monthly contribution, e.g. 250,00")
	annualRate := flag.String("rate", "", "annual interest rate in percent, e.g. 4,5")
	years := flag.String("years", "", "investment horizon in years")
	inflationRate := flag.String("inflation", "", "annual inflation rate in percent")
	withTax := flag.Bool("with-tax", false, "apply the Abgeltungsteuer estimate")
	flag.Parse()

	// Environment overrides from a local .env are optional.
	_ = godotenv.Load()

	conf := config.Default()
	if _, err := os.Stat(*configLocation); err == nil {
		conf, err = config.LoadConfiguration(*configLocation)
		if err != nil {
			fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
			os.Exit(1)
		}
	}

	logger, err := initializeLogger(conf.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	warnings := conf.ValidateConfiguration()
	for _, warning := range warnings {
		logger.Warn("Configuration warning: "+warning,
			zap.String("op", "main"),
		)
	}

	if *serve {
		runServer(logger, conf, *serverConfigLocation)
		return
	}

	outputFormat := conf.Output.Format
	if *outputFormatFlag != "" {
		outputFormat = *outputFormatFlag
	}
	if outputFormat != constants.OutputFormatPretty && outputFormat != constants.OutputFormatCSV {
		logger.Fatal("invalid output format, must be pretty or csv",
			zap.String("op", "main"),
			zap.String("format", outputFormat),
		)
	}

	runCalculation(logger, conf, calculationInput{
		principal:      *principal,
		monthlyPayment: *monthlyPayment,
		annualRate:     *annualRate,
		years:          *years,
		inflationRate:  *inflationRate,
		withTax:        *withTax || conf.Calculator.ApplyTax,
		outputFormat:   outputFormat,
	})
}

type calculationInput struct {
	principal      string
	monthlyPayment string
	annualRate     string
	years          string
	inflationRate  string
	withTax        bool
	outputFormat   string
}

func runCalculation(logger *zap.Logger, conf *config.Configuration, in calculationInput) {
	engine := validation.NewEngine(logger)
	service := calculator.NewService(engine, logger)

	values := map[validation.FieldName]any{
		validation.FieldPrincipal:  in.principal,
		validation.FieldAnnualRate: in.annualRate,
		validation.FieldYears:      in.years,
	}
	if in.monthlyPayment != "" {
		values[validation.FieldMonthlyPayment] = in.monthlyPayment
	}
	if in.inflationRate != "" {
		values[validation.FieldInflationRate] = in.inflationRate
	}

	result := engine.ValidateFields(values)
	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "Hinweis (%s): %s\n", w.Field, w.Message)
	}
	for _, s := range result.Suggestions {
		fmt.Fprintf(os.Stderr, "Vorschlag (%s): %s\n", s.Field, s.Message)
	}
	if !result.IsValid {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "Fehler (%s): %s\n", e.Field, e.Message)
		}
		os.Exit(1)
	}

	form := validation.CalculatorForm{CompoundFrequency: conf.Calculator.CompoundFrequency}
	form.Principal, _ = engine.NumberValue(validation.FieldPrincipal, in.principal)
	form.MonthlyPayment, _ = engine.NumberValue(validation.FieldMonthlyPayment, in.monthlyPayment)
	form.AnnualRate, _ = engine.NumberValue(validation.FieldAnnualRate, in.annualRate)
	form.Years, _ = engine.NumberValue(validation.FieldYears, in.years)
	form.InflationRate, _ = engine.NumberValue(validation.FieldInflationRate, in.inflationRate)

	taxOpts := calculator.TaxOptions{
		ChurchTaxRate: conf.Calculator.ChurchTaxRate,
		AllowanceUsed: conf.Calculator.AllowanceUsed,
	}
	outcome, result, err := service.Calculate(form, in.withTax, taxOpts)
	if err != nil {
		logger.Fatal("failed to compute projection",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	if outcome == nil {
		for _, e := range result.Errors {
			fmt.Fprintf(os.Stderr, "Fehler (%s): %s\n", e.Field, e.Message)
		}
		os.Exit(1)
	}

	switch in.outputFormat {
	case constants.OutputFormatPretty:
		output.PrettyFormat(os.Stdout, outcome)
	case constants.OutputFormatCSV:
		output.CsvFormat(os.Stdout, outcome)
	}
}

func runServer(logger *zap.Logger, conf *config.Configuration, serverConfigPath string) {
	srvConf, err := server.LoadConfig(serverConfigPath)
	if err != nil {
		logger.Fatal("failed to load server configuration",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, srvConf.StorePath, logger)
	if err != nil {
		logger.Fatal("failed to open calculation store",
			zap.String("op", "main"),
			zap.String("path", srvConf.StorePath),
			zap.Error(err),
		)
	}
	defer func() {
		_ = st.Close()
	}()

	engine := validation.NewEngine(logger)
	service := calculator.NewService(engine, logger)
	handler := server.NewHandler(logger, service, st, conf.Calculator, srvConf, version)

	if err := server.Run(ctx, logger, srvConf.Address, handler); err != nil {
		logger.Fatal("server terminated",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
}
