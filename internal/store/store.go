// Package store persists calculation history and the seeded church-tax
// rate table in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/zinswerk/zinsrechner/internal/calculator"
	"github.com/zinswerk/zinsrechner/internal/validation"
	"github.com/zinswerk/zinsrechner/pkg/constants"
)

// CalculationRecord is one persisted calculation: the validated inputs
// together with the projection headline numbers.
type CalculationRecord struct {
	ID                 string    `json:"id"`
	CreatedAt          time.Time `json:"createdAt"`
	Principal          float64   `json:"principal"`
	MonthlyPayment     float64   `json:"monthlyPayment"`
	AnnualRate         float64   `json:"annualRate"`
	Years              float64   `json:"years"`
	CompoundFrequency  int       `json:"compoundFrequency"`
	FinalBalance       float64   `json:"finalBalance"`
	TotalContributions float64   `json:"totalContributions"`
	TotalInterest      float64   `json:"totalInterest"`
	TotalTax           float64   `json:"totalTax"`
}

// ChurchTaxRate is a seeded Kirchensteuer rate for one federal state.
type ChurchTaxRate struct {
	State string  `json:"state"`
	Rate  float64 `json:"rate"`
}

// Store wraps the SQLite database.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// Open opens (or creates) the SQLite database at path, applies the
// schema, and seeds the church-tax table.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Debug("store ready",
		zap.String("op", "store.Open"),
		zap.String("path", path),
	)
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate(ctx context.Context) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS calculations (
			id TEXT PRIMARY KEY,
			created_at TIMESTAMP NOT NULL,
			principal REAL NOT NULL,
			monthly_payment REAL NOT NULL,
			annual_rate REAL NOT NULL,
			years REAL NOT NULL,
			compound_frequency INTEGER NOT NULL,
			final_balance REAL NOT NULL,
			total_contributions REAL NOT NULL,
			total_interest REAL NOT NULL,
			total_tax REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calculations_created_at
			ON calculations(created_at DESC)`,
		`CREATE TABLE IF NOT EXISTS kirchensteuer (
			state TEXT PRIMARY KEY,
			rate REAL NOT NULL
		)`,
	}

	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}

	return s.seedChurchTaxRates(ctx)
}

// seedChurchTaxRates inserts the Kirchensteuer rate for every federal
// state. Bayern and Baden-Wuerttemberg levy 8 percent, the rest 9.
func (s *Store) seedChurchTaxRates(ctx context.Context) error {
	rates := map[string]float64{
		"Baden-Württemberg":      constants.KirchensteuerBayernBW,
		"Bayern":                 constants.KirchensteuerBayernBW,
		"Berlin":                 constants.KirchensteuerDefault,
		"Brandenburg":            constants.KirchensteuerDefault,
		"Bremen":                 constants.KirchensteuerDefault,
		"Hamburg":                constants.KirchensteuerDefault,
		"Hessen":                 constants.KirchensteuerDefault,
		"Mecklenburg-Vorpommern": constants.KirchensteuerDefault,
		"Niedersachsen":          constants.KirchensteuerDefault,
		"Nordrhein-Westfalen":    constants.KirchensteuerDefault,
		"Rheinland-Pfalz":        constants.KirchensteuerDefault,
		"Saarland":               constants.KirchensteuerDefault,
		"Sachsen":                constants.KirchensteuerDefault,
		"Sachsen-Anhalt":         constants.KirchensteuerDefault,
		"Schleswig-Holstein":     constants.KirchensteuerDefault,
		"Thüringen":              constants.KirchensteuerDefault,
	}

	for state, rate := range rates {
		_, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO kirchensteuer (state, rate) VALUES (?, ?)`, state, rate)
		if err != nil {
			return fmt.Errorf("failed to seed church tax rates: %w", err)
		}
	}
	return nil
}

// SaveCalculation persists a calculation outcome and returns the stored
// record.
func (s *Store) SaveCalculation(ctx context.Context, form validation.CalculatorForm, outcome *calculator.Outcome) (*CalculationRecord, error) {
	if outcome == nil || outcome.Projection == nil {
		return nil, fmt.Errorf("cannot save calculation without a projection")
	}

	record := &CalculationRecord{
		ID:                 uuid.NewString(),
		CreatedAt:          time.Now().UTC(),
		Principal:          form.Principal,
		MonthlyPayment:     form.MonthlyPayment,
		AnnualRate:         form.AnnualRate,
		Years:              form.Years,
		CompoundFrequency:  form.CompoundFrequency,
		FinalBalance:       outcome.Projection.FinalBalance,
		TotalContributions: outcome.Projection.TotalContributions,
		TotalInterest:      outcome.Projection.TotalInterest,
	}
	if outcome.Tax != nil {
		record.TotalTax = outcome.Tax.TotalTax
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO calculations (
			id, created_at, principal, monthly_payment, annual_rate, years,
			compound_frequency, final_balance, total_contributions, total_interest, total_tax
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.CreatedAt, record.Principal, record.MonthlyPayment,
		record.AnnualRate, record.Years, record.CompoundFrequency,
		record.FinalBalance, record.TotalContributions, record.TotalInterest, record.TotalTax,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to save calculation: %w", err)
	}

	s.logger.Debug("calculation saved",
		zap.String("op", "store.SaveCalculation"),
		zap.String("id", record.ID),
	)
	return record, nil
}

// ListCalculations returns the most recent calculations, newest first.
// A non-positive limit defaults to 20.
func (s *Store) ListCalculations(ctx context.Context, limit int) ([]CalculationRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, principal, monthly_payment, annual_rate, years,
			compound_frequency, final_balance, total_contributions, total_interest, total_tax
		FROM calculations ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list calculations: %w", err)
	}
	defer rows.Close()

	var records []CalculationRecord
	for rows.Next() {
		var r CalculationRecord
		if err := rows.Scan(&r.ID, &r.CreatedAt, &r.Principal, &r.MonthlyPayment,
			&r.AnnualRate, &r.Years, &r.CompoundFrequency,
			&r.FinalBalance, &r.TotalContributions, &r.TotalInterest, &r.TotalTax); err != nil {
			return nil, fmt.Errorf("failed to scan calculation: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// ChurchTaxRates returns the seeded Kirchensteuer rates ordered by state.
func (s *Store) ChurchTaxRates(ctx context.Context) ([]ChurchTaxRate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT state, rate FROM kirchensteuer ORDER BY state`)
	if err != nil {
		return nil, fmt.Errorf("failed to query church tax rates: %w", err)
	}
	defer rows.Close()

	var rates []ChurchTaxRate
	for rows.Next() {
		var r ChurchTaxRate
		if err := rows.Scan(&r.State, &r.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan church tax rate: %w", err)
		}
		rates = append(rates, r)
	}
	return rates, rows.Err()
}

// ChurchTaxRateFor returns the rate for one federal state.
func (s *Store) ChurchTaxRateFor(ctx context.Context, state string) (float64, error) {
	var rate float64
	err := s.db.QueryRowContext(ctx,
		`SELECT rate FROM kirchensteuer WHERE state = ?`, state).Scan(&rate)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("unknown federal state %q", state)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query church tax rate: %w", err)
	}
	return rate, nil
}
