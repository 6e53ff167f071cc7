// Package calculator computes compound-interest projections and German
// capital-gains tax estimates for validated calculator forms.
package calculator

import (
	"fmt"
	"math"

	"github.com/zinswerk/zinsrechner/internal/validation"
	"github.com/zinswerk/zinsrechner/pkg/constants"
	"github.com/zinswerk/zinsrechner/pkg/mathutil"
	"go.uber.org/zap"
)

// YearRow captures one projection year.
type YearRow struct {
	Year          int     `json:"year"`
	StartBalance  float64 `json:"startBalance"`
	Contributions float64 `json:"contributions"`
	Interest      float64 `json:"interest"`
	EndBalance    float64 `json:"endBalance"`
}

// Projection is the result of a compound-interest simulation.
type Projection struct {
	FinalBalance       float64   `json:"finalBalance"`
	TotalContributions float64   `json:"totalContributions"`
	TotalInterest      float64   `json:"totalInterest"`
	RealFinalBalance   float64   `json:"realFinalBalance,omitempty"`
	Years              []YearRow `json:"years"`
}

// Calculator runs projections. Construct with New; a nil logger falls
// back to a no-op logger.
type Calculator struct {
	logger *zap.Logger
}

// New creates a Calculator.
func New(logger *zap.Logger) *Calculator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Calculator{logger: logger}
}

// Project simulates the form month by month: contributions are credited
// at the start of each month and interest is credited at each compounding
// boundary on the running balance. The form is expected to have passed
// validation; structurally impossible inputs still return an error rather
// than a bogus projection.
func (c *Calculator) Project(form validation.CalculatorForm) (*Projection, error) {
	if form.Years <= 0 {
		return nil, fmt.Errorf("years must be positive, got %v", form.Years)
	}

	frequency := form.CompoundFrequency
	if frequency == 0 {
		frequency = constants.CompoundMonthly
	}
	switch frequency {
	case constants.CompoundMonthly, constants.CompoundQuarterly, constants.CompoundAnnually:
	default:
		return nil, fmt.Errorf("unsupported compound frequency %d", frequency)
	}

	months := int(math.Round(form.Years * constants.MonthsPerYear))
	if months < 1 {
		months = 1
	}
	monthsPerPeriod := constants.MonthsPerYear / frequency
	periodicRate := form.AnnualRate / constants.PercentageMultiplier / float64(frequency)

	c.logger.Debug("starting projection",
		zap.String("op", "calculator.Project"),
		zap.Int("months", months),
		zap.Int("frequency", frequency),
	)

	proj := &Projection{}
	balance := form.Principal

	yearStart := balance
	yearContributions := 0.0
	yearInterest := 0.0

	for month := 1; month <= months; month++ {
		balance += form.MonthlyPayment
		yearContributions += form.MonthlyPayment

		if month%monthsPerPeriod == 0 {
			interest := balance * periodicRate
			balance += interest
			yearInterest += interest
		}

		if month%constants.MonthsPerYear == 0 || month == months {
			proj.Years = append(proj.Years, YearRow{
				Year:          (month + constants.MonthsPerYear - 1) / constants.MonthsPerYear,
				StartBalance:  mathutil.Round(yearStart),
				Contributions: mathutil.Round(yearContributions),
				Interest:      mathutil.Round(yearInterest),
				EndBalance:    mathutil.Round(balance),
			})
			yearStart = balance
			yearContributions = 0
			yearInterest = 0
		}
	}

	proj.FinalBalance = mathutil.Round(balance)
	proj.TotalContributions = mathutil.Round(form.Principal + float64(months)*form.MonthlyPayment)
	proj.TotalInterest = mathutil.Round(proj.FinalBalance - proj.TotalContributions)

	if form.InflationRate != 0 {
		deflator := math.Pow(1+form.InflationRate/constants.PercentageMultiplier, form.Years)
		if deflator > 0 {
			proj.RealFinalBalance = mathutil.Round(proj.FinalBalance / deflator)
		}
	}

	return proj, nil
}
