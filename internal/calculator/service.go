package calculator

import (
	"github.com/zinswerk/zinsrechner/internal/validation"
	"go.uber.org/zap"
)

// Outcome bundles a projection with its optional tax estimate.
type Outcome struct {
	Projection *Projection  `json:"projection"`
	Tax        *TaxEstimate `json:"tax,omitempty"`
}

// Service ties the validation engine to the calculator: validation always
// completes first, and a failed validation prevents the calculation from
// running at all.
type Service struct {
	engine *validation.Engine
	calc   *Calculator
	logger *zap.Logger
}

// NewService constructs the calculation invoker around an engine.
func NewService(engine *validation.Engine, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if engine == nil {
		engine = validation.NewEngine(logger)
	}
	return &Service{
		engine: engine,
		calc:   New(logger),
		logger: logger,
	}
}

// Engine exposes the underlying validation engine, e.g. for the live
// advisory endpoint.
func (s *Service) Engine() *validation.Engine {
	return s.engine
}

// Calculate validates the form and, only when it is valid, computes the
// projection and tax estimate. On validation failure the outcome is nil
// and the result carries the blocking errors; warnings and suggestions
// ride along either way. withTax selects whether a tax estimate is
// attached.
func (s *Service) Calculate(form validation.CalculatorForm, withTax bool, taxOpts TaxOptions) (*Outcome, validation.Result, error) {
	result := s.engine.ValidateCalculatorForm(form)
	if !result.IsValid {
		s.logger.Debug("calculation blocked by validation",
			zap.String("op", "calculator.Calculate"),
			zap.Int("errors", len(result.Errors)),
		)
		return nil, result, nil
	}

	proj, err := s.calc.Project(form)
	if err != nil {
		return nil, result, err
	}

	outcome := &Outcome{Projection: proj}
	if withTax {
		tax := EstimateTax(proj, taxOpts)
		outcome.Tax = &tax
	}

	return outcome, result, nil
}
