package integration

import (
	"math"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/zinswerk/zinsrechner/internal/calculator"
	"github.com/zinswerk/zinsrechner/internal/validation"
	"github.com/zinswerk/zinsrechner/pkg/output"
	"github.com/zinswerk/zinsrechner/pkg/testutil"
)

// TestFullCalculationFlow runs the complete pipeline the way the CLI and
// the HTTP server do: German string input, validation, projection, tax
// estimate, and rendered output.
func TestFullCalculationFlow(t *testing.T) {
	logger := zap.NewNop()
	engine := validation.NewEngine(logger)
	service := calculator.NewService(engine, logger)

	values := map[validation.FieldName]any{
		validation.FieldPrincipal:      "10.000,00 €",
		validation.FieldMonthlyPayment: "250,00",
		validation.FieldAnnualRate:     "4,5 %",
		validation.FieldYears:          "10",
	}

	result := engine.ValidateFields(values)
	if !result.IsValid {
		t.Fatalf("expected valid form, got errors: %v", result.Errors)
	}

	form := validation.CalculatorForm{CompoundFrequency: 12}
	form.Principal, _ = engine.NumberValue(validation.FieldPrincipal, values[validation.FieldPrincipal])
	form.MonthlyPayment, _ = engine.NumberValue(validation.FieldMonthlyPayment, values[validation.FieldMonthlyPayment])
	form.AnnualRate, _ = engine.NumberValue(validation.FieldAnnualRate, values[validation.FieldAnnualRate])
	form.Years, _ = engine.NumberValue(validation.FieldYears, values[validation.FieldYears])

	if form.Principal != 10000 {
		t.Errorf("Principal = %v, expected 10000", form.Principal)
	}
	if form.AnnualRate != 4.5 {
		t.Errorf("AnnualRate = %v, expected 4.5", form.AnnualRate)
	}

	outcome, _, err := service.Calculate(form, true, calculator.TaxOptions{})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if outcome == nil || outcome.Projection == nil {
		t.Fatal("expected a projection for a valid form")
	}

	proj := outcome.Projection
	if len(proj.Years) != 10 {
		t.Fatalf("expected 10 year rows, got %d", len(proj.Years))
	}
	if proj.TotalContributions != 10000+120*250 {
		t.Errorf("TotalContributions = %v, expected 40000", proj.TotalContributions)
	}
	if proj.FinalBalance <= proj.TotalContributions {
		t.Errorf("FinalBalance %v should exceed contributions %v", proj.FinalBalance, proj.TotalContributions)
	}

	// Year rows chain: each year starts where the previous one ended.
	for i := 1; i < len(proj.Years); i++ {
		prev := proj.Years[i-1]
		cur := proj.Years[i]
		if math.Abs(prev.EndBalance-cur.StartBalance) > 0.01 {
			t.Errorf("year %d starts at %v but year %d ended at %v",
				cur.Year, cur.StartBalance, prev.Year, prev.EndBalance)
		}
	}

	lastYear := testutil.FindYear(proj, 10)
	if lastYear == nil {
		t.Fatal("expected a row for year 10")
	}
	if math.Abs(lastYear.EndBalance-proj.FinalBalance) > 0.01 {
		t.Errorf("final year EndBalance %v != FinalBalance %v", lastYear.EndBalance, proj.FinalBalance)
	}

	if outcome.Tax == nil {
		t.Fatal("expected a tax estimate")
	}
	if outcome.Tax.TotalTax <= 0 {
		t.Errorf("expected positive tax on %v interest", proj.TotalInterest)
	}

	var pretty strings.Builder
	output.PrettyFormat(&pretty, outcome)
	if !strings.Contains(pretty.String(), "Endkapital") {
		t.Error("pretty output missing summary section")
	}

	var csv strings.Builder
	output.CsvFormat(&csv, outcome)
	lines := strings.Split(strings.TrimSpace(csv.String()), "\n")
	if len(lines) != 11 {
		t.Errorf("expected header plus 10 CSV rows, got %d", len(lines))
	}
}

// TestValidationGate verifies that an invalid form never reaches the
// calculator.
func TestValidationGate(t *testing.T) {
	logger := zap.NewNop()
	engine := validation.NewEngine(logger)
	service := calculator.NewService(engine, logger)

	form := validation.CalculatorForm{
		Principal:         -5000,
		AnnualRate:        4,
		Years:             10,
		CompoundFrequency: 12,
	}

	outcome, result, err := service.Calculate(form, false, calculator.TaxOptions{})
	if err != nil {
		t.Fatalf("Calculate returned error: %v", err)
	}
	if outcome != nil {
		t.Error("expected no outcome for an invalid form")
	}
	if result.IsValid {
		t.Error("expected invalid result")
	}
	if !testutil.HasError(result, validation.FieldPrincipal, validation.CodeNegativeAmount) {
		t.Errorf("expected negative_amount error on principal, got %v", result.Errors)
	}
}

// TestWarningsSurviveTheGate verifies that implausible but valid values
// calculate and keep their warnings.
func TestWarningsSurviveTheGate(t *testing.T) {
	logger := zap.NewNop()
	engine := validation.NewEngine(logger)
	service := calculator.NewService(engine, logger)

	form := validation.CalculatorForm{
		Principal:         1000,
		AnnualRate:        18,
		Years:             10,
		CompoundFrequency: 12,
	}

	outcome, result, err := service.Calculate(form, false, calculator.TaxOptions{})
	if err != nil {
		t.Fatalf("Calculate failed: %v", err)
	}
	if outcome == nil {
		t.Fatal("warnings must not block calculation")
	}
	if !testutil.HasWarning(result, validation.FieldAnnualRate, validation.CodeHighRate) {
		t.Errorf("expected high_rate warning, got %v", result.Warnings)
	}
}
