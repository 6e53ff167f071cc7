package testutil

import (
	"testing"

	"github.com/zinswerk/zinsrechner/internal/calculator"
	"github.com/zinswerk/zinsrechner/internal/validation"
)

func TestFindYear(t *testing.T) {
	proj := &calculator.Projection{
		Years: []calculator.YearRow{
			{Year: 1, EndBalance: 1040},
			{Year: 2, EndBalance: 1081.60},
		},
	}

	row := FindYear(proj, 2)
	if row == nil {
		t.Fatal("expected to find year 2")
	}
	if row.EndBalance != 1081.60 {
		t.Errorf("EndBalance = %v, expected 1081.60", row.EndBalance)
	}

	if FindYear(proj, 3) != nil {
		t.Error("expected nil for missing year")
	}
	if FindYear(nil, 1) != nil {
		t.Error("expected nil for nil projection")
	}
}

func TestFindingPredicates(t *testing.T) {
	result := validation.NewResult()
	result.AddError(validation.FieldError{
		Field: validation.FieldPrincipal,
		Code:  validation.CodeRequired,
	})
	result.AddWarning(validation.Warning{
		Field: validation.FieldAnnualRate,
		Code:  "high_rate",
	})
	result.AddSuggestion(validation.Suggestion{
		Field: validation.FieldYears,
		Code:  "fractional_years",
	})

	if !HasError(result, validation.FieldPrincipal, validation.CodeRequired) {
		t.Error("expected error predicate to match")
	}
	if HasError(result, validation.FieldYears, validation.CodeRequired) {
		t.Error("error predicate matched the wrong field")
	}
	if !HasWarning(result, validation.FieldAnnualRate, "high_rate") {
		t.Error("expected warning predicate to match")
	}
	if !HasSuggestion(result, validation.FieldYears, "fractional_years") {
		t.Error("expected suggestion predicate to match")
	}
}
