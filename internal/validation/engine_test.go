package validation

import (
	"testing"

	"go.uber.org/zap"
)

func TestValidateCalculatorForm(t *testing.T) {
	tests := []struct {
		name          string
		form          CalculatorForm
		expectValid   bool
		expectField   FieldName
		expectNoWarns bool
	}{
		{
			name: "Plausible form",
			form: CalculatorForm{
				Principal:      10000,
				MonthlyPayment: 500,
				AnnualRate:     4.0,
				Years:          10,
			},
			expectValid:   true,
			expectNoWarns: true,
		},
		{
			name: "Negative principal",
			form: CalculatorForm{
				Principal:      -1000,
				MonthlyPayment: 500,
				AnnualRate:     4.0,
				Years:          10,
			},
			expectValid: false,
			expectField: FieldPrincipal,
		},
		{
			name: "Zero years",
			form: CalculatorForm{
				Principal:      10000,
				MonthlyPayment: 500,
				AnnualRate:     4.0,
				Years:          0,
			},
			expectValid: false,
			expectField: FieldYears,
		},
		{
			name: "Tax rate out of range",
			form: CalculatorForm{
				Principal:      10000,
				MonthlyPayment: 500,
				AnnualRate:     4.0,
				Years:          10,
				TaxRate:        150,
			},
			expectValid: false,
			expectField: FieldTaxRate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(zap.NewNop())
			result := engine.ValidateCalculatorForm(tt.form)

			if result.IsValid != tt.expectValid {
				t.Errorf("ValidateCalculatorForm() IsValid = %t, expected %t (errors: %v)",
					result.IsValid, tt.expectValid, result.Errors)
			}
			if tt.expectValid && len(result.Errors) != 0 {
				t.Errorf("expected no errors, got %v", result.Errors)
			}
			if tt.expectNoWarns && len(result.Warnings) != 0 {
				t.Errorf("expected no warnings, got %v", result.Warnings)
			}
			if tt.expectField != "" {
				found := false
				for _, err := range result.Errors {
					if err.Field == tt.expectField {
						found = true
					}
				}
				if !found {
					t.Errorf("expected an error referencing field %q, got %v", tt.expectField, result.Errors)
				}
			}
			// Slices are always populated, never nil.
			if result.Errors == nil || result.Warnings == nil || result.Suggestions == nil {
				t.Error("result slices must be non-nil")
			}
		})
	}
}

func TestValidateBusinessLogic(t *testing.T) {
	tests := []struct {
		name        string
		form        CalculatorForm
		expectCodes []string
	}{
		{
			name: "Payment at half the principal",
			form: CalculatorForm{
				Principal:      1000,
				MonthlyPayment: 500,
				AnnualRate:     5.0,
				Years:          10,
			},
			expectCodes: []string{CodeHighPaymentRatio},
		},
		{
			name: "Optimistic rate",
			form: CalculatorForm{
				Principal:      10000,
				MonthlyPayment: 100,
				AnnualRate:     18.0,
				Years:          10,
			},
			expectCodes: []string{CodeHighRate},
		},
		{
			name: "No heuristics triggered",
			form: CalculatorForm{
				Principal:      10000,
				MonthlyPayment: 100,
				AnnualRate:     4.0,
				Years:          10,
			},
			expectCodes: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := NewEngine(zap.NewNop())
			warnings := engine.ValidateBusinessLogic(tt.form)

			if len(tt.expectCodes) == 0 {
				if len(warnings) != 0 {
					t.Errorf("expected no warnings, got %v", warnings)
				}
				return
			}
			if len(warnings) == 0 {
				t.Fatal("expected warnings, got none")
			}
			for _, code := range tt.expectCodes {
				found := false
				for _, w := range warnings {
					if w.Code == code {
						found = true
					}
				}
				if !found {
					t.Errorf("expected warning code %q, got %v", code, warnings)
				}
			}
		})
	}
}

func TestValidateFieldsUnionsFindings(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	result := engine.ValidateFields(map[FieldName]any{
		FieldPrincipal:  -100.0,
		FieldAnnualRate: 30.0,
		FieldYears:      10.5,
	})

	if result.IsValid {
		t.Error("expected invalid aggregate")
	}
	if len(result.Errors) != 1 || result.Errors[0].Field != FieldPrincipal {
		t.Errorf("errors = %v, expected one principal error", result.Errors)
	}
	if len(result.Warnings) != 1 || result.Warnings[0].Field != FieldAnnualRate {
		t.Errorf("warnings = %v, expected one annualRate warning", result.Warnings)
	}
	if len(result.Suggestions) < 1 {
		t.Errorf("suggestions = %v, expected at least the years rounding hint", result.Suggestions)
	}
	for _, s := range result.Suggestions {
		if s.Field == "" {
			t.Errorf("suggestion missing field origin: %v", s)
		}
	}
}

func TestAddErrorIdempotence(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	err := FieldError{Field: FieldPrincipal, Code: CodeNegativeAmount, Message: "negativ"}
	engine.AddError(err)
	engine.AddError(err)

	if got := len(engine.Errors()); got != 1 {
		t.Errorf("errors after duplicate AddError = %d, expected 1", got)
	}

	// A different code on the same field is a distinct error.
	engine.AddError(FieldError{Field: FieldPrincipal, Code: CodeImplausibleAmount, Message: "hoch"})
	if got := len(engine.Errors()); got != 2 {
		t.Errorf("errors after distinct code = %d, expected 2", got)
	}
}

func TestErrorStateRoundTrip(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	engine.AddError(FieldError{Field: FieldPrincipal, Code: CodeNegativeAmount, Message: "negativ"})
	engine.AddError(FieldError{Field: FieldYears, Code: CodeYearsPositive, Message: "nicht positiv"})

	if engine.FieldError(FieldPrincipal) == nil {
		t.Fatal("expected recorded error for principal")
	}

	engine.ClearFieldError(FieldPrincipal)
	if engine.FieldError(FieldPrincipal) != nil {
		t.Error("principal error should be cleared")
	}
	if engine.FieldError(FieldYears) == nil {
		t.Error("years error should survive a per-field clear")
	}

	engine.ClearAllErrors()
	if got := len(engine.Errors()); got != 0 {
		t.Errorf("errors after ClearAllErrors = %d, expected 0", got)
	}
}

func TestRepeatedValidationDoesNotDuplicateErrors(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	form := CalculatorForm{Principal: -1000, MonthlyPayment: 0, AnnualRate: 4, Years: 10}

	engine.ValidateCalculatorForm(form)
	engine.ValidateCalculatorForm(form)

	count := 0
	for _, err := range engine.Errors() {
		if err.Field == FieldPrincipal && err.Code == CodeNegativeAmount {
			count++
		}
	}
	if count != 1 {
		t.Errorf("principal error recorded %d times across passes, expected 1", count)
	}
}

func TestRegisterFieldReplacesConfig(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	// Replace principal's config with a bounds-only config.
	minVal := 100.0
	engine.RegisterField(FieldConfig{
		Name:     FieldPrincipal,
		Kind:     KindCurrency,
		Required: true,
		Min:      &minVal,
	})

	result := engine.ValidateField(FieldPrincipal, 50.0, Context{})
	if result.IsValid {
		t.Error("expected min bound from replacement config to apply")
	}

	// The old domain rules are gone after replacement.
	result = engine.ValidateField(FieldPrincipal, 20000000.0, Context{})
	if len(result.Warnings) != 0 {
		t.Errorf("replacement config should not carry old warnings, got %v", result.Warnings)
	}

	if got := len(engine.Fields()); got != 6 {
		t.Errorf("field count after re-registration = %d, expected 6", got)
	}
}

func TestAddRuleOrdering(t *testing.T) {
	engine := NewEngine(zap.NewNop())

	var order []string
	mkRule := func(name string, priority int) Rule {
		return Rule{
			Name:     name,
			Priority: priority,
			Validate: func(_ Value, _ Context) Result {
				order = append(order, name)
				return NewResult()
			},
		}
	}

	engine.RegisterField(FieldConfig{Name: FieldPrincipal, Kind: KindCurrency})
	engine.AddRule(FieldPrincipal, mkRule("late", 90))
	engine.AddRule(FieldPrincipal, mkRule("early", 5))
	engine.AddRule(FieldPrincipal, mkRule("tie-a", 50))
	engine.AddRule(FieldPrincipal, mkRule("tie-b", 50))

	engine.ValidateField(FieldPrincipal, 100.0, Context{})

	expected := []string{"early", "tie-a", "tie-b", "late"}
	if len(order) != len(expected) {
		t.Fatalf("rule execution order = %v, expected %v", order, expected)
	}
	for i := range expected {
		if order[i] != expected[i] {
			t.Fatalf("rule execution order = %v, expected %v", order, expected)
		}
	}
}

func TestValidateUnknownField(t *testing.T) {
	engine := NewEngine(zap.NewNop())
	result := engine.ValidateField(FieldName("unbekannt"), 1.0, Context{})
	if result.IsValid {
		t.Error("unknown field must not validate")
	}
}
