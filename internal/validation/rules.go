package validation

import (
	"fmt"

	"github.com/zinswerk/zinsrechner/pkg/format"
	"github.com/zinswerk/zinsrechner/pkg/mathutil"
)

// Rule is a named, prioritized validator. Rules are pure functions of the
// value under test and the sibling-field context; they emit findings as
// data and never return Go errors. Rules attached to one field run in
// ascending Priority, stable on ties (registration order preserved).
type Rule struct {
	Name     string
	Priority int
	Validate func(v Value, ctx Context) Result
}

// Default priorities for the built-in rule families. Structural checks
// run before domain heuristics.
const (
	PriorityStructural = 10
	PriorityDomain     = 50
)

// Required returns a rule that fails for nil, empty, and whitespace-only
// input. Any parsed value, including zero, passes.
func Required() Rule {
	return Rule{
		Name:     "required",
		Priority: PriorityStructural,
		Validate: func(v Value, _ Context) Result {
			result := NewResult()
			if v.State == ValueEmpty {
				result.AddError(FieldError{
					Code:    CodeRequired,
					Message: "Dieses Feld ist erforderlich",
				})
			}
			return result
		},
	}
}

// Min returns a rule that fails when the numeric value is below n.
// Unparseable input fails; empty input passes.
func Min(n float64) Rule {
	return Rule{
		Name:     "min",
		Priority: PriorityStructural,
		Validate: func(v Value, _ Context) Result {
			result := NewResult()
			if v.State == ValueEmpty {
				return result
			}
			if !v.IsNumber() || v.Number < n {
				result.AddError(FieldError{
					Code:    CodeMin,
					Message: fmt.Sprintf("Der Wert muss mindestens %s betragen", format.Number(n)),
				})
			}
			return result
		},
	}
}

// Max returns a rule that fails when the numeric value is above n.
// Unparseable input fails; empty input passes.
func Max(n float64) Rule {
	return Rule{
		Name:     "max",
		Priority: PriorityStructural,
		Validate: func(v Value, _ Context) Result {
			result := NewResult()
			if v.State == ValueEmpty {
				return result
			}
			if !v.IsNumber() || v.Number > n {
				result.AddError(FieldError{
					Code:    CodeMax,
					Message: fmt.Sprintf("Der Wert darf höchstens %s betragen", format.Number(n)),
				})
			}
			return result
		},
	}
}

// Range returns a rule that fails outside [lo, hi] inclusive.
func Range(lo, hi float64) Rule {
	return Rule{
		Name:     "range",
		Priority: PriorityStructural,
		Validate: func(v Value, _ Context) Result {
			result := NewResult()
			if v.State == ValueEmpty {
				return result
			}
			if !v.IsNumber() || v.Number < lo || v.Number > hi {
				result.AddError(FieldError{
					Code: CodeRange,
					Message: fmt.Sprintf("Der Wert muss zwischen %s und %s liegen",
						format.Number(lo), format.Number(hi)),
				})
			}
			return result
		},
	}
}

// Positive returns a rule that fails when the value is zero or below.
func Positive() Rule {
	return Rule{
		Name:     "positive",
		Priority: PriorityStructural,
		Validate: func(v Value, _ Context) Result {
			result := NewResult()
			if v.State == ValueEmpty {
				return result
			}
			if !v.IsNumber() || v.Number <= 0 {
				result.AddError(FieldError{
					Code:    CodePositive,
					Message: "Der Wert muss größer als 0 sein",
				})
			}
			return result
		},
	}
}

// Percentage returns a rule that accepts the inclusive range [0, 100].
func Percentage() Rule {
	return Rule{
		Name:     "percentage",
		Priority: PriorityStructural,
		Validate: func(v Value, _ Context) Result {
			result := NewResult()
			if v.State == ValueEmpty {
				return result
			}
			if !v.IsNumber() || v.Number < 0 || v.Number > 100 {
				result.AddError(FieldError{
					Code:    CodePercentage,
					Message: "Der Prozentwert muss zwischen 0 und 100 liegen",
				})
			}
			return result
		},
	}
}

// Currency returns a rule that fails for negative or unparseable amounts.
// Non-finite input never reaches this rule; ParseValue maps it to the
// invalid variant, which fails here too.
func Currency() Rule {
	return Rule{
		Name:     "currency",
		Priority: PriorityStructural,
		Validate: func(v Value, _ Context) Result {
			result := NewResult()
			if v.State == ValueEmpty {
				return result
			}
			if !v.IsNumber() || v.Number < 0 {
				result.AddError(FieldError{
					Code:    CodeCurrency,
					Message: "Der Betrag darf nicht negativ sein",
				})
			}
			return result
		},
	}
}

// Integer returns a rule that fails when the value is not a whole number.
func Integer() Rule {
	return Rule{
		Name:     "integer",
		Priority: PriorityStructural,
		Validate: func(v Value, _ Context) Result {
			result := NewResult()
			if v.State == ValueEmpty {
				return result
			}
			if !v.IsNumber() || !mathutil.IsWhole(v.Number) {
				result.AddError(FieldError{
					Code:    CodeInteger,
					Message: "Der Wert muss eine ganze Zahl sein",
				})
			}
			return result
		},
	}
}
