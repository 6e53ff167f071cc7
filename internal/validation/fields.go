package validation

import (
	"fmt"
	"math"

	"github.com/zinswerk/zinsrechner/pkg/constants"
	"github.com/zinswerk/zinsrechner/pkg/format"
)

// Field-specific finding codes.
const (
	CodeNegativeAmount    = "negative_amount"
	CodeImplausibleAmount = "implausible_amount"
	CodeHighPaymentRatio  = "high_payment_ratio"
	CodePaymentExceeds    = "payment_exceeds_principal"
	CodeSuspiciousRate    = "suspicious_rate"
	CodeHighRate          = "high_rate"
	CodeRateBand          = "rate_band"
	CodeYearsPositive     = "years_positive"
	CodeLongHorizon       = "long_horizon"
	CodeFractionalYears   = "fractional_years"
	CodeTaxRateRange      = "tax_rate_range"
	CodeHighInflation     = "high_inflation"
)

// The rule sets below implement the domain heuristics for each calculator
// field. Every set returns early for empty input (absence is handled by
// the required rule) and turns unparseable input into a single blocking
// error. Warnings and suggestions never block.

// principalRules validates the starting principal amount.
func principalRules(v Value, _ Context) Result {
	result := NewResult()
	switch v.State {
	case ValueEmpty:
		return result
	case ValueInvalid:
		result.AddError(invalidNumberError(v))
		return result
	}

	if v.Number < 0 {
		result.AddError(FieldError{
			Code:    CodeNegativeAmount,
			Message: "Das Startkapital darf nicht negativ sein",
		})
		return result
	}

	if v.Number > constants.MaxPlausiblePrincipal {
		result.AddWarning(Warning{
			Code: CodeImplausibleAmount,
			Message: fmt.Sprintf("Ein Startkapital über %s ist ungewöhnlich hoch",
				format.Currency(constants.MaxPlausiblePrincipal)),
		})
	}

	return result
}

// monthlyPaymentRules validates the monthly contribution, including the
// cross-field comparison against the principal read from the context.
func monthlyPaymentRules(v Value, ctx Context) Result {
	result := NewResult()
	switch v.State {
	case ValueEmpty:
		return result
	case ValueInvalid:
		result.AddError(invalidNumberError(v))
		return result
	}

	if v.Number < 0 {
		result.AddError(FieldError{
			Code:    CodeNegativeAmount,
			Message: "Die monatliche Sparrate darf nicht negativ sein",
		})
		return result
	}

	principal := ctx.Field(FieldPrincipal)
	if principal.IsNumber() && principal.Number > 0 {
		switch {
		case v.Number > principal.Number*constants.SuspiciousPaymentRatio:
			result.AddWarning(Warning{
				Code: CodePaymentExceeds,
				Message: fmt.Sprintf("Die monatliche Sparrate übersteigt das %s-fache des Startkapitals",
					format.Number(constants.SuspiciousPaymentRatio)),
			})
		case v.Number >= principal.Number*constants.HighPaymentRatio:
			result.AddWarning(Warning{
				Code:    CodeHighPaymentRatio,
				Message: "Die monatliche Sparrate ist im Verhältnis zum Startkapital sehr hoch",
			})
		}
	}

	return result
}

// annualRateRules validates the annual interest rate and emits the
// medium-risk band suggestion when the rate falls outside 2-8 %.
func annualRateRules(v Value, _ Context) Result {
	result := NewResult()
	switch v.State {
	case ValueEmpty:
		return result
	case ValueInvalid:
		result.AddError(invalidNumberError(v))
		return result
	}

	if v.Number < 0 || v.Number > 100 {
		result.AddError(FieldError{
			Code:    CodePercentage,
			Message: "Der Zinssatz muss zwischen 0 und 100 Prozent liegen",
		})
		return result
	}

	switch {
	case v.Number > constants.SuspiciousAnnualRate:
		result.AddWarning(Warning{
			Code: CodeSuspiciousRate,
			Message: fmt.Sprintf("Ein Zinssatz über %s ist unrealistisch hoch",
				format.Percent(constants.SuspiciousAnnualRate)),
		})
	case v.Number > constants.HighAnnualRate:
		result.AddWarning(Warning{
			Code: CodeHighRate,
			Message: fmt.Sprintf("Ein Zinssatz über %s ist sehr optimistisch",
				format.Percent(constants.HighAnnualRate)),
		})
	}

	if v.Number < constants.AdvisoryRateLow || v.Number > constants.AdvisoryRateHigh {
		result.AddSuggestion(Suggestion{
			Code: CodeRateBand,
			Message: fmt.Sprintf("Für eine mittlere Risikoklasse sind %s bis %s Rendite üblich",
				format.Percent(constants.AdvisoryRateLow), format.Percent(constants.AdvisoryRateHigh)),
			Confidence: 0.6,
		})
	}

	return result
}

// yearsRules validates the investment horizon. A fractional year count is
// valid but yields a rounding suggestion carrying the corrected value.
func yearsRules(v Value, _ Context) Result {
	result := NewResult()
	switch v.State {
	case ValueEmpty:
		return result
	case ValueInvalid:
		result.AddError(invalidNumberError(v))
		return result
	}

	if v.Number <= 0 {
		result.AddError(FieldError{
			Code:    CodeYearsPositive,
			Message: "Die Laufzeit muss größer als 0 Jahre sein",
		})
		return result
	}

	if v.Number > constants.MaxYears {
		result.AddError(FieldError{
			Code: CodeMax,
			Message: fmt.Sprintf("Die Laufzeit darf höchstens %d Jahre betragen",
				constants.MaxYears),
		})
		return result
	}

	if v.Number > constants.MaxPlausibleYears {
		result.AddWarning(Warning{
			Code: CodeLongHorizon,
			Message: fmt.Sprintf("Ein Anlagehorizont über %d Jahre ist unrealistisch",
				constants.MaxPlausibleYears),
		})
	}

	if v.Number != math.Trunc(v.Number) {
		rounded := math.Round(v.Number)
		if rounded < 1 {
			rounded = 1
		}
		result.AddSuggestion(Suggestion{
			Code: CodeFractionalYears,
			Message: fmt.Sprintf("Die Laufzeit wird auf %s Jahre gerundet",
				format.Number(rounded)),
			Confidence:     0.9,
			CorrectedValue: &rounded,
		})
	}

	return result
}

// taxRateRules validates the personal capital-gains tax rate.
func taxRateRules(v Value, _ Context) Result {
	result := NewResult()
	switch v.State {
	case ValueEmpty:
		return result
	case ValueInvalid:
		result.AddError(invalidNumberError(v))
		return result
	}

	if v.Number < 0 || v.Number > 100 {
		result.AddError(FieldError{
			Code:    CodeTaxRateRange,
			Message: "Der Steuersatz muss zwischen 0 und 100 Prozent liegen",
		})
	}

	return result
}

// inflationRateRules validates the assumed inflation rate. Negative rates
// (deflation) are structurally valid.
func inflationRateRules(v Value, _ Context) Result {
	result := NewResult()
	switch v.State {
	case ValueEmpty:
		return result
	case ValueInvalid:
		result.AddError(invalidNumberError(v))
		return result
	}

	if v.Number < -100 || v.Number > 100 {
		result.AddError(FieldError{
			Code:    CodePercentage,
			Message: "Die Inflationsrate muss zwischen -100 und 100 Prozent liegen",
		})
		return result
	}

	if v.Number > constants.SuspiciousInflationRate {
		result.AddWarning(Warning{
			Code: CodeHighInflation,
			Message: fmt.Sprintf("Eine Inflationsrate über %s ist ungewöhnlich hoch",
				format.Percent(constants.SuspiciousInflationRate)),
		})
	}

	return result
}

func invalidNumberError(v Value) FieldError {
	return FieldError{
		Code:    CodeInvalidNumber,
		Message: fmt.Sprintf("%q ist keine gültige Zahl", v.Raw),
	}
}

// defaultFieldConfigs maps every known field to its declarative
// configuration. The mapping is built at engine construction; there is no
// runtime lookup by arbitrary string.
func defaultFieldConfigs() []FieldConfig {
	return []FieldConfig{
		{
			Name:     FieldPrincipal,
			Kind:     KindCurrency,
			Required: true,
			Rules:    []Rule{{Name: "principal", Priority: PriorityDomain, Validate: principalRules}},
		},
		{
			Name:  FieldMonthlyPayment,
			Kind:  KindCurrency,
			Rules: []Rule{{Name: "monthlyPayment", Priority: PriorityDomain, Validate: monthlyPaymentRules}},
		},
		{
			Name:     FieldAnnualRate,
			Kind:     KindPercentage,
			Required: true,
			Rules:    []Rule{{Name: "annualRate", Priority: PriorityDomain, Validate: annualRateRules}},
		},
		{
			Name:     FieldYears,
			Kind:     KindNumber,
			Required: true,
			Rules:    []Rule{{Name: "years", Priority: PriorityDomain, Validate: yearsRules}},
		},
		{
			Name:  FieldTaxRate,
			Kind:  KindPercentage,
			Rules: []Rule{{Name: "taxRate", Priority: PriorityDomain, Validate: taxRateRules}},
		},
		{
			Name:  FieldInflationRate,
			Kind:  KindPercentage,
			Rules: []Rule{{Name: "inflationRate", Priority: PriorityDomain, Validate: inflationRateRules}},
		},
	}
}
