package validation

import (
	"math"
	"strings"

	"github.com/zinswerk/zinsrechner/pkg/format"
)

// FieldName identifies a calculator form field. The set is closed: every
// field the engine knows about is enumerated here and mapped to its rule
// set at construction time.
type FieldName string

const (
	FieldPrincipal      FieldName = "principal"
	FieldMonthlyPayment FieldName = "monthlyPayment"
	FieldAnnualRate     FieldName = "annualRate"
	FieldYears          FieldName = "years"
	FieldTaxRate        FieldName = "taxRate"
	FieldInflationRate  FieldName = "inflationRate"
)

// FieldKind is the primitive type of a field's value and selects the
// locale-aware parser applied to string input.
type FieldKind int

const (
	KindNumber FieldKind = iota
	KindInteger
	KindCurrency
	KindPercentage
	KindString
)

func (k FieldKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindInteger:
		return "integer"
	case KindCurrency:
		return "currency"
	case KindPercentage:
		return "percentage"
	case KindString:
		return "string"
	}
	return "unknown"
}

// ValueState discriminates the variants of a parsed Value.
type ValueState int

const (
	// ValueEmpty means the raw input was nil or blank. Absence is not an
	// error unless the field is required.
	ValueEmpty ValueState = iota
	// ValueInvalid means the raw input could not be parsed as the field's
	// kind. Parse failure is an explicit variant, never a NaN payload.
	ValueInvalid
	// ValueNumber carries a finite numeric payload.
	ValueNumber
	// ValueText carries a string payload for KindString fields.
	ValueText
)

// Value is the discriminated union over the supported field primitive
// types. Exactly one payload is meaningful for a given State.
type Value struct {
	State  ValueState
	Number float64
	Text   string
	Raw    string
}

// IsNumber reports whether the value carries a finite number.
func (v Value) IsNumber() bool {
	return v.State == ValueNumber
}

// ParseValue converts a raw form value (string, number, nil) into a Value
// according to the field kind. String input goes through the German
// locale-aware parsers; non-finite floats become ValueInvalid.
func ParseValue(kind FieldKind, raw any) Value {
	switch typed := raw.(type) {
	case nil:
		return Value{State: ValueEmpty}
	case string:
		return parseString(kind, typed)
	case float64:
		return numberValue(kind, typed)
	case float32:
		return numberValue(kind, float64(typed))
	case int:
		return numberValue(kind, float64(typed))
	case int64:
		return numberValue(kind, float64(typed))
	default:
		return Value{State: ValueInvalid, Raw: strings.TrimSpace(toRaw(raw))}
	}
}

func parseString(kind FieldKind, raw string) Value {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Value{State: ValueEmpty, Raw: raw}
	}

	if kind == KindString {
		return Value{State: ValueText, Text: trimmed, Raw: raw}
	}

	var (
		parsed float64
		err    error
	)
	switch kind {
	case KindPercentage:
		parsed, err = format.ParsePercent(trimmed)
	default:
		parsed, err = format.ParseAmount(trimmed)
	}
	if err != nil {
		return Value{State: ValueInvalid, Raw: raw}
	}
	v := numberValue(kind, parsed)
	v.Raw = raw
	return v
}

func numberValue(kind FieldKind, f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Value{State: ValueInvalid}
	}
	if kind == KindString {
		return Value{State: ValueInvalid}
	}
	return Value{State: ValueNumber, Number: f}
}

func toRaw(raw any) string {
	if s, ok := raw.(string); ok {
		return s
	}
	return ""
}

// Context carries the full form snapshot supplied to every field
// validation so cross-field rules can read sibling values.
type Context struct {
	Fields map[FieldName]Value
}

// Field returns the sibling value for the given field, or an empty Value
// when the snapshot does not contain it.
func (c Context) Field(name FieldName) Value {
	if c.Fields == nil {
		return Value{State: ValueEmpty}
	}
	v, ok := c.Fields[name]
	if !ok {
		return Value{State: ValueEmpty}
	}
	return v
}
