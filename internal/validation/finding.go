// Package validation implements the field-level validation and
// business-rule engine for the calculator form. Validators never return
// Go errors for findings; every finding is data carried in a Result.
package validation

// Severity classifies a finding by its effect on form submission.
type Severity string

const (
	// SeverityError indicates a finding that blocks submission.
	SeverityError Severity = "error"
	// SeverityWarning indicates a valid but implausible value.
	SeverityWarning Severity = "warning"
	// SeveritySuggestion indicates an advisory optimization or correction hint.
	SeveritySuggestion Severity = "suggestion"
)

// Finding codes shared across fields.
const (
	CodeRequired      = "required"
	CodeInvalidNumber = "invalid_number"
	CodeMin           = "min"
	CodeMax           = "max"
	CodeRange         = "range"
	CodePositive      = "positive"
	CodePercentage    = "percentage"
	CodeCurrency      = "currency"
	CodeInteger       = "integer"
)

// FieldError represents a blocking validation failure for a single field.
// Identity is the (Field, Code) pair; the engine never accumulates two
// errors with the same identity in one pass.
type FieldError struct {
	Field    FieldName `json:"field"`
	Code     string    `json:"code"`
	Message  string    `json:"message"`
	Severity Severity  `json:"severity"`
}

// Error implements the error interface so a FieldError can travel through
// error-shaped plumbing when a caller wants it to.
func (e FieldError) Error() string {
	return string(e.Field) + ": " + e.Message
}

// Warning represents a non-blocking finding for an economically
// implausible but structurally valid value.
type Warning struct {
	Field   FieldName `json:"field"`
	Code    string    `json:"code"`
	Message string    `json:"message"`
}

// Suggestion represents an advisory hint. Confidence is in [0,1].
// CorrectedValue, when non-nil, carries a proposed replacement value
// (e.g. a fractional year count rounded to the nearest whole year).
type Suggestion struct {
	Field          FieldName `json:"field"`
	Code           string    `json:"code"`
	Message        string    `json:"message"`
	Confidence     float64   `json:"confidence"`
	CorrectedValue *float64  `json:"correctedValue,omitempty"`
}

// Result aggregates the findings of a validation pass. IsValid is false
// exactly when Errors is non-empty; warnings and suggestions never affect
// validity. The slices are always non-nil.
type Result struct {
	IsValid     bool         `json:"isValid"`
	Errors      []FieldError `json:"errors"`
	Warnings    []Warning    `json:"warnings"`
	Suggestions []Suggestion `json:"suggestions"`
}

// NewResult returns an empty, valid Result with all slices populated.
func NewResult() Result {
	return Result{
		IsValid:     true,
		Errors:      []FieldError{},
		Warnings:    []Warning{},
		Suggestions: []Suggestion{},
	}
}

// AddError appends an error unless one with the same (Field, Code)
// identity is already present, and marks the result invalid.
func (r *Result) AddError(err FieldError) {
	if err.Severity == "" {
		err.Severity = SeverityError
	}
	for _, existing := range r.Errors {
		if existing.Field == err.Field && existing.Code == err.Code {
			return
		}
	}
	r.Errors = append(r.Errors, err)
	r.IsValid = false
}

// AddWarning appends a warning.
func (r *Result) AddWarning(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// AddSuggestion appends a suggestion, clamping confidence into [0,1].
func (r *Result) AddSuggestion(s Suggestion) {
	if s.Confidence < 0 {
		s.Confidence = 0
	}
	if s.Confidence > 1 {
		s.Confidence = 1
	}
	r.Suggestions = append(r.Suggestions, s)
}

// Merge folds another result into r, preserving per-field origin and
// suppressing duplicate (Field, Code) errors.
func (r *Result) Merge(other Result) {
	for _, err := range other.Errors {
		r.AddError(err)
	}
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Suggestions = append(r.Suggestions, other.Suggestions...)
}

// Tag stamps the given field name onto every finding that does not carry
// one yet. Rules emit findings without a field; the engine tags them with
// the field under test.
func (r *Result) Tag(field FieldName) {
	for i := range r.Errors {
		if r.Errors[i].Field == "" {
			r.Errors[i].Field = field
		}
	}
	for i := range r.Warnings {
		if r.Warnings[i].Field == "" {
			r.Warnings[i].Field = field
		}
	}
	for i := range r.Suggestions {
		if r.Suggestions[i].Field == "" {
			r.Suggestions[i].Field = field
		}
	}
}
