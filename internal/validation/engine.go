package validation

import (
	"sort"

	"go.uber.org/zap"
)

// FieldConfig is the declarative description of one field: its primitive
// kind, required flag, optional numeric bounds, and an ordered list of
// custom rules. Configs are registered during engine setup and treated as
// immutable afterward.
type FieldConfig struct {
	Name     FieldName
	Kind     FieldKind
	Required bool
	Min      *float64
	Max      *float64
	Rules    []Rule
}

// CalculatorForm is the UI-owned form snapshot. The engine reads it but
// never mutates it. TaxRate and InflationRate are optional inputs; zero
// means unset.
type CalculatorForm struct {
	Principal         float64 `json:"principal"`
	MonthlyPayment    float64 `json:"monthlyPayment"`
	AnnualRate        float64 `json:"annualRate"`
	Years             float64 `json:"years"`
	CompoundFrequency int     `json:"compoundFrequency"`
	TaxRate           float64 `json:"taxRate,omitempty"`
	InflationRate     float64 `json:"inflationRate,omitempty"`
}

// Engine orchestrates field validation. It is an explicit, constructed
// object; consumers receive it as a dependency rather than sharing a
// package-level instance. Execution is single-threaded: register fields
// and rules during setup, before the first validation call.
//
// Rules attached to one field run in ascending Priority; ties keep
// registration order. All rules always run (no short-circuiting); their
// findings are merged and the aggregate turns invalid as soon as any rule
// signals an error.
type Engine struct {
	logger *zap.Logger
	fields map[FieldName]FieldConfig
	order  []FieldName
	errors []FieldError
}

// NewEngine constructs an engine pre-registered with the calculator's
// field set.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		logger: logger,
		fields: make(map[FieldName]FieldConfig),
	}
	for _, cfg := range defaultFieldConfigs() {
		e.RegisterField(cfg)
	}
	return e
}

// RegisterField registers or replaces a field configuration.
// Re-registration of an existing name replaces its config entirely.
func (e *Engine) RegisterField(cfg FieldConfig) {
	if _, exists := e.fields[cfg.Name]; !exists {
		e.order = append(e.order, cfg.Name)
	}
	e.fields[cfg.Name] = cfg
}

// AddRule appends a custom rule to an already-registered field.
func (e *Engine) AddRule(name FieldName, rule Rule) {
	cfg, ok := e.fields[name]
	if !ok {
		e.logger.Warn("rule added for unregistered field",
			zap.String("op", "validation.AddRule"),
			zap.String("field", string(name)),
		)
		return
	}
	cfg.Rules = append(cfg.Rules, rule)
	e.fields[name] = cfg
}

// Fields returns the registered field names in registration order.
func (e *Engine) Fields() []FieldName {
	out := make([]FieldName, len(e.order))
	copy(out, e.order)
	return out
}

// ValidateField runs the named field's configured rules against the raw
// value. The context carries the full form snapshot; pass a zero Context
// when no sibling values are available.
func (e *Engine) ValidateField(name FieldName, raw any, ctx Context) Result {
	result := NewResult()

	cfg, ok := e.fields[name]
	if !ok {
		e.logger.Warn("validation requested for unregistered field",
			zap.String("op", "validation.ValidateField"),
			zap.String("field", string(name)),
		)
		result.AddError(FieldError{
			Field:   name,
			Code:    "unknown_field",
			Message: "Unbekanntes Feld",
		})
		return result
	}

	value := ParseValue(cfg.Kind, raw)

	rules := e.rulesFor(cfg)
	for _, rule := range rules {
		ruleResult := rule.Validate(value, ctx)
		result.Merge(ruleResult)
	}

	result.Tag(name)
	return result
}

// rulesFor assembles the effective rule list for a config: the implicit
// rules derived from the declarative flags plus the custom rules, sorted
// in ascending priority with stable ties.
func (e *Engine) rulesFor(cfg FieldConfig) []Rule {
	rules := make([]Rule, 0, len(cfg.Rules)+3)
	if cfg.Required {
		rules = append(rules, Required())
	}
	if cfg.Min != nil {
		rules = append(rules, Min(*cfg.Min))
	}
	if cfg.Max != nil {
		rules = append(rules, Max(*cfg.Max))
	}
	rules = append(rules, cfg.Rules...)
	sort.SliceStable(rules, func(i, j int) bool {
		return rules[i].Priority < rules[j].Priority
	})
	return rules
}

// ValidateFields validates every entry of the given map, supplying the
// full snapshot as the cross-field context for each field. All findings
// are unioned preserving per-field origin; the aggregate is valid only if
// every per-field result is.
func (e *Engine) ValidateFields(values map[FieldName]any) Result {
	ctx := e.snapshot(values)
	result := NewResult()

	for _, name := range e.order {
		raw, present := values[name]
		if !present {
			continue
		}
		result.Merge(e.ValidateField(name, raw, ctx))
	}

	return result
}

// snapshot parses every supplied value by its registered kind so
// cross-field rules see typed siblings rather than raw input.
func (e *Engine) snapshot(values map[FieldName]any) Context {
	fields := make(map[FieldName]Value, len(values))
	for name, raw := range values {
		cfg, ok := e.fields[name]
		if !ok {
			continue
		}
		fields[name] = ParseValue(cfg.Kind, raw)
	}
	return Context{Fields: fields}
}

// ValidateCalculatorForm applies the full rule set to the form. It is the
// submit-time gate: a calculation request must not be issued unless the
// returned result is valid. Blocking errors are recorded in the engine's
// error state for the UI-facing error API.
func (e *Engine) ValidateCalculatorForm(form CalculatorForm) Result {
	result := e.ValidateFields(formValues(form))

	for _, err := range result.Errors {
		e.AddError(err)
	}

	if !result.IsValid {
		e.logger.Debug("calculator form failed validation",
			zap.String("op", "validation.ValidateCalculatorForm"),
			zap.Int("errors", len(result.Errors)),
		)
	}

	return result
}

// ValidateBusinessLogic runs only the heuristic, non-blocking checks and
// returns their warnings. Used for live advisory feedback while typing.
func (e *Engine) ValidateBusinessLogic(form CalculatorForm) []Warning {
	result := e.ValidateFields(formValues(form))
	return result.Warnings
}

func formValues(form CalculatorForm) map[FieldName]any {
	values := map[FieldName]any{
		FieldPrincipal:      form.Principal,
		FieldMonthlyPayment: form.MonthlyPayment,
		FieldAnnualRate:     form.AnnualRate,
		FieldYears:          form.Years,
	}
	if form.TaxRate != 0 {
		values[FieldTaxRate] = form.TaxRate
	}
	if form.InflationRate != 0 {
		values[FieldInflationRate] = form.InflationRate
	}
	return values
}

// NumberValue parses raw by the field's registered kind and returns its
// numeric payload. The second return is false for empty, unparseable, or
// non-numeric values and for unregistered fields.
func (e *Engine) NumberValue(name FieldName, raw any) (float64, bool) {
	cfg, ok := e.fields[name]
	if !ok {
		return 0, false
	}
	v := ParseValue(cfg.Kind, raw)
	if !v.IsNumber() {
		return 0, false
	}
	return v.Number, true
}

// AddError records an error in the engine's accumulated error state.
// Adding an error whose (Field, Code) pair is already present is a no-op,
// so repeated validation passes never duplicate errors.
func (e *Engine) AddError(err FieldError) {
	if err.Severity == "" {
		err.Severity = SeverityError
	}
	for _, existing := range e.errors {
		if existing.Field == err.Field && existing.Code == err.Code {
			return
		}
	}
	e.errors = append(e.errors, err)
}

// FieldError returns the first recorded error for the given field, or nil
// when the field has none.
func (e *Engine) FieldError(name FieldName) *FieldError {
	for i := range e.errors {
		if e.errors[i].Field == name {
			return &e.errors[i]
		}
	}
	return nil
}

// Errors returns a copy of the accumulated error state.
func (e *Engine) Errors() []FieldError {
	out := make([]FieldError, len(e.errors))
	copy(out, e.errors)
	return out
}

// ClearFieldError removes all recorded errors for the given field.
func (e *Engine) ClearFieldError(name FieldName) {
	kept := e.errors[:0]
	for _, err := range e.errors {
		if err.Field != name {
			kept = append(kept, err)
		}
	}
	e.errors = kept
}

// ClearAllErrors resets the accumulated error state, e.g. on form reset.
func (e *Engine) ClearAllErrors() {
	e.errors = nil
}
