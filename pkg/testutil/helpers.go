// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/zinswerk/zinsrechner/internal/calculator"
	"github.com/zinswerk/zinsrechner/internal/validation"
)

// FindYear finds a projection row by year number.
// Returns a pointer to the row if found, nil otherwise.
func FindYear(proj *calculator.Projection, year int) *calculator.YearRow {
	if proj == nil {
		return nil
	}
	for i := range proj.Years {
		if proj.Years[i].Year == year {
			return &proj.Years[i]
		}
	}
	return nil
}

// HasError reports whether the result carries a blocking error with the
// given field and code.
func HasError(result validation.Result, field validation.FieldName, code string) bool {
	for _, e := range result.Errors {
		if e.Field == field && e.Code == code {
			return true
		}
	}
	return false
}

// HasWarning reports whether the result carries a warning with the given
// field and code.
func HasWarning(result validation.Result, field validation.FieldName, code string) bool {
	for _, w := range result.Warnings {
		if w.Field == field && w.Code == code {
			return true
		}
	}
	return false
}

// HasSuggestion reports whether the result carries a suggestion with the
// given field and code.
func HasSuggestion(result validation.Result, field validation.FieldName, code string) bool {
	for _, s := range result.Suggestions {
		if s.Field == field && s.Code == code {
			return true
		}
	}
	return false
}
