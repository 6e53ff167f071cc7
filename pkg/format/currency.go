// Package format provides German-locale parsing and formatting for
// currency and percentage values.
package format

import (
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.German)

// Currency returns a German-formatted currency string with a trailing
// euro sign (e.g., "1.234,56 €").
func Currency(amount float64) string {
	return printer.Sprintf("%.2f €", amount)
}

// Percent returns a German-formatted percentage string (e.g., "4,50 %").
func Percent(value float64) string {
	return printer.Sprintf("%.2f %%", value)
}

// Number returns a compact German-formatted number without a unit,
// e.g. 10 -> "10" and 2.5 -> "2,5". Used in validation messages.
func Number(value float64) string {
	return strings.Replace(strconv.FormatFloat(value, 'f', -1, 64), ".", ",", 1)
}

// ParseAmount parses a locale-formatted currency string into a float64.
// It tolerates a euro sign, surrounding whitespace, thousands dots, and a
// decimal comma ("1.234,56" -> 1234.56) as well as plain machine formats
// ("1234.56" -> 1234.56).
func ParseAmount(raw string) (float64, error) {
	return parseNumber(raw, "€")
}

// ParsePercent parses a locale-formatted percentage string into a float64
// ("4,5 %" -> 4.5). The result is a percent value, not a fraction.
func ParsePercent(raw string) (float64, error) {
	return parseNumber(raw, "%")
}

func parseNumber(raw, symbol string) (float64, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSuffix(s, symbol)
	s = strings.TrimPrefix(s, symbol)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, fmt.Errorf("empty numeric string %q", raw)
	}

	hasComma := strings.Contains(s, ",")
	hasDot := strings.Contains(s, ".")

	switch {
	case hasComma:
		// German format: dots are thousands separators, comma is the
		// decimal separator.
		if strings.Count(s, ",") > 1 {
			return 0, fmt.Errorf("invalid number %q", raw)
		}
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case hasDot:
		// Without a comma a single dot is ambiguous: "1.234" is a German
		// thousands group, "1234.56" is machine format. Dots followed by
		// exactly three digits are treated as grouping.
		if isGrouped(s) {
			s = strings.ReplaceAll(s, ".", "")
		} else if strings.Count(s, ".") > 1 {
			return 0, fmt.Errorf("invalid number %q", raw)
		}
	}

	value, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse %q as number: %w", raw, err)
	}
	return value, nil
}

// isGrouped reports whether every dot in s separates three-digit groups,
// i.e. the dots are German thousands separators.
func isGrouped(s string) bool {
	body := strings.TrimPrefix(strings.TrimPrefix(s, "-"), "+")
	parts := strings.Split(body, ".")
	if len(parts) < 2 || len(parts[0]) == 0 || len(parts[0]) > 3 {
		return false
	}
	for _, part := range parts[1:] {
		if len(part) != 3 {
			return false
		}
		for _, r := range part {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}
