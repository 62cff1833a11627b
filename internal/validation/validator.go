// =============================================================================
// Flood Control Pipeline - Field Parsers and Validation
// =============================================================================
//
// This module converts raw text cells into typed values. The source exports
// are noisy, so the parsers are forgiving:
//   - Leading/trailing whitespace is ignored
//   - Thousands separators ("1,234,567.89") are stripped
//   - Empty cells are treated as absent, never as zero
//
// VALIDATION STRATEGY:
//   The Parse* functions report success as a bool and never fail loudly.
//   The Require* functions wrap them for mandatory fields and return a
//   *FieldError describing which rule was violated. Field errors are counted
//   by the loader and never shown to the user one by one.
//
// =============================================================================

package validation

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the canonical date format (YYYY-MM-DD).
const DateLayout = "2006-01-02"

// parseLayout accepts DateLayout and its unpadded form (2021-1-5).
const parseLayout = "2006-1-2"

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// Validation rules reported in FieldError.Rule.
const (
	RuleRequired = "required"
	RuleNumeric  = "numeric"
	RulePositive = "positive"
	RuleDate     = "date"
)

// FieldError describes a mandatory field that failed validation.
type FieldError struct {
	// Field is the input column name.
	Field string

	// Rule is the validation rule that was violated.
	Rule string

	// Value is the raw cell value that failed.
	Value string
}

// Error implements the error interface.
func (e *FieldError) Error() string {
	return fmt.Sprintf("field '%s' failed %s validation (value: '%s')", e.Field, e.Rule, e.Value)
}

// =============================================================================
// FORGIVING PARSERS
// =============================================================================

// ParseFloat parses a numeric cell.
//
// PARAMETERS:
//   - s: The raw cell value.
//
// RETURNS:
//   - The parsed value and true, or 0 and false when the cell is empty,
//     contains alphabetic characters, or is not a finite number.
//
// Thousands separators are removed before parsing, so "1,250,000.50" parses
// as 1250000.5.
func ParseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if hasLetter(s) {
		return 0, false
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseInt parses an integer cell such as a funding year.
func ParseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseDate parses a YYYY-MM-DD date cell. Month and day may drop their
// leading zero. The result is midnight UTC.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(parseLayout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// DaysBetween returns end minus start in whole days. The result is negative
// when end precedes start.
func DaysBetween(start, end time.Time) float64 {
	return math.Round(end.Sub(start).Hours() / 24)
}

// hasLetter reports whether s contains an ASCII letter.
func hasLetter(s string) bool {
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			return true
		}
	}
	return false
}

// =============================================================================
// MANDATORY FIELD VALIDATORS
// =============================================================================

// RequirePositive validates a mandatory money field.
//
// RETURNS:
//   - The parsed value when it is a finite number greater than zero.
//   - A *FieldError otherwise. The rule distinguishes empty cells,
//     unparsable text and non-positive numbers.
func RequirePositive(field, raw string) (float64, *FieldError) {
	if strings.TrimSpace(raw) == "" {
		return 0, &FieldError{Field: field, Rule: RuleRequired, Value: raw}
	}
	v, ok := ParseFloat(raw)
	if !ok {
		return 0, &FieldError{Field: field, Rule: RuleNumeric, Value: raw}
	}
	if v <= 0 {
		return 0, &FieldError{Field: field, Rule: RulePositive, Value: raw}
	}
	return v, nil
}

// RequireDate validates a mandatory date field.
func RequireDate(field, raw string) (time.Time, *FieldError) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, &FieldError{Field: field, Rule: RuleRequired, Value: raw}
	}
	t, ok := ParseDate(raw)
	if !ok {
		return time.Time{}, &FieldError{Field: field, Rule: RuleDate, Value: raw}
	}
	return t, nil
}

// OptionalFloat parses an optional coordinate cell into a pointer, nil when
// the cell is absent or unparsable.
func OptionalFloat(raw string) *float64 {
	v, ok := ParseFloat(raw)
	if !ok {
		return nil
	}
	return &v
}

// TextOrDefault trims a categorical cell and substitutes def when nothing is
// left.
func TextOrDefault(raw, def string) string {
	if v := strings.TrimSpace(raw); v != "" {
		return v
	}
	return def
}
