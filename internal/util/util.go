// Package util provides common utility functions used across the dashboard.
package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const utf8BOM = "\ufeff"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// NormalizeHeader strips a UTF-8 byte order mark, surrounding quotes and whitespace
// from a CSV header cell. Case is preserved; column lookup is case-sensitive.
func NormalizeHeader(s string) string {
	s = strings.TrimPrefix(s, utf8BOM)
	return strings.TrimSpace(TrimQuotes(strings.TrimSpace(s)))
}

// ParseFloatLoose parses a numeric cell that may carry surrounding whitespace,
// quotes or thousands separators ("1,200.5"). NaN and infinities are rejected.
func ParseFloatLoose(s string) (float64, error) {
	s = strings.TrimSpace(TrimQuotes(strings.TrimSpace(s)))
	if s == "" {
		return 0, fmt.Errorf("empty numeric value")
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0, err
	}
	if !IsFinite(v) {
		return 0, fmt.Errorf("non-finite numeric value %q", s)
	}
	return v, nil
}

// IsFinite reports whether v is neither NaN nor an infinity.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// ParseIntFromFloat parses a string that may be an integer ("32") or an
// integral float ("32.0") into int.
func ParseIntFromFloat(s string) (int, error) {
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return v, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("ParseIntFromFloat: %q is not a whole number", s)
	}
	return int(f), nil
}

// FormatKg renders a payload mass for axis labels and slider marks.
func FormatKg(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatInt(int64(v), 10)
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}
