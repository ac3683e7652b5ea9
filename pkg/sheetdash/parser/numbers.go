package parser

import (
	"regexp"
	"strconv"
	"strings"
)

// leadingFloat matches the longest numeric prefix of a cell, the way
// spreadsheet exports mix figures with units ("12 clicks", "3.5x").
var leadingFloat = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// nonNumeric matches every character that cannot be part of a plain number.
var nonNumeric = regexp.MustCompile(`[^0-9.\-]+`)

// ParseNumber parses a cell permissively: surrounding whitespace, "%" and ","
// are removed, then the longest leading float is read.
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("%", "", ",", "").Replace(s)
	m := leadingFloat.FindString(s)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NumberOrZero parses a cell for series that feed sums and bar heights:
// a missing or unparsable cell contributes 0.
func NumberOrZero(s string) float64 {
	v, _ := ParseNumber(s)
	return v
}

// NumberOrNull parses a cell for sparse series: a missing or unparsable
// cell stays nil and renders as a gap.
func NumberOrNull(s string) *float64 {
	v, ok := ParseNumber(s)
	if !ok {
		return nil
	}
	return &v
}

// CleanNumber parses headline figures such as totals and period counts.
// Every character except digits, "." and "-" is dropped first, so "$1,234"
// reads as 1234. Empty or unparsable cells yield nil.
func CleanNumber(s string) *float64 {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	cleaned := nonNumeric.ReplaceAllString(s, "")
	m := leadingFloat.FindString(cleaned)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &v
}
