// Package core holds the entity records shared by the frontend, the CLI and
// the event worker, plus the helpers that operate on them.
//
// This file contains the parsing of the integer income field from the
// free-form strings typed into forms and command lines.
package core

import (
	"strconv"
	"strings"
)

// ParseIncome converts a user supplied string to the integer income value.
//
// Surrounding whitespace is ignored and an optional leading sign is
// accepted. An empty string returns ErrRequired, anything that is not a
// 32-bit integer returns ErrInvalidAmount.
//
// Examples:
//
//	ParseIncome("1200")   -> 1200, nil
//	ParseIncome(" 1200 ") -> 1200, nil
//	ParseIncome("-15")    -> -15, nil
//	ParseIncome("12,5")   -> 0, ErrInvalidAmount
func ParseIncome(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrRequired
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// FormatIncome renders an optional income for display; unset values render
// as an empty string.
func FormatIncome(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}
