// Package core provides money parsing and handling utilities.
//
// This file contains functions for parsing monetary amounts typed by users
// and formatting amounts for display and export.
package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseAmount converts a decimal string to a positive amount.
//
// It accepts both dot (12.34) and comma (12,34) decimal separators. No rounding
// is applied; the value is returned as a float64 like every stored sum.
// Returns a validation error for invalid formats, signs, or zero amounts.
//
// Examples:
//
//	ParseAmount("12.34") -> 12.34, nil
//	ParseAmount("12,34") -> 12.34, nil
//	ParseAmount("-1")    -> 0, error
func ParseAmount(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, NewValidationError("sum", "must be a number")
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return 0, NewValidationError("sum", "must be greater than 0")
	}
	if strings.ContainsAny(s, "eE") {
		return 0, NewValidationError("sum", "must be a number")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, NewValidationError("sum", "must be a number")
	}
	v := d.InexactFloat64()
	if err := ValidateSum(v); err != nil {
		return 0, err
	}
	return v, nil
}

// FormatAmount renders v with two decimal places (half away from zero).
// Display only: stored and reported sums keep full precision.
func FormatAmount(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}
