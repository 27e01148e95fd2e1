// Package core holds the canonical ledger records and the rules for turning
// user or transport input into them.
package core

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// ParseAmount parses a user-entered rupiah amount.
//
// A leading "Rp" is ignored. Dots are thousands separators when every group
// after the first has exactly three digits, and a comma is the decimal
// separator. Zero, negative and malformed amounts are rejected.
//
// Examples:
//
//	ParseAmount("1500000")      -> 1500000
//	ParseAmount("1.500.000")    -> 1500000
//	ParseAmount("Rp 25.000,50") -> 25000.5
//	ParseAmount("12.5")         -> 12.5
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && strings.EqualFold(s[:2], "rp") {
		s = strings.TrimSpace(s[2:])
	}
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	for _, r := range s {
		if !unicode.IsDigit(r) && r != '.' && r != ',' {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	}

	if strings.Count(s, ",") > 1 {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ",")
	if !hasFrac && strings.Contains(s, ".") && !isGrouped(s) {
		intPart, fracPart, hasFrac = strings.Cut(s, ".")
		if strings.Contains(fracPart, ".") {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
	} else if strings.Contains(intPart, ".") {
		if !isGrouped(intPart) {
			return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
		}
		intPart = strings.ReplaceAll(intPart, ".", "")
	}
	if intPart == "" || (hasFrac && fracPart == "") {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	normalized := intPart
	if hasFrac {
		normalized += "." + fracPart
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: must be greater than zero", ErrInvalidAmount)
	}
	return d, nil
}

// ParseSignedAmount reads an amount that may also be zero or negative, such
// as a wallet's target balance. A leading minus is allowed before the usual
// ParseAmount forms.
func ParseSignedAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = strings.TrimSpace(s[1:])
	}
	if d, err := decimal.NewFromString(s); err == nil && d.IsZero() {
		return decimal.Zero, nil
	}
	d, err := ParseAmount(s)
	if err != nil {
		return decimal.Zero, err
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// isGrouped reports whether s looks like 1.234.567: a leading group of one to
// three digits followed by dot-separated groups of exactly three.
func isGrouped(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for _, g := range groups[1:] {
		if len(g) != 3 {
			return false
		}
	}
	return true
}

// CoerceAmount turns whatever a transport layer produced for an amount into a
// decimal. Numbers and numeric strings convert as expected; anything absent or
// non-numeric becomes zero instead of failing.
func CoerceAmount(v any) decimal.Decimal {
	switch x := v.(type) {
	case nil:
		return decimal.Zero
	case decimal.Decimal:
		return x
	case float64:
		return decimal.NewFromFloat(x)
	case float32:
		return decimal.NewFromFloat32(x)
	case int:
		return decimal.NewFromInt(int64(x))
	case int64:
		return decimal.NewFromInt(x)
	case int32:
		return decimal.NewFromInt32(x)
	case json.Number:
		d, err := decimal.NewFromString(x.String())
		if err != nil {
			return decimal.Zero
		}
		return d
	case string:
		trimmed := strings.TrimSpace(x)
		if d, err := ParseAmount(trimmed); err == nil {
			return d
		}
		if d, err := decimal.NewFromString(trimmed); err == nil {
			return d
		}
		return decimal.Zero
	default:
		return decimal.Zero
	}
}
