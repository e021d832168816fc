// Package types provides common type aliases and value coercion helpers.
package types

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Money represents a salary amount with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
type Money = decimal.Decimal

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and fixtures.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseDecimal coerces a filter value into a decimal.
// Accepts numeric Go types, json.Number and numeric strings (surrounding spaces allowed).
func ParseDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case float64:
		return decimal.NewFromFloat(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		s := strings.TrimSpace(n)
		if s == "" || strings.ContainsAny(s, "eE") {
			return decimal.Zero, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// ParseBool coerces a filter value into a boolean.
// true/1/yes are true and false/0/no are false, case-insensitively.
func ParseBool(v any) (value bool, ok bool) {
	switch b := v.(type) {
	case bool:
		return b, true
	case int:
		return b != 0, b == 0 || b == 1
	case int64:
		return b != 0, b == 0 || b == 1
	case float64:
		return b != 0, b == 0 || b == 1
	case json.Number:
		return ParseBool(b.String())
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes":
			return true, true
		case "false", "0", "no":
			return false, true
		}
	}
	return false, false
}

// Stringify renders a scalar filter value as text.
func Stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case decimal.Decimal:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}
