// Package amount holds the 8-fractional-digit fixed-point helpers shared by
// every monetary amount and fraction on the ledger.
package amount

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits carried by every amount.
const Places = 8

var (
	Zero = decimal.Zero
	One  = decimal.NewFromInt(1)
)

// Parse reads a decimal string. More than eight fractional digits are
// rejected rather than rounded.
func Parse(s string) (decimal.Decimal, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return decimal.Zero, fmt.Errorf("amount required")
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !d.Equal(d.Truncate(Places)) {
		return decimal.Zero, fmt.Errorf("amount %q exceeds %d fractional digits", s, Places)
	}
	return d, nil
}

// ParseOptional treats the empty string as an absent amount.
func ParseOptional(s string) (decimal.NullDecimal, error) {
	if strings.TrimSpace(s) == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := Parse(s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}

func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Truncate drops digits beyond the ledger precision.
func Truncate(d decimal.Decimal) decimal.Decimal { return d.Truncate(Places) }

// Mul multiplies and truncates to ledger precision.
func Mul(a, b decimal.Decimal) decimal.Decimal { return a.Mul(b).Truncate(Places) }

// Div divides and truncates to ledger precision. Division by zero yields zero.
func Div(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.DivRound(b, Places+4).Truncate(Places)
}

// Format renders d with exactly eight fractional digits.
func Format(d decimal.Decimal) string { return d.StringFixed(Places) }

// FormatOptional renders an absent amount as the empty string.
func FormatOptional(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return Format(d.Decimal)
}

// IsFraction reports whether 0 <= d <= 1.
func IsFraction(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThanOrEqual(One)
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Encode is the storage form of an amount. Absent amounts encode as "".
func Encode(d decimal.NullDecimal) string { return FormatOptional(d) }

// Decode reverses Encode.
func Decode(s string) (decimal.NullDecimal, error) { return ParseOptional(s) }
