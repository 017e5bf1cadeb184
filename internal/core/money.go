// Package core holds the billing model of a building ledger: month
// arithmetic, payment status classification, payment recording and the
// records those operate on.
//
// Everything here is a pure function over caller-supplied values.
package core

import (
	"strconv"
	"strings"
	"unicode"
)

// ParseAmount converts an operator-entered amount to whole currency units.
//
// Grouping spaces are ignored ("8 400"), both "," and "." are accepted as the
// decimal separator, and a fractional part is rounded half-up. Zero, negative
// and malformed inputs return ErrInvalidAmount.
//
// Examples:
//
//	ParseAmount("850")     -> 850
//	ParseAmount("8 400")   -> 8400
//	ParseAmount("849,50")  -> 850
//	ParseAmount("849.49")  -> 849
func ParseAmount(s string) (Money, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return Money{}, ErrInvalidAmount
	}
	s = strings.ReplaceAll(s, ",", ".")
	if strings.HasPrefix(s, "+") || strings.HasPrefix(s, "-") {
		return Money{}, ErrInvalidAmount
	}
	intPart, fracPart, _ := strings.Cut(s, ".")
	if strings.Contains(fracPart, ".") {
		return Money{}, ErrInvalidAmount
	}
	if intPart == "" {
		intPart = "0"
	}
	for _, r := range intPart + fracPart {
		if r < '0' || r > '9' {
			return Money{}, ErrInvalidAmount
		}
	}
	units, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	if fracPart != "" && fracPart[0] >= '5' {
		units++
	}
	if units <= 0 {
		return Money{}, ErrInvalidAmount
	}
	return Money{Units: units}, nil
}

// FormatAmount groups thousands with a plain space: 17050 -> "17 050".
func FormatAmount(m Money) string {
	digits := strconv.FormatInt(m.Units, 10)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(digits[:lead])
	for i := lead; i < len(digits); i += 3 {
		b.WriteByte(' ')
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// Format renders the amount followed by the currency label, e.g. "8 400 MAD".
func (m Money) Format(currency string) string {
	if currency == "" {
		return FormatAmount(m)
	}
	return FormatAmount(m) + " " + currency
}

// String renders the raw integer, as used in exports.
func (m Money) String() string {
	return strconv.FormatInt(m.Units, 10)
}
