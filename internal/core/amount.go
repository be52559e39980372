package core

import (
	"strconv"
	"strings"
)

// ParseAmount coerces a raw cell value into a non-negative-friendly float.
// It accepts Indonesian-formatted numbers ("1.234.567,89") as well as plain
// numeric strings: thousands dots are stripped, a decimal comma becomes a
// decimal point, and any remaining characters other than digits, minus and
// point are dropped. Anything unparseable coerces to 0, never an error.
func ParseAmount(raw string) float64 {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0
	}
	s = strings.ReplaceAll(s, ".", "")
	s = strings.ReplaceAll(s, ",", ".")
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0
	}
	return v
}

// FormatAmount renders a value with id-ID digit grouping for on-screen
// display ("1234567.5" -> "1.234.567,50"). Whole values omit the decimals.
// Exports keep raw numerics; this is display-only.
func FormatAmount(v float64) string {
	neg := v < 0
	if neg {
		v = -v
	}
	cents := int64(v*100 + 0.5)
	whole := cents / 100
	frac := cents % 100

	digits := strconv.FormatInt(whole, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(d)
	}
	out := b.String()
	if frac != 0 {
		out += "," + pad2(frac)
	}
	if neg {
		return "-" + out
	}
	return out
}

// FormatPercent renders an execution percentage with two decimals, the form
// used in exports.
func FormatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func pad2(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}
