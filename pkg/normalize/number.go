// Package normalize turns the loosely typed strings stored on ledger rows into
// exact numbers and renders numbers back for display. Every parser is total:
// absent or malformed input yields zero and never an error.
package normalize

import (
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// leadingNumber matches the longest numeric prefix, so "12 head" reads as 12.
// Exponents are read to at most three digits.
var leadingNumber = regexp.MustCompile(`^[+-]?(\d+(\.\d+)?|\.\d+)([eE][+-]?\d{1,3})?`)

// maxExponent bounds the decimal exponent before the float check, which builds
// a big.Int power of ten of that size.
const maxExponent = 2000

// ParseNumber reads quantities and day counts. Thousands separators are ignored.
func ParseNumber(text string) decimal.Decimal {
	return parseLeading(strings.ReplaceAll(strings.TrimSpace(text), ",", ""))
}

// NumberField is ParseNumber for optional columns.
func NumberField(value *string) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return ParseNumber(*value)
}

func parseLeading(text string) decimal.Decimal {
	match := leadingNumber.FindString(strings.TrimSpace(text))
	if match == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return decimal.Zero
	}
	if exp := d.Exponent(); exp > maxExponent || exp < -maxExponent {
		return decimal.Zero
	}
	if f, _ := d.Float64(); math.IsInf(f, 0) || math.IsNaN(f) {
		return decimal.Zero
	}
	return d
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
