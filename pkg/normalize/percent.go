package normalize

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DefaultPercentDecimals is the precision used for ratios on dashboards.
const DefaultPercentDecimals = 1

var hundred = decimal.NewFromInt(100)

// ParsePercent reads "25.5%" as 0.255. A bare "50" is still a percentage
// and reads as 0.5.
func ParsePercent(text string) decimal.Decimal {
	cleaned := strings.ReplaceAll(strings.TrimSpace(text), "%", "")
	return parseLeading(cleaned).Div(hundred)
}

// PercentField is ParsePercent for optional columns.
func PercentField(value *string) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return ParsePercent(*value)
}

// FormatPercent renders a ratio with the given number of decimals:
// FormatPercent(0.255, 1) is "25.5%". Non-finite ratios render as "0%".
func FormatPercent(v float64, decimals int) string {
	if !finite(v) {
		return "0%"
	}
	if decimals < 0 {
		decimals = 0
	}
	return decimal.NewFromFloat(v).Mul(hundred).StringFixed(int32(decimals)) + "%"
}

// FormatPercentWhole rounds to a whole percentage: 0.255 is "26%".
func FormatPercentWhole(v float64) string {
	return FormatPercent(v, 0)
}
