package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// DefaultMarker is the rand symbol used across the ledger.
const DefaultMarker = "R"

// Currency parses and formats amounts carrying a leading currency marker.
type Currency struct {
	marker  string
	prefix  *regexp.Regexp
	printer *message.Printer
}

var defaultCurrency = NewCurrency(DefaultMarker)

// NewCurrency builds a Currency for the given marker. An empty marker falls
// back to DefaultMarker.
func NewCurrency(marker string) *Currency {
	marker = strings.TrimSpace(marker)
	if marker == "" {
		marker = DefaultMarker
	}
	return &Currency{
		marker:  marker,
		prefix:  regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(marker) + `\s*`),
		printer: message.NewPrinter(language.English),
	}
}

func (c *Currency) Marker() string {
	return c.marker
}

// Parse strips the marker and thousands separators and reads the amount.
// "R1,250.50" is 1250.50, "" or "n/a" is 0.
func (c *Currency) Parse(text string) decimal.Decimal {
	cleaned := c.prefix.ReplaceAllString(strings.TrimSpace(text), "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	return parseLeading(cleaned)
}

// Field is Parse for optional columns.
func (c *Currency) Field(value *string) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return c.Parse(*value)
}

// Format renders two fraction digits with "," grouping: 1250.5 is "R1,250.50".
// NaN and infinities render as the zero amount.
func (c *Currency) Format(v float64) string {
	if !finite(v) {
		v = 0
	}
	rounded := decimal.NewFromFloat(v).Round(2).InexactFloat64()
	return c.marker + c.printer.Sprint(number.Decimal(rounded, number.Scale(2)))
}

// FormatWhole rounds to the nearest unit: 1250.5 is "R1,251".
func (c *Currency) FormatWhole(v float64) string {
	if !finite(v) {
		v = 0
	}
	whole := decimal.NewFromFloat(v).Round(0).IntPart()
	return c.marker + c.printer.Sprint(number.Decimal(whole))
}

// ParseMoney parses an amount with the default marker.
func ParseMoney(text string) decimal.Decimal {
	return defaultCurrency.Parse(text)
}

// MoneyField is ParseMoney for optional columns.
func MoneyField(value *string) decimal.Decimal {
	return defaultCurrency.Field(value)
}

// FormatMoney renders an amount with the default marker.
func FormatMoney(v float64) string {
	return defaultCurrency.Format(v)
}

// FormatMoneyWhole renders a rounded amount with the default marker.
func FormatMoneyWhole(v float64) string {
	return defaultCurrency.FormatWhole(v)
}
