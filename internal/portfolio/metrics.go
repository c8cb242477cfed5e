// Package portfolio derives an investor's point-in-time portfolio metrics
// from their ledger rows.
package portfolio

import (
	"math"

	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/normalize"
	"github.com/shopspring/decimal"
)

const daysPerYear = 365

// Metrics is derived per request and never stored.
type Metrics struct {
	CapitalInvested  float64 `json:"capitalInvested"`
	TotalItemsBought float64 `json:"totalItemsBought"`
	TotalItemsSold   float64 `json:"totalItemsSold"`
	TotalProfit      float64 `json:"totalProfit"`
	AverageDaysHeld  float64 `json:"averageDaysHeld"`
	ROI              float64 `json:"roi"`
	AnnualizedROI    float64 `json:"annualizedRoi"`
}

// ComputeMetrics reduces rows and the investor's capital into Metrics.
// Malformed or absent fields contribute zero.
//
// AverageDaysHeld only counts rows with a positive holding period. ROI is
// zero unless capital is positive.
//
// AnnualizedROI compounds the aggregate holding-period return over
// 365/AverageDaysHeld periods: (1+ROI)^(365/avg) - 1. That treats the whole
// portfolio as one position held for the average period, which is only a fair
// approximation when holdings are similar in size and duration. It is zero
// when no row has a positive holding period, and also when the result is not
// a real number (losses beyond the capital base).
func ComputeMetrics(capitalInvested decimal.Decimal, rows []models.Transaction) Metrics {
	var (
		bought, sold, profit decimal.Decimal
		daysTotal            decimal.Decimal
		daysCount            int64
	)

	for _, row := range rows {
		bought = bought.Add(normalize.NumberField(row.QuantityPurchase))
		sold = sold.Add(normalize.NumberField(row.QuantitySell))
		profit = profit.Add(normalize.MoneyField(row.InvestorProfit))

		if days := normalize.NumberField(row.Days); days.IsPositive() {
			daysTotal = daysTotal.Add(days)
			daysCount++
		}
	}

	m := Metrics{
		CapitalInvested:  toFloat(capitalInvested),
		TotalItemsBought: toFloat(bought),
		TotalItemsSold:   toFloat(sold),
		TotalProfit:      toFloat(profit),
	}

	if daysCount > 0 {
		m.AverageDaysHeld = toFloat(daysTotal.Div(decimal.NewFromInt(daysCount)))
	}
	if capitalInvested.IsPositive() {
		m.ROI = toFloat(profit.Div(capitalInvested))
	}
	if m.AverageDaysHeld > 0 {
		m.AnnualizedROI = annualize(m.ROI, m.AverageDaysHeld)
	}
	return m
}

// toFloat reports totals beyond the float64 range as zero so a response can
// always be encoded.
func toFloat(d decimal.Decimal) float64 {
	f := d.InexactFloat64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

func annualize(roi, averageDaysHeld float64) float64 {
	v := math.Pow(1+roi, daysPerYear/averageDaysHeld) - 1
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
