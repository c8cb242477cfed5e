package portfolio

import (
	"math"
	"strconv"

	"github.com/digikraal/ledgerview/pkg/normalize"
)

// Display holds dashboard-ready renderings of Metrics.
type Display struct {
	CapitalInvested  string `json:"capitalInvested"`
	TotalProfit      string `json:"totalProfit"`
	TotalItemsBought string `json:"totalItemsBought"`
	TotalItemsSold   string `json:"totalItemsSold"`
	AverageDaysHeld  string `json:"averageDaysHeld"`
	ROI              string `json:"roi"`
	AnnualizedROI    string `json:"annualizedRoi"`
}

func (m Metrics) Display(currency *normalize.Currency) Display {
	if currency == nil {
		currency = normalize.NewCurrency(normalize.DefaultMarker)
	}
	return Display{
		CapitalInvested:  currency.Format(m.CapitalInvested),
		TotalProfit:      currency.Format(m.TotalProfit),
		TotalItemsBought: wholeNumber(m.TotalItemsBought),
		TotalItemsSold:   wholeNumber(m.TotalItemsSold),
		AverageDaysHeld:  wholeNumber(m.AverageDaysHeld),
		ROI:              normalize.FormatPercent(m.ROI, normalize.DefaultPercentDecimals),
		AnnualizedROI:    normalize.FormatPercent(m.AnnualizedROI, normalize.DefaultPercentDecimals),
	}
}

func wholeNumber(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "0"
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}
