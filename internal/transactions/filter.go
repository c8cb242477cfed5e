package transactions

import (
	"slices"

	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/enums"
	"github.com/digikraal/ledgerview/pkg/normalize"
	"github.com/shopspring/decimal"
)

// ApplyFilter narrows rows already fetched for a scope. It never mutates
// rows and always returns a fresh slice.
//
//   - profit: investor profit > 0, highest first; equal profits keep store order
//   - purchases: purchase quantity > 0
//   - sales: sell quantity > 0
//   - none: every row
func ApplyFilter(rows []models.Transaction, mode enums.TransactionFilter) []models.Transaction {
	switch mode {
	case enums.TransactionFilterProfit:
		return profitable(rows)
	case enums.TransactionFilterPurchases:
		return keep(rows, func(row models.Transaction) bool {
			return normalize.NumberField(row.QuantityPurchase).IsPositive()
		})
	case enums.TransactionFilterSales:
		return keep(rows, func(row models.Transaction) bool {
			return normalize.NumberField(row.QuantitySell).IsPositive()
		})
	case enums.TransactionFilterNone:
		return slices.Clone(rows)
	default:
		return slices.Clone(rows)
	}
}

func keep(rows []models.Transaction, fn func(models.Transaction) bool) []models.Transaction {
	out := make([]models.Transaction, 0, len(rows))
	for _, row := range rows {
		if fn(row) {
			out = append(out, row)
		}
	}
	return out
}

type rankedRow struct {
	row    models.Transaction
	profit decimal.Decimal
}

func profitable(rows []models.Transaction) []models.Transaction {
	ranked := make([]rankedRow, 0, len(rows))
	for _, row := range rows {
		profit := normalize.MoneyField(row.InvestorProfit)
		if profit.IsPositive() {
			ranked = append(ranked, rankedRow{row: row, profit: profit})
		}
	}

	slices.SortStableFunc(ranked, func(a, b rankedRow) int {
		return b.profit.Cmp(a.profit)
	})

	out := make([]models.Transaction, len(ranked))
	for i, r := range ranked {
		out[i] = r.row
	}
	return out
}
