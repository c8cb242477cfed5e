package transactions

import (
	"github.com/digikraal/ledgerview/pkg/db/models"
	"github.com/digikraal/ledgerview/pkg/normalize"
	"github.com/google/uuid"
)

// TransactionDTO is the wire shape of a ledger row. Source strings are passed
// through untouched; Amounts carries their normalized values.
type TransactionDTO struct {
	ID           uuid.UUID `json:"id"`
	ItemNumber   *string   `json:"itemNumber,omitempty"`
	DealCode     *string   `json:"dealCode,omitempty"`
	DealName     *string   `json:"dealName,omitempty"`
	PartnerName  *string   `json:"partnerName,omitempty"`
	InvestorName *string   `json:"investorName,omitempty"`
	BuyerName    *string   `json:"buyerName,omitempty"`
	Type         *string   `json:"type,omitempty"`

	DatePurchases        *string `json:"datePurchases,omitempty"`
	QuantityPurchase     *string `json:"quantityPurchase,omitempty"`
	PricePerUnitPurchase *string `json:"pricePerUnitPurchase,omitempty"`
	TotalPurchaseBill    *string `json:"totalPurchaseBill,omitempty"`

	DateSales          *string `json:"dateSales,omitempty"`
	QuantitySell       *string `json:"quantitySell,omitempty"`
	PricePerUnitSales  *string `json:"pricePerUnitSales,omitempty"`
	TotalSalesInvoices *string `json:"totalSalesInvoices,omitempty"`

	GrossProfit     *string `json:"grossProfit,omitempty"`
	NetProfit       *string `json:"netProfit,omitempty"`
	ROIPercent      *string `json:"roiPercent,omitempty"`
	PartnerPercent  *string `json:"partnerPercent,omitempty"`
	PartnerProfit   *string `json:"partnerProfit,omitempty"`
	InvestorPercent *string `json:"investorPercent,omitempty"`
	InvestorProfit  *string `json:"investorProfit,omitempty"`
	Days            *string `json:"days,omitempty"`

	Amounts Amounts `json:"amounts"`
}

// Amounts are the normalized numbers behind the display strings.
type Amounts struct {
	QuantityPurchase float64 `json:"quantityPurchase"`
	QuantitySell     float64 `json:"quantitySell"`
	InvestorProfit   float64 `json:"investorProfit"`
	PartnerProfit    float64 `json:"partnerProfit"`
	NetProfit        float64 `json:"netProfit"`
	InvestorShare    float64 `json:"investorShare"`
	Days             float64 `json:"days"`
}

func FromModel(t models.Transaction) TransactionDTO {
	return TransactionDTO{
		ID:                   t.ID,
		ItemNumber:           t.ItemNumber,
		DealCode:             t.DealCode,
		DealName:             t.DealName,
		PartnerName:          t.PartnerName,
		InvestorName:         t.InvestorName,
		BuyerName:            t.BuyerName,
		Type:                 t.Type,
		DatePurchases:        t.DatePurchases,
		QuantityPurchase:     t.QuantityPurchase,
		PricePerUnitPurchase: t.PricePerUnitPurchase,
		TotalPurchaseBill:    t.TotalPurchaseBill,
		DateSales:            t.DateSales,
		QuantitySell:         t.QuantitySell,
		PricePerUnitSales:    t.PricePerUnitSales,
		TotalSalesInvoices:   t.TotalSalesInvoices,
		GrossProfit:          t.GrossProfit,
		NetProfit:            t.NetProfit,
		ROIPercent:           t.ROIPercent,
		PartnerPercent:       t.PartnerPercent,
		PartnerProfit:        t.PartnerProfit,
		InvestorPercent:      t.InvestorPercent,
		InvestorProfit:       t.InvestorProfit,
		Days:                 t.Days,
		Amounts: Amounts{
			QuantityPurchase: normalize.NumberField(t.QuantityPurchase).InexactFloat64(),
			QuantitySell:     normalize.NumberField(t.QuantitySell).InexactFloat64(),
			InvestorProfit:   normalize.MoneyField(t.InvestorProfit).InexactFloat64(),
			PartnerProfit:    normalize.MoneyField(t.PartnerProfit).InexactFloat64(),
			NetProfit:        normalize.MoneyField(t.NetProfit).InexactFloat64(),
			InvestorShare:    normalize.PercentField(t.InvestorPercent).InexactFloat64(),
			Days:             normalize.NumberField(t.Days).InexactFloat64(),
		},
	}
}

func FromModels(rows []models.Transaction) []TransactionDTO {
	out := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, FromModel(row))
	}
	return out
}
