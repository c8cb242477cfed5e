package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Transaction is one ledger row: a purchase, a sale, or both linked on the same
// item. Business columns are free text as entered by operators and are only
// read through pkg/normalize.
type Transaction struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`

	ItemNumber   *string `gorm:"column:item_number;index"`
	DealCode     *string `gorm:"column:deal_code;index"`
	DealName     *string `gorm:"column:deal_name"`
	PartnerName  *string `gorm:"column:partner_name;index"`
	InvestorName *string `gorm:"column:investor_name;index"`
	BuyerName    *string `gorm:"column:buyer_name"`
	Type         *string `gorm:"column:type"`

	DatePurchases        *string `gorm:"column:date_purchases"`
	QuantityPurchase     *string `gorm:"column:quantity_purchase"`
	PricePerUnitPurchase *string `gorm:"column:price_per_unit_purchase"`
	TotalPurchaseBill    *string `gorm:"column:total_purchase_bill"`
	VATOnPurchases       *string `gorm:"column:vat_on_purchases"`

	DateSales          *string `gorm:"column:date_sales;index"`
	QuantitySell       *string `gorm:"column:quantity_sell"`
	PricePerUnitSales  *string `gorm:"column:price_per_unit_sales"`
	TotalSalesInvoices *string `gorm:"column:total_sales_invoices"`
	VATOnSales         *string `gorm:"column:vat_on_sales"`

	GrossProfit     *string `gorm:"column:gross_profit"`
	NetProfit       *string `gorm:"column:net_profit"`
	ROIPercent      *string `gorm:"column:roi_percent"`
	PartnerPercent  *string `gorm:"column:partner_percent"`
	PartnerProfit   *string `gorm:"column:partner_profit"`
	PlatformPercent *string `gorm:"column:platform_percent"`
	PlatformProfit  *string `gorm:"column:platform_profit"`
	InvestorPercent *string `gorm:"column:investor_percent"`
	InvestorProfit  *string `gorm:"column:investor_profit"`
	StockAvailable  *string `gorm:"column:stock_available"`
	StockValue      *string `gorm:"column:stock_value"`
	Days            *string `gorm:"column:days"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Transaction) TableName() string {
	return "transactions"
}

func (t *Transaction) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
