package ledger

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/digikraal/ledgerview/pkg/db/models"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Importer loads an exported ledger sheet into the transactions table.
type Importer interface {
	Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error)
}

type ImportOptions struct {
	// Replace deletes every existing row before loading.
	Replace bool
	DryRun  bool
}

type ImportResult struct {
	Imported       int      `json:"imported"`
	Deleted        int64    `json:"deleted"`
	IgnoredColumns []string `json:"ignored_columns,omitempty"`
}

type importer struct {
	repo Repository
	tx   txRunner
}

// NewImporter wires an importer with the provided repository and transaction runner.
func NewImporter(repo Repository, tx txRunner) (Importer, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &importer{repo: repo, tx: tx}, nil
}

func (i *importer) Import(ctx context.Context, r io.Reader, opts ImportOptions) (*ImportResult, error) {
	rows, ignored, err := ParseCSV(r)
	if err != nil {
		return nil, err
	}
	result := &ImportResult{Imported: len(rows), IgnoredColumns: ignored}
	if opts.DryRun {
		return result, nil
	}

	err = i.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := i.repo.WithTx(tx)
		if opts.Replace {
			deleted, err := repo.DeleteAll(ctx)
			if err != nil {
				return fmt.Errorf("clear ledger: %w", err)
			}
			result.Deleted = deleted
		}
		return repo.CreateBatch(ctx, rows)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type columnSetter func(t *models.Transaction, value *string)

// ledgerColumns maps the export headers to row fields. Headers are compared
// after collapsing whitespace and lowercasing.
var ledgerColumns = map[string]columnSetter{
	"item #":                        func(t *models.Transaction, v *string) { t.ItemNumber = v },
	"deal code":                     func(t *models.Transaction, v *string) { t.DealCode = v },
	"deal name":                     func(t *models.Transaction, v *string) { t.DealName = v },
	"partner name":                  func(t *models.Transaction, v *string) { t.PartnerName = v },
	"investor name":                 func(t *models.Transaction, v *string) { t.InvestorName = v },
	"buyer name":                    func(t *models.Transaction, v *string) { t.BuyerName = v },
	"type":                          func(t *models.Transaction, v *string) { t.Type = v },
	"date - purchases":              func(t *models.Transaction, v *string) { t.DatePurchases = isoDate(v) },
	"quantity - purchase":           func(t *models.Transaction, v *string) { t.QuantityPurchase = v },
	"price per unit - purchases":    func(t *models.Transaction, v *string) { t.PricePerUnitPurchase = v },
	"total - purchase bill":         func(t *models.Transaction, v *string) { t.TotalPurchaseBill = v },
	"vat on purchases":              func(t *models.Transaction, v *string) { t.VATOnPurchases = v },
	"date - sales":                  func(t *models.Transaction, v *string) { t.DateSales = isoDate(v) },
	"quantity - sell":               func(t *models.Transaction, v *string) { t.QuantitySell = v },
	"price per unit - sales":        func(t *models.Transaction, v *string) { t.PricePerUnitSales = v },
	"total - sales invoices":        func(t *models.Transaction, v *string) { t.TotalSalesInvoices = v },
	"vat on sales":                  func(t *models.Transaction, v *string) { t.VATOnSales = v },
	"gross profit":                  func(t *models.Transaction, v *string) { t.GrossProfit = v },
	"net profit":                    func(t *models.Transaction, v *string) { t.NetProfit = v },
	"roi %":                         func(t *models.Transaction, v *string) { t.ROIPercent = v },
	"partner %":                     func(t *models.Transaction, v *string) { t.PartnerPercent = v },
	"partner profit":                func(t *models.Transaction, v *string) { t.PartnerProfit = v },
	"digikraal %":                   func(t *models.Transaction, v *string) { t.PlatformPercent = v },
	"digikraal profit":              func(t *models.Transaction, v *string) { t.PlatformProfit = v },
	"investor %":                    func(t *models.Transaction, v *string) { t.InvestorPercent = v },
	"investor profit":               func(t *models.Transaction, v *string) { t.InvestorProfit = v },
	"stock available(qty)":          func(t *models.Transaction, v *string) { t.StockAvailable = v },
	"stock value(r) - not sold yet": func(t *models.Transaction, v *string) { t.StockValue = v },
	"days":                          func(t *models.Transaction, v *string) { t.Days = v },
}

// ParseCSV reads a ledger export. Cells are kept verbatim apart from trimming;
// empty cells become absent fields. Unknown headers are returned, not rejected.
func ParseCSV(r io.Reader) ([]models.Transaction, []string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("ledger export is empty")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read header: %w", err)
	}

	setters := make([]columnSetter, len(header))
	var ignored []string
	known := 0
	for idx, name := range header {
		if setter, ok := ledgerColumns[headerKey(name)]; ok {
			setters[idx] = setter
			known++
			continue
		}
		if strings.TrimSpace(name) != "" {
			ignored = append(ignored, strings.TrimSpace(name))
		}
	}
	if known == 0 {
		return nil, ignored, fmt.Errorf("no ledger columns recognised in header")
	}

	var rows []models.Transaction
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, ignored, fmt.Errorf("read line %d: %w", line, err)
		}

		var row models.Transaction
		populated := false
		for idx, cell := range record {
			if idx >= len(setters) || setters[idx] == nil {
				continue
			}
			value := strings.TrimSpace(cell)
			if value == "" {
				continue
			}
			setters[idx](&row, &value)
			populated = true
		}
		if populated {
			rows = append(rows, row)
		}
	}
	return rows, ignored, nil
}

func headerKey(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02/01/2006",
	"2/1/2006",
	"2 Jan 2006",
	"2 January 2006",
	time.RFC3339,
}

// isoDate rewrites recognised date formats as YYYY-MM-DD so sale-date range
// filters compare correctly. Unrecognised values are stored unchanged.
func isoDate(value *string) *string {
	if value == nil {
		return nil
	}
	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, *value); err == nil {
			iso := parsed.Format(time.DateOnly)
			return &iso
		}
	}
	return value
}
