package enums

import "fmt"

// TransactionFilter narrows an already scoped transaction list.
type TransactionFilter string

const (
	TransactionFilterNone      TransactionFilter = ""
	TransactionFilterProfit    TransactionFilter = "profit"
	TransactionFilterPurchases TransactionFilter = "purchases"
	TransactionFilterSales     TransactionFilter = "sales"
)

var validTransactionFilters = []TransactionFilter{
	TransactionFilterNone,
	TransactionFilterProfit,
	TransactionFilterPurchases,
	TransactionFilterSales,
}

// String implements fmt.Stringer.
func (f TransactionFilter) String() string {
	return string(f)
}

// IsValid reports whether the value is a known TransactionFilter.
func (f TransactionFilter) IsValid() bool {
	for _, candidate := range validTransactionFilters {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseTransactionFilter converts raw input into a TransactionFilter. Empty
// input and "none" both mean no filter.
func ParseTransactionFilter(value string) (TransactionFilter, error) {
	if value == "none" {
		return TransactionFilterNone, nil
	}
	for _, candidate := range validTransactionFilters {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction filter %q", value)
}
