package validators

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/digikraal/ledgerview/pkg/enums"
	pkgerrors "github.com/digikraal/ledgerview/pkg/errors"
)

// TransactionQuery holds the listing query parameters. Dates are calendar
// dates in ISO form and bound the sale date exclusively.
type TransactionQuery struct {
	Filter   string `json:"filter" validate:"omitempty,oneof=none profit purchases sales"`
	DealCode string `json:"dealCode" validate:"omitempty,max=64"`
	DateFrom string `json:"dateFrom" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `json:"dateTo" validate:"omitempty,datetime=2006-01-02"`
}

// TransactionFilter returns the parsed filter mode. Valid only after ParseTransactionQuery.
func (q TransactionQuery) TransactionFilter() enums.TransactionFilter {
	filter, err := enums.ParseTransactionFilter(q.Filter)
	if err != nil {
		return enums.TransactionFilterNone
	}
	return filter
}

// ParseTransactionQuery reads and validates the listing query string.
func ParseTransactionQuery(r *http.Request) (TransactionQuery, error) {
	values := r.URL.Query()
	q := TransactionQuery{
		Filter:   strings.ToLower(clean(values.Get("filter"), 32)),
		DealCode: clean(values.Get("dealCode"), 0),
		DateFrom: clean(values.Get("dateFrom"), 0),
		DateTo:   clean(values.Get("dateTo"), 0),
	}
	if err := validate.Struct(q); err != nil {
		return TransactionQuery{}, formatValidationErrors(err)
	}
	return q, nil
}

// PathParam trims a required path value and rejects blanks.
func PathParam(value, name string, maxLen int) (string, error) {
	cleaned := clean(value, maxLen)
	if cleaned == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "path parameter is required").
			WithDetails(map[string]any{"field": name})
	}
	return cleaned, nil
}

// clean trims value and cuts it to at most maxRunes runes; zero means no cap.
func clean(value string, maxRunes int) string {
	value = strings.TrimSpace(value)
	if maxRunes <= 0 || utf8.RuneCountInString(value) <= maxRunes {
		return value
	}
	return string([]rune(value)[:maxRunes])
}
