package ledger

import (
	"fmt"
	"time"
)

// Field names a ledger column that may be matched by equality.
type Field string

const (
	FieldInvestorName Field = "investor_name"
	FieldPartnerName  Field = "partner_name"
	FieldDealCode     Field = "deal_code"
	FieldItemNumber   Field = "item_number"
)

// IsValid reports whether the field may be used in a predicate.
func (f Field) IsValid() bool {
	switch f {
	case FieldInvestorName, FieldPartnerName, FieldDealCode, FieldItemNumber:
		return true
	default:
		return false
	}
}

// Match is a single equality condition.
type Match struct {
	Field Field
	Value string
}

// Predicate restricts which transactions a query returns. All conditions are
// combined with AND; the zero value matches every row.
type Predicate struct {
	Matches []Match
	// SaleDateAfter and SaleDateBefore are ISO dates (YYYY-MM-DD) compared
	// strictly against the sale date.
	SaleDateAfter  string
	SaleDateBefore string
}

// All matches every row.
func All() Predicate {
	return Predicate{}
}

// Where returns a copy of p with one more equality condition.
func (p Predicate) Where(field Field, value string) Predicate {
	matches := make([]Match, 0, len(p.Matches)+1)
	matches = append(matches, p.Matches...)
	p.Matches = append(matches, Match{Field: field, Value: value})
	return p
}

// SoldAfter returns a copy of p limited to sales strictly after date.
func (p Predicate) SoldAfter(date string) Predicate {
	p.SaleDateAfter = date
	return p
}

// SoldBefore returns a copy of p limited to sales strictly before date.
func (p Predicate) SoldBefore(date string) Predicate {
	p.SaleDateBefore = date
	return p
}

// Value returns the value matched for field, if any.
func (p Predicate) Value(field Field) (string, bool) {
	for _, m := range p.Matches {
		if m.Field == field {
			return m.Value, true
		}
	}
	return "", false
}

// Validate rejects unknown columns and malformed dates.
func (p Predicate) Validate() error {
	for _, m := range p.Matches {
		if !m.Field.IsValid() {
			return fmt.Errorf("unsupported ledger field %q", m.Field)
		}
	}
	for _, date := range []string{p.SaleDateAfter, p.SaleDateBefore} {
		if date == "" {
			continue
		}
		if _, err := time.Parse(time.DateOnly, date); err != nil {
			return fmt.Errorf("invalid sale date %q: %w", date, err)
		}
	}
	return nil
}
