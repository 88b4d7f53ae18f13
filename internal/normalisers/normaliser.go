package normalisers

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// Normaliser turns raw tabular datasets into canonical transactions.
type Normaliser struct {
	registry *Registry
}

// New creates a Normaliser with the default column registry.
func New() *Normaliser {
	return &Normaliser{registry: DefaultRegistry()}
}

// Normalise maps one raw table onto the canonical schema. Rows are
// dropped when the date or amount fails to parse or the description is
// empty after trimming; drops are silent, surfaced only through the
// reduced row count. Returns a *domain.MissingColumnsError when the
// required columns cannot be resolved.
func (n *Normaliser) Normalise(table *domain.RawTable) ([]domain.Transaction, error) {
	resolved := n.registry.Resolve(table.Columns)

	dateCol, hasDate := resolved[FieldDate]
	descCol, hasDesc := resolved[FieldDescription]
	amountCol, hasAmount := resolved[FieldAmount]
	debitCol, hasDebit := resolved[FieldDebit]
	creditCol, hasCredit := resolved[FieldCredit]

	// A debit/credit pair needs two distinct columns; a single column
	// matching both is treated as a plain amount column.
	pairMode := hasDebit && hasCredit && debitCol != creditCol
	if !pairMode && !hasAmount && hasDebit {
		amountCol, hasAmount = debitCol, true
	}
	if !pairMode && !hasAmount && hasCredit {
		amountCol, hasAmount = creditCol, true
	}

	var missing []string
	if !hasDate {
		missing = append(missing, "date")
	}
	if !hasDesc {
		missing = append(missing, "description")
	}
	if !hasAmount && !pairMode {
		missing = append(missing, "amount")
	}
	if len(missing) > 0 {
		return nil, &domain.MissingColumnsError{Missing: missing}
	}

	var txs []domain.Transaction
	for i := range table.Rows {
		date, ok := ParseDate(table.Cell(i, dateCol))
		if !ok {
			continue
		}

		desc := strings.TrimSpace(table.Cell(i, descCol))
		if desc == "" {
			continue
		}

		var amount float64
		if pairMode {
			// Unparsable sides default to zero: debits negative,
			// credits positive.
			debit, _ := ParseAmount(table.Cell(i, debitCol))
			credit, _ := ParseAmount(table.Cell(i, creditCol))
			amount = credit - debit
		} else {
			a, ok := ParseAmount(table.Cell(i, amountCol))
			if !ok {
				continue
			}
			amount = a
		}

		txs = append(txs, domain.Transaction{
			Date:        date,
			Description: desc,
			Amount:      amount,
			SourceFile:  table.Name,
		})
	}

	return txs, nil
}

// ParseAmount parses a currency cell into a signed value. Currency
// symbols, thousands separators and parentheses are stripped;
// parentheses imply a negative value, but a literal minus sign is
// authoritative when present.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	hasParens := strings.Contains(s, "(") && strings.Contains(s, ")")
	hasMinus := strings.Contains(s, "-")

	cleaned := strings.NewReplacer("$", "", ",", "", "(", "", ")", "", " ", "").Replace(s)
	if cleaned == "" {
		return 0, false
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return 0, false
	}

	v := d.InexactFloat64()
	if hasParens && !hasMinus && v > 0 {
		v = -v
	}
	return v, true
}

// dateLayouts is tried in order; the day-first layouts come before their
// month-first counterparts, so ambiguous dates resolve day-first.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"01-02-2006",
	"02.01.2006",
	"2 Jan 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"02/01/06",
	"01/02/06",
}

// ParseDate parses a date cell, preferring day-first interpretation when
// the format is ambiguous.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
