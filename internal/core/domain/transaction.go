package domain

import (
	"strings"
	"time"
)

// TransactionType classifies a transaction by the sign of its amount
type TransactionType string

const (
	TransactionCredit TransactionType = "Credit" // amount > 0
	TransactionDebit  TransactionType = "Debit"  // amount <= 0
)

// TypeForAmount derives the transaction type from a signed amount.
// Zero classifies as Debit: the only Credit test is amount > 0.
func TypeForAmount(amount float64) TransactionType {
	if amount > 0 {
		return TransactionCredit
	}
	return TransactionDebit
}

// Transaction is the canonical record every ingested statement row is
// normalized into. Amount is signed: positive = credit/income,
// negative = debit/expense.
type Transaction struct {
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	SourceFile  string    `json:"source_file"`

	// Derived fields, populated by the batch pipeline
	Month     string          `json:"month"` // year-month, e.g. "2024-01"
	Year      int             `json:"year"`
	DayOfWeek string          `json:"day_of_week"`
	IsWeekend bool            `json:"is_weekend"`
	Type      TransactionType `json:"transaction_type"`
}

// Derive populates the calendar attributes and the transaction type
// from Date and Amount.
func (t *Transaction) Derive() {
	t.Month = t.Date.Format("2006-01")
	t.Year = t.Date.Year()
	t.DayOfWeek = t.Date.Weekday().String()
	wd := t.Date.Weekday()
	t.IsWeekend = wd == time.Saturday || wd == time.Sunday
	t.Type = TypeForAmount(t.Amount)
}

// DateString returns the canonical YYYY-MM-DD serialization used at the
// index-metadata boundary.
func (t *Transaction) DateString() string {
	return t.Date.Format("2006-01-02")
}

// Key identifies a transaction for deduplication: identical
// (date, description, amount) triples are considered duplicates.
func (t *Transaction) Key() string {
	var b strings.Builder
	b.WriteString(t.DateString())
	b.WriteByte('|')
	b.WriteString(t.Description)
	b.WriteByte('|')
	b.WriteString(formatAmount(t.Amount))
	return b.String()
}
