package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// largeAmountThreshold splits document bodies into "large" and "small"
// transactions (absolute amount).
const largeAmountThreshold = 100.0

// BuildDocuments projects a transaction batch into index documents, one
// per transaction. IDs are positional within the batch, so a full
// rebuild over the same batch produces the same ids and the index stays
// duplicate-free.
func BuildDocuments(txs []domain.Transaction) []domain.IndexedDocument {
	docs := make([]domain.IndexedDocument, len(txs))
	for i := range txs {
		docs[i] = domain.IndexedDocument{
			ID:       domain.DocumentID(i),
			Text:     documentText(&txs[i]),
			Metadata: documentMetadata(&txs[i]),
		}
	}
	return docs
}

// documentText renders the natural-language body that gets embedded.
// The wording carries context the raw row lacks (income vs expense,
// size, weekday) so semantic queries like "large weekend expenses" have
// something to match.
func documentText(tx *domain.Transaction) string {
	amountDesc := "expense"
	if tx.Amount > 0 {
		amountDesc = "income"
	}
	amountSize := "small"
	if abs(tx.Amount) > largeAmountThreshold {
		amountSize = "large"
	}
	weekend := "no"
	if tx.IsWeekend {
		weekend = "yes"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Transaction: %s\n", tx.Description)
	fmt.Fprintf(&b, "Amount: $%.2f (%s, %s)\n", tx.Amount, amountDesc, amountSize)
	fmt.Fprintf(&b, "Date: %s (%s)\n", tx.Date.Format("January 02, 2006"), tx.DayOfWeek)
	fmt.Fprintf(&b, "Month: %s\n", tx.Date.Format("January 2006"))
	fmt.Fprintf(&b, "Type: %s\n", tx.Type)
	fmt.Fprintf(&b, "Weekend: %s", weekend)
	return b.String()
}

func documentMetadata(tx *domain.Transaction) domain.DocumentMetadata {
	return domain.DocumentMetadata{
		Date:        tx.DateString(),
		Description: tx.Description,
		Amount:      tx.Amount,
		Month:       tx.Month,
		Year:        tx.Year,
		Type:        string(tx.Type),
		SourceFile:  tx.SourceFile,
		DayOfWeek:   tx.DayOfWeek,
		IsWeekend:   tx.IsWeekend,
	}
}

// TransactionFromMetadata reconstructs the transaction a hit refers to.
// The metadata record carries every canonical field, so search results
// do not need a store round-trip.
func TransactionFromMetadata(m domain.DocumentMetadata) domain.Transaction {
	tx := domain.Transaction{
		Description: m.Description,
		Amount:      m.Amount,
		SourceFile:  m.SourceFile,
		Month:       m.Month,
		Year:        m.Year,
		DayOfWeek:   m.DayOfWeek,
		IsWeekend:   m.IsWeekend,
		Type:        domain.TransactionType(m.Type),
	}
	if d, err := parseDateString(m.Date); err == nil {
		tx.Date = d
	}
	return tx
}

func parseDateString(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
