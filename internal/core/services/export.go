package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driving"
)

// topTransactionCount bounds the "top transactions" section of the
// summary report.
const topTransactionCount = 5

// Ensure exportService implements ExportService
var _ driving.ExportService = (*exportService)(nil)

// exportService implements the ExportService interface
type exportService struct{}

// NewExportService creates a new ExportService
func NewExportService() driving.ExportService {
	return &exportService{}
}

// ResultsCSV renders the result rows as a delimited table.
func (e *exportService) ResultsCSV(result *domain.SearchResult) ([]byte, error) {
	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)

	if err := cw.Write([]string{"date", "description", "amount", "type", "source_file", "similarity"}); err != nil {
		return nil, err
	}
	for _, r := range result.Results {
		row := []string{
			r.Transaction.DateString(),
			r.Transaction.Description,
			strconv.FormatFloat(r.Transaction.Amount, 'f', 2, 64),
			string(r.Transaction.Type),
			r.Transaction.SourceFile,
			strconv.FormatFloat(r.Similarity, 'f', 4, 64),
		}
		if err := cw.Write(row); err != nil {
			return nil, err
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SummaryReport renders a plain-text analysis of the result set.
func (e *exportService) SummaryReport(result *domain.SearchResult) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Search Query Analysis\n")
	fmt.Fprintf(&b, "Query: %q\n\n", result.Query)

	txs := make([]domain.Transaction, len(result.Results))
	for i, r := range result.Results {
		txs[i] = r.Transaction
	}
	summary := domain.Summarize(txs)

	fmt.Fprintf(&b, "Key Findings\n")
	fmt.Fprintf(&b, "- Total Transactions: %d\n", summary.Count)
	fmt.Fprintf(&b, "- Net Amount: $%.2f\n", summary.NetAmount)
	fmt.Fprintf(&b, "- Average Transaction: $%.2f\n", summary.Average)
	if summary.DateFrom != nil && summary.DateTo != nil {
		fmt.Fprintf(&b, "- Date Range: %s to %s\n",
			summary.DateFrom.Format("2006-01-02"),
			summary.DateTo.Format("2006-01-02"),
		)
	}

	fmt.Fprintf(&b, "\nTransaction Breakdown\n")
	fmt.Fprintf(&b, "- Credits (Income): %d transactions, $%.2f\n", summary.Credits, summary.TotalIncome)
	fmt.Fprintf(&b, "- Debits (Expenses): %d transactions, $%.2f\n", summary.Debits, summary.TotalExpenses)

	if len(txs) > 0 {
		top := make([]domain.Transaction, len(txs))
		copy(top, txs)
		sort.SliceStable(top, func(i, j int) bool { return top[i].Amount > top[j].Amount })
		if len(top) > topTransactionCount {
			top = top[:topTransactionCount]
		}

		fmt.Fprintf(&b, "\nTop Transactions\n")
		for _, tx := range top {
			fmt.Fprintf(&b, "- %s: %s - $%.2f\n", tx.DateString(), tx.Description, tx.Amount)
		}
	}

	return b.String()
}
