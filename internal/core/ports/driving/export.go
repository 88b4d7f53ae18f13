package driving

import (
	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// ExportService projects search results into exchange formats. Pure
// projections of the transaction + similarity fields, no extra contract.
type ExportService interface {
	// ResultsCSV renders the result rows as a delimited table
	ResultsCSV(result *domain.SearchResult) ([]byte, error)

	// SummaryReport renders a plain-text report of the result set
	SummaryReport(result *domain.SearchResult) string
}
