package driving

import (
	"context"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// SearchService answers free-text questions about a session's
// transactions by combining extracted structured filters with
// nearest-neighbor search over the session's index.
type SearchService interface {
	// Search runs a hybrid query. An empty result set is a success
	// outcome; errors indicate index-side faults.
	Search(ctx context.Context, session *domain.Session, query string, opts domain.SearchOptions) (*domain.SearchResult, error)
}
