package driven

import (
	"context"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// VectorIndex is the opaque nearest-neighbor service transactions are
// indexed into. Each session owns one collection; Reset discards the
// session's collection and starts fresh. Implementations evaluate the
// predicate natively during Query when they can, otherwise they filter
// hits with predicate.Matches before returning.
type VectorIndex interface {
	// Upsert adds or replaces documents in the session's collection
	Upsert(ctx context.Context, session *domain.Session, docs []domain.IndexedDocument) error

	// Query embeds the query text and returns the k nearest documents
	// satisfying the predicate, closest first
	Query(ctx context.Context, session *domain.Session, text string, k int, pred domain.IndexPredicate) ([]domain.IndexHit, error)

	// Reset discards the session's collection
	Reset(ctx context.Context, session *domain.Session) error

	// Count returns the number of documents in the session's collection
	Count(ctx context.Context, session *domain.Session) (int, error)

	// HealthCheck verifies the index is available
	HealthCheck(ctx context.Context) error
}
