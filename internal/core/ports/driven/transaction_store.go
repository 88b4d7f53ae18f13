package driven

import (
	"context"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// TransactionStore holds the canonical normalized transactions for a
// session. Each upload replaces the session's batch wholesale; there are
// no incremental update semantics. Single-writer per session is assumed.
type TransactionStore interface {
	// Replace discards the session's current batch and stores txs
	Replace(ctx context.Context, sessionID string, txs []domain.Transaction) error

	// All returns the session's transactions in stored order
	All(ctx context.Context, sessionID string) ([]domain.Transaction, error)

	// Count returns the number of stored transactions for the session
	Count(ctx context.Context, sessionID string) (int, error)

	// Clear removes the session's batch
	Clear(ctx context.Context, sessionID string) error
}

// SessionStore tracks known sessions.
type SessionStore interface {
	// Save stores or refreshes a session
	Save(ctx context.Context, session *domain.Session) error

	// Get retrieves a session by id, or domain.ErrSessionNotFound
	Get(ctx context.Context, id string) (*domain.Session, error)

	// Delete removes a session
	Delete(ctx context.Context, id string) error
}
