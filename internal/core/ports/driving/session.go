package driving

import (
	"context"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// SessionService owns session lifecycle: one store partition and one
// index collection per session, constructed at session start and torn
// down at session end.
type SessionService interface {
	// Create starts a new session
	Create(ctx context.Context) (*domain.Session, error)

	// Resolve returns the session for id, creating the default session
	// when id is empty
	Resolve(ctx context.Context, id string) (*domain.Session, error)

	// Teardown removes the session, its stored transactions, and its
	// index collection
	Teardown(ctx context.Context, id string) error
}
