package memory

import (
	"context"
	"sync"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore implements driven.SessionStore in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewSessionStore creates a new in-memory SessionStore
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session)}
}

// Save stores or refreshes a session
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.ID] = *session
	return nil
}

// Get retrieves a session by id
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
