package mocks

import (
	"context"
	"sync"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// MockTransactionStore is an in-memory session-keyed transaction store
// for testing.
type MockTransactionStore struct {
	mu      sync.RWMutex
	batches map[string][]domain.Transaction
}

// NewMockTransactionStore creates a new MockTransactionStore
func NewMockTransactionStore() *MockTransactionStore {
	return &MockTransactionStore{
		batches: make(map[string][]domain.Transaction),
	}
}

func (m *MockTransactionStore) Replace(ctx context.Context, sessionID string, txs []domain.Transaction) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	batch := make([]domain.Transaction, len(txs))
	copy(batch, txs)
	m.batches[sessionID] = batch
	return nil
}

func (m *MockTransactionStore) All(ctx context.Context, sessionID string) ([]domain.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	batch := m.batches[sessionID]
	out := make([]domain.Transaction, len(batch))
	copy(out, batch)
	return out, nil
}

func (m *MockTransactionStore) Count(ctx context.Context, sessionID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.batches[sessionID]), nil
}

func (m *MockTransactionStore) Clear(ctx context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.batches, sessionID)
	return nil
}

// MockSessionStore is an in-memory session registry for testing.
type MockSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMockSessionStore creates a new MockSessionStore
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{sessions: make(map[string]*domain.Session)}
}

func (m *MockSessionStore) Save(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	saved := *session
	m.sessions[session.ID] = &saved
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	found := *s
	return &found, nil
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}
