// Package memory provides the default in-process store backends. State
// lives for the lifetime of the process; restarting drops every
// session, which matches the session-scoped model.
package memory

import (
	"context"
	"sync"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TransactionStore = (*TransactionStore)(nil)

// TransactionStore implements driven.TransactionStore with a
// session-keyed in-memory map.
type TransactionStore struct {
	mu      sync.RWMutex
	batches map[string][]domain.Transaction
}

// NewTransactionStore creates a new in-memory TransactionStore
func NewTransactionStore() *TransactionStore {
	return &TransactionStore{batches: make(map[string][]domain.Transaction)}
}

// Replace discards the session's current batch and stores txs
func (s *TransactionStore) Replace(ctx context.Context, sessionID string, txs []domain.Transaction) error {
	batch := make([]domain.Transaction, len(txs))
	copy(batch, txs)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[sessionID] = batch
	return nil
}

// All returns the session's transactions in stored order
func (s *TransactionStore) All(ctx context.Context, sessionID string) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	batch := s.batches[sessionID]
	out := make([]domain.Transaction, len(batch))
	copy(out, batch)
	return out, nil
}

// Count returns the number of stored transactions for the session
func (s *TransactionStore) Count(ctx context.Context, sessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.batches[sessionID]), nil
}

// Clear removes the session's batch
func (s *TransactionStore) Clear(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.batches, sessionID)
	return nil
}
