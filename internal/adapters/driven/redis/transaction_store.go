// Package redis provides Redis-backed store adapters so multiple
// replicas can share session state. Keys expire with the session
// lifetime; a session idle past the TTL starts fresh.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TransactionStore = (*TransactionStore)(nil)

const (
	batchPrefix = "ledgerlens:txs:"

	// batchTTL bounds how long an idle session's batch survives
	batchTTL = 24 * time.Hour
)

// TransactionStore implements driven.TransactionStore using a Redis
// list per session, one JSON-encoded transaction per element.
type TransactionStore struct {
	client *redis.Client
}

// NewTransactionStore creates a new Redis-backed TransactionStore
func NewTransactionStore(client *redis.Client) *TransactionStore {
	return &TransactionStore{client: client}
}

// Replace discards the session's current batch and stores txs
func (s *TransactionStore) Replace(ctx context.Context, sessionID string, txs []domain.Transaction) error {
	key := batchPrefix + sessionID

	rows := make([]interface{}, len(txs))
	for i := range txs {
		data, err := json.Marshal(txs[i])
		if err != nil {
			return fmt.Errorf("marshal transaction %d: %w", i, err)
		}
		rows[i] = data
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(rows) > 0 {
		pipe.RPush(ctx, key, rows...)
		pipe.Expire(ctx, key, batchTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace batch: %w", err)
	}
	return nil
}

// All returns the session's transactions in stored order
func (s *TransactionStore) All(ctx context.Context, sessionID string) ([]domain.Transaction, error) {
	rows, err := s.client.LRange(ctx, batchPrefix+sessionID, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}

	txs := make([]domain.Transaction, 0, len(rows))
	for i, row := range rows {
		var tx domain.Transaction
		if err := json.Unmarshal([]byte(row), &tx); err != nil {
			return nil, fmt.Errorf("unmarshal transaction %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// Count returns the number of stored transactions for the session
func (s *TransactionStore) Count(ctx context.Context, sessionID string) (int, error) {
	n, err := s.client.LLen(ctx, batchPrefix+sessionID).Result()
	if err != nil {
		return 0, fmt.Errorf("count batch: %w", err)
	}
	return int(n), nil
}

// Clear removes the session's batch
func (s *TransactionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, batchPrefix+sessionID).Err(); err != nil {
		return fmt.Errorf("clear batch: %w", err)
	}
	return nil
}
