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
var _ driven.SessionStore = (*SessionStore)(nil)

const (
	sessionPrefix = "ledgerlens:session:"

	// sessionTTL is refreshed on every Save, so active sessions never
	// expire mid-use
	sessionTTL = 24 * time.Hour
)

// SessionStore implements driven.SessionStore using Redis.
// Sessions use Redis TTL for automatic expiration.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save stores or refreshes a session
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.client.Set(ctx, sessionPrefix+session.ID, data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete deletes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
