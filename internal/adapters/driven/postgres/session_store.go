package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore implements driven.SessionStore using PostgreSQL
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new SessionStore
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save stores or refreshes a session
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, created_at, last_used)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET
			last_used = EXCLUDED.last_used
	`
	_, err := s.db.ExecContext(ctx, query, session.ID, session.CreatedAt, session.LastUsed)
	return err
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	query := `SELECT id, created_at, last_used FROM sessions WHERE id = $1`

	var session domain.Session
	err := s.db.QueryRowContext(ctx, query, id).Scan(&session.ID, &session.CreatedAt, &session.LastUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// Delete removes a session
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}
