package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driving"
)

// Ensure sessionService implements SessionService
var _ driving.SessionService = (*sessionService)(nil)

// sessionService implements the SessionService interface. A session
// owns one transaction store partition and one index collection; both
// are removed on teardown.
type sessionService struct {
	sessions driven.SessionStore
	store    driven.TransactionStore
	index    driven.VectorIndex
	logger   *slog.Logger
}

// NewSessionService creates a new SessionService
func NewSessionService(
	sessions driven.SessionStore,
	store driven.TransactionStore,
	index driven.VectorIndex,
	logger *slog.Logger,
) driving.SessionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &sessionService{
		sessions: sessions,
		store:    store,
		index:    index,
		logger:   logger,
	}
}

// Create starts a new session
func (s *sessionService) Create(ctx context.Context) (*domain.Session, error) {
	now := time.Now()
	session := &domain.Session{
		ID:        uuid.New().String(),
		CreatedAt: now,
		LastUsed:  now,
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving session: %w", err)
	}

	s.logger.Info("session created", "session_id", session.ID)
	return session, nil
}

// Resolve returns the session for id. An empty id maps to the default
// session, which is created on first use.
func (s *sessionService) Resolve(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		id = domain.DefaultSessionID
	}

	session, err := s.sessions.Get(ctx, id)
	if err == nil {
		session.LastUsed = time.Now()
		if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
			s.logger.Warn("failed to refresh session", "session_id", id, "error", saveErr)
		}
		return session, nil
	}

	if id != domain.DefaultSessionID {
		return nil, err
	}

	now := time.Now()
	session = &domain.Session{ID: domain.DefaultSessionID, CreatedAt: now, LastUsed: now}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("saving default session: %w", err)
	}
	return session, nil
}

// Teardown removes the session, its stored transactions, and its index
// collection
func (s *sessionService) Teardown(ctx context.Context, id string) error {
	session, err := s.sessions.Get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.store.Clear(ctx, session.ID); err != nil {
		return fmt.Errorf("clearing transactions: %w", err)
	}
	if err := s.index.Reset(ctx, session); err != nil {
		s.logger.Warn("failed to reset index collection", "session_id", id, "error", err)
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}

	s.logger.Info("session removed", "session_id", id)
	return nil
}
