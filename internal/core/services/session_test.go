package services

import (
	"context"
	"errors"
	"testing"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven/mocks"
)

func newTestSessionService() (*sessionService, *mocks.MockSessionStore, *mocks.MockTransactionStore, *mocks.MockVectorIndex) {
	sessions := mocks.NewMockSessionStore()
	store := mocks.NewMockTransactionStore()
	index := mocks.NewMockVectorIndex()
	svc := NewSessionService(sessions, store, index, nil).(*sessionService)
	return svc, sessions, store, index
}

func TestSessionService_Create(t *testing.T) {
	svc, sessions, _, _ := newTestSessionService()

	session, err := svc.Create(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID == "" {
		t.Fatal("session id must be generated")
	}
	if session.CreatedAt.IsZero() || session.LastUsed.IsZero() {
		t.Error("timestamps must be set")
	}

	saved, err := sessions.Get(context.Background(), session.ID)
	if err != nil || saved.ID != session.ID {
		t.Errorf("session must be persisted, got (%v, %v)", saved, err)
	}

	other, _ := svc.Create(context.Background())
	if other.ID == session.ID {
		t.Error("ids must be unique per session")
	}
}

func TestSessionService_ResolveDefault(t *testing.T) {
	svc, _, _, _ := newTestSessionService()

	session, err := svc.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if session.ID != domain.DefaultSessionID {
		t.Errorf("id = %q, want default session", session.ID)
	}

	// Resolving again returns the same session, not a new one.
	again, err := svc.Resolve(context.Background(), "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !again.CreatedAt.Equal(session.CreatedAt) {
		t.Error("default session must be created once")
	}
}

func TestSessionService_ResolveUnknown(t *testing.T) {
	svc, _, _, _ := newTestSessionService()

	_, err := svc.Resolve(context.Background(), "no-such-session")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionService_Teardown(t *testing.T) {
	svc, sessions, store, index := newTestSessionService()
	ctx := context.Background()

	session, _ := svc.Create(ctx)
	_ = store.Replace(ctx, session.ID, []domain.Transaction{{Description: "X", Amount: 1}})
	_ = index.Upsert(ctx, session, []domain.IndexedDocument{{ID: "tx_0", Text: "x"}})

	if err := svc.Teardown(ctx, session.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if count, _ := store.Count(ctx, session.ID); count != 0 {
		t.Errorf("store count = %d, want 0", count)
	}
	if count, _ := index.Count(ctx, session); count != 0 {
		t.Errorf("index count = %d, want 0", count)
	}
	if _, err := sessions.Get(ctx, session.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("session must be deleted, got %v", err)
	}
}
