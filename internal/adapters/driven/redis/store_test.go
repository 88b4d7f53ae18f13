package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

func TestTransactionStore_ReplaceAndAll(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewTransactionStore(client)
	ctx := context.Background()

	txs := []domain.Transaction{
		{Date: time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC), Description: "STARBUCKS", Amount: -5.67, SourceFile: "a.csv"},
		{Date: time.Date(2024, time.January, 16, 0, 0, 0, 0, time.UTC), Description: "SALARY", Amount: 2500, SourceFile: "a.csv"},
	}
	for i := range txs {
		txs[i].Derive()
	}

	if err := store.Replace(ctx, "s1", txs); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.All(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2", len(got))
	}
	if got[0].Description != "STARBUCKS" || got[1].Amount != 2500 {
		t.Errorf("rows must round-trip in order, got %+v", got)
	}
	if got[0].Type != domain.TransactionDebit || got[0].Month != "2024-01" {
		t.Errorf("derived fields must survive the round trip, got %+v", got[0])
	}

	n, err := store.Count(ctx, "s1")
	if err != nil || n != 2 {
		t.Errorf("count = (%d, %v), want 2", n, err)
	}
}

func TestTransactionStore_ReplaceDiscardsPrevious(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewTransactionStore(client)
	ctx := context.Background()

	_ = store.Replace(ctx, "s1", []domain.Transaction{{Description: "A", Amount: 1}, {Description: "B", Amount: 2}})
	_ = store.Replace(ctx, "s1", []domain.Transaction{{Description: "C", Amount: 3}})

	got, _ := store.All(ctx, "s1")
	if len(got) != 1 || got[0].Description != "C" {
		t.Errorf("replace must be wholesale, got %+v", got)
	}

	// Replacing with an empty batch clears the key.
	_ = store.Replace(ctx, "s1", nil)
	if n, _ := store.Count(ctx, "s1"); n != 0 {
		t.Errorf("count = %d after empty replace, want 0", n)
	}
}

func TestTransactionStore_ClearAndIsolation(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewTransactionStore(client)
	ctx := context.Background()

	_ = store.Replace(ctx, "s1", []domain.Transaction{{Description: "A", Amount: 1}})
	_ = store.Replace(ctx, "s2", []domain.Transaction{{Description: "B", Amount: 2}})

	if err := store.Clear(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n, _ := store.Count(ctx, "s1"); n != 0 {
		t.Errorf("s1 count = %d, want 0", n)
	}
	if n, _ := store.Count(ctx, "s2"); n != 1 {
		t.Errorf("s2 count = %d, want 1 (sessions are isolated)", n)
	}
}

func TestSessionStore_SaveGetDelete(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewSessionStore(client)
	ctx := context.Background()

	now := time.Now().Truncate(time.Second).UTC()
	session := &domain.Session{ID: "s1", CreatedAt: now, LastUsed: now}

	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "s1" || !got.CreatedAt.Equal(now) {
		t.Errorf("session = %+v", got)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionStore_GetMissing(t *testing.T) {
	client, cleanup := setupTestRedis(t)
	defer cleanup()

	store := NewSessionStore(client)
	if _, err := store.Get(context.Background(), "nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
