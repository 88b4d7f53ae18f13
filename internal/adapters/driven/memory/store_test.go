package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

func TestTransactionStore_ReplaceIsWholesale(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	first := []domain.Transaction{
		{Description: "A", Amount: 1},
		{Description: "B", Amount: 2},
	}
	if err := store.Replace(ctx, "s1", first); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	second := []domain.Transaction{{Description: "C", Amount: 3}}
	if err := store.Replace(ctx, "s1", second); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := store.All(ctx, "s1")
	if len(got) != 1 || got[0].Description != "C" {
		t.Errorf("replace must discard the previous batch, got %+v", got)
	}
}

func TestTransactionStore_SessionIsolation(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	_ = store.Replace(ctx, "s1", []domain.Transaction{{Description: "A", Amount: 1}})
	_ = store.Replace(ctx, "s2", []domain.Transaction{{Description: "B", Amount: 2}, {Description: "C", Amount: 3}})

	if n, _ := store.Count(ctx, "s1"); n != 1 {
		t.Errorf("s1 count = %d, want 1", n)
	}
	if n, _ := store.Count(ctx, "s2"); n != 2 {
		t.Errorf("s2 count = %d, want 2", n)
	}

	_ = store.Clear(ctx, "s1")
	if n, _ := store.Count(ctx, "s1"); n != 0 {
		t.Errorf("s1 count = %d after clear, want 0", n)
	}
	if n, _ := store.Count(ctx, "s2"); n != 2 {
		t.Errorf("clearing s1 must not touch s2")
	}
}

func TestTransactionStore_ReturnsCopies(t *testing.T) {
	store := NewTransactionStore()
	ctx := context.Background()

	_ = store.Replace(ctx, "s1", []domain.Transaction{{Description: "A", Amount: 1}})

	got, _ := store.All(ctx, "s1")
	got[0].Description = "MUTATED"

	again, _ := store.All(ctx, "s1")
	if again[0].Description != "A" {
		t.Error("callers must not be able to mutate stored batches")
	}
}

func TestSessionStore_Lifecycle(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	now := time.Now()
	session := &domain.Session{ID: "s1", CreatedAt: now, LastUsed: now}
	if err := store.Save(ctx, session); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Get(ctx, "s1")
	if err != nil || got.ID != "s1" {
		t.Fatalf("get = (%v, %v)", got, err)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}
