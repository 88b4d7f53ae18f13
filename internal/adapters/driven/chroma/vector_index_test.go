package chroma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven/mocks"
	"github.com/ledgerlens/ledgerlens-core/internal/runtime"
)

func TestWhereClause(t *testing.T) {
	if whereClause(domain.IndexPredicate{}) != nil {
		t.Error("empty predicate must produce a nil where clause")
	}

	year := 2024
	single := whereClause(domain.IndexPredicate{Year: &year})
	if single["year"] != 2024 {
		t.Errorf("single condition = %v, want bare clause without $and", single)
	}

	start := "2024-01-01"
	typ := "Debit"
	multi := whereClause(domain.IndexPredicate{DateStart: &start, Type: &typ})
	and, ok := multi["$and"].([]map[string]interface{})
	if !ok || len(and) != 2 {
		t.Fatalf("multi condition = %v, want $and of 2", multi)
	}
}

func newTestIndex(t *testing.T, handler http.Handler) (*VectorIndex, func()) {
	t.Helper()
	server := httptest.NewServer(handler)

	config := domain.NewRuntimeConfig("memory")
	services := runtime.NewServices(config)
	services.SetEmbeddingService(mocks.NewMockEmbeddingService())

	idx := NewVectorIndex(Config{BaseURL: server.URL, Timeout: 5 * time.Second}, services)
	return idx, server.Close
}

func TestVectorIndex_UpsertAndQuery(t *testing.T) {
	var upserted struct {
		IDs       []string                 `json:"ids"`
		Documents []string                 `json:"documents"`
		Metadatas []map[string]interface{} `json:"metadatas"`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "coll-1"})
	})
	mux.HandleFunc("/api/v1/collections/coll-1/upsert", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&upserted); err != nil {
			t.Errorf("decoding upsert body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/api/v1/collections/coll-1/query", func(w http.ResponseWriter, r *http.Request) {
		var req map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if _, ok := req["where"]; !ok {
			t.Error("query with a predicate must carry a where clause")
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ids":       [][]string{{"tx_0"}},
			"distances": [][]float64{{0.12}},
			"metadatas": [][]map[string]interface{}{{{
				"date":             "2024-01-15",
				"description":      "STARBUCKS",
				"amount":           -5.67,
				"month":            "2024-01",
				"year":             2024.0,
				"transaction_type": "Debit",
				"source_file":      "a.csv",
				"day_of_week":      "Monday",
				"is_weekend":       false,
			}}},
		})
	})

	idx, cleanup := newTestIndex(t, mux)
	defer cleanup()

	session := &domain.Session{ID: "s1"}
	ctx := context.Background()

	docs := []domain.IndexedDocument{{
		ID:   "tx_0",
		Text: "Transaction: STARBUCKS",
		Metadata: domain.DocumentMetadata{
			Date: "2024-01-15", Description: "STARBUCKS", Amount: -5.67,
			Month: "2024-01", Year: 2024, Type: "Debit", SourceFile: "a.csv", DayOfWeek: "Monday",
		},
	}}
	if err := idx.Upsert(ctx, session, docs); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if len(upserted.IDs) != 1 || upserted.IDs[0] != "tx_0" {
		t.Errorf("upserted ids = %v", upserted.IDs)
	}
	if upserted.Metadatas[0]["transaction_type"] != "Debit" {
		t.Errorf("metadata = %v", upserted.Metadatas[0])
	}

	typ := "Debit"
	hits, err := idx.Query(ctx, session, "coffee", 10, domain.IndexPredicate{Type: &typ})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1", len(hits))
	}
	if hits[0].ID != "tx_0" || hits[0].Distance != 0.12 {
		t.Errorf("hit = %+v", hits[0])
	}
	if hits[0].Metadata.Amount != -5.67 || hits[0].Metadata.Year != 2024 {
		t.Errorf("metadata = %+v", hits[0].Metadata)
	}
}

func TestVectorIndex_ResetToleratesMissing(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/collections/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	idx, cleanup := newTestIndex(t, mux)
	defer cleanup()

	if err := idx.Reset(context.Background(), &domain.Session{ID: "s1"}); err != nil {
		t.Errorf("resetting a missing collection must succeed, got %v", err)
	}
}

func TestVectorIndex_NoEmbeddingService(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	services := runtime.NewServices(domain.NewRuntimeConfig("memory"))
	idx := NewVectorIndex(Config{BaseURL: server.URL, Timeout: time.Second}, services)

	err := idx.Upsert(context.Background(), &domain.Session{ID: "s1"}, []domain.IndexedDocument{{ID: "tx_0"}})
	if err == nil || !strings.Contains(err.Error(), "no embedding service") {
		t.Errorf("err = %v, want missing embedding failure", err)
	}
}
