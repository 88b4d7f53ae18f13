// Package chroma implements the vector index against a ChromaDB
// server. One Chroma collection per session; documents are embedded
// through the runtime embedding service before submission.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-core/internal/runtime"
)

// Verify interface compliance
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex implements driven.VectorIndex using ChromaDB
type VectorIndex struct {
	baseURL    string
	httpClient *http.Client
	services   *runtime.Services

	mu          sync.Mutex
	collections map[string]string // collection name -> chroma id
}

// Config holds Chroma connection configuration
type Config struct {
	// BaseURL is the Chroma endpoint (e.g., http://localhost:8000)
	BaseURL string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL: baseURL,
		Timeout: 30 * time.Second,
	}
}

// NewVectorIndex creates a new Chroma-backed VectorIndex.
// The embedding service is resolved per call via runtime.Services, so
// configuring embeddings at runtime takes effect immediately.
func NewVectorIndex(cfg Config, services *runtime.Services) *VectorIndex {
	return &VectorIndex{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		services:    services,
		collections: make(map[string]string),
	}
}

// Upsert adds or replaces documents in the session's collection
func (v *VectorIndex) Upsert(ctx context.Context, session *domain.Session, docs []domain.IndexedDocument) error {
	if len(docs) == 0 {
		return nil
	}

	embedder := v.services.EmbeddingService()
	if embedder == nil {
		return fmt.Errorf("%w: no embedding service configured", domain.ErrIndexUnavailable)
	}

	collID, err := v.collectionID(ctx, session.CollectionName())
	if err != nil {
		return err
	}

	texts := make([]string, len(docs))
	ids := make([]string, len(docs))
	metadatas := make([]map[string]interface{}, len(docs))
	for i, d := range docs {
		texts[i] = d.Text
		ids[i] = d.ID
		metadatas[i] = metadataFields(d.Metadata)
	}

	embeddings, err := embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("%w: embedding documents: %v", domain.ErrIndexUnavailable, err)
	}

	payload := map[string]interface{}{
		"ids":        ids,
		"embeddings": embeddings,
		"documents":  texts,
		"metadatas":  metadatas,
	}
	if err := v.post(ctx, fmt.Sprintf("/api/v1/collections/%s/upsert", collID), payload, nil); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	return nil
}

// chromaQueryResponse is Chroma's nearest-neighbor response shape:
// one inner slice per query embedding.
type chromaQueryResponse struct {
	IDs       [][]string                 `json:"ids"`
	Distances [][]float64                `json:"distances"`
	Metadatas [][]map[string]interface{} `json:"metadatas"`
}

// Query embeds the query text and returns the k nearest documents
// satisfying the predicate, closest first
func (v *VectorIndex) Query(ctx context.Context, session *domain.Session, text string, k int, pred domain.IndexPredicate) ([]domain.IndexHit, error) {
	if k <= 0 {
		return nil, nil
	}

	embedder := v.services.EmbeddingService()
	if embedder == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrIndexUnavailable)
	}

	collID, err := v.collectionID(ctx, session.CollectionName())
	if err != nil {
		return nil, err
	}

	embedding, err := embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", domain.ErrIndexUnavailable, err)
	}

	payload := map[string]interface{}{
		"query_embeddings": [][]float32{embedding},
		"n_results":        k,
		"include":          []string{"metadatas", "distances"},
	}
	if where := whereClause(pred); where != nil {
		payload["where"] = where
	}

	var resp chromaQueryResponse
	if err := v.post(ctx, fmt.Sprintf("/api/v1/collections/%s/query", collID), payload, &resp); err != nil {
		return nil, err
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	hits := make([]domain.IndexHit, 0, len(resp.IDs[0]))
	for i, id := range resp.IDs[0] {
		hit := domain.IndexHit{ID: id}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			hit.Distance = resp.Distances[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			hit.Metadata = metadataFromFields(resp.Metadatas[0][i])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// Reset discards the session's collection
func (v *VectorIndex) Reset(ctx context.Context, session *domain.Session) error {
	name := session.CollectionName()

	v.mu.Lock()
	delete(v.collections, name)
	v.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/api/v1/collections/%s", v.baseURL, name), nil)
	if err != nil {
		return err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	// 404 is fine - the collection never existed
	if resp.StatusCode >= 400 && resp.StatusCode != http.StatusNotFound {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: chroma delete failed: %s - %s", domain.ErrIndexUnavailable, resp.Status, string(body))
	}
	return nil
}

// Count returns the number of documents in the session's collection
func (v *VectorIndex) Count(ctx context.Context, session *domain.Session) (int, error) {
	collID, err := v.collectionID(ctx, session.CollectionName())
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/api/v1/collections/%s/count", v.baseURL, collID), nil)
	if err != nil {
		return 0, err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("chroma count failed: %s - %s", resp.Status, string(body))
	}

	var count int
	if err := json.NewDecoder(resp.Body).Decode(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// HealthCheck verifies the index is available
func (v *VectorIndex) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/api/v1/heartbeat", nil)
	if err != nil {
		return err
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrIndexUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: chroma unhealthy: %s", domain.ErrIndexUnavailable, resp.Status)
	}
	return nil
}

// collectionID resolves (and caches) the Chroma id for a collection
// name, creating the collection if needed.
func (v *VectorIndex) collectionID(ctx context.Context, name string) (string, error) {
	v.mu.Lock()
	if id, ok := v.collections[name]; ok {
		v.mu.Unlock()
		return id, nil
	}
	v.mu.Unlock()

	var created struct {
		ID string `json:"id"`
	}
	payload := map[string]interface{}{
		"name":          name,
		"get_or_create": true,
	}
	if err := v.post(ctx, "/api/v1/collections", payload, &created); err != nil {
		return "", fmt.Errorf("%w: creating collection %s: %v", domain.ErrIndexUnavailable, name, err)
	}

	v.mu.Lock()
	v.collections[name] = created.ID
	v.mu.Unlock()
	return created.ID, nil
}

func (v *VectorIndex) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chroma request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("chroma request failed: %s - %s", resp.Status, string(respBody))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return err
		}
	}
	return nil
}

// whereClause maps the predicate onto Chroma's where syntax. Returns
// nil when the predicate is empty, since Chroma rejects empty clauses.
func whereClause(pred domain.IndexPredicate) map[string]interface{} {
	var conditions []map[string]interface{}

	if pred.AmountMin != nil {
		conditions = append(conditions, map[string]interface{}{"amount": map[string]interface{}{"$gte": *pred.AmountMin}})
	}
	if pred.AmountMax != nil {
		conditions = append(conditions, map[string]interface{}{"amount": map[string]interface{}{"$lte": *pred.AmountMax}})
	}
	if pred.DateStart != nil {
		conditions = append(conditions, map[string]interface{}{"date": map[string]interface{}{"$gte": *pred.DateStart}})
	}
	if pred.DateEnd != nil {
		conditions = append(conditions, map[string]interface{}{"date": map[string]interface{}{"$lte": *pred.DateEnd}})
	}
	if pred.Year != nil {
		conditions = append(conditions, map[string]interface{}{"year": *pred.Year})
	}
	if pred.Type != nil {
		conditions = append(conditions, map[string]interface{}{"transaction_type": *pred.Type})
	}

	switch len(conditions) {
	case 0:
		return nil
	case 1:
		return conditions[0]
	default:
		return map[string]interface{}{"$and": conditions}
	}
}

func metadataFields(m domain.DocumentMetadata) map[string]interface{} {
	return map[string]interface{}{
		"date":             m.Date,
		"description":      m.Description,
		"amount":           m.Amount,
		"month":            m.Month,
		"year":             m.Year,
		"transaction_type": m.Type,
		"source_file":      m.SourceFile,
		"day_of_week":      m.DayOfWeek,
		"is_weekend":       m.IsWeekend,
	}
}

func metadataFromFields(fields map[string]interface{}) domain.DocumentMetadata {
	m := domain.DocumentMetadata{}
	if v, ok := fields["date"].(string); ok {
		m.Date = v
	}
	if v, ok := fields["description"].(string); ok {
		m.Description = v
	}
	if v, ok := fields["amount"].(float64); ok {
		m.Amount = v
	}
	if v, ok := fields["month"].(string); ok {
		m.Month = v
	}
	if v, ok := fields["year"].(float64); ok {
		m.Year = int(v)
	}
	if v, ok := fields["transaction_type"].(string); ok {
		m.Type = v
	}
	if v, ok := fields["source_file"].(string); ok {
		m.SourceFile = v
	}
	if v, ok := fields["day_of_week"].(string); ok {
		m.DayOfWeek = v
	}
	if v, ok := fields["is_weekend"].(bool); ok {
		m.IsWeekend = v
	}
	return m
}
