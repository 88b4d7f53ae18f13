package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// MockVectorIndex is an in-memory vector index for testing. It embeds
// document text with the same deterministic token vectors as
// MockEmbeddingService and runs exact nearest-neighbor search with the
// predicate applied natively.
type MockVectorIndex struct {
	mu          sync.RWMutex
	collections map[string]map[string]domain.IndexedDocument
	unavailable bool
	failUpsert  bool
	lastQueryK  int
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{
		collections: make(map[string]map[string]domain.IndexedDocument),
	}
}

func (m *MockVectorIndex) Upsert(ctx context.Context, session *domain.Session, docs []domain.IndexedDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unavailable {
		return domain.ErrIndexUnavailable
	}
	if m.failUpsert {
		m.failUpsert = false
		return domain.ErrIndexUnavailable
	}

	coll := m.collections[session.CollectionName()]
	if coll == nil {
		coll = make(map[string]domain.IndexedDocument)
		m.collections[session.CollectionName()] = coll
	}
	for _, d := range docs {
		coll[d.ID] = d
	}
	return nil
}

func (m *MockVectorIndex) Query(ctx context.Context, session *domain.Session, text string, k int, pred domain.IndexPredicate) ([]domain.IndexHit, error) {
	m.mu.Lock()
	m.lastQueryK = k
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.unavailable {
		return nil, domain.ErrIndexUnavailable
	}

	coll := m.collections[session.CollectionName()]
	if len(coll) == 0 || k <= 0 {
		return nil, nil
	}

	qv := TokenVector(text)
	hits := make([]domain.IndexHit, 0, len(coll))
	for _, d := range coll {
		if !pred.Matches(d.Metadata) {
			continue
		}
		sim := Cosine(qv, TokenVector(d.Text))
		hits = append(hits, domain.IndexHit{
			ID:       d.ID,
			Metadata: d.Metadata,
			Distance: 1 - sim,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (m *MockVectorIndex) Reset(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.unavailable {
		return domain.ErrIndexUnavailable
	}
	delete(m.collections, session.CollectionName())
	return nil
}

func (m *MockVectorIndex) Count(ctx context.Context, session *domain.Session) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.unavailable {
		return 0, domain.ErrIndexUnavailable
	}
	return len(m.collections[session.CollectionName()]), nil
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error {
	if m.unavailable {
		return domain.ErrIndexUnavailable
	}
	return nil
}

// LastQueryK returns the k passed to the most recent Query, for
// assertions on limit clamping.
func (m *MockVectorIndex) LastQueryK() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQueryK
}

// Documents returns the session's indexed documents, for assertions.
func (m *MockVectorIndex) Documents(session *domain.Session) []domain.IndexedDocument {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.collections[session.CollectionName()]
	docs := make([]domain.IndexedDocument, 0, len(coll))
	for _, d := range coll {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })
	return docs
}

// SetUnavailable makes every call fail with ErrIndexUnavailable
func (m *MockVectorIndex) SetUnavailable(unavailable bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unavailable = unavailable
}

// SetFailNextUpsert makes the next Upsert call fail
func (m *MockVectorIndex) SetFailNextUpsert(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failUpsert = fail
}
