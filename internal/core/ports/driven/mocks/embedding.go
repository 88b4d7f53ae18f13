package mocks

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

const mockDimensions = 64

// MockEmbeddingService is a mock implementation of EmbeddingService for
// testing. Vectors are deterministic bag-of-token projections, so texts
// sharing tokens land near each other under cosine similarity.
type MockEmbeddingService struct {
	model    string
	failNext bool
}

// NewMockEmbeddingService creates a new MockEmbeddingService
func NewMockEmbeddingService() *MockEmbeddingService {
	return &MockEmbeddingService{model: "mock-embedding-model"}
}

func (m *MockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if m.failNext {
		m.failNext = false
		return nil, context.DeadlineExceeded
	}

	result := make([][]float32, len(texts))
	for i, text := range texts {
		result[i] = TokenVector(text)
	}
	return result, nil
}

func (m *MockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if m.failNext {
		m.failNext = false
		return nil, context.DeadlineExceeded
	}
	return TokenVector(query), nil
}

func (m *MockEmbeddingService) Dimensions() int {
	return mockDimensions
}

func (m *MockEmbeddingService) Model() string {
	return m.model
}

func (m *MockEmbeddingService) HealthCheck(ctx context.Context) error {
	return nil
}

func (m *MockEmbeddingService) Close() error {
	return nil
}

// SetFailNext makes the next call return an error
func (m *MockEmbeddingService) SetFailNext(fail bool) {
	m.failNext = fail
}

// TokenVector maps text to a deterministic L2-normalized bag-of-token
// vector. Shared tokens produce overlapping buckets, which is all the
// similarity structure the engine tests need.
func TokenVector(text string) []float32 {
	v := make([]float32, mockDimensions)
	for _, tok := range strings.Fields(strings.ToLower(text)) {
		tok = strings.Trim(tok, ".,:;!?()\"'")
		if tok == "" {
			continue
		}
		h := fnv.New32a()
		h.Write([]byte(tok))
		v[h.Sum32()%mockDimensions]++
	}

	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
	return v
}

// Cosine returns the cosine similarity of two vectors of equal length.
func Cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
