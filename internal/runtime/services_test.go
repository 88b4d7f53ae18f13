package runtime

import (
	"context"
	"errors"
	"testing"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// mockEmbeddingService is a mock implementation for testing
type mockEmbeddingService struct {
	healthCheckErr error
	closed         bool
}

func (m *mockEmbeddingService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, nil
}

func (m *mockEmbeddingService) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return nil, nil
}

func (m *mockEmbeddingService) Dimensions() int {
	return 384
}

func (m *mockEmbeddingService) Model() string {
	return "test-model"
}

func (m *mockEmbeddingService) HealthCheck(ctx context.Context) error {
	return m.healthCheckErr
}

func (m *mockEmbeddingService) Close() error {
	m.closed = true
	return nil
}

func TestNewServices(t *testing.T) {
	config := domain.NewRuntimeConfig("memory")
	services := NewServices(config)

	if services == nil {
		t.Fatal("expected non-nil services")
	}
	if services.Config() != config {
		t.Error("expected config to match")
	}
}

func TestServices_EmbeddingService(t *testing.T) {
	config := domain.NewRuntimeConfig("memory")
	services := NewServices(config)

	// Initially nil
	if services.EmbeddingService() != nil {
		t.Error("expected nil embedding service initially")
	}

	mock := &mockEmbeddingService{}
	services.SetEmbeddingService(mock)

	if services.EmbeddingService() == nil {
		t.Error("expected non-nil embedding service after set")
	}
	if !config.EmbeddingAvailable() {
		t.Error("config must report embedding available")
	}
}

func TestServices_SetEmbeddingService_ClosesOld(t *testing.T) {
	services := NewServices(domain.NewRuntimeConfig("memory"))

	old := &mockEmbeddingService{}
	services.SetEmbeddingService(old)

	replacement := &mockEmbeddingService{}
	services.SetEmbeddingService(replacement)

	if !old.closed {
		t.Error("replaced service must be closed")
	}
	if replacement.closed {
		t.Error("active service must stay open")
	}
}

func TestServices_SetEmbeddingService_Nil(t *testing.T) {
	config := domain.NewRuntimeConfig("memory")
	services := NewServices(config)

	services.SetEmbeddingService(&mockEmbeddingService{})
	services.SetEmbeddingService(nil)

	if services.EmbeddingService() != nil {
		t.Error("expected nil after unsetting")
	}
	if config.EmbeddingAvailable() {
		t.Error("config must report embedding unavailable")
	}
}

func TestServices_ValidateAndSetEmbedding(t *testing.T) {
	config := domain.NewRuntimeConfig("memory")
	services := NewServices(config)
	ctx := context.Background()

	healthy := &mockEmbeddingService{}
	if err := services.ValidateAndSetEmbedding(ctx, healthy); err != nil {
		t.Fatalf("validate healthy service: %v", err)
	}
	if services.EmbeddingService() == nil {
		t.Error("healthy service must be set")
	}

	unhealthy := &mockEmbeddingService{healthCheckErr: errors.New("unreachable")}
	if err := services.ValidateAndSetEmbedding(ctx, unhealthy); err == nil {
		t.Error("expected error for unhealthy service")
	}
	if !unhealthy.closed {
		t.Error("rejected service must be closed")
	}
	if services.EmbeddingService() != healthy {
		t.Error("previous service must survive a failed validation")
	}
}

func TestServices_Close(t *testing.T) {
	config := domain.NewRuntimeConfig("memory")
	services := NewServices(config)

	mock := &mockEmbeddingService{}
	services.SetEmbeddingService(mock)

	if err := services.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !mock.closed {
		t.Error("close must shut down the embedding service")
	}
	if services.EmbeddingService() != nil {
		t.Error("expected nil after close")
	}
	if config.EmbeddingAvailable() {
		t.Error("config must report embedding unavailable after close")
	}
}
