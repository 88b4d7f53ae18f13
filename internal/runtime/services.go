package runtime

import (
	"context"
	"sync"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
)

// Services holds references to dynamically configurable services.
// The embedding service can be swapped at runtime via API.
// Thread-safe for concurrent access.
type Services struct {
	mu sync.RWMutex

	// Config tracks capability flags
	config *domain.RuntimeConfig

	// Dynamic service (can be nil, updated at runtime)
	embeddingService driven.EmbeddingService
}

// NewServices creates a new Services registry
func NewServices(config *domain.RuntimeConfig) *Services {
	return &Services{
		config: config,
	}
}

// Config returns the runtime configuration
func (s *Services) Config() *domain.RuntimeConfig {
	return s.config
}

// EmbeddingService returns the current embedding service (may be nil)
func (s *Services) EmbeddingService() driven.EmbeddingService {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.embeddingService
}

// SetEmbeddingService updates the embedding service.
// Closes the old service if present. Updates config flags.
func (s *Services) SetEmbeddingService(svc driven.EmbeddingService) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Close old service
	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
	}

	s.embeddingService = svc
	s.config.SetEmbeddingAvailable(svc != nil)
}

// Close shuts down all services
func (s *Services) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embeddingService != nil {
		_ = s.embeddingService.Close()
		s.embeddingService = nil
	}

	s.config.SetEmbeddingAvailable(false)

	return nil
}

// ValidateAndSetEmbedding validates connectivity before setting the
// embedding service
func (s *Services) ValidateAndSetEmbedding(ctx context.Context, svc driven.EmbeddingService) error {
	if svc == nil {
		s.SetEmbeddingService(nil)
		return nil
	}

	// Validate connectivity
	if err := svc.HealthCheck(ctx); err != nil {
		_ = svc.Close()
		return err
	}

	s.SetEmbeddingService(svc)
	return nil
}
