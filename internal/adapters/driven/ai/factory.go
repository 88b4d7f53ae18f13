package ai

import (
	"fmt"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
)

// Ensure Factory implements AIServiceFactory
var _ driven.AIServiceFactory = (*Factory)(nil)

// Factory creates embedding services based on configuration
type Factory struct{}

// NewFactory creates a new AI service factory
func NewFactory() *Factory {
	return &Factory{}
}

// CreateEmbeddingService creates an embedding service from settings
func (f *Factory) CreateEmbeddingService(settings *domain.EmbeddingSettings) (driven.EmbeddingService, error) {
	if settings == nil || !settings.IsConfigured() {
		return nil, nil
	}

	switch settings.Provider {
	case domain.AIProviderOpenAI:
		return NewOpenAIEmbedding(settings.APIKey, settings.Model, settings.BaseURL)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidProvider, settings.Provider)
	}
}
