package domain

import "sync"

// RuntimeConfig tracks capability flags that can change while the process
// runs (the embedding service is configured dynamically).
type RuntimeConfig struct {
	mu sync.RWMutex

	// StoreBackend names the transaction store backend in use
	// (memory, redis, postgres)
	StoreBackend string

	embeddingAvailable bool
}

// NewRuntimeConfig creates a runtime configuration
func NewRuntimeConfig(storeBackend string) *RuntimeConfig {
	return &RuntimeConfig{StoreBackend: storeBackend}
}

// EmbeddingAvailable reports whether an embedding service is configured
func (c *RuntimeConfig) EmbeddingAvailable() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.embeddingAvailable
}

// SetEmbeddingAvailable updates the embedding capability flag
func (c *RuntimeConfig) SetEmbeddingAvailable(available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.embeddingAvailable = available
}
