package driven

import (
	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// BatchProcessor applies one post-processing step to a combined
// multi-file transaction batch. Processors form a pipeline:
// Cleaner -> Deduplicator -> Sorter -> Deriver.
type BatchProcessor interface {
	// Process transforms the batch and returns the result
	Process(txs []domain.Transaction) []domain.Transaction

	// Name returns the processor name for logging/debugging
	Name() string

	// Order returns the processor order in the pipeline (lower = earlier)
	Order() int
}

// BatchPipeline chains batch processors in order.
type BatchPipeline interface {
	// Process applies all processors in order to the raw normalized batch
	Process(txs []domain.Transaction) []domain.Transaction

	// Add adds a processor; processors are sorted by Order() before use
	Add(processor BatchProcessor)

	// List returns processor names in order
	List() []string
}
