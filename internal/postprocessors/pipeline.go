// Package postprocessors cleans a combined multi-file transaction batch
// after schema normalization: description cleanup, deduplication, date
// ordering and derived-field computation.
package postprocessors

import (
	"sort"
	"strings"
	"sync"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.BatchPipeline = (*Pipeline)(nil)

// Pipeline implements BatchPipeline.
type Pipeline struct {
	mu         sync.RWMutex
	processors []driven.BatchProcessor
	sorted     bool
}

// NewPipeline creates an empty batch pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{processors: make([]driven.BatchProcessor, 0)}
}

// DefaultPipeline creates a pipeline with the default processors.
// The order matters: descriptions are normalized before deduplication so
// that re-running the pipeline on its own output is a fixpoint.
func DefaultPipeline() *Pipeline {
	p := NewPipeline()
	p.Add(&Cleaner{})
	p.Add(&Deduplicator{})
	p.Add(&Sorter{})
	p.Add(&Deriver{})
	return p
}

// Add adds a processor to the pipeline.
func (p *Pipeline) Add(processor driven.BatchProcessor) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processors = append(p.processors, processor)
	p.sorted = false
}

// Process applies all processors in Order() sequence.
func (p *Pipeline) Process(txs []domain.Transaction) []domain.Transaction {
	p.mu.Lock()
	if !p.sorted {
		sort.SliceStable(p.processors, func(i, j int) bool {
			return p.processors[i].Order() < p.processors[j].Order()
		})
		p.sorted = true
	}
	processors := make([]driven.BatchProcessor, len(p.processors))
	copy(processors, p.processors)
	p.mu.Unlock()

	out := make([]domain.Transaction, len(txs))
	copy(out, txs)
	for _, proc := range processors {
		out = proc.Process(out)
	}
	return out
}

// List returns processor names in order.
func (p *Pipeline) List() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, len(p.processors))
	for i, proc := range p.processors {
		names[i] = proc.Name()
	}
	return names
}

// Cleaner normalizes descriptions: trimmed and uppercased.
type Cleaner struct{}

var _ driven.BatchProcessor = (*Cleaner)(nil)

func (c *Cleaner) Process(txs []domain.Transaction) []domain.Transaction {
	for i := range txs {
		txs[i].Description = strings.ToUpper(strings.TrimSpace(txs[i].Description))
	}
	return txs
}

func (c *Cleaner) Name() string { return "cleaner" }
func (c *Cleaner) Order() int   { return 0 }

// Deduplicator removes duplicate (date, description, amount) triples,
// keeping the first occurrence. Runs after Cleaner so that rows whose
// descriptions normalize to the same text collapse, which makes the
// whole pipeline idempotent.
type Deduplicator struct{}

var _ driven.BatchProcessor = (*Deduplicator)(nil)

func (d *Deduplicator) Process(txs []domain.Transaction) []domain.Transaction {
	seen := make(map[string]bool, len(txs))
	out := txs[:0]
	for _, tx := range txs {
		key := tx.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, tx)
	}
	return out
}

func (d *Deduplicator) Name() string { return "deduplicator" }
func (d *Deduplicator) Order() int   { return 10 }

// Sorter orders the batch ascending by date. The sort is stable, so
// same-day rows keep their file order.
type Sorter struct{}

var _ driven.BatchProcessor = (*Sorter)(nil)

func (s *Sorter) Process(txs []domain.Transaction) []domain.Transaction {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].Date.Before(txs[j].Date)
	})
	return txs
}

func (s *Sorter) Name() string { return "sorter" }
func (s *Sorter) Order() int   { return 20 }

// Deriver populates month, year, day-of-week, weekend flag and
// transaction type.
type Deriver struct{}

var _ driven.BatchProcessor = (*Deriver)(nil)

func (d *Deriver) Process(txs []domain.Transaction) []domain.Transaction {
	for i := range txs {
		txs[i].Derive()
	}
	return txs
}

func (d *Deriver) Name() string { return "deriver" }
func (d *Deriver) Order() int   { return 30 }
