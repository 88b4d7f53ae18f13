package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driving"
	"github.com/ledgerlens/ledgerlens-core/internal/queryfilters"
)

// Ensure searchService implements SearchService
var _ driving.SearchService = (*searchService)(nil)

// searchService implements the SearchService interface. A query runs
// in two stages: constraints the index evaluates natively (dates, year,
// type) narrow the nearest-neighbor search, and amount bounds are
// applied afterwards against the absolute amount, which the index
// cannot compute.
type searchService struct {
	store  driven.TransactionStore
	index  driven.VectorIndex
	logger *slog.Logger
	clock  func() time.Time
}

// NewSearchService creates a new SearchService
func NewSearchService(
	store driven.TransactionStore,
	index driven.VectorIndex,
	logger *slog.Logger,
) driving.SearchService {
	if logger == nil {
		logger = slog.Default()
	}
	return &searchService{
		store:  store,
		index:  index,
		logger: logger,
		clock:  time.Now,
	}
}

// Search runs a hybrid query over the session's transactions.
func (s *searchService) Search(ctx context.Context, session *domain.Session, query string, opts domain.SearchOptions) (*domain.SearchResult, error) {
	start := time.Now()

	// Apply defaults
	if opts.Limit <= 0 {
		opts.Limit = domain.DefaultSearchLimit
	}
	if opts.Limit > domain.MaxSearchLimit {
		opts.Limit = domain.MaxSearchLimit
	}

	// Heuristic constraints from the query text; explicit caller
	// filters win on conflict.
	filters := queryfilters.Extract(query, s.clock()).Merge(opts.Filters)

	// An empty session is a valid search target: zero rows, no error.
	count, err := s.store.Count(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("checking transaction store: %w", err)
	}
	if count == 0 {
		return &domain.SearchResult{
			Query:   query,
			Filters: filters,
			Results: []domain.RankedTransaction{},
			Took:    time.Since(start),
		}, nil
	}

	hits, err := s.index.Query(ctx, session, query, opts.Limit, nativePredicate(filters))
	if err != nil {
		if errors.Is(err, domain.ErrIndexUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrQueryExecution, err)
	}

	results := make([]domain.RankedTransaction, 0, len(hits))
	for _, hit := range hits {
		// Amount bounds compare magnitude: "over $100" matches a
		// -150.00 expense as well as a 200.00 deposit.
		if filters.AmountMin != nil && abs(hit.Metadata.Amount) < *filters.AmountMin {
			continue
		}
		if filters.AmountMax != nil && abs(hit.Metadata.Amount) > *filters.AmountMax {
			continue
		}
		results = append(results, domain.RankedTransaction{
			Transaction: TransactionFromMetadata(hit.Metadata),
			Similarity:  1 - hit.Distance,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	s.logger.Debug("search complete",
		"session_id", session.ID,
		"query", query,
		"hits", len(hits),
		"results", len(results),
	)

	return &domain.SearchResult{
		Query:      query,
		Filters:    filters,
		Results:    results,
		TotalCount: len(results),
		Took:       time.Since(start),
	}, nil
}

// nativePredicate maps the filter set onto the constraints the index
// evaluates during the nearest-neighbor query. Amount bounds stay out:
// their magnitude semantics cannot be expressed on the signed stored
// amount.
func nativePredicate(f domain.FilterSet) domain.IndexPredicate {
	var pred domain.IndexPredicate
	if f.DateStart != nil {
		d := f.DateStart.Format("2006-01-02")
		pred.DateStart = &d
	}
	if f.DateEnd != nil {
		d := f.DateEnd.Format("2006-01-02")
		pred.DateEnd = &d
	}
	if f.Year != nil {
		y := *f.Year
		pred.Year = &y
	}
	if f.Type != nil {
		t := string(*f.Type)
		pred.Type = &t
	}
	return pred
}
