package services

import (
	"context"
	"sort"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driving"
)

// Ensure analyticsService implements AnalyticsService
var _ driving.AnalyticsService = (*analyticsService)(nil)

// analyticsService implements the AnalyticsService interface
type analyticsService struct {
	store driven.TransactionStore
}

// NewAnalyticsService creates a new AnalyticsService
func NewAnalyticsService(store driven.TransactionStore) driving.AnalyticsService {
	return &analyticsService{store: store}
}

// Summary aggregates the session's transactions within [from, to].
func (s *analyticsService) Summary(ctx context.Context, session *domain.Session, from, to *time.Time) (*domain.Summary, error) {
	txs, err := s.store.All(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	if from != nil || to != nil {
		filtered := make([]domain.Transaction, 0, len(txs))
		for _, tx := range txs {
			if from != nil && tx.Date.Before(*from) {
				continue
			}
			if to != nil && tx.Date.After(*to) {
				continue
			}
			filtered = append(filtered, tx)
		}
		txs = filtered
	}

	summary := domain.Summarize(txs)
	return &summary, nil
}

// Monthly returns the month-by-month breakdown, oldest first.
func (s *analyticsService) Monthly(ctx context.Context, session *domain.Session) ([]domain.MonthlySummary, error) {
	txs, err := s.store.All(ctx, session.ID)
	if err != nil {
		return nil, err
	}

	buckets := make(map[string]*domain.MonthlySummary)
	for _, tx := range txs {
		b, ok := buckets[tx.Month]
		if !ok {
			b = &domain.MonthlySummary{Month: tx.Month}
			buckets[tx.Month] = b
		}
		b.Count++
		if tx.Amount > 0 {
			b.Income += tx.Amount
		} else {
			b.Expenses += -tx.Amount
		}
		b.Net = b.Income - b.Expenses
	}

	months := make([]domain.MonthlySummary, 0, len(buckets))
	for _, b := range buckets {
		months = append(months, *b)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Month < months[j].Month })
	return months, nil
}
