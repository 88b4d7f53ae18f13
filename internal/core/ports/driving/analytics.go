package driving

import (
	"context"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// AnalyticsService computes aggregate views over a session's
// transactions. Reads only; never mutates the store.
type AnalyticsService interface {
	// Summary aggregates the session's transactions, optionally
	// restricted to [from, to] (inclusive, nil means unbounded)
	Summary(ctx context.Context, session *domain.Session, from, to *time.Time) (*domain.Summary, error)

	// Monthly returns the month-by-month breakdown, oldest first
	Monthly(ctx context.Context, session *domain.Session) ([]domain.MonthlySummary, error)
}
