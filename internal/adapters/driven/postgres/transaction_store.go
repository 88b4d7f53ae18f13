package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
	"github.com/ledgerlens/ledgerlens-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.TransactionStore = (*TransactionStore)(nil)

// TransactionStore implements driven.TransactionStore using PostgreSQL.
// Replace runs in one database transaction so readers never observe a
// half-written batch.
type TransactionStore struct {
	db *DB
}

// NewTransactionStore creates a new TransactionStore
func NewTransactionStore(db *DB) *TransactionStore {
	return &TransactionStore{db: db}
}

// Replace discards the session's current batch and stores txs
func (s *TransactionStore) Replace(ctx context.Context, sessionID string, txs []domain.Transaction) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE session_id = $1`, sessionID); err != nil {
			return fmt.Errorf("delete previous batch: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO transactions
				(session_id, position, date, description, amount, source_file,
				 month, year, day_of_week, is_weekend, transaction_type)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		`)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for i := range txs {
			t := &txs[i]
			if _, err := stmt.ExecContext(ctx,
				sessionID, i, t.Date, t.Description, t.Amount, t.SourceFile,
				t.Month, t.Year, t.DayOfWeek, t.IsWeekend, string(t.Type),
			); err != nil {
				return fmt.Errorf("insert transaction %d: %w", i, err)
			}
		}
		return nil
	})
}

// All returns the session's transactions in stored order
func (s *TransactionStore) All(ctx context.Context, sessionID string) ([]domain.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, description, amount, source_file,
		       month, year, day_of_week, is_weekend, transaction_type
		FROM transactions
		WHERE session_id = $1
		ORDER BY position
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load batch: %w", err)
	}
	defer rows.Close()

	var txs []domain.Transaction
	for rows.Next() {
		var t domain.Transaction
		var txType string
		if err := rows.Scan(
			&t.Date, &t.Description, &t.Amount, &t.SourceFile,
			&t.Month, &t.Year, &t.DayOfWeek, &t.IsWeekend, &txType,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = domain.TransactionType(txType)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// Count returns the number of stored transactions for the session
func (s *TransactionStore) Count(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE session_id = $1`, sessionID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count batch: %w", err)
	}
	return n, nil
}

// Clear removes the session's batch
func (s *TransactionStore) Clear(ctx context.Context, sessionID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM transactions WHERE session_id = $1`, sessionID,
	); err != nil {
		return fmt.Errorf("clear batch: %w", err)
	}
	return nil
}
