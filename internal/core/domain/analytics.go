package domain

import "time"

// Summary aggregates a set of transactions for reporting.
type Summary struct {
	Count         int        `json:"count"`
	TotalIncome   float64    `json:"total_income"`
	TotalExpenses float64    `json:"total_expenses"` // absolute value
	NetAmount     float64    `json:"net_amount"`
	Average       float64    `json:"average"`
	Credits       int        `json:"credits"`
	Debits        int        `json:"debits"`
	DateFrom      *time.Time `json:"date_from,omitempty"`
	DateTo        *time.Time `json:"date_to,omitempty"`
}

// MonthlySummary is one bucket of the month-by-month breakdown.
type MonthlySummary struct {
	Month    string  `json:"month"` // "2006-01"
	Count    int     `json:"count"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
	Net      float64 `json:"net"`
}

// Summarize computes totals over a transaction slice.
func Summarize(txs []Transaction) Summary {
	s := Summary{Count: len(txs)}
	for i := range txs {
		t := &txs[i]
		if t.Amount > 0 {
			s.TotalIncome += t.Amount
			s.Credits++
		} else {
			s.TotalExpenses += -t.Amount
			s.Debits++
		}
		if s.DateFrom == nil || t.Date.Before(*s.DateFrom) {
			d := t.Date
			s.DateFrom = &d
		}
		if s.DateTo == nil || t.Date.After(*s.DateTo) {
			d := t.Date
			s.DateTo = &d
		}
	}
	s.NetAmount = s.TotalIncome - s.TotalExpenses
	if s.Count > 0 {
		s.Average = s.NetAmount / float64(s.Count)
	}
	return s
}
