package domain

import "time"

// Search result limits
const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// FilterSet is the structured constraint set applied alongside semantic
// ranking. At most one constraint per kind; nil means unconstrained.
type FilterSet struct {
	AmountMin *float64         `json:"amount_min,omitempty"`
	AmountMax *float64         `json:"amount_max,omitempty"`
	DateStart *time.Time       `json:"date_start,omitempty"`
	DateEnd   *time.Time       `json:"date_end,omitempty"`
	Year      *int             `json:"year,omitempty"`
	Type      *TransactionType `json:"transaction_type,omitempty"`
}

// IsEmpty reports whether no constraint is set.
func (f FilterSet) IsEmpty() bool {
	return f.AmountMin == nil && f.AmountMax == nil &&
		f.DateStart == nil && f.DateEnd == nil &&
		f.Year == nil && f.Type == nil
}

// Merge overlays other on top of f, key by key. Constraints set in other
// win on conflict; constraints only set in f survive.
func (f FilterSet) Merge(other FilterSet) FilterSet {
	merged := f
	if other.AmountMin != nil {
		merged.AmountMin = other.AmountMin
	}
	if other.AmountMax != nil {
		merged.AmountMax = other.AmountMax
	}
	if other.DateStart != nil {
		merged.DateStart = other.DateStart
	}
	if other.DateEnd != nil {
		merged.DateEnd = other.DateEnd
	}
	if other.Year != nil {
		merged.Year = other.Year
	}
	if other.Type != nil {
		merged.Type = other.Type
	}
	return merged
}

// SearchOptions configures a hybrid search request
type SearchOptions struct {
	Limit   int       `json:"limit"`
	Filters FilterSet `json:"filters,omitempty"`
}

// DefaultSearchOptions returns sensible defaults
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Limit: DefaultSearchLimit}
}

// RankedTransaction is a transaction hit with its similarity score
// (1 - vector distance).
type RankedTransaction struct {
	Transaction Transaction `json:"transaction"`
	Similarity  float64     `json:"similarity"`
}

// SearchResult represents the outcome of a hybrid search query
type SearchResult struct {
	Query      string               `json:"query"`
	Filters    FilterSet            `json:"filters"`
	Results    []RankedTransaction  `json:"results"`
	TotalCount int                  `json:"total_count"`
	Took       time.Duration        `json:"took" swaggertype:"integer" example:"1500000"`
}
