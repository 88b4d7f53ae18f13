package domain

import (
	"fmt"
	"strconv"
)

// DocumentMetadata is the structured record attached to an indexed
// document. It carries every transaction field needed for post-filtering;
// amounts round-trip as float64 and dates as YYYY-MM-DD strings.
type DocumentMetadata struct {
	Date       string  `json:"date"`
	Description string `json:"description"`
	Amount     float64 `json:"amount"`
	Month      string  `json:"month"`
	Year       int     `json:"year"`
	Type       string  `json:"transaction_type"`
	SourceFile string  `json:"source_file"`
	DayOfWeek  string  `json:"day_of_week"`
	IsWeekend  bool    `json:"is_weekend"`
}

// IndexedDocument is the 1:1 projection of a transaction submitted to the
// vector index: an opaque id, a natural-language body that gets embedded,
// and the metadata record.
type IndexedDocument struct {
	ID       string           `json:"id"`
	Text     string           `json:"text"`
	Metadata DocumentMetadata `json:"metadata"`
}

// DocumentID returns the identifier for the transaction at the given
// row index within the current index build.
func DocumentID(rowIndex int) string {
	return fmt.Sprintf("tx_%d", rowIndex)
}

// IndexPredicate is the conjunctive filter the vector index evaluates
// natively during a nearest-neighbor query. All bounds are inclusive and
// compare the stored metadata values; amount bounds compare the signed
// amount (the index cannot apply abs()).
type IndexPredicate struct {
	AmountMin *float64
	AmountMax *float64
	DateStart *string // YYYY-MM-DD
	DateEnd   *string // YYYY-MM-DD
	Year      *int
	Type      *string
}

// IsEmpty reports whether the predicate constrains nothing.
func (p IndexPredicate) IsEmpty() bool {
	return p.AmountMin == nil && p.AmountMax == nil &&
		p.DateStart == nil && p.DateEnd == nil &&
		p.Year == nil && p.Type == nil
}

// Matches evaluates the predicate against a metadata record. Index
// adapters that cannot push the predicate down use this to filter hits.
func (p IndexPredicate) Matches(m DocumentMetadata) bool {
	if p.AmountMin != nil && m.Amount < *p.AmountMin {
		return false
	}
	if p.AmountMax != nil && m.Amount > *p.AmountMax {
		return false
	}
	if p.DateStart != nil && m.Date < *p.DateStart {
		return false
	}
	if p.DateEnd != nil && m.Date > *p.DateEnd {
		return false
	}
	if p.Year != nil && m.Year != *p.Year {
		return false
	}
	if p.Type != nil && m.Type != *p.Type {
		return false
	}
	return true
}

// IndexHit is a single nearest-neighbor match returned by the vector index.
type IndexHit struct {
	ID       string
	Metadata DocumentMetadata
	Distance float64
}

func formatAmount(a float64) string {
	return strconv.FormatFloat(a, 'f', 2, 64)
}
