// Package normalisers maps raw spreadsheet columns onto the canonical
// transaction schema. Column detection is an explicit list of
// (field, ordered patterns) pairs evaluated in a fixed sequence:
// patterns outer loop, columns inner loop, first match wins. Pattern
// order encodes priority, not the order of columns in the file.
package normalisers

import "strings"

// Field names a canonical schema slot a raw column can be mapped to.
type Field string

const (
	FieldDate        Field = "date"
	FieldDescription Field = "description"
	FieldAmount      Field = "amount"
	FieldDebit       Field = "debit"
	FieldCredit      Field = "credit"
)

// fieldMatcher holds the ordered substring patterns for one field.
type fieldMatcher struct {
	field    Field
	patterns []string
}

// Registry resolves raw column names to schema fields.
type Registry struct {
	matchers []fieldMatcher
}

// DefaultRegistry creates a registry with the built-in matchers in their
// fixed evaluation sequence.
func DefaultRegistry() *Registry {
	return &Registry{matchers: []fieldMatcher{
		{FieldDate, []string{"date", "transaction date", "posted date", "trans date", "posting date"}},
		{FieldDescription, []string{"description", "desc", "memo", "transaction", "details", "payee", "merchant"}},
		{FieldAmount, []string{"amount", "transaction amount", "value", "sum"}},
		{FieldDebit, []string{"debit", "withdrawal"}},
		{FieldCredit, []string{"credit", "deposit"}},
	}}
}

// Resolve maps each field to the index of the first column matching its
// first matching pattern. Column names are compared case-insensitively
// and trimmed. Fields with no matching column are absent from the map.
//
// The loop order matters: patterns outer, columns inner. Reversing it
// would let a later pattern on an earlier column beat an earlier pattern
// on a later column.
func (r *Registry) Resolve(columns []string) map[Field]int {
	normalized := make([]string, len(columns))
	for i, c := range columns {
		normalized[i] = strings.ToLower(strings.TrimSpace(c))
	}

	resolved := make(map[Field]int, len(r.matchers))
	for _, m := range r.matchers {
		if idx := findColumn(normalized, m.patterns); idx >= 0 {
			resolved[m.field] = idx
		}
	}
	return resolved
}

func findColumn(columns []string, patterns []string) int {
	for _, pattern := range patterns {
		for i, col := range columns {
			if strings.Contains(col, pattern) {
				return i
			}
		}
	}
	return -1
}
