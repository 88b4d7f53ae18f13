// Package queryfilters turns a free-text query into a structured
// FilterSet via ordered pattern rules. It is a heuristic, not a grammar:
// within each kind the first matching rule wins and the rest of the query
// is left for the semantic layer to resolve.
package queryfilters

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ledgerlens/ledgerlens-core/internal/core/domain"
)

// amountRule binds one phrasing pattern to the bound it sets.
type amountRule struct {
	re    *regexp.Regexp
	isMin bool
}

// Rule order encodes priority. Amount phrases do not combine: only one
// bound is ever extracted from a query.
var amountRules = []amountRule{
	{regexp.MustCompile(`over\s+\$?(\d+(?:,\d+)*(?:\.\d{2})?)`), true},
	{regexp.MustCompile(`above\s+\$?(\d+(?:,\d+)*(?:\.\d{2})?)`), true},
	{regexp.MustCompile(`more\s+than\s+\$?(\d+(?:,\d+)*(?:\.\d{2})?)`), true},
	{regexp.MustCompile(`under\s+\$?(\d+(?:,\d+)*(?:\.\d{2})?)`), false},
	{regexp.MustCompile(`below\s+\$?(\d+(?:,\d+)*(?:\.\d{2})?)`), false},
	{regexp.MustCompile(`less\s+than\s+\$?(\d+(?:,\d+)*(?:\.\d{2})?)`), false},
}

var creditKeywords = []string{"income", "deposit", "salary", "credit"}
var debitKeywords = []string{"expense", "spending", "purchase", "debit"}

// Extract parses query into a FilterSet. The reference time anchors the
// relative date phrases, so extraction is deterministic for a fixed now.
func Extract(query string, now time.Time) domain.FilterSet {
	var filters domain.FilterSet
	q := strings.ToLower(query)

	extractAmount(q, &filters)
	extractDates(q, now, &filters)
	extractType(q, &filters)

	return filters
}

func extractAmount(q string, filters *domain.FilterSet) {
	for _, rule := range amountRules {
		m := rule.re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		amount, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
		if err != nil {
			continue
		}
		if rule.isMin {
			filters.AmountMin = &amount
		} else {
			filters.AmountMax = &amount
		}
		return
	}
}

// extractDates handles the relative date phrases. They are mutually
// exclusive: the first phrase found wins.
func extractDates(q string, now time.Time, filters *domain.FilterSet) {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	switch {
	case strings.Contains(q, "last month"):
		end := monthStart.AddDate(0, 0, -1) // last day of previous month
		start := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, now.Location())
		filters.DateStart = &start
		filters.DateEnd = &end
	case strings.Contains(q, "this month"):
		filters.DateStart = &monthStart
		filters.DateEnd = &today
	case strings.Contains(q, "this year"):
		start := time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location())
		filters.DateStart = &start
		filters.DateEnd = &today
	case strings.Contains(q, "last year"):
		year := now.Year() - 1
		filters.Year = &year
	}
}

// extractType maps transaction-type keywords; the credit keyword set
// takes priority when both sets are present.
func extractType(q string, filters *domain.FilterSet) {
	for _, kw := range creditKeywords {
		if strings.Contains(q, kw) {
			t := domain.TransactionCredit
			filters.Type = &t
			return
		}
	}
	for _, kw := range debitKeywords {
		if strings.Contains(q, kw) {
			t := domain.TransactionDebit
			filters.Type = &t
			return
		}
	}
}
