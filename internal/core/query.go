package core

import (
	"slices"
	"strings"
	"time"
)

// View is what a list screen shows: the searched, period-filtered list and
// the totals for the period. Search never affects Summary.
type View struct {
	Period       Period
	Search       string
	Transactions []Transaction
	Summary      Summary
}

// FilterAndSort keeps the transactions whose name or category contains
// searchTerm (case-insensitive, skipped when empty) and whose date falls in
// period relative to the calendar date of now. The result is ordered by
// date, most recent first; same-day transactions keep their input order.
func FilterAndSort(transactions []Transaction, period Period, searchTerm string, now time.Time) []Transaction {
	today := DateOf(now)
	term := strings.ToLower(searchTerm)

	out := make([]Transaction, 0, len(transactions))
	for _, t := range transactions {
		if term != "" && !t.matches(term) {
			continue
		}
		if !period.Includes(t.Date, today) {
			continue
		}
		out = append(out, t)
	}

	slices.SortStableFunc(out, func(a, b Transaction) int {
		return b.Date.Compare(a.Date.Time)
	})
	return out
}

// Query builds the list and the period totals. Without a search term the
// list is the period-filtered set, so it is aggregated directly.
func Query(transactions []Transaction, period Period, searchTerm string, now time.Time) View {
	list := FilterAndSort(transactions, period, searchTerm, now)

	var summary Summary
	if searchTerm == "" {
		summary = Aggregate(list)
	} else {
		summary = Summarize(transactions, period, now)
	}
	return View{
		Period:       period,
		Search:       searchTerm,
		Transactions: list,
		Summary:      summary,
	}
}
