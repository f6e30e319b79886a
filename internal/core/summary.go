package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary is the income, expenses and balance of a set of transactions.
type Summary struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

// Aggregate sums amounts by type. Balance is income minus expenses and
// may be negative. An empty input yields zeros.
func Aggregate(transactions []Transaction) Summary {
	income, expenses := decimal.Zero, decimal.Zero
	for _, t := range transactions {
		switch t.Type {
		case Income:
			income = income.Add(t.Amount)
		case Expense:
			expenses = expenses.Add(t.Amount)
		}
	}
	return Summary{
		Income:   income,
		Expenses: expenses,
		Balance:  income.Sub(expenses),
	}
}

// Summarize aggregates the period-filtered transactions. No search term is
// applied to totals.
func Summarize(transactions []Transaction, period Period, now time.Time) Summary {
	return Aggregate(FilterAndSort(transactions, period, "", now))
}
