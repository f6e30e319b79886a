// Package render turns core values into the strings the views display.
package render

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"tracker/internal/core"
)

// FormatCurrency formats an amount as US dollars with thousands separators
// and two decimals, e.g. $1,234.50 or -$400.00.
func FormatCurrency(amount decimal.Decimal) string {
	sign := ""
	if amount.IsNegative() {
		sign = "-"
		amount = amount.Neg()
	}
	fixed := amount.StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")
	return sign + "$" + groupThousands(intPart) + "." + frac
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// SignedAmount prefixes the formatted amount with + for income and - for
// expenses.
func SignedAmount(t core.Transaction) string {
	if t.Type == core.Income {
		return "+" + FormatCurrency(t.Amount)
	}
	return "-" + FormatCurrency(t.Amount)
}

// FormatDate renders a date as "Jan 5, 2024".
func FormatDate(d core.Date) string {
	return d.Format("Jan 2, 2006")
}

// CategoryLabel turns a category slug into a label: the first hyphen
// becomes a space and the first letter is upper-cased.
func CategoryLabel(category string) string {
	s := strings.Replace(category, "-", " ", 1)
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// EmptyMessage is shown in place of an empty list.
func EmptyMessage(period core.Period, searching bool) string {
	switch {
	case searching:
		return "No transactions match your search."
	case period == core.PeriodAll:
		return "No transactions yet. Start by adding your first transaction!"
	case period == core.PeriodPreviousYear:
		return "No transactions found for the selected previous years."
	default:
		return "No transactions found for the selected " + period.String() + "."
	}
}

// AddedNotice confirms a new transaction.
func AddedNotice(typ core.TransactionType) string {
	if typ == core.Income {
		return "Income added successfully!"
	}
	return "Expense added successfully!"
}

// DeletedNotice confirms a removal.
func DeletedNotice() string {
	return "Transaction deleted successfully!"
}
