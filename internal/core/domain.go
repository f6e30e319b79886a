package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

const dateLayout = "2006-01-02"

type (
	TransactionType string

	// Date is a calendar date. The time part is always midnight UTC so that
	// comparisons only ever look at year, month and day.
	Date struct {
		time.Time
	}

	Transaction struct {
		ID        int64           `json:"id"`
		Name      string          `json:"name"`
		Amount    decimal.Decimal `json:"amount"`
		Category  string          `json:"category"`
		Date      Date            `json:"date"`
		Type      TransactionType `json:"type"`
		Timestamp int64           `json:"timestamp"` // creation instant, ms
	}

	// Draft carries the user-entered fields of a transaction that has not
	// been stored yet.
	Draft struct {
		Name     string
		Amount   decimal.Decimal
		Category string
		Date     Date
		Type     TransactionType
	}

	// TransactionSet is kept in insertion order.
	TransactionSet []Transaction
)

var (
	ErrInvalidDate   = errors.New("invalid date")
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid transaction type")
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

// Day returns the day of the month
func (d Date) Day() int {
	return d.Time.Day()
}

// Month returns the month
func (d Date) Month() int {
	return int(d.Time.Month())
}

// Year returns the year
func (d Date) Year() int {
	return d.Time.Year()
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// MarshalJSON overrides the promoted time.Time encoding so dates travel as
// "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidDate, b)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseTransactionType accepts "income" or "expense", ignoring case.
func ParseTransactionType(s string) (TransactionType, error) {
	switch t := TransactionType(strings.ToLower(strings.TrimSpace(s))); t {
	case Income, Expense:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

func (t TransactionType) String() string {
	return string(t)
}

// NewTransaction stamps a draft with its creation instant. The id and the
// timestamp come from the same clock reading.
func NewTransaction(d Draft, now time.Time) Transaction {
	ms := now.UnixMilli()
	return Transaction{
		ID:        ms,
		Name:      strings.TrimSpace(d.Name),
		Amount:    d.Amount,
		Category:  d.Category,
		Date:      d.Date,
		Type:      d.Type,
		Timestamp: ms,
	}
}

// Equal compares every field. Amounts compare by value, so 1000 and 1000.00
// are the same amount.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID &&
		t.Name == o.Name &&
		t.Amount.Equal(o.Amount) &&
		t.Category == o.Category &&
		t.Date.Equal(o.Date.Time) &&
		t.Type == o.Type &&
		t.Timestamp == o.Timestamp
}

// matches reports whether name or category contains term. term must already
// be lower case.
func (t Transaction) matches(term string) bool {
	return strings.Contains(strings.ToLower(t.Name), term) ||
		strings.Contains(strings.ToLower(t.Category), term)
}

// Index returns the position of the first transaction with id, or -1.
func (s TransactionSet) Index(id int64) int {
	for i, t := range s {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (s TransactionSet) Clone() TransactionSet {
	if s == nil {
		return TransactionSet{}
	}
	out := make(TransactionSet, len(s))
	copy(out, s)
	return out
}

// Equal compares two sets element by element, in order.
func (s TransactionSet) Equal(o TransactionSet) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if !s[i].Equal(o[i]) {
			return false
		}
	}
	return true
}
