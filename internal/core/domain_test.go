package core

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-01-05")
	if err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if d.Year() != 2024 || d.Month() != 1 || d.Day() != 5 {
		t.Fatalf("unexpected date %v", d)
	}
	if !d.Equal(NewDate(2024, 1, 5).Time) {
		t.Fatalf("ParseDate and NewDate disagree: %v", d)
	}

	for _, bad := range []string{"", "2024-13-01", "05/01/2024", "2024-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("%q expected ErrInvalidDate, got %v", bad, err)
		}
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	instant := time.Date(2024, 3, 15, 20, 0, 0, 0, time.UTC)

	if got := DateOf(instant); got.String() != "2024-03-15" {
		t.Fatalf("utc date = %s", got)
	}
	if got := DateOf(instant.In(tokyo)); got.String() != "2024-03-16" {
		t.Fatalf("tokyo date = %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	b, err := json.Marshal(NewDate(2023, 12, 31))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2023-12-31"` {
		t.Fatalf("unexpected encoding %s", b)
	}

	var d Date
	if err := json.Unmarshal([]byte(`"2024-02-29"`), &d); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if d.String() != "2024-02-29" {
		t.Fatalf("unexpected date %s", d)
	}
	if err := json.Unmarshal([]byte(`42`), &d); err == nil {
		t.Fatalf("expected error for non-string date")
	}
}

func TestParseTransactionType(t *testing.T) {
	tests := []struct {
		in      string
		want    TransactionType
		wantErr bool
	}{
		{"income", Income, false},
		{"Expense", Expense, false},
		{" income ", Income, false},
		{"transfer", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTransactionType(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidType) {
					t.Fatalf("expected ErrInvalidType, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("got %q, %v; want %q", got, err, tt.want)
			}
		})
	}
}

func TestNewTransaction(t *testing.T) {
	now := time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC)
	tx := NewTransaction(Draft{
		Name:     "  Salary \n",
		Amount:   decimal.NewFromInt(1000),
		Category: "salary",
		Date:     NewDate(2024, 1, 5),
		Type:     Income,
	}, now)

	if tx.Name != "Salary" {
		t.Fatalf("name not trimmed: %q", tx.Name)
	}
	if tx.ID != now.UnixMilli() || tx.Timestamp != now.UnixMilli() {
		t.Fatalf("id/timestamp = %d/%d, want %d", tx.ID, tx.Timestamp, now.UnixMilli())
	}
	if tx.Date.String() != "2024-01-05" || tx.Type != Income || tx.Category != "salary" {
		t.Fatalf("unexpected transaction %+v", tx)
	}
}

func TestTransactionSet(t *testing.T) {
	set := TransactionSet{
		{ID: 1, Name: "a", Amount: decimal.NewFromInt(1), Date: NewDate(2024, 1, 1), Type: Income},
		{ID: 2, Name: "b", Amount: decimal.NewFromInt(2), Date: NewDate(2024, 1, 2), Type: Expense},
	}
	if set.Index(2) != 1 || set.Index(3) != -1 {
		t.Fatalf("unexpected index results")
	}

	clone := set.Clone()
	if !clone.Equal(set) {
		t.Fatalf("clone differs from original")
	}
	clone[0].Name = "changed"
	if set[0].Name != "a" {
		t.Fatalf("clone shares backing array")
	}
	if clone.Equal(set) {
		t.Fatalf("expected sets to differ after change")
	}

	var empty TransactionSet
	if got := empty.Clone(); got == nil || len(got) != 0 {
		t.Fatalf("clone of nil set should be empty, got %v", got)
	}
}

func TestTransactionEqualComparesAmountByValue(t *testing.T) {
	a := Transaction{ID: 1, Amount: decimal.RequireFromString("1000"), Date: NewDate(2024, 1, 1)}
	b := a
	b.Amount = decimal.RequireFromString("1000.00")
	if !a.Equal(b) {
		t.Fatalf("expected equal amounts to compare equal")
	}
}
