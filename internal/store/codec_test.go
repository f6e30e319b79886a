package store

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"tracker/internal/core"
)

func sampleSet() core.TransactionSet {
	return core.TransactionSet{
		{ID: 1704445200000, Name: "Salary", Amount: decimal.NewFromInt(1000), Category: "salary", Date: core.NewDate(2024, 1, 5), Type: core.Income, Timestamp: 1704445200000},
		{ID: 1704445200001, Name: "Rent", Amount: decimal.RequireFromString("400.55"), Category: "housing", Date: core.NewDate(2024, 1, 5), Type: core.Expense, Timestamp: 1704445200000},
		{ID: 1704531600000, Name: "Café ☕", Amount: decimal.RequireFromString("0.1"), Category: "food-drinks", Date: core.NewDate(2023, 12, 31), Type: core.Expense, Timestamp: 1704531600000},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, set := range []core.TransactionSet{{}, sampleSet()} {
		b, err := Encode(set)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		got, err := Decode(b)
		if err != nil {
			t.Fatalf("decode %s: %v", b, err)
		}
		if !got.Equal(set) {
			t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, set)
		}
	}
}

func TestEncodeEmptyIsArray(t *testing.T) {
	b, err := Encode(nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(b) != "[]" {
		t.Fatalf("expected [], got %s", b)
	}
}

func TestEncodeWritesNumericAmounts(t *testing.T) {
	b, err := Encode(sampleSet()[:2])
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `"amount":1000`) || !strings.Contains(s, `"amount":400.55`) {
		t.Fatalf("amounts not written as numbers: %s", s)
	}
	if !strings.Contains(s, `"date":"2024-01-05"`) || !strings.Contains(s, `"type":"income"`) {
		t.Fatalf("unexpected encoding: %s", s)
	}
}

func TestDecodeBrowserPayload(t *testing.T) {
	// as written by JSON.stringify in the browser tracker
	payload := `[{"id":1704445200000,"name":"Salary","amount":1000,"category":"salary","date":"2024-01-05","type":"income","timestamp":1704445200000},` +
		`{"id":1704445300000,"name":"Rent","amount":"400.5","category":"housing","date":"2024-01-05","type":"expense","timestamp":1704445300000}]`

	set, err := Decode([]byte(payload))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(set) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(set))
	}
	if !set[0].Amount.Equal(decimal.NewFromInt(1000)) || set[0].Type != core.Income {
		t.Fatalf("unexpected first transaction %+v", set[0])
	}
	if !set[1].Amount.Equal(decimal.RequireFromString("400.5")) {
		t.Fatalf("string amount not accepted: %+v", set[1])
	}
}

func TestDecodeRejectsInvalidPayloads(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{{{`},
		{"object instead of array", `{"id":1}`},
		{"bad date", `[{"id":1,"name":"x","amount":1,"category":"c","date":"yesterday","type":"income","timestamp":1}]`},
		{"bad amount", `[{"id":1,"name":"x","amount":"lots","category":"c","date":"2024-01-01","type":"income","timestamp":1}]`},
		{"missing amount", `[{"id":1,"name":"x","category":"c","date":"2024-01-01","type":"income","timestamp":1}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Decode([]byte(tt.payload)); err == nil {
				t.Fatalf("expected error for %s", tt.payload)
			}
		})
	}
}

func TestDecodeNull(t *testing.T) {
	set, err := Decode([]byte("null"))
	if err != nil || len(set) != 0 {
		t.Fatalf("expected empty set, got %v, %v", set, err)
	}
}
