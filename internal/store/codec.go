package store

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"tracker/internal/core"
)

// record is the on-disk shape of a transaction: a JSON object whose amount
// is a bare JSON number, as the browser tracker wrote it. Strings holding a
// number are accepted on the way in.
type record struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Amount    json.Number `json:"amount"`
	Category  string      `json:"category"`
	Date      string      `json:"date"`
	Type      string      `json:"type"`
	Timestamp int64       `json:"timestamp"`
}

// Encode serializes the set as a JSON array in insertion order. The amount
// is written with its exact decimal digits.
func Encode(set core.TransactionSet) ([]byte, error) {
	records := make([]record, len(set))
	for i, t := range set {
		records[i] = record{
			ID:        t.ID,
			Name:      t.Name,
			Amount:    json.Number(t.Amount.String()),
			Category:  t.Category,
			Date:      t.Date.String(),
			Type:      t.Type.String(),
			Timestamp: t.Timestamp,
		}
	}
	b, err := json.Marshal(records)
	if err != nil {
		return nil, fmt.Errorf("encode transactions: %w", err)
	}
	return b, nil
}

// Decode parses a payload written by Encode. Any malformed record makes the
// whole payload invalid.
func Decode(b []byte) (core.TransactionSet, error) {
	var records []record
	if err := json.Unmarshal(b, &records); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}

	set := make(core.TransactionSet, 0, len(records))
	for i, r := range records {
		amount, err := decimal.NewFromString(r.Amount.String())
		if err != nil {
			return nil, fmt.Errorf("decode transaction %d amount %q: %w", i, r.Amount, err)
		}
		date, err := core.ParseDate(r.Date)
		if err != nil {
			return nil, fmt.Errorf("decode transaction %d: %w", i, err)
		}
		set = append(set, core.Transaction{
			ID:        r.ID,
			Name:      r.Name,
			Amount:    amount,
			Category:  r.Category,
			Date:      date,
			Type:      core.TransactionType(r.Type),
			Timestamp: r.Timestamp,
		})
	}
	return set, nil
}
