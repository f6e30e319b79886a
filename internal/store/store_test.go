package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"tracker/internal/core"
	"tracker/internal/kv/memory"
	"tracker/internal/log"
)

type failingBackend struct{}

func (failingBackend) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("quota exceeded")
}

func (failingBackend) Set(context.Context, string, []byte) error {
	return errors.New("quota exceeded")
}

type recordingNotifier struct {
	changes []Change
	err     error
}

func (n *recordingNotifier) NotifyChange(_ context.Context, c Change) error {
	n.changes = append(n.changes, c)
	return n.err
}

// fixedClock returns the same instant on every call.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// tickingClock advances one second per call.
func tickingClock(start time.Time) func() time.Time {
	var n atomic.Int64
	return func() time.Time { return start.Add(time.Duration(n.Add(1)) * time.Second) }
}

func draft(name string, amount int64, typ core.TransactionType, date core.Date) core.Draft {
	return core.Draft{Name: name, Amount: decimal.NewFromInt(amount), Category: "misc", Date: date, Type: typ}
}

func newStore(backend *memory.Store, opts ...Option) *Store {
	opts = append([]Option{WithLogger(log.Discard()), WithClock(tickingClock(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)))}, opts...)
	return New(backend, opts...)
}

func TestLoadEmptyWhenNothingStored(t *testing.T) {
	s := newStore(memory.New())
	if set := s.Load(context.Background()); set == nil || len(set) != 0 {
		t.Fatalf("expected empty set, got %#v", set)
	}
}

func TestLoadFailsSoft(t *testing.T) {
	ctx := context.Background()

	s := New(failingBackend{}, WithLogger(log.Discard()))
	if set := s.Load(ctx); len(set) != 0 {
		t.Fatalf("expected empty set from unavailable storage, got %v", set)
	}

	corrupt := memory.NewWithValues(map[string][]byte{DefaultKey: []byte("not json")})
	s = newStore(corrupt)
	if set := s.Load(ctx); len(set) != 0 {
		t.Fatalf("expected empty set from corrupt payload, got %v", set)
	}
}

func TestAddThenReload(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := newStore(backend)
	s.Load(ctx)

	set := s.Add(ctx, draft("  Salary ", 1000, core.Income, core.NewDate(2024, 1, 5)))
	if len(set) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(set))
	}
	added := set[0]
	if added.Name != "Salary" {
		t.Fatalf("name not trimmed: %q", added.Name)
	}

	reloaded := newStore(backend).Load(ctx)
	count := 0
	for _, tr := range reloaded {
		if tr.ID == added.ID {
			count++
			if !tr.Equal(added) {
				t.Fatalf("reloaded %+v differs from %+v", tr, added)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected transaction exactly once after reload, found %d", count)
	}
}

func TestAddAssignsUniqueIDsWithinOneMillisecond(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	s := New(memory.New(), WithLogger(log.Discard()), WithClock(fixedClock(now)))

	s.Add(ctx, draft("a", 1, core.Income, core.NewDate(2024, 1, 5)))
	s.Add(ctx, draft("b", 2, core.Income, core.NewDate(2024, 1, 5)))
	set := s.Add(ctx, draft("c", 3, core.Expense, core.NewDate(2024, 1, 5)))

	seen := map[int64]bool{}
	for _, tr := range set {
		if seen[tr.ID] {
			t.Fatalf("duplicate id %d", tr.ID)
		}
		seen[tr.ID] = true
		if tr.Timestamp != now.UnixMilli() {
			t.Fatalf("timestamp changed: %d", tr.Timestamp)
		}
	}
	if set[0].ID != now.UnixMilli() {
		t.Fatalf("first id should be the creation millisecond, got %d", set[0].ID)
	}
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := newStore(backend)

	s.Add(ctx, draft("Salary", 1000, core.Income, core.NewDate(2024, 1, 5)))
	set := s.Add(ctx, draft("Rent", 400, core.Expense, core.NewDate(2024, 1, 5)))
	before := s.Transactions()

	t.Run("unknown id leaves the set unchanged", func(t *testing.T) {
		got := s.Remove(ctx, 42)
		if !got.Equal(before) {
			t.Fatalf("set changed: %+v", got)
		}
	})

	t.Run("known id is removed and persisted", func(t *testing.T) {
		got := s.Remove(ctx, set[0].ID)
		if len(got) != 1 || got[0].Name != "Rent" {
			t.Fatalf("unexpected set %+v", got)
		}
		if reloaded := newStore(backend).Load(ctx); !reloaded.Equal(got) {
			t.Fatalf("removal not persisted: %+v", reloaded)
		}
	})
}

func TestRemoveDoesNotMutateReturnedSets(t *testing.T) {
	ctx := context.Background()
	s := newStore(memory.New())
	s.Add(ctx, draft("a", 1, core.Income, core.NewDate(2024, 1, 1)))
	held := s.Add(ctx, draft("b", 1, core.Income, core.NewDate(2024, 1, 2)))

	s.Remove(ctx, held[0].ID)
	if held[0].Name != "a" || held[1].Name != "b" {
		t.Fatalf("earlier result was modified: %+v", held)
	}
}

func TestSaveFailsSoft(t *testing.T) {
	ctx := context.Background()
	s := New(failingBackend{}, WithLogger(log.Discard()))

	set := s.Add(ctx, draft("Salary", 1000, core.Income, core.NewDate(2024, 1, 5)))
	if len(set) != 1 {
		t.Fatalf("add should still return the new set, got %v", set)
	}
	s.Save(ctx, core.TransactionSet{})
	if len(s.Transactions()) != 0 {
		t.Fatalf("save should adopt the given set")
	}
}

func TestSaveAndLoadWithCustomKey(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	s := newStore(backend, WithKey("other"))
	s.Save(ctx, core.TransactionSet{{ID: 7, Name: "x", Amount: decimal.NewFromInt(1), Date: core.NewDate(2024, 1, 1), Type: core.Income, Timestamp: 7}})

	if v, ok, _ := backend.Get(ctx, DefaultKey); ok {
		t.Fatalf("default key written: %s", v)
	}
	if set := newStore(backend, WithKey("other")).Load(ctx); len(set) != 1 || set[0].ID != 7 {
		t.Fatalf("unexpected set under custom key: %+v", set)
	}
}

func TestNotifier(t *testing.T) {
	ctx := context.Background()
	n := &recordingNotifier{}
	s := newStore(memory.New(), WithNotifier(n))

	set := s.Add(ctx, draft("Salary", 1000, core.Income, core.NewDate(2024, 1, 5)))
	s.Remove(ctx, set[0].ID)

	if len(n.changes) != 2 {
		t.Fatalf("expected 2 changes, got %+v", n.changes)
	}
	if n.changes[0] != (Change{Op: ChangeAdded, TransactionID: set[0].ID}) {
		t.Fatalf("unexpected add change %+v", n.changes[0])
	}
	if n.changes[1] != (Change{Op: ChangeRemoved, TransactionID: set[0].ID}) {
		t.Fatalf("unexpected remove change %+v", n.changes[1])
	}

	n.err = errors.New("broker down")
	if got := s.Add(ctx, draft("Rent", 400, core.Expense, core.NewDate(2024, 1, 5))); len(got) != 1 {
		t.Fatalf("notifier failure must not affect add, got %v", got)
	}
}

func TestNotifierSkippedWhenSaveFails(t *testing.T) {
	n := &recordingNotifier{}
	s := New(failingBackend{}, WithLogger(log.Discard()), WithNotifier(n))
	s.Add(context.Background(), draft("Salary", 1000, core.Income, core.NewDate(2024, 1, 5)))
	if len(n.changes) != 0 {
		t.Fatalf("expected no notification, got %+v", n.changes)
	}
}

func TestRevision(t *testing.T) {
	ctx := context.Background()
	s := newStore(memory.New())
	r0 := s.Revision()
	s.Load(ctx)
	r1 := s.Revision()
	set := s.Add(ctx, draft("a", 1, core.Income, core.NewDate(2024, 1, 1)))
	r2 := s.Revision()
	s.Remove(ctx, 999)
	r3 := s.Revision()
	s.Remove(ctx, set[0].ID)
	r4 := s.Revision()

	if !(r0 < r1 && r1 < r2 && r2 == r3 && r3 < r4) {
		t.Fatalf("unexpected revisions %d %d %d %d %d", r0, r1, r2, r3, r4)
	}
}

// toggleBackend wraps a memory store and fails reads while failGet is set.
type toggleBackend struct {
	*memory.Store
	failGet bool
}

func (b *toggleBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if b.failGet {
		return nil, false, errors.New("connection reset")
	}
	return b.Store.Get(ctx, key)
}

func TestReloadKeepsSetWhenStorageFails(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		breakIt func(b *toggleBackend)
	}{
		{"read error", func(b *toggleBackend) { b.failGet = true }},
		{"undecodable payload", func(b *toggleBackend) {
			_ = b.Store.Set(ctx, DefaultKey, []byte("not json"))
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &toggleBackend{Store: memory.New()}
			s := New(backend, WithLogger(log.Discard()), WithClock(tickingClock(time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))))
			s.Load(ctx)
			s.Add(ctx, draft("Salary", 1000, core.Income, core.NewDate(2024, 1, 5)))
			s.Add(ctx, draft("Rent", 400, core.Expense, core.NewDate(2024, 1, 5)))
			before, rev := s.Snapshot()

			tt.breakIt(backend)
			if s.Reload(ctx) {
				t.Fatal("reload reported success")
			}
			after, afterRev := s.Snapshot()
			if !after.Equal(before) || afterRev != rev {
				t.Fatalf("state changed: %d@%d -> %d@%d", len(before), rev, len(after), afterRev)
			}
		})
	}
}

func TestReloadAdoptsStoredSet(t *testing.T) {
	ctx := context.Background()
	backend := memory.New()
	mine, theirs := newStore(backend), newStore(backend)
	mine.Load(ctx)
	theirs.Load(ctx)
	theirs.Add(ctx, draft("Bonus", 50, core.Income, core.NewDate(2024, 1, 5)))

	rev := mine.Revision()
	if !mine.Reload(ctx) {
		t.Fatal("reload failed")
	}
	if n := len(mine.Transactions()); n != 1 {
		t.Fatalf("expected 1 transaction, got %d", n)
	}
	if mine.Revision() == rev {
		t.Fatal("revision should advance on a successful reload")
	}
}

func TestDeleteReportsRemoval(t *testing.T) {
	ctx := context.Background()
	s := newStore(memory.New())
	set := s.Add(ctx, draft("Salary", 1000, core.Income, core.NewDate(2024, 1, 5)))
	id := set[0].ID

	tests := []struct {
		name string
		id   int64
		want bool
	}{
		{"unknown id", 42, false},
		{"known id", id, true},
		{"already deleted", id, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.Delete(ctx, tt.id); got != tt.want {
				t.Fatalf("Delete(%d) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
	if n := len(s.Transactions()); n != 0 {
		t.Fatalf("expected empty set, got %d", n)
	}
}
