// Package store owns the durable transaction set. Persistence is best
// effort: a backend that cannot be read yields an empty set and a failed
// write leaves storage as it was. Neither is reported to the caller.
package store

import (
	"context"
	"sync"
	"time"

	"tracker/internal/core"
	"tracker/internal/kv"
	"tracker/internal/log"
)

// DefaultKey is the key the browser tracker used in localStorage.
const DefaultKey = "expenseTrackerData"

const (
	ChangeAdded   = "added"
	ChangeRemoved = "removed"
)

// Change describes a persisted mutation.
type Change struct {
	Op            string
	TransactionID int64
}

// Notifier is told about every mutation that reached storage.
type Notifier interface {
	NotifyChange(ctx context.Context, c Change) error
}

type Store struct {
	mu       sync.Mutex
	backend  kv.Backend
	key      string
	now      func() time.Time
	logger   *log.Logger
	notifier Notifier
	set      core.TransactionSet
	revision uint64
}

type Option func(*Store)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

// WithClock sets the source of ids and timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(logger *log.Logger) Option {
	return func(s *Store) { s.logger = logger.WithComponent(log.ComponentStore) }
}

func WithNotifier(n Notifier) Option {
	return func(s *Store) { s.notifier = n }
}

// New returns a store with an empty set. Call Load to read storage.
func New(backend kv.Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		key:     DefaultKey,
		now:     time.Now,
		logger:  log.New(log.DefaultConfig()).WithComponent(log.ComponentStore),
		set:     core.TransactionSet{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Key returns the storage key.
func (s *Store) Key() string {
	return s.key
}

// Load replaces the in-memory set with the stored one and returns it. A
// missing key, an unreachable backend or an undecodable payload all load
// as an empty set.
func (s *Store) Load(ctx context.Context) core.TransactionSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, _ := s.read(ctx)
	s.set = set
	s.revision++
	return s.set.Clone()
}

// Reload rereads storage into an already loaded store. When storage cannot
// be read or decoded the current set and revision are kept, so a later
// write does not replace good data with a partial set. It reports whether
// the stored set was adopted.
func (s *Store) Reload(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, ok := s.read(ctx)
	if !ok {
		s.logger.WarnContext(ctx, "Reload failed, keeping transactions in memory",
			log.NewFields().WithStorageKey(s.key).WithOperation(log.OpReload).WithCount(len(s.set)).ToSlice()...)
		return false
	}
	s.set = set
	s.revision++
	return true
}

// read fetches and decodes the stored set. ok is false when the backend or
// the payload failed; a missing key is an empty set.
func (s *Store) read(ctx context.Context) (core.TransactionSet, bool) {
	b, found, err := s.backend.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "Storage unavailable",
			log.NewFields().WithStorageKey(s.key).WithOperation(log.OpLoad).WithError(err, log.ErrorTypeStorage).ToSlice()...)
		return core.TransactionSet{}, false
	}
	if !found {
		return core.TransactionSet{}, true
	}

	set, err := Decode(b)
	if err != nil {
		s.logger.WarnContext(ctx, "Stored transactions are not readable",
			log.NewFields().WithStorageKey(s.key).WithOperation(log.OpLoad).WithError(err, log.ErrorTypeDecode).ToSlice()...)
		return core.TransactionSet{}, false
	}

	s.logger.DebugContext(ctx, "Transactions loaded",
		log.NewFields().WithStorageKey(s.key).WithCount(len(set)).ToSlice()...)
	return set, true
}

// Save makes set the current set and writes it to storage.
func (s *Store) Save(ctx context.Context, set core.TransactionSet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.set = set.Clone()
	s.revision++
	s.write(ctx)
}

// write persists s.set and reports whether it reached storage.
func (s *Store) write(ctx context.Context) bool {
	b, err := Encode(s.set)
	if err == nil {
		err = s.backend.Set(ctx, s.key, b)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "Failed to persist transactions, keeping them in memory only",
			log.NewFields().WithStorageKey(s.key).WithOperation(log.OpSave).WithCount(len(s.set)).WithError(err, log.ErrorTypeStorage).ToSlice()...)
		return false
	}
	return true
}

// Add stamps the draft with the current time, appends it and persists the
// set. The id is the creation time in milliseconds, moved forward when that
// millisecond is already taken.
func (s *Store) Add(ctx context.Context, d core.Draft) core.TransactionSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := core.NewTransaction(d, s.now())
	for s.set.Index(t.ID) >= 0 {
		t.ID++
	}
	s.set = append(s.set, t)
	s.revision++

	s.logger.InfoContext(ctx, "Transaction added",
		log.NewFields().WithTransaction(t).WithOperation(log.OpAdd).ToSlice()...)

	if s.write(ctx) {
		s.notify(ctx, Change{Op: ChangeAdded, TransactionID: t.ID})
	}
	return s.set.Clone()
}

// Remove drops the first transaction with id. An unknown id leaves the set
// unchanged; the set is persisted either way.
func (s *Store) Remove(ctx context.Context, id int64) core.TransactionSet {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.remove(ctx, id)
	return s.set.Clone()
}

// Delete is Remove for callers that only need to know whether a
// transaction with id existed. The check and the removal happen under one
// lock, so of two concurrent deletes of the same id only one reports true.
func (s *Store) Delete(ctx context.Context, id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.remove(ctx, id)
}

// remove must be called with s.mu held.
func (s *Store) remove(ctx context.Context, id int64) bool {
	i := s.set.Index(id)
	if i >= 0 {
		next := make(core.TransactionSet, 0, len(s.set)-1)
		next = append(next, s.set[:i]...)
		s.set = append(next, s.set[i+1:]...)
		s.revision++
		s.logger.InfoContext(ctx, "Transaction removed", log.FieldTransactionID, id, log.FieldOperation, log.OpRemove)
	} else {
		s.logger.DebugContext(ctx, "No transaction to remove", log.FieldTransactionID, id)
	}

	if s.write(ctx) {
		s.notify(ctx, Change{Op: ChangeRemoved, TransactionID: id})
	}
	return i >= 0
}

func (s *Store) notify(ctx context.Context, c Change) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyChange(ctx, c); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish change",
			log.NewFields().WithOperation(log.OpNotify).WithError(err, log.ErrorTypeNetwork).ToSlice()...)
	}
}

// Transactions returns a copy of the current set.
func (s *Store) Transactions() core.TransactionSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone()
}

// Snapshot returns a copy of the current set together with its revision.
func (s *Store) Snapshot() (core.TransactionSet, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.set.Clone(), s.revision
}

// Revision increases with every change to the in-memory set, including
// loads. Views cached against an older revision are stale.
func (s *Store) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}
