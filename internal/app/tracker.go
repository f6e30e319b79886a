// Package app holds the tracker's application state: the store plus the
// period, type toggle and search term a view layer is currently showing.
package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"tracker/internal/cache"
	"tracker/internal/core"
	"tracker/internal/input"
	"tracker/internal/log"
	"tracker/internal/render"
	"tracker/internal/store"
)

// Screen is everything a list screen renders. Empty is set only when there
// are no transactions to show.
type Screen struct {
	core.View
	Today core.Date
	Empty string
}

type Tracker struct {
	mu     sync.Mutex
	store  *store.Store
	now    func() time.Time
	loc    *time.Location
	views  cache.Cache[Screen]
	logger *log.Logger

	period core.Period
	typ    core.TransactionType
	search string
}

type Option func(*Tracker)

func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithLocation sets the zone whose calendar decides what "today" is.
func WithLocation(loc *time.Location) Option {
	return func(t *Tracker) { t.loc = loc }
}

// WithViewCache memoizes screens. The cache key includes the store
// revision, so a mutation never serves a stale screen.
func WithViewCache(c cache.Cache[Screen]) Option {
	return func(t *Tracker) { t.views = c }
}

func WithLogger(logger *log.Logger) Option {
	return func(t *Tracker) { t.logger = logger }
}

// New wraps an already loaded store. The period starts at all and the type
// toggle at income.
func New(st *store.Store, opts ...Option) *Tracker {
	t := &Tracker{
		store:  st,
		now:    time.Now,
		loc:    time.Local,
		logger: log.New(log.DefaultConfig()).WithComponent(log.ComponentApp),
		period: core.PeriodAll,
		typ:    core.Income,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tracker) Store() *store.Store {
	return t.store
}

// Now returns the clock reading in the tracker's location.
func (t *Tracker) Now() time.Time {
	return t.now().In(t.loc)
}

func (t *Tracker) Today() core.Date {
	return core.DateOf(t.Now())
}

func (t *Tracker) Period() core.Period {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.period
}

// ChangePeriod switches the active period. Unknown periods are rejected and
// leave the state unchanged.
func (t *Tracker) ChangePeriod(p core.Period) error {
	if !p.IsValid() {
		return fmt.Errorf("%w: %q", core.ErrInvalidPeriod, p)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.period = p
	return nil
}

func (t *Tracker) Type() core.TransactionType {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.typ
}

// SelectType sets the type used by Add when the input leaves it blank.
func (t *Tracker) SelectType(typ core.TransactionType) error {
	if typ != core.Income && typ != core.Expense {
		return fmt.Errorf("%w: %q", core.ErrInvalidType, typ)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.typ = typ
	return nil
}

func (t *Tracker) SearchTerm() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.search
}

// Search sets the term applied to the list. Surrounding spaces are ignored.
func (t *Tracker) Search(term string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.search = strings.TrimSpace(term)
}

// Add validates raw and stores the resulting transaction. A blank type uses
// the current toggle, a blank date uses today.
func (t *Tracker) Add(ctx context.Context, raw input.Raw) (core.Transaction, error) {
	if strings.TrimSpace(raw.Type) == "" {
		raw.Type = t.Type().String()
	}
	d, err := input.ParseDraft(raw, t.Today())
	if err != nil {
		t.logger.DebugContext(ctx, "Rejected transaction input",
			log.NewFields().WithOperation(log.OpValidate).WithError(err, log.ErrorTypeValidation).ToSlice()...)
		return core.Transaction{}, err
	}

	set := t.store.Add(ctx, d)
	return set[len(set)-1], nil
}

// Delete removes the transaction with id. It reports whether one existed.
func (t *Tracker) Delete(ctx context.Context, id int64) bool {
	return t.store.Delete(ctx, id)
}

// Reload rereads storage, picking up writes made by another instance. A
// failed read keeps what is already in memory. It reports whether storage
// was adopted.
func (t *Tracker) Reload(ctx context.Context) bool {
	if !t.store.Reload(ctx) {
		return false
	}
	if t.views != nil {
		t.views.Purge()
	}
	t.logger.InfoContext(ctx, "Transactions reloaded",
		log.NewFields().WithOperation(log.OpReload).WithCount(len(t.store.Transactions())).ToSlice()...)
	return true
}

// View renders the current state.
func (t *Tracker) View(ctx context.Context) Screen {
	t.mu.Lock()
	period, search := t.period, t.search
	t.mu.Unlock()
	return t.Query(ctx, period, search)
}

// Query renders period and search without touching the tracker's state.
func (t *Tracker) Query(ctx context.Context, period core.Period, search string) Screen {
	now := t.Now()
	today := core.DateOf(now)
	search = strings.TrimSpace(search)

	set, rev := t.store.Snapshot()
	key := fmt.Sprintf("%d|%s|%s|%s", rev, period, today, search)
	if t.views != nil {
		if s, ok := t.views.Get(key); ok {
			return s
		}
	}

	s := Screen{View: core.Query(set, period, search, now), Today: today}
	if len(s.Transactions) == 0 {
		s.Empty = render.EmptyMessage(period, search != "")
	}
	t.logger.DebugContext(ctx, "Query computed",
		log.NewFields().WithOperation(log.OpQuery).WithQuery(period, search).WithCount(len(s.Transactions)).ToSlice()...)

	if t.views != nil {
		t.views.Set(key, s)
	}
	return s
}
