// Package expense owns the active and trash collections and every mutation
// applied to them.
package expense

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"smartspend/internal/cache"
	"smartspend/internal/core"
	"smartspend/internal/log"
	"smartspend/internal/metrics"
)

// Persister loads and saves both collections. storage.Adapter satisfies it.
type Persister interface {
	Load(ctx context.Context) (active, trash []core.Expense)
	Save(ctx context.Context, active, trash []core.Expense) error
}

// NewExpense is the input to Add. A zero Date means today.
type NewExpense struct {
	Amount   core.Money
	Category core.Category
	Date     core.Date
	Note     string
}

// Filter narrows List. An empty or "all" category matches everything.
type Filter struct {
	Category string
	Search   string
}

// Store is the single owner of the expense collections. It is safe for
// concurrent use; mutations are serialised.
type Store struct {
	mu      sync.RWMutex
	active  []core.Expense
	trash   []core.Expense
	version uint64

	persister Persister
	now       func() time.Time
	newID     func() core.ExpenseID
	logger    *log.Logger
	metrics   metrics.Recorder
	lists     *cache.LRU[[]core.Expense]

	notifyMu sync.Mutex
	subMu    sync.Mutex
	subs     []subscriber
	nextSub  int
}

type subscriber struct {
	id int
	fn func(Event)
}

type Option func(*Store)

// WithClock sets the source of "today" for expenses added without a date.
// The returned time's location decides the calendar day.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() core.ExpenseID) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Store) { s.logger = l.WithComponent(log.ComponentStore) }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(s *Store) { s.metrics = m }
}

// WithListCache replaces the default cache of List results.
func WithListCache(c *cache.LRU[[]core.Expense]) Option {
	return func(s *Store) { s.lists = c }
}

// NewStore loads the persisted collections and returns a ready store.
func NewStore(ctx context.Context, p Persister, opts ...Option) *Store {
	s := &Store{
		persister: p,
		now:       time.Now,
		newID:     func() core.ExpenseID { return core.ExpenseID(uuid.NewString()) },
		logger:    log.Discard(),
		metrics:   metrics.Noop{},
		lists:     cache.NewLRU[[]core.Expense](128, 0),
	}
	for _, opt := range opts {
		opt(s)
	}

	active, trash := p.Load(ctx)
	s.active, s.trash = s.sanitize(ctx, active, trash)
	s.metrics.SetCollectionSizes(len(s.active), len(s.trash))
	s.logger.InfoContext(ctx, "Expenses loaded",
		log.NewFields().WithOperation(log.OpLoad).WithCollections(len(s.active), len(s.trash)).ToSlice()...)
	return s
}

// sanitize drops records that fail validation and records whose ID was
// already seen, scanning Active first.
func (s *Store) sanitize(ctx context.Context, active, trash []core.Expense) ([]core.Expense, []core.Expense) {
	seen := make(map[core.ExpenseID]struct{}, len(active)+len(trash))
	keep := func(list []core.Expense) []core.Expense {
		out := make([]core.Expense, 0, len(list))
		for _, e := range list {
			if err := e.Validate(); err != nil {
				s.logger.WarnContext(ctx, "Dropping invalid expense on load",
					log.FieldExpenseID, string(e.ID), log.FieldError, err.Error())
				continue
			}
			if _, dup := seen[e.ID]; dup {
				s.logger.WarnContext(ctx, "Dropping duplicate expense on load",
					log.FieldExpenseID, string(e.ID))
				continue
			}
			seen[e.ID] = struct{}{}
			out = append(out, e)
		}
		return out
	}
	return keep(active), keep(trash)
}

// Add validates the input, assigns a fresh ID and prepends the expense to
// the active collection.
func (s *Store) Add(ctx context.Context, in NewExpense) (core.Expense, error) {
	if err := in.Amount.Validate(); err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	category, err := core.ParseCategory(string(in.Category))
	if err != nil {
		return core.Expense{}, fmt.Errorf("add expense: %w", err)
	}
	note := strings.TrimSpace(in.Note)
	if utf8.RuneCountInString(note) > core.MaxNoteLength {
		return core.Expense{}, fmt.Errorf("add expense: %w", core.ErrNoteTooLong)
	}

	s.mu.Lock()
	date := in.Date
	if date.IsZero() {
		date = core.DateOf(s.now())
	}
	e := core.Expense{
		ID:       s.freshID(),
		Amount:   in.Amount,
		Category: category,
		Date:     date,
		Note:     note,
	}
	s.active = slices.Insert(s.active, 0, e)
	s.commit(ctx, EventAdded, e.ID)

	s.logger.InfoContext(ctx, "Expense added",
		log.NewFields().WithOperation(log.OpAdd).WithExpense(string(e.ID), e.Amount.Cents, string(e.Category)).ToSlice()...)
	return e, nil
}

// freshID must be called with mu held.
func (s *Store) freshID() core.ExpenseID {
	for {
		id := s.newID()
		if id != "" && s.indexOf(s.active, id) < 0 && s.indexOf(s.trash, id) < 0 {
			return id
		}
	}
}

// Delete moves an active expense to the front of the trash. It reports
// whether anything moved.
func (s *Store) Delete(ctx context.Context, id core.ExpenseID) bool {
	s.mu.Lock()
	i := s.indexOf(s.active, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	e := s.active[i]
	s.active = slices.Delete(s.active, i, i+1)
	s.trash = slices.Insert(s.trash, 0, e)
	s.commit(ctx, EventDeleted, id)

	s.logger.InfoContext(ctx, "Expense moved to trash",
		log.NewFields().WithOperation(log.OpDelete).WithExpense(string(e.ID), e.Amount.Cents, string(e.Category)).ToSlice()...)
	return true
}

// Restore moves a trashed expense back to the front of the active list.
func (s *Store) Restore(ctx context.Context, id core.ExpenseID) bool {
	s.mu.Lock()
	i := s.indexOf(s.trash, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	e := s.trash[i]
	s.trash = slices.Delete(s.trash, i, i+1)
	s.active = slices.Insert(s.active, 0, e)
	s.commit(ctx, EventRestored, id)

	s.logger.InfoContext(ctx, "Expense restored",
		log.NewFields().WithOperation(log.OpRestore).WithExpense(string(e.ID), e.Amount.Cents, string(e.Category)).ToSlice()...)
	return true
}

// Purge removes a trashed expense for good.
func (s *Store) Purge(ctx context.Context, id core.ExpenseID) bool {
	s.mu.Lock()
	i := s.indexOf(s.trash, id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.trash = slices.Delete(s.trash, i, i+1)
	s.commit(ctx, EventPurged, id)

	s.logger.InfoContext(ctx, "Expense purged",
		log.FieldOperation, log.OpPurge, log.FieldExpenseID, string(id))
	return true
}

// ClearTrash empties the trash. An already empty trash is left alone.
func (s *Store) ClearTrash(ctx context.Context) bool {
	s.mu.Lock()
	n := len(s.trash)
	if n == 0 {
		s.mu.Unlock()
		return false
	}
	s.trash = []core.Expense{}
	s.commit(ctx, EventTrashCleared, "")

	s.logger.InfoContext(ctx, "Trash cleared",
		log.FieldOperation, log.OpClearTrash, "purged_count", n)
	return true
}

// commit persists the new state, releases mu and notifies subscribers.
// It must be called with mu held for writing.
func (s *Store) commit(ctx context.Context, kind EventKind, id core.ExpenseID) {
	s.version++
	s.lists.Purge()
	active, trash := slices.Clone(s.active), slices.Clone(s.trash)
	// The adapter logs failures; the in-memory state stays authoritative.
	_ = s.persister.Save(ctx, active, trash)

	s.metrics.RecordMutation(string(kind))
	s.metrics.SetCollectionSizes(len(active), len(trash))

	ev := Event{Kind: kind, ID: id, Active: active, Trash: trash, Version: s.version}

	// notifyMu is taken before mu is released so events reach subscribers
	// in mutation order while readers stay unblocked.
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	s.publish(ev)
}

func (s *Store) indexOf(list []core.Expense, id core.ExpenseID) int {
	return slices.IndexFunc(list, func(e core.Expense) bool { return e.ID == id })
}

// Active returns a copy of the active collection, newest first.
func (s *Store) Active() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.active)
}

// Trash returns a copy of the trash, most recently deleted first.
func (s *Store) Trash() []core.Expense {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.trash)
}

// Get looks up an active expense.
func (s *Store) Get(id core.ExpenseID) (core.Expense, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexOf(s.active, id); i >= 0 {
		return s.active[i], true
	}
	return core.Expense{}, false
}

// Total sums the active collection.
func (s *Store) Total() core.Money {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total core.Money
	for _, e := range s.active {
		total = total.Add(e.Amount)
	}
	return total
}

// Version increases by one with every mutation that changed state.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// List returns the active expenses matching f, in collection order.
func (s *Store) List(f Filter) []core.Expense {
	category := strings.TrimSpace(f.Category)
	if strings.EqualFold(category, "all") {
		category = ""
	}
	search := strings.ToLower(strings.TrimSpace(f.Search))

	s.mu.RLock()
	defer s.mu.RUnlock()

	if category == "" && search == "" {
		return slices.Clone(s.active)
	}

	key := fmt.Sprintf("%d|%s|%s", s.version, strings.ToLower(category), search)
	if cached, ok := s.lists.Get(key); ok {
		return slices.Clone(cached)
	}

	out := make([]core.Expense, 0)
	for _, e := range s.active {
		if category != "" && !strings.EqualFold(string(e.Category), category) {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(string(e.Category)), search) &&
			!strings.Contains(strings.ToLower(e.Note), search) {
			continue
		}
		out = append(out, e)
	}
	s.lists.Set(key, out)
	return slices.Clone(out)
}
