package expense

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"smartspend/internal/cache"
	"smartspend/internal/core"
	"smartspend/internal/storage"
	"smartspend/internal/storage/memory"

	"github.com/stretchr/testify/suite"
)

// fakePersister records every save and can be told to fail.
type fakePersister struct {
	active, trash []core.Expense
	saves         int
	saveErr       error
}

func (f *fakePersister) Load(context.Context) ([]core.Expense, []core.Expense) {
	return append([]core.Expense{}, f.active...), append([]core.Expense{}, f.trash...)
}

func (f *fakePersister) Save(_ context.Context, active, trash []core.Expense) error {
	f.saves++
	if f.saveErr != nil {
		return f.saveErr
	}
	f.active, f.trash = active, trash
	return nil
}

func sequentialIDs() func() core.ExpenseID {
	n := 0
	return func() core.ExpenseID {
		n++
		return core.ExpenseID(fmt.Sprintf("id-%d", n))
	}
}

func money(cents int64) core.Money { return core.Money{Cents: cents} }

type StoreTestSuite struct {
	suite.Suite
	ctx       context.Context
	persister *fakePersister
	store     *Store
	events    []Event
	today     time.Time
}

func TestStoreSuite(t *testing.T) {
	suite.Run(t, new(StoreTestSuite))
}

func (s *StoreTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.persister = &fakePersister{}
	s.today = time.Date(2026, time.October, 14, 9, 30, 0, 0, time.UTC)
	s.events = nil
	s.store = NewStore(s.ctx, s.persister,
		WithClock(func() time.Time { return s.today }),
		WithIDGenerator(sequentialIDs()),
	)
	s.store.Subscribe(func(ev Event) { s.events = append(s.events, ev) })
}

func (s *StoreTestSuite) add(cents int64, category core.Category, note string) core.Expense {
	e, err := s.store.Add(s.ctx, NewExpense{Amount: money(cents), Category: category, Note: note})
	s.Require().NoError(err)
	return e
}

func (s *StoreTestSuite) TestAddPrependsAndDefaultsDate() {
	first := s.add(1250, core.Food, "lunch")
	second := s.add(300, core.Transport, "")

	active := s.store.Active()
	s.Require().Len(active, 2)
	s.Equal(second.ID, active[0].ID)
	s.Equal(first.ID, active[1].ID)
	s.Equal(core.NewDate(2026, time.October, 14), first.Date)
	s.Equal(money(1550), s.store.Total())
	s.Equal(2, s.persister.saves)
	s.Len(s.persister.active, 2)
}

func (s *StoreTestSuite) TestAddKeepsExplicitDateAndNormalisesCategory() {
	e, err := s.store.Add(s.ctx, NewExpense{
		Amount:   money(999),
		Category: "food",
		Date:     core.NewDate(2025, time.December, 31),
		Note:     "  groceries  ",
	})
	s.Require().NoError(err)
	s.Equal(core.Food, e.Category)
	s.Equal("groceries", e.Note)
	s.Equal(core.NewDate(2025, time.December, 31), e.Date)

	other, err := s.store.Add(s.ctx, NewExpense{Amount: money(1), Category: "Gadgets"})
	s.Require().NoError(err)
	s.Equal(core.Other, other.Category)
}

func (s *StoreTestSuite) TestAddRejectsInvalidInput() {
	tests := []struct {
		name string
		in   NewExpense
		want error
	}{
		{"zero amount", NewExpense{Amount: money(0), Category: core.Food}, core.ErrInvalidAmount},
		{"negative amount", NewExpense{Amount: money(-5), Category: core.Food}, core.ErrInvalidAmount},
		{"empty category", NewExpense{Amount: money(5), Category: "  "}, core.ErrEmptyCategory},
		{"long note", NewExpense{Amount: money(5), Category: core.Food, Note: string(make([]byte, core.MaxNoteLength+1))}, core.ErrNoteTooLong},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.store.Add(s.ctx, tt.in)
			s.ErrorIs(err, tt.want)
		})
	}
	s.Empty(s.store.Active())
	s.Zero(s.persister.saves)
	s.Empty(s.events)
	s.Zero(s.store.Version())
}

func (s *StoreTestSuite) TestAddCountsNoteInCharacters() {
	note := strings.Repeat("é", 150)
	e, err := s.store.Add(s.ctx, NewExpense{Amount: money(500), Category: core.Food, Note: note})
	s.Require().NoError(err)
	s.Equal(note, e.Note)

	_, err = s.store.Add(s.ctx, NewExpense{Amount: money(500), Category: core.Food, Note: strings.Repeat("é", core.MaxNoteLength+1)})
	s.ErrorIs(err, core.ErrNoteTooLong)
	s.Len(s.store.Active(), 1)
}

func (s *StoreTestSuite) TestDeleteMovesToFrontOfTrash() {
	a := s.add(100, core.Food, "")
	b := s.add(200, core.Food, "")

	s.True(s.store.Delete(s.ctx, a.ID))
	s.True(s.store.Delete(s.ctx, b.ID))

	s.Empty(s.store.Active())
	trash := s.store.Trash()
	s.Require().Len(trash, 2)
	s.Equal(b.ID, trash[0].ID)
	s.Equal(a, trash[1])
}

func (s *StoreTestSuite) TestRestoreMovesToFrontOfActive() {
	a := s.add(100, core.Food, "a")
	b := s.add(200, core.Shopping, "b")
	s.store.Delete(s.ctx, a.ID)

	s.True(s.store.Restore(s.ctx, a.ID))

	active := s.store.Active()
	s.Require().Len(active, 2)
	s.Equal(a, active[0])
	s.Equal(b.ID, active[1].ID)
	s.Empty(s.store.Trash())
}

func (s *StoreTestSuite) TestPurgeAndClearTrash() {
	a := s.add(100, core.Food, "")
	b := s.add(200, core.Food, "")
	c := s.add(300, core.Food, "")
	s.store.Delete(s.ctx, a.ID)
	s.store.Delete(s.ctx, b.ID)
	s.store.Delete(s.ctx, c.ID)

	s.True(s.store.Purge(s.ctx, b.ID))
	s.Len(s.store.Trash(), 2)

	s.True(s.store.ClearTrash(s.ctx))
	s.Empty(s.store.Trash())
	s.Empty(s.store.Active())
}

func (s *StoreTestSuite) TestNoOpsDoNotPersistOrNotify() {
	a := s.add(100, core.Food, "")
	saves, events, version := s.persister.saves, len(s.events), s.store.Version()

	s.False(s.store.Delete(s.ctx, "missing"))
	s.False(s.store.Restore(s.ctx, a.ID)) // active, not trashed
	s.False(s.store.Purge(s.ctx, a.ID))
	s.False(s.store.Purge(s.ctx, "missing"))
	s.False(s.store.ClearTrash(s.ctx))

	s.Equal(saves, s.persister.saves)
	s.Len(s.events, events)
	s.Equal(version, s.store.Version())
	s.Len(s.store.Active(), 1)
}

func (s *StoreTestSuite) TestEventsCarryStateAndVersion() {
	a := s.add(100, core.Food, "")
	s.store.Delete(s.ctx, a.ID)
	s.store.ClearTrash(s.ctx)

	s.Require().Len(s.events, 3)
	s.Equal(EventAdded, s.events[0].Kind)
	s.Equal(a.ID, s.events[0].ID)
	s.Len(s.events[0].Active, 1)

	s.Equal(EventDeleted, s.events[1].Kind)
	s.Empty(s.events[1].Active)
	s.Len(s.events[1].Trash, 1)

	s.Equal(EventTrashCleared, s.events[2].Kind)
	s.Empty(s.events[2].ID)
	for i, ev := range s.events {
		s.Equal(uint64(i+1), ev.Version)
	}
}

func (s *StoreTestSuite) TestUnsubscribeStopsNotifications() {
	var calls int
	unsubscribe := s.store.Subscribe(func(Event) { calls++ })
	s.add(100, core.Food, "")
	unsubscribe()
	s.add(100, core.Food, "")
	s.Equal(1, calls)
	s.Len(s.events, 2)
}

func (s *StoreTestSuite) TestSubscribersSeeOrderAndCanRead() {
	var order []string
	s.store.Subscribe(func(ev Event) {
		order = append(order, "first")
		// Readers are usable from inside a subscriber.
		s.Len(s.store.Active(), len(ev.Active))
	})
	s.store.Subscribe(func(Event) { order = append(order, "second") })

	s.add(100, core.Food, "")
	s.Equal([]string{"first", "second"}, order)
}

func (s *StoreTestSuite) TestSaveFailureKeepsInMemoryState() {
	s.persister.saveErr = errors.New("quota exceeded")
	a := s.add(100, core.Food, "")

	got, ok := s.store.Get(a.ID)
	s.True(ok)
	s.Equal(a, got)
	s.Len(s.events, 1)
}

func (s *StoreTestSuite) TestReadersReturnCopies() {
	s.add(100, core.Food, "")
	active := s.store.Active()
	active[0].Note = "tampered"
	s.Empty(s.store.Active()[0].Note)
}

func (s *StoreTestSuite) TestListFiltersAndSearches() {
	s.add(100, core.Food, "Pizza night")
	s.add(200, core.Transport, "bus pass")
	s.add(300, core.Food, "")
	s.add(400, core.Entertainment, "cinema with food")

	s.Len(s.store.List(Filter{}), 4)
	s.Len(s.store.List(Filter{Category: "all"}), 4)
	s.Len(s.store.List(Filter{Category: "Food"}), 2)
	s.Len(s.store.List(Filter{Category: "food"}), 2)
	s.Len(s.store.List(Filter{Search: "FOOD"}), 3) // two by category, one by note
	s.Len(s.store.List(Filter{Search: "pizza"}), 1)
	s.Len(s.store.List(Filter{Category: "Food", Search: "pizza"}), 1)
	s.Empty(s.store.List(Filter{Category: "Travel"}))
}

func (s *StoreTestSuite) TestListCacheInvalidatedByMutation() {
	s.add(100, core.Food, "")
	f := Filter{Category: "Food"}
	s.Len(s.store.List(f), 1)
	s.Len(s.store.List(f), 1) // served from cache

	s.add(200, core.Food, "")
	s.Len(s.store.List(f), 2)
	s.Equal(uint64(1), s.store.lists.Stats().Hits)
}

func TestStoreUsesInjectedListCache(t *testing.T) {
	lists := cache.NewLRU[[]core.Expense](4, time.Minute)
	store := NewStore(context.Background(), &fakePersister{}, WithListCache(lists))
	if _, err := store.Add(context.Background(), NewExpense{Amount: money(900), Category: core.Travel}); err != nil {
		t.Fatalf("add: %v", err)
	}

	for range 3 {
		if got := store.List(Filter{Search: "travel"}); len(got) != 1 {
			t.Fatalf("expected one match, got %d", len(got))
		}
	}
	stats := lists.Stats()
	if stats.Hits != 2 || stats.Misses != 1 || stats.Size != 1 {
		t.Fatalf("unexpected cache stats %+v", stats)
	}
}

func TestNewStoreDropsDuplicateIDs(t *testing.T) {
	e := core.Expense{ID: "1", Amount: money(100), Category: core.Food, Date: core.NewDate(2026, time.May, 1)}
	p := &fakePersister{active: []core.Expense{e, e}, trash: []core.Expense{e}}

	store := NewStore(context.Background(), p)
	if len(store.Active()) != 1 || len(store.Trash()) != 0 {
		t.Fatalf("expected one active and empty trash, got %d/%d", len(store.Active()), len(store.Trash()))
	}
}

func TestNewStoreDropsInvalidRecords(t *testing.T) {
	valid := core.Expense{ID: "ok", Amount: money(700), Category: core.Food, Date: core.NewDate(2026, time.May, 2)}
	negative := valid
	negative.ID, negative.Amount = "neg", money(-5000)
	noID := valid
	noID.ID = ""
	noCategory := valid
	noCategory.ID, noCategory.Category = "blank", ""
	noDate := valid
	noDate.ID, noDate.Date = "undated", core.Date{}

	p := &fakePersister{
		active: []core.Expense{negative, valid, noID, noCategory},
		trash:  []core.Expense{noDate},
	}
	store := NewStore(context.Background(), p)

	if got := store.Active(); len(got) != 1 || got[0] != valid {
		t.Fatalf("expected only the valid record, got %+v", got)
	}
	if len(store.Trash()) != 0 {
		t.Fatalf("expected empty trash, got %+v", store.Trash())
	}
	if total := store.Total(); total.Cents != 700 {
		t.Fatalf("total = %d, want 700", total.Cents)
	}
}

func TestNewStoreLoadsInvalidSeedThroughAdapter(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	seed := `[{"id":"a","amount":-50,"category":"Food","date":"2026-10-01"},{"amount":0,"category":"","date":"2026-10-02"},{"id":"b","amount":12.5,"category":"Food","date":"2026-10-03"}]`
	if err := kv.Set(ctx, storage.KeyExpenses, []byte(seed)); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := NewStore(ctx, storage.NewAdapter(kv))
	got := store.Active()
	if len(got) != 1 || got[0].ID != "b" || got[0].Amount.Cents != 1250 {
		t.Fatalf("unexpected active after load: %+v", got)
	}
}

func TestStoreRoundTripsThroughAdapter(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	first := NewStore(ctx, storage.NewAdapter(kv))
	a, err := first.Add(ctx, NewExpense{Amount: money(4200), Category: core.Housing, Date: core.NewDate(2026, time.March, 3), Note: "rent share"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	b, _ := first.Add(ctx, NewExpense{Amount: money(150), Category: core.Food, Date: core.NewDate(2026, time.March, 4)})
	first.Delete(ctx, b.ID)

	second := NewStore(ctx, storage.NewAdapter(kv))
	if got := second.Active(); len(got) != 1 || got[0] != a {
		t.Fatalf("unexpected active after reload: %+v", got)
	}
	if got := second.Trash(); len(got) != 1 || got[0] != b {
		t.Fatalf("unexpected trash after reload: %+v", got)
	}
}
