package expense

import "smartspend/internal/core"

type EventKind string

const (
	EventAdded        EventKind = "added"
	EventDeleted      EventKind = "deleted"
	EventRestored     EventKind = "restored"
	EventPurged       EventKind = "purged"
	EventTrashCleared EventKind = "trash_cleared"
)

// Event describes one effective mutation. Active and Trash are copies of
// the collections right after it; ID is empty for EventTrashCleared.
type Event struct {
	Kind    EventKind
	ID      core.ExpenseID
	Active  []core.Expense
	Trash   []core.Expense
	Version uint64
}

// Subscribe registers fn to run synchronously after every effective
// mutation, in registration order. fn must not mutate the store.
func (s *Store) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscriber{id: id, fn: fn})

	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

func (s *Store) publish(ev Event) {
	s.subMu.Lock()
	subs := make([]subscriber, len(s.subs))
	copy(subs, s.subs)
	s.subMu.Unlock()

	for _, sub := range subs {
		sub.fn(ev)
	}
}
