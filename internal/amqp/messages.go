package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"smartspend/internal/expense"
)

// ExpenseEvent is the wire form of one store mutation.
type ExpenseEvent struct {
	Kind        string    `json:"kind"`
	ExpenseID   string    `json:"expenseId,omitempty"`
	Version     uint64    `json:"version"`
	ActiveCount int       `json:"activeCount"`
	TrashCount  int       `json:"trashCount"`
	Timestamp   time.Time `json:"timestamp"`
}

// NewExpenseEvent summarises a store event.
func NewExpenseEvent(ev expense.Event, at time.Time) ExpenseEvent {
	return ExpenseEvent{
		Kind:        string(ev.Kind),
		ExpenseID:   string(ev.ID),
		Version:     ev.Version,
		ActiveCount: len(ev.Active),
		TrashCount:  len(ev.Trash),
		Timestamp:   at,
	}
}

// ToJSON converts the message to JSON bytes
func (m ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// ExpenseEventFromJSON decodes a message and rejects payloads without a kind.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var msg ExpenseEvent
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.Kind == "" {
		return nil, errors.New("missing event kind")
	}
	return &msg, nil
}
