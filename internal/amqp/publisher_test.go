package amqp

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"smartspend/internal/expense"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu   sync.Mutex
	got  []ExpenseEvent
	err  error
	sent chan struct{}
}

func (r *recordingPublisher) Publish(_ context.Context, ev ExpenseEvent) error {
	r.mu.Lock()
	r.got = append(r.got, ev)
	r.mu.Unlock()
	r.sent <- struct{}{}
	return r.err
}

func TestPublisherForwardsEvents(t *testing.T) {
	rec := &recordingPublisher{sent: make(chan struct{}, 4)}
	p := NewPublisher(rec, 4, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	p.Handle(expense.Event{Kind: expense.EventAdded, ID: "1", Version: 1})
	p.Handle(expense.Event{Kind: expense.EventTrashCleared, Version: 2})

	for i := 0; i < 2; i++ {
		select {
		case <-rec.sent:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for publish")
		}
	}
	cancel()
	require.NoError(t, <-done)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.got, 2)
	assert.Equal(t, "added", rec.got[0].Kind)
	assert.Equal(t, uint64(2), rec.got[1].Version)
}

func TestPublisherSurvivesFailures(t *testing.T) {
	rec := &recordingPublisher{sent: make(chan struct{}, 1), err: errors.New("broker down")}
	p := NewPublisher(rec, 1, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	p.Handle(expense.Event{Kind: expense.EventPurged, ID: "9", Version: 5})
	select {
	case <-rec.sent:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for publish")
	}
}

func TestPublisherHandleDoesNotBlockWhenFull(t *testing.T) {
	p := NewPublisher(&recordingPublisher{sent: make(chan struct{}, 1)}, 1, nil)

	finished := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			p.Handle(expense.Event{Kind: expense.EventAdded, Version: uint64(i)})
		}
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("Handle blocked on a full buffer")
	}
	assert.Len(t, p.events, 1)
}
