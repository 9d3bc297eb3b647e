package analytics

import (
	"sync"
	"time"

	"smartspend/internal/core"
	"smartspend/internal/expense"
	"smartspend/internal/log"
)

// Source is the slice of the expense store the engine listens to.
type Source interface {
	Active() []core.Expense
	Subscribe(fn func(expense.Event)) (unsubscribe func())
}

// Engine keeps a Snapshot current by recomputing it on every store event.
type Engine struct {
	mu       sync.RWMutex
	expenses []core.Expense
	snapshot Snapshot

	now         func() time.Time
	logger      *log.Logger
	unsubscribe func()
}

type EngineOption func(*Engine)

func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) { e.now = now }
}

func WithLogger(l *log.Logger) EngineOption {
	return func(e *Engine) { e.logger = l.WithComponent(log.ComponentAnalytics) }
}

// NewEngine computes an initial snapshot from src and subscribes to it.
func NewEngine(src Source, opts ...EngineOption) *Engine {
	e := &Engine{
		now:    time.Now,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.recompute(src.Active())
	e.unsubscribe = src.Subscribe(e.handle)
	return e
}

func (e *Engine) handle(ev expense.Event) {
	e.recompute(ev.Active)
	e.logger.Debug("Snapshot recomputed",
		log.FieldVersion, ev.Version, log.FieldActiveCount, len(ev.Active))
}

func (e *Engine) recompute(active []core.Expense) {
	snap := Compute(active, e.now())
	e.mu.Lock()
	e.expenses = active
	e.snapshot = snap
	e.mu.Unlock()
}

// Snapshot returns the latest derived values. When the calendar month has
// rolled over since the last event it recomputes first.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	snap := e.snapshot
	e.mu.RUnlock()

	if snap.CurrentMonth == core.MonthOf(e.now()) {
		return snap
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	// An event may have landed between the two locks.
	now := e.now()
	if e.snapshot.CurrentMonth != core.MonthOf(now) {
		e.snapshot = Compute(e.expenses, now)
	}
	return e.snapshot
}

// Close stops listening to the store.
func (e *Engine) Close() {
	if e.unsubscribe != nil {
		e.unsubscribe()
	}
}
