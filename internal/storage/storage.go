// Package storage persists the two expense collections in a key-value store.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"smartspend/internal/core"
	"smartspend/internal/log"
	"smartspend/internal/metrics"
)

// Fixed keys holding the JSON arrays.
const (
	KeyExpenses        = "expenses"
	KeyDeletedExpenses = "deletedExpenses"
)

// KeyValue is the minimal store the adapter needs. Get reports found=false
// for a missing key rather than an error.
type KeyValue interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Adapter reads and writes the active and trash collections.
type Adapter struct {
	kv      KeyValue
	logger  *log.Logger
	metrics metrics.Recorder
}

type AdapterOption func(*Adapter)

func WithLogger(l *log.Logger) AdapterOption {
	return func(a *Adapter) { a.logger = l.WithComponent(log.ComponentStorage) }
}

func WithMetrics(m metrics.Recorder) AdapterOption {
	return func(a *Adapter) { a.metrics = m }
}

func NewAdapter(kv KeyValue, opts ...AdapterOption) *Adapter {
	a := &Adapter{
		kv:      kv,
		logger:  log.Discard(),
		metrics: metrics.Noop{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load returns both collections. A missing key is an empty list. Any read or
// decode failure is logged and both collections start empty.
func (a *Adapter) Load(ctx context.Context) (active, trash []core.Expense) {
	active, errActive := a.loadList(ctx, KeyExpenses)
	trash, errTrash := a.loadList(ctx, KeyDeletedExpenses)
	if err := errors.Join(errActive, errTrash); err != nil {
		a.metrics.RecordPersistenceFailure(log.OpLoad)
		a.logger.ErrorContext(ctx, "Failed to load expenses, starting from empty state",
			log.NewFields().WithError(err).WithOperation(log.OpLoad).ToSlice()...)
		return []core.Expense{}, []core.Expense{}
	}
	return active, trash
}

func (a *Adapter) loadList(ctx context.Context, key string) ([]core.Expense, error) {
	raw, found, err := a.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	if !found || len(raw) == 0 {
		return []core.Expense{}, nil
	}
	var list []core.Expense
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if list == nil {
		list = []core.Expense{}
	}
	return list, nil
}

// Save writes both collections. Failures are logged and returned; callers
// are free to ignore them.
func (a *Adapter) Save(ctx context.Context, active, trash []core.Expense) error {
	err := errors.Join(
		a.saveList(ctx, KeyExpenses, active),
		a.saveList(ctx, KeyDeletedExpenses, trash),
	)
	if err != nil {
		a.metrics.RecordPersistenceFailure(log.OpSave)
		a.logger.ErrorContext(ctx, "Failed to save expenses",
			log.NewFields().WithError(err).WithOperation(log.OpSave).WithCollections(len(active), len(trash)).ToSlice()...)
		return err
	}
	return nil
}

func (a *Adapter) saveList(ctx context.Context, key string, list []core.Expense) error {
	if list == nil {
		list = []core.Expense{}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := a.kv.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying store.
func (a *Adapter) Close() error {
	return a.kv.Close()
}
