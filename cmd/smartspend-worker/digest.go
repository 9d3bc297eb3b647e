package main

import (
	"context"
	"sync"

	"smartspend/internal/amqp"
	"smartspend/internal/log"
)

// digest logs one line per event together with per-kind running counts.
type digest struct {
	mu          sync.Mutex
	counts      map[string]int
	lastVersion uint64
	logger      *log.Logger
}

func newDigest(logger *log.Logger) *digest {
	return &digest{counts: make(map[string]int), logger: logger}
}

func (d *digest) Handle(ctx context.Context, ev amqp.ExpenseEvent) error {
	d.mu.Lock()
	d.counts[ev.Kind]++
	seen := d.counts[ev.Kind]
	outOfOrder := ev.Version <= d.lastVersion
	if ev.Version > d.lastVersion {
		d.lastVersion = ev.Version
	}
	d.mu.Unlock()

	fields := log.NewFields().
		WithOperation(log.OpConsume).
		WithCollections(ev.ActiveCount, ev.TrashCount)
	fields[log.FieldVersion] = ev.Version
	fields["kind"] = ev.Kind
	fields["kind_total"] = seen
	if ev.ExpenseID != "" {
		fields[log.FieldExpenseID] = ev.ExpenseID
	}
	if outOfOrder {
		d.logger.WarnContext(ctx, "Expense event arrived out of order", fields.ToSlice()...)
		return nil
	}
	d.logger.InfoContext(ctx, "Expense event", fields.ToSlice()...)
	return nil
}
