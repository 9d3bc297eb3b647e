package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"smartspend/internal/amqp"
	"smartspend/internal/log"
)

func TestDigestHandle(t *testing.T) {
	var buf bytes.Buffer
	d := newDigest(log.New(log.Config{Output: &buf, Format: "text"}))
	ctx := context.Background()

	events := []amqp.ExpenseEvent{
		{Kind: "added", ExpenseID: "a", Version: 1, ActiveCount: 1},
		{Kind: "added", ExpenseID: "b", Version: 2, ActiveCount: 2},
		{Kind: "deleted", ExpenseID: "a", Version: 3, ActiveCount: 1, TrashCount: 1},
		{Kind: "added", ExpenseID: "c", Version: 2, ActiveCount: 2},
	}
	for _, ev := range events {
		if err := d.Handle(ctx, ev); err != nil {
			t.Fatalf("Handle(%+v) error = %v", ev, err)
		}
	}

	if d.counts["added"] != 3 || d.counts["deleted"] != 1 {
		t.Fatalf("unexpected counts %v", d.counts)
	}
	if d.lastVersion != 3 {
		t.Fatalf("lastVersion = %d, want 3", d.lastVersion)
	}
	out := buf.String()
	if strings.Count(out, "msg=\"Expense event\"") != 3 {
		t.Fatalf("expected 3 digest lines, got:\n%s", out)
	}
	if !strings.Contains(out, "out of order") {
		t.Fatalf("expected an out-of-order warning, got:\n%s", out)
	}
}
