package sqlite

import (
	"context"
	"path/filepath"
	"testing"
)

func TestStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "data", "kv.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	if _, found, err := s.Get(ctx, "expenses"); err != nil || found {
		t.Fatalf("expected missing key, found=%v err=%v", found, err)
	}
	if err := s.Set(ctx, "expenses", []byte(`[1]`)); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, "expenses", []byte(`[2]`)); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, found, err := s.Get(ctx, "expenses")
	if err != nil || !found || string(got) != "[2]" {
		t.Fatalf("unexpected value %q found=%v err=%v", got, found, err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Reopening runs migrations again (no change) and keeps the data.
	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, found, err = s.Get(ctx, "expenses")
	if err != nil || !found || string(got) != "[2]" {
		t.Fatalf("value lost after reopen: %q found=%v err=%v", got, found, err)
	}
}
