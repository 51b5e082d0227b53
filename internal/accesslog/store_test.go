package accesslog

import (
	"context"
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "access.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLStore_WriteAndRecent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	entries := []Entry{
		{TraceID: "t1", Op: OpAdmit, Key: "k1", Policy: "lru"},
		{TraceID: "t2", Op: OpLookup, Key: "k1", Policy: "lru", Hit: true},
		{TraceID: "t3", Op: OpEvict, Key: "k0", Policy: "lru", Detail: "capacity"},
	}
	for _, e := range entries {
		if err := store.Write(ctx, e); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	got, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	// Newest first.
	if got[0].Op != OpEvict || got[2].Op != OpAdmit {
		t.Errorf("expected newest-first ordering, got %+v", got)
	}
	if !got[1].Hit {
		t.Error("expected lookup entry to record the hit")
	}
	if got[0].Detail != "capacity" {
		t.Errorf("expected eviction detail, got %q", got[0].Detail)
	}
	for _, e := range got {
		if e.CreatedAt.IsZero() {
			t.Error("expected created_at to be populated")
		}
	}
}

func TestSQLStore_RecentLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := store.Write(ctx, Entry{Op: OpLookup, Policy: "fifo"}); err != nil {
			t.Fatalf("Write: %v", err)
		}
	}

	got, err := store.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 entries, got %d", len(got))
	}
}

func TestSQLStore_RecentEmpty(t *testing.T) {
	store := newTestStore(t)

	got, err := store.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty (non-nil) slice, got %v", got)
	}
}

func TestNoopWriter(t *testing.T) {
	if err := (NoopWriter{}).Write(context.Background(), Entry{Op: OpFlush}); err != nil {
		t.Errorf("NoopWriter must never fail, got %v", err)
	}
}
