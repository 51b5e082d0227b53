package cache

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func storeEntry(key string) *Entry {
	return &Entry{
		Key:            key,
		Value:          json.RawMessage(`"` + key + `"`),
		CreatedAt:      time.Unix(0, 0),
		LastAccessedAt: time.Unix(0, 0),
		AccessCount:    1,
	}
}

func TestStore_PutAndGet(t *testing.T) {
	s := NewStore()
	s.Put(storeEntry("a"))

	got, ok := s.Get("a")
	if !ok {
		t.Fatal("expected entry")
	}
	if got.Key != "a" {
		t.Errorf("expected key a, got %s", got.Key)
	}
	if _, ok := s.Get("missing"); ok {
		t.Error("expected miss for absent key")
	}
}

func TestStore_InsertionOrder(t *testing.T) {
	s := NewStore()
	for _, k := range []string{"c", "a", "b"} {
		s.Put(storeEntry(k))
	}

	want := []string{"c", "a", "b"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected keys %v, got %v", want, got)
	}
}

func TestStore_ReplaceKeepsPosition(t *testing.T) {
	s := NewStore()
	s.Put(storeEntry("a"))
	s.Put(storeEntry("b"))
	s.Put(storeEntry("a")) // replace, not reinsert

	want := []string{"a", "b"}
	if got := s.Keys(); !reflect.DeepEqual(got, want) {
		t.Errorf("expected keys %v, got %v", want, got)
	}
	if s.Len() != 2 {
		t.Errorf("expected len 2, got %d", s.Len())
	}
}

func TestStore_Remove(t *testing.T) {
	s := NewStore()
	s.Put(storeEntry("a"))
	s.Put(storeEntry("b"))

	if !s.Remove("a") {
		t.Error("expected remove to report presence")
	}
	if s.Remove("a") {
		t.Error("expected second remove to report absence")
	}
	if got := s.Keys(); !reflect.DeepEqual(got, []string{"b"}) {
		t.Errorf("expected keys [b], got %v", got)
	}
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.Put(storeEntry("a"))
	s.Put(storeEntry("b"))
	s.Clear()

	if s.Len() != 0 {
		t.Errorf("expected len 0 after clear, got %d", s.Len())
	}
	if _, ok := s.Get("a"); ok {
		t.Error("expected miss after clear")
	}
}
