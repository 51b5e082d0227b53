package cache

import (
	"container/list"
	"encoding/json"
	"time"
)

// Entry is a cached query/answer pair plus the per-entry bookkeeping the
// eviction policies rank on. Value is an opaque payload blob; the engine
// never inspects it.
type Entry struct {
	Key             string
	Value           json.RawMessage
	CreatedAt       time.Time
	LastAccessedAt  time.Time
	AccessCount     uint64
	QualityScore    float64
	SimilarityScore float64
}

// sizeBytes approximates the entry's memory footprint.
func (e *Entry) sizeBytes() int64 {
	return int64(len(e.Key) + len(e.Value))
}

// Store is a keyed container preserving insertion order. It holds no
// eviction logic and performs no I/O; the Engine is its only mutator.
type Store struct {
	items map[string]*list.Element
	order *list.List // of *Entry, Front is the oldest insertion
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		items: make(map[string]*list.Element),
		order: list.New(),
	}
}

// Get returns the entry for key, or false if absent.
func (s *Store) Get(key string) (*Entry, bool) {
	elem, ok := s.items[key]
	if !ok {
		return nil, false
	}
	return elem.Value.(*Entry), true
}

// Put inserts e, or replaces the entry under the same key in place.
// Replacement keeps the original insertion position.
func (s *Store) Put(e *Entry) {
	if elem, ok := s.items[e.Key]; ok {
		elem.Value = e
		return
	}
	s.items[e.Key] = s.order.PushBack(e)
}

// Remove deletes the entry for key and reports whether it was present.
func (s *Store) Remove(key string) bool {
	elem, ok := s.items[key]
	if !ok {
		return false
	}
	s.order.Remove(elem)
	delete(s.items, key)
	return true
}

// Keys returns all keys in insertion order, oldest first.
func (s *Store) Keys() []string {
	keys := make([]string, 0, s.order.Len())
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		keys = append(keys, elem.Value.(*Entry).Key)
	}
	return keys
}

// Entries returns all entries in insertion order, oldest first.
func (s *Store) Entries() []*Entry {
	entries := make([]*Entry, 0, s.order.Len())
	for elem := s.order.Front(); elem != nil; elem = elem.Next() {
		entries = append(entries, elem.Value.(*Entry))
	}
	return entries
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return s.order.Len()
}

// Clear removes all entries.
func (s *Store) Clear() {
	s.items = make(map[string]*list.Element)
	s.order.Init()
}
