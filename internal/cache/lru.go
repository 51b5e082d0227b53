package cache

import (
	"sort"
	"time"
)

// lruPolicy evicts the entries that have gone longest without access.
type lruPolicy struct{}

func (*lruPolicy) Kind() Kind { return KindLRU }

func (*lruPolicy) OnAdmit(_ *Entry, _ time.Time) {}

func (*lruPolicy) OnHit(e *Entry, _ float64, _ bool, now time.Time) {
	touchEntry(e, now)
}

func (*lruPolicy) EvictionCandidates(s *Store, n int) []string {
	entries := s.Entries()
	// Stable sort keeps insertion order for equal access times.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].LastAccessedAt.Before(entries[j].LastAccessedAt)
	})
	return firstKeys(entries, n)
}

func (*lruPolicy) Describe() Description {
	return Description{
		Name:        string(KindLRU),
		Description: "Least Recently Used: evicts the entries unused for the longest time.",
		Type:        FamilyMemory,
		Params:      sizeParams(),
	}
}
