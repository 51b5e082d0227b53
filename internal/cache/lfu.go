package cache

import (
	"sort"
	"time"
)

// lfuPolicy evicts the entries with the lowest access count.
type lfuPolicy struct{}

func (*lfuPolicy) Kind() Kind { return KindLFU }

func (*lfuPolicy) OnAdmit(_ *Entry, _ time.Time) {}

func (*lfuPolicy) OnHit(e *Entry, _ float64, _ bool, now time.Time) {
	touchEntry(e, now)
}

func (*lfuPolicy) EvictionCandidates(s *Store, n int) []string {
	entries := s.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].AccessCount < entries[j].AccessCount
	})
	return firstKeys(entries, n)
}

func (*lfuPolicy) Describe() Description {
	return Description{
		Name:        string(KindLFU),
		Description: "Least Frequently Used: evicts the entries with the fewest accesses.",
		Type:        FamilyMemory,
		Params:      sizeParams(),
	}
}
