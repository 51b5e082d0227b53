package cache

import "time"

// fifoPolicy evicts the oldest-inserted entries regardless of access
// pattern.
type fifoPolicy struct{}

func (*fifoPolicy) Kind() Kind { return KindFIFO }

func (*fifoPolicy) OnAdmit(_ *Entry, _ time.Time) {}

func (*fifoPolicy) OnHit(e *Entry, _ float64, _ bool, now time.Time) {
	// Bookkeeping only; insertion order is untouched by hits.
	touchEntry(e, now)
}

func (*fifoPolicy) EvictionCandidates(s *Store, n int) []string {
	return firstKeys(s.Entries(), n)
}

func (*fifoPolicy) Describe() Description {
	return Description{
		Name:        string(KindFIFO),
		Description: "First In First Out: evicts the oldest-inserted entries.",
		Type:        FamilyMemory,
		Params:      sizeParams(),
	}
}
