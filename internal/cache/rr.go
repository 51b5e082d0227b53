package cache

import (
	"math/rand"
	"time"
)

// rrPolicy evicts entries drawn uniformly without replacement. The random
// source is injected so tests can supply a fixed seed.
type rrPolicy struct {
	rng *rand.Rand
}

func (*rrPolicy) Kind() Kind { return KindRandom }

func (*rrPolicy) OnAdmit(_ *Entry, _ time.Time) {}

func (*rrPolicy) OnHit(e *Entry, _ float64, _ bool, now time.Time) {
	touchEntry(e, now)
}

func (p *rrPolicy) EvictionCandidates(s *Store, n int) []string {
	keys := s.Keys()
	if n > len(keys) {
		n = len(keys)
	}
	perm := p.rng.Perm(len(keys))
	picked := make([]string, n)
	for i := 0; i < n; i++ {
		picked[i] = keys[perm[i]]
	}
	return picked
}

func (*rrPolicy) Describe() Description {
	return Description{
		Name:        string(KindRandom),
		Description: "Random Replacement: evicts uniformly random entries.",
		Type:        FamilyMemory,
		Params:      sizeParams(),
	}
}
