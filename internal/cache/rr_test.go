package cache

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestRR_SeededSelectionIsDeterministic(t *testing.T) {
	s := NewStore()
	for i := 0; i < 5; i++ {
		s.Put(storeEntry(fmt.Sprintf("key-%d", i)))
	}

	p := &rrPolicy{rng: rand.New(rand.NewSource(42))}
	got := p.EvictionCandidates(s, 2)

	// An identically seeded source must reproduce the draw.
	ref := rand.New(rand.NewSource(42))
	keys := s.Keys()
	perm := ref.Perm(len(keys))
	want := []string{keys[perm[0]], keys[perm[1]]}

	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("expected candidates %v, got %v", want, got)
	}
}

func TestRR_NoDuplicateCandidates(t *testing.T) {
	s := NewStore()
	for i := 0; i < 6; i++ {
		s.Put(storeEntry(fmt.Sprintf("key-%d", i)))
	}

	p := &rrPolicy{rng: rand.New(rand.NewSource(7))}
	got := p.EvictionCandidates(s, 6)

	seen := make(map[string]bool)
	for _, k := range got {
		if seen[k] {
			t.Fatalf("duplicate candidate %q in %v", k, got)
		}
		seen[k] = true
	}
	if len(got) != 6 {
		t.Errorf("expected all 6 keys, got %d", len(got))
	}
}

func TestRR_CandidatesCappedAtStoreSize(t *testing.T) {
	s := NewStore()
	s.Put(storeEntry("only"))

	p := &rrPolicy{rng: rand.New(rand.NewSource(1))}
	got := p.EvictionCandidates(s, 3)
	if len(got) != 1 || got[0] != "only" {
		t.Errorf("expected [only], got %v", got)
	}
}

func TestRR_EngineHoldsCapacity(t *testing.T) {
	cfg := DefaultPolicyConfig(KindRandom)
	cfg.MaxSize = 3
	cfg.CleanSize = 1
	e := newTestEngine(t, cfg, WithRand(rand.New(rand.NewSource(99))))

	for i := 0; i < 10; i++ {
		e.Admit(fmt.Sprintf("key-%d", i), payload("v"), 0.5)
		if e.Len() > cfg.MaxSize {
			t.Fatalf("store size %d exceeds maxsize %d", e.Len(), cfg.MaxSize)
		}
	}
}
