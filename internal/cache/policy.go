// Package cache implements the response-cache core: an insertion-ordered
// entry store, five interchangeable eviction policies, and the engine that
// orchestrates admission, hits, capacity enforcement, and policy hot-swap.
//
// Available policies:
//   - LRU:           evicts the entries unused for the longest time.
//   - LFU:           evicts the entries with the fewest accesses.
//   - FIFO:          evicts the oldest-inserted entries.
//   - RR:            evicts uniformly random entries.
//   - QualityScore:  evicts by a composite rank of answer quality,
//     recency, and access frequency.
package cache

import (
	"strings"
	"time"
)

// Kind identifies an eviction policy.
type Kind string

// Supported policy kinds.
const (
	KindLRU     Kind = "lru"
	KindLFU     Kind = "lfu"
	KindFIFO    Kind = "fifo"
	KindRandom  Kind = "rr"
	KindQuality Kind = "quality_score"
)

// Policy families reported in status and the policy catalog.
const (
	FamilyMemory   = "memory"
	FamilyAdvanced = "advanced"
)

// Family returns the policy family: "advanced" for the quality-score
// policy, "memory" for the rest.
func (k Kind) Family() string {
	if k == KindQuality {
		return FamilyAdvanced
	}
	return FamilyMemory
}

// ParseKind resolves a policy name to a Kind. Matching is case-insensitive
// and accepts the common aliases "random" and "quality".
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lru":
		return KindLRU, nil
	case "lfu":
		return KindLFU, nil
	case "fifo":
		return KindFIFO, nil
	case "rr", "random":
		return KindRandom, nil
	case "quality_score", "quality":
		return KindQuality, nil
	default:
		return "", &UnknownPolicyError{Name: name}
	}
}

// Policy is the capability set shared by all eviction strategies. A policy
// is stateless with respect to storage: it mutates only the entry handed to
// it and reads the store it is asked to rank.
type Policy interface {
	// Kind returns the policy identity.
	Kind() Kind

	// OnAdmit initialises policy-specific fields on a freshly created entry.
	OnAdmit(e *Entry, now time.Time)

	// OnHit records an access. similarity carries the similarity signal of
	// this access when hasSimilarity is true; plain lookups carry none.
	OnHit(e *Entry, similarity float64, hasSimilarity bool, now time.Time)

	// EvictionCandidates returns up to n keys to evict, most evictable
	// first. Ties are broken by oldest insertion first.
	EvictionCandidates(s *Store, n int) []string

	// Describe returns the catalog metadata for this policy.
	Describe() Description
}

// ParamSpec describes one policy parameter for the policy catalog.
type ParamSpec struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"`
	Default     float64 `json:"default"`
	Description string  `json:"description"`
}

// Description is the catalog metadata for a policy.
type Description struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Type        string      `json:"type"`
	Params      []ParamSpec `json:"params"`
}

// touchEntry applies the access bookkeeping shared by every policy.
func touchEntry(e *Entry, now time.Time) {
	e.LastAccessedAt = now
	e.AccessCount++
}

// firstKeys returns the keys of the first n entries, fewer if the slice is
// shorter.
func firstKeys(entries []*Entry, n int) []string {
	if n > len(entries) {
		n = len(entries)
	}
	keys := make([]string, n)
	for i := 0; i < n; i++ {
		keys[i] = entries[i].Key
	}
	return keys
}

// sizeParams is the parameter schema shared by all policies.
func sizeParams() []ParamSpec {
	return []ParamSpec{
		{Name: "maxsize", Type: "int", Default: DefaultMaxSize, Description: "maximum number of cached entries"},
		{Name: "clean_size", Type: "int", Default: DefaultCleanSize, Description: "entries evicted per overflow event"},
	}
}

// Catalog returns the static description of all supported policies.
func Catalog() []Description {
	return []Description{
		(*lruPolicy)(nil).Describe(),
		(*lfuPolicy)(nil).Describe(),
		(*fifoPolicy)(nil).Describe(),
		(*rrPolicy)(nil).Describe(),
		(*qualityPolicy)(nil).Describe(),
	}
}
