package cache

import (
	"encoding/json"
	"math/rand"
	"sync"
	"time"
)

// EvictionReasonCapacity marks evictions triggered by capacity overflow.
const EvictionReasonCapacity = "capacity"

// Eviction is the notification emitted for every removed entry.
type Eviction struct {
	Key    string
	Reason string
}

// SwitchResult confirms an applied policy switch.
type SwitchResult struct {
	Policy     Kind
	MaxSize    int
	CleanSize  int
	CacheReset bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand sets the random source used by the random-replacement policy.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock sets the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithEvictionHook registers a callback invoked for every eviction, while
// the engine lock is held. The hook must not call back into the engine.
func WithEvictionHook(fn func(Eviction)) Option {
	return func(e *Engine) { e.onEvict = fn }
}

// Engine owns the entry store and the active policy, and is the sole
// process-wide mutable cache state. All mutating operations serialize
// behind a single mutex; a policy switch is never interleaved with a
// lookup or admission.
type Engine struct {
	mu            sync.Mutex
	cfg           PolicyConfig
	policy        Policy
	store         *Store
	totalAccesses uint64

	rng     *rand.Rand
	now     func() time.Time
	onEvict func(Eviction)
}

// NewEngine creates an engine with the given initial policy. It fails with
// a *ConfigurationError or *UnknownPolicyError when cfg is invalid.
func NewEngine(cfg PolicyConfig, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		cfg:   cfg,
		store: NewStore(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.policy = cfg.newPolicy(e.rng)
	return e, nil
}

// Lookup returns the cached value for key. On a hit the active policy's
// hit handling runs and the access counter increments; a miss mutates
// nothing.
func (e *Engine) Lookup(key string) (json.RawMessage, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	entry, ok := e.store.Get(key)
	if !ok {
		return nil, false
	}
	e.policy.OnHit(entry, 0, false, e.now())
	e.totalAccesses++
	return entry.Value, true
}

// Admit stores value under key. An existing key is treated as a hit with
// refresh: the value is overwritten and the policy sees the new similarity
// signal. A new key is admitted and capacity is enforced in clean_size
// batches; every removal is reported as an Eviction.
func (e *Engine) Admit(key string, value json.RawMessage, similarity float64) []Eviction {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	if entry, ok := e.store.Get(key); ok {
		entry.Value = value
		e.policy.OnHit(entry, similarity, true, now)
		e.totalAccesses++
		return nil
	}

	entry := &Entry{
		Key:             key,
		Value:           value,
		CreatedAt:       now,
		LastAccessedAt:  now,
		AccessCount:     1,
		SimilarityScore: similarity,
	}
	e.policy.OnAdmit(entry, now)
	e.store.Put(entry)

	var evicted []Eviction
	for e.store.Len() > e.cfg.MaxSize {
		candidates := e.policy.EvictionCandidates(e.store, e.cfg.CleanSize)
		if len(candidates) == 0 {
			// Unreachable after config validation; a policy returning no
			// candidates while over capacity is a programming defect.
			panic("cache: eviction made no progress while over capacity")
		}
		for _, k := range candidates {
			if !e.store.Remove(k) {
				continue
			}
			ev := Eviction{Key: k, Reason: EvictionReasonCapacity}
			evicted = append(evicted, ev)
			if e.onEvict != nil {
				e.onEvict(ev)
			}
		}
	}
	return evicted
}

// SwitchPolicy validates cfg and atomically replaces the active policy.
// The entry store is always cleared on a successful switch: per-entry
// metadata is not portable across policy semantics, so the new policy
// starts from a clean state. A failed switch leaves policy and store
// untouched.
func (e *Engine) SwitchPolicy(cfg PolicyConfig) (SwitchResult, error) {
	if err := cfg.Validate(); err != nil {
		return SwitchResult{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg = cfg
	e.policy = cfg.newPolicy(e.rng)
	e.store.Clear()
	return SwitchResult{
		Policy:     cfg.Kind,
		MaxSize:    cfg.MaxSize,
		CleanSize:  cfg.CleanSize,
		CacheReset: true,
	}, nil
}

// Flush clears the store and resets the access counter. The active policy
// is kept.
func (e *Engine) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.store.Clear()
	e.totalAccesses = 0
}

// PolicyKind returns the identity of the active policy.
func (e *Engine) PolicyKind() Kind {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg.Kind
}

// Len returns the current number of cached entries.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Len()
}
