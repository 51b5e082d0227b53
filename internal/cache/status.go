package cache

import "fmt"

// sampleItemsLimit caps the keys listed in memory-family status.
const sampleItemsLimit = 10

// Range is a min/max pair of quality scores.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Weights is the quality-score component weighting.
type Weights struct {
	Quality   float64 `json:"quality"`
	Recency   float64 `json:"recency"`
	Frequency float64 `json:"frequency"`
}

// QualityStatus is the status snapshot under the quality-score policy.
type QualityStatus struct {
	CacheSize          int     `json:"cache_size"`
	MaxSize            int     `json:"max_size"`
	UtilizationPercent float64 `json:"utilization_percent"`
	TotalAccesses      uint64  `json:"total_accesses"`
	Policy             string  `json:"policy"`
	AvgQualityScore    float64 `json:"avg_quality_score"`
	QualityRange       Range   `json:"quality_range"`
	AvgAccessCount     float64 `json:"avg_access_count"`
	Weights            Weights `json:"weights"`
	LearningRate       float64 `json:"learning_rate"`
}

// MemoryStatus is the status snapshot under the memory-family policies.
type MemoryStatus struct {
	CacheSize          int      `json:"cache_size"`
	MaxSize            int      `json:"max_size"`
	UtilizationPercent float64  `json:"utilization_percent"`
	Policy             string   `json:"policy"`
	PolicyType         string   `json:"policy_type"`
	CurrentSizeBytes   int64    `json:"current_size_bytes"`
	CacheKeysCount     int      `json:"cache_keys_count"`
	AccessOrder        string   `json:"access_order"`
	SampleCachedItems  []string `json:"sample_cached_items"`
}

// KeyMetrics is the headline numbers block of the stats summary.
type KeyMetrics struct {
	ItemsCached int    `json:"items_cached"`
	Utilization string `json:"utilization"`
}

// Summary is the derived cross-policy stats summary.
type Summary struct {
	CurrentPolicy    string     `json:"current_policy"`
	CacheUtilization string     `json:"cache_utilization"`
	PolicyType       string     `json:"policy_type"`
	AvailableStats   []string   `json:"available_stats"`
	KeyMetrics       KeyMetrics `json:"key_metrics"`
	PolicyInsight    string     `json:"policy_insight"`
}

// accessOrderLabels describe the ordering each memory policy maintains.
var accessOrderLabels = map[Kind]string{
	KindLRU:    "least_recently_used_first",
	KindLFU:    "least_frequently_used_first",
	KindFIFO:   "insertion_order",
	KindRandom: "random",
}

// policyInsights are the per-policy explanations served by stats-summary.
var policyInsights = map[Kind]string{
	KindLRU:     "Keeps recently accessed answers; good when query popularity shifts over time.",
	KindLFU:     "Keeps frequently accessed answers; good for stable hot sets.",
	KindFIFO:    "Cycles entries by age; good when all answers age out uniformly.",
	KindRandom:  "Evicts at random; a low-overhead baseline.",
	KindQuality: "Balances answer quality, recency, and frequency; tune the weights to your workload.",
}

// statusSnapshot is the raw state copied under the engine lock.
type statusSnapshot struct {
	cfg           PolicyConfig
	totalAccesses uint64
	size          int
	sizeBytes     int64
	sumQuality    float64
	minQuality    float64
	maxQuality    float64
	sumAccess     uint64
	sampleKeys    []string
}

// snapshot copies everything status formatting needs, holding the lock
// only for the copy.
func (e *Engine) snapshot() statusSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	snap := statusSnapshot{
		cfg:           e.cfg,
		totalAccesses: e.totalAccesses,
		size:          e.store.Len(),
	}
	for i, entry := range e.store.Entries() {
		snap.sizeBytes += entry.sizeBytes()
		snap.sumAccess += entry.AccessCount
		snap.sumQuality += entry.QualityScore
		if i == 0 {
			snap.minQuality, snap.maxQuality = entry.QualityScore, entry.QualityScore
		} else {
			if entry.QualityScore < snap.minQuality {
				snap.minQuality = entry.QualityScore
			}
			if entry.QualityScore > snap.maxQuality {
				snap.maxQuality = entry.QualityScore
			}
		}
		if len(snap.sampleKeys) < sampleItemsLimit {
			snap.sampleKeys = append(snap.sampleKeys, entry.Key)
		}
	}
	if snap.sampleKeys == nil {
		snap.sampleKeys = []string{}
	}
	return snap
}

// Status returns a read-only snapshot of the engine. The shape depends on
// the active policy family: *QualityStatus under quality-score,
// *MemoryStatus otherwise.
func (e *Engine) Status() any {
	snap := e.snapshot()
	utilization := utilizationPercent(snap.size, snap.cfg.MaxSize)

	if snap.cfg.Kind == KindQuality {
		status := &QualityStatus{
			CacheSize:          snap.size,
			MaxSize:            snap.cfg.MaxSize,
			UtilizationPercent: utilization,
			TotalAccesses:      snap.totalAccesses,
			Policy:             string(snap.cfg.Kind),
			QualityRange:       Range{Min: snap.minQuality, Max: snap.maxQuality},
			Weights: Weights{
				Quality:   snap.cfg.QualityWeight,
				Recency:   snap.cfg.RecencyWeight,
				Frequency: snap.cfg.FrequencyWeight,
			},
			LearningRate: snap.cfg.LearningRate,
		}
		if snap.size > 0 {
			status.AvgQualityScore = snap.sumQuality / float64(snap.size)
			status.AvgAccessCount = float64(snap.sumAccess) / float64(snap.size)
		}
		return status
	}

	return &MemoryStatus{
		CacheSize:          snap.size,
		MaxSize:            snap.cfg.MaxSize,
		UtilizationPercent: utilization,
		Policy:             string(snap.cfg.Kind),
		PolicyType:         FamilyMemory,
		CurrentSizeBytes:   snap.sizeBytes,
		CacheKeysCount:     snap.size,
		AccessOrder:        accessOrderLabels[snap.cfg.Kind],
		SampleCachedItems:  snap.sampleKeys,
	}
}

// Summary returns the derived cross-policy stats summary.
func (e *Engine) Summary() Summary {
	snap := e.snapshot()
	utilization := utilizationPercent(snap.size, snap.cfg.MaxSize)

	stats := []string{"cache_size", "max_size", "utilization_percent", "policy"}
	if snap.cfg.Kind == KindQuality {
		stats = append(stats,
			"total_accesses", "avg_quality_score", "quality_range",
			"avg_access_count", "weights", "learning_rate")
	} else {
		stats = append(stats,
			"policy_type", "current_size_bytes", "cache_keys_count",
			"access_order", "sample_cached_items")
	}

	return Summary{
		CurrentPolicy:    string(snap.cfg.Kind),
		CacheUtilization: fmt.Sprintf("%d/%d (%.1f%%)", snap.size, snap.cfg.MaxSize, utilization),
		PolicyType:       snap.cfg.Kind.Family(),
		AvailableStats:   stats,
		KeyMetrics: KeyMetrics{
			ItemsCached: snap.size,
			Utilization: fmt.Sprintf("%.1f%%", utilization),
		},
		PolicyInsight: policyInsights[snap.cfg.Kind],
	}
}

func utilizationPercent(size, maxSize int) float64 {
	if maxSize <= 0 {
		return 0
	}
	return float64(size) / float64(maxSize) * 100
}
