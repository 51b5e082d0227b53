// Package metrics registers the Prometheus metrics used by the cache
// server. Import this package (via blank import) from the server entry
// point to register all metrics before the /metrics handler is mounted.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache-level counters and gauges.
var (
	// LookupsTotal counts cache lookups labelled by outcome ("hit", "miss").
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_lookups_total",
			Help: "Total number of cache lookups by outcome.",
		},
		[]string{"outcome"},
	)

	// AdmissionsTotal counts admitted entries labelled by the active policy.
	AdmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_admissions_total",
			Help: "Total number of admitted cache entries.",
		},
		[]string{"policy"},
	)

	// EvictionsTotal counts evicted entries labelled by policy and reason.
	EvictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_evictions_total",
			Help: "Total number of evicted cache entries.",
		},
		[]string{"policy", "reason"},
	)

	// PolicySwitchesTotal counts applied policy switches labelled by the
	// new policy.
	PolicySwitchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_policy_switches_total",
			Help: "Total number of applied eviction policy switches.",
		},
		[]string{"policy"},
	)

	// Entries tracks the current number of cached entries.
	Entries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries.",
		},
	)

	// UpstreamDuration observes upstream responder latency in seconds.
	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cache_upstream_duration_seconds",
			Help:    "Upstream responder latency in seconds.",
			Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"provider"},
	)
)
