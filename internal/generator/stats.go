package generator

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats tracks cache hit/miss counters, a Go port of cache_utils.py's
// `cache_stats` dict, additionally mirrored into Prometheus counters
// namespaced nearyou_generator_* (teacher's AppMetrics convention).
type Stats struct {
	hits   atomic.Int64
	misses atomic.Int64
	total  atomic.Int64

	promHits   prometheus.Counter
	promMisses prometheus.Counter
}

// NewStats registers the Prometheus counters and returns a ready Stats.
func NewStats(registerer prometheus.Registerer) *Stats {
	s := &Stats{
		promHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nearyou_generator_cache_hits_total",
			Help: "Total number of message-cache hits.",
		}),
		promMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nearyou_generator_cache_misses_total",
			Help: "Total number of message-cache misses.",
		}),
	}
	registerer.MustRegister(s.promHits, s.promMisses)
	return s
}

// RecordHit records a cache hit.
func (s *Stats) RecordHit() {
	s.hits.Add(1)
	s.total.Add(1)
	s.promHits.Inc()
}

// RecordMiss records a cache miss (including fallback generations).
func (s *Stats) RecordMiss() {
	s.misses.Add(1)
	s.total.Add(1)
	s.promMisses.Inc()
}

// Snapshot is the /cache/stats response body.
type Snapshot struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	Total   int64   `json:"total"`
	HitRate float64 `json:"hit_rate"`
}

// Snapshot reports the current counters, matching cache_utils.py's
// get_cache_stats hit-rate calculation.
func (s *Stats) Snapshot() Snapshot {
	hits := s.hits.Load()
	misses := s.misses.Load()
	total := s.total.Load()

	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Snapshot{Hits: hits, Misses: misses, Total: total, HitRate: hitRate}
}
