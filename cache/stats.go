package cache

import "sync/atomic"

type counters struct {
	hits          atomic.Uint64
	misses        atomic.Uint64
	sets          atomic.Uint64
	invalidations atomic.Uint64
	backendErrors atomic.Uint64
}

// Stats is a point-in-time snapshot of cache operation counts.
type Stats struct {
	Hits          uint64  `json:"hits"`
	Misses        uint64  `json:"misses"`
	Sets          uint64  `json:"sets"`
	Invalidations uint64  `json:"invalidations"`
	BackendErrors uint64  `json:"backend_errors"`
	HitRate       float64 `json:"hit_rate"`
}

// Stats returns a snapshot of the store's counters. Counters are best-effort
// process-local signals, not linearizable metrics.
func (s *Store) Stats() Stats {
	stats := Stats{
		Hits:          s.stats.hits.Load(),
		Misses:        s.stats.misses.Load(),
		Sets:          s.stats.sets.Load(),
		Invalidations: s.stats.invalidations.Load(),
		BackendErrors: s.stats.backendErrors.Load(),
	}

	if total := stats.Hits + stats.Misses; total > 0 {
		stats.HitRate = float64(stats.Hits) / float64(total)
	}

	return stats
}
