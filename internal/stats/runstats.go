// Package stats aggregates run outcomes for end-of-session reporting.
package stats

import (
	"sync"
	"time"

	"github.com/influxdata/tdigest"

	"github.com/neonlink/neonlink-scriptd/internal/supervisor"
)

// RunStats accumulates finished-run durations and outcomes. Durations feed a
// t-digest so percentiles stay cheap regardless of run count.
type RunStats struct {
	mu      sync.Mutex
	digest  *tdigest.TDigest
	count   int64
	stopped int64
	errored int64
	total   time.Duration
	max     time.Duration
}

// Summary is a point-in-time view of the accumulated stats.
type Summary struct {
	Count   int64
	Stopped int64
	Errored int64
	Mean    time.Duration
	Max     time.Duration
	P50     time.Duration
	P95     time.Duration
	P99     time.Duration
}

// New creates an empty RunStats.
func New() *RunStats {
	return &RunStats{
		// ~100 centroids, a few KB, plenty for duration percentiles
		digest: tdigest.NewWithCompression(100),
	}
}

// Record adds one finished run.
func (s *RunStats) Record(status supervisor.Status, uptime time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.count++
	switch status {
	case supervisor.StatusStopped:
		s.stopped++
	case supervisor.StatusErrored:
		s.errored++
	}
	s.total += uptime
	if uptime > s.max {
		s.max = uptime
	}
	s.digest.Add(uptime.Seconds(), 1)
}

// Snapshot returns the current summary.
func (s *RunStats) Snapshot() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()

	sum := Summary{
		Count:   s.count,
		Stopped: s.stopped,
		Errored: s.errored,
		Max:     s.max,
	}
	if s.count > 0 {
		sum.Mean = s.total / time.Duration(s.count)
		sum.P50 = secondsToDuration(s.digest.Quantile(0.50))
		sum.P95 = secondsToDuration(s.digest.Quantile(0.95))
		sum.P99 = secondsToDuration(s.digest.Quantile(0.99))
	}
	return sum
}

// Callbacks returns supervisor callbacks feeding this accumulator.
func (s *RunStats) Callbacks() supervisor.Callbacks {
	return supervisor.Callbacks{
		OnExit: func(rec supervisor.RunRecord, uptime time.Duration) {
			s.Record(rec.Status, uptime)
		},
	}
}

func secondsToDuration(sec float64) time.Duration {
	if sec < 0 {
		return 0
	}
	return time.Duration(sec * float64(time.Second))
}
