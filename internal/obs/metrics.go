// Package obs collects lightweight playback counters and latency
// stats. All methods are nil-safe so instrumentation can be left out
// entirely.
package obs

import (
	"sync/atomic"
	"time"

	"main/internal/risk"
	"main/internal/sched"
)

const (
	maxEventKind = int(sched.KindCheckPrice)
	maxReason    = int(risk.ReasonInsolvent)
)

// Metrics collects counters for one playback run.
type Metrics struct {
	prints      uint64
	skipped     uint64
	eventCounts [maxEventKind + 1]uint64
	denyCounts  [maxReason + 1]uint64

	matchLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	min   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Min   time.Duration
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	Prints       uint64
	Skipped      uint64
	EventCounts  map[sched.Kind]uint64
	DenyCounts   map[risk.Reason]uint64
	MatchLatency LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// IncPrint counts one replayed print.
func (m *Metrics) IncPrint() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.prints, 1)
}

// IncSkipped counts one excluded print.
func (m *Metrics) IncSkipped() {
	if m == nil {
		return
	}
	atomic.AddUint64(&m.skipped, 1)
}

// IncEvent counts one released queue event.
func (m *Metrics) IncEvent(kind sched.Kind) {
	if m == nil {
		return
	}
	if idx := int(kind); idx >= 0 && idx < len(m.eventCounts) {
		atomic.AddUint64(&m.eventCounts[idx], 1)
	}
}

// IncDeny counts one denied admission decision.
func (m *Metrics) IncDeny(reason risk.Reason) {
	if m == nil {
		return
	}
	if idx := int(reason); idx >= 0 && idx < len(m.denyCounts) {
		atomic.AddUint64(&m.denyCounts[idx], 1)
	}
}

// ObserveMatch measures the wall time of matching one print.
func (m *Metrics) ObserveMatch(d time.Duration) {
	if m == nil {
		return
	}
	m.matchLatency.Observe(d)
}

// Snapshot returns a copy of the current metrics values.
func (m *Metrics) Snapshot() Snapshot {
	if m == nil {
		return Snapshot{}
	}
	eventCounts := make(map[sched.Kind]uint64)
	for i := range m.eventCounts {
		if v := atomic.LoadUint64(&m.eventCounts[i]); v > 0 {
			eventCounts[sched.Kind(i)] = v
		}
	}
	denyCounts := make(map[risk.Reason]uint64)
	for i := range m.denyCounts {
		if v := atomic.LoadUint64(&m.denyCounts[i]); v > 0 {
			denyCounts[risk.Reason(i)] = v
		}
	}
	return Snapshot{
		Prints:       atomic.LoadUint64(&m.prints),
		Skipped:      atomic.LoadUint64(&m.skipped),
		EventCounts:  eventCounts,
		DenyCounts:   denyCounts,
		MatchLatency: m.matchLatency.Snapshot(),
	}
}

// Observe records a duration sample.
func (l *LatencyStats) Observe(d time.Duration) {
	if d < 0 {
		return
	}
	nanos := uint64(d)
	atomic.AddUint64(&l.count, 1)
	atomic.AddUint64(&l.sum, nanos)

	for {
		min := atomic.LoadUint64(&l.min)
		if min != 0 && nanos >= min {
			break
		}
		if atomic.CompareAndSwapUint64(&l.min, min, nanos) {
			break
		}
	}

	for {
		max := atomic.LoadUint64(&l.max)
		if nanos <= max {
			break
		}
		if atomic.CompareAndSwapUint64(&l.max, max, nanos) {
			break
		}
	}
}

// Snapshot returns the aggregated latency stats.
func (l *LatencyStats) Snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&l.count)
	if count == 0 {
		return LatencySnapshot{}
	}
	sum := atomic.LoadUint64(&l.sum)
	min := atomic.LoadUint64(&l.min)
	max := atomic.LoadUint64(&l.max)
	return LatencySnapshot{
		Count: count,
		Min:   time.Duration(min),
		Max:   time.Duration(max),
		Avg:   time.Duration(sum / count),
	}
}
