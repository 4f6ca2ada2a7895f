package obs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"main/internal/risk"
	"main/internal/sched"
)

func TestMetricsCounts(t *testing.T) {
	m := NewMetrics()
	m.IncPrint()
	m.IncPrint()
	m.IncSkipped()
	m.IncEvent(sched.KindExecuted)
	m.IncEvent(sched.KindExecuted)
	m.IncEvent(sched.KindCreateOrder)
	m.IncDeny(risk.ReasonBudgetFloor)

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.Prints)
	assert.Equal(t, uint64(1), snap.Skipped)
	assert.Equal(t, uint64(2), snap.EventCounts[sched.KindExecuted])
	assert.Equal(t, uint64(1), snap.EventCounts[sched.KindCreateOrder])
	assert.Equal(t, uint64(1), snap.DenyCounts[risk.ReasonBudgetFloor])
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.IncPrint()
	m.IncEvent(sched.KindExecuted)
	m.ObserveMatch(time.Millisecond)
	assert.Equal(t, Snapshot{}, m.Snapshot())
}

func TestLatencyStats(t *testing.T) {
	var l LatencyStats
	l.Observe(2 * time.Millisecond)
	l.Observe(4 * time.Millisecond)
	l.Observe(6 * time.Millisecond)

	snap := l.Snapshot()
	assert.Equal(t, uint64(3), snap.Count)
	assert.Equal(t, 2*time.Millisecond, snap.Min)
	assert.Equal(t, 6*time.Millisecond, snap.Max)
	assert.Equal(t, 4*time.Millisecond, snap.Avg)
}
