package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"main/internal/model/enum"
)

func TestIsZero(t *testing.T) {
	assert.True(t, IsZero(0))
	assert.True(t, IsZero(0.0000099))
	assert.True(t, IsZero(-0.0000099))
	assert.False(t, IsZero(0.000011))
	assert.False(t, IsZero(-0.000011))
}

func TestNear(t *testing.T) {
	assert.True(t, Near(200, 200.0000001))
	assert.False(t, Near(200, 200.001))
}

func TestRecordRoundTrip(t *testing.T) {
	for _, v := range []float64{0, 0.00000001, 1, 5167.1, 0.025, 123456.78901234, -3.5} {
		got := FromRecord(ToRecord(v))
		assert.InDeltaf(t, v, got, 1e-8, "value %v", v)
	}
}

func TestOrderDone(t *testing.T) {
	o := NewOrder(1, enum.SideBuy, 100, 2)
	assert.False(t, o.Done())

	o.Remaining = 0.0000001
	assert.True(t, o.Done())

	// A tiny residual relative to a large original amount still counts
	// as done; the test mirrors the residual-ratio convention.
	big := NewOrder(2, enum.SideBuy, 100, 1000)
	big.Remaining = 0.005
	assert.True(t, big.Done())
}
