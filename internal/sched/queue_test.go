package sched

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"main/internal/model"
	"main/internal/model/enum"
)

func TestDrainDueReleasesInFIFOOrder(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Kind: KindCreateOrder, ReleaseAt: 10, Order: model.NewOrder(1, enum.SideBuy, 100, 1)})
	q.Push(Event{Kind: KindExecuted, ReleaseAt: 10, Order: model.NewOrder(2, enum.SideSell, 101, 1)})
	q.Push(Event{Kind: KindCancelOrder, ReleaseAt: 30, Order: model.NewOrder(3, enum.SideBuy, 99, 1)})

	var got []int64
	q.DrainDue(10, func(ev Event) {
		got = append(got, ev.Order.ID)
	})
	assert.Equal(t, []int64{1, 2}, got)
	assert.Equal(t, 1, q.Len())

	q.DrainDue(29, func(ev Event) {
		t.Fatalf("event %d released early", ev.Order.ID)
	})

	q.DrainDue(30, func(ev Event) {
		got = append(got, ev.Order.ID)
	})
	assert.Equal(t, []int64{1, 2, 3}, got)
	assert.Equal(t, 0, q.Len())
}

func TestDrainDueHandlerMayPush(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Kind: KindCreateOrder, ReleaseAt: 5, Order: model.NewOrder(1, enum.SideSell, 100, 1)})

	var released []int64
	q.DrainDue(5, func(ev Event) {
		released = append(released, ev.Order.ID)
		if ev.Order.ID == 1 {
			// Retry after one delay interval, not due this drain.
			q.Push(Event{Kind: KindCreateOrder, ReleaseAt: 15, Order: ev.Order})
		}
	})
	assert.Equal(t, []int64{1}, released)
	assert.Equal(t, 1, q.Len())

	front, ok := q.Front()
	assert.True(t, ok)
	assert.Equal(t, int32(15), front.ReleaseAt)
}

func TestDrainDueZeroDelayPushIsReleasedSameDrain(t *testing.T) {
	q := NewQueue()
	q.Push(Event{Kind: KindCheckPrice, ReleaseAt: 5, Price: 100})

	count := 0
	q.DrainDue(5, func(ev Event) {
		count++
		if count == 1 {
			q.Push(Event{Kind: KindCheckPrice, ReleaseAt: 5, Price: 101})
		}
	})
	assert.Equal(t, 2, count)
}
