// Package sched implements the delayed-effect queue of the simulation.
//
// Every externally visible effect (an order reaching the exchange, a
// fill reaching the bot, a cancel taking hold, a price check) is
// released a fixed delay after the moment it was decided. The queue is
// strictly FIFO: events are never reordered, so among events that are
// due at the same tick the release order equals creation order.
package sched

import "main/internal/model"

// Kind enumerates deferred effects.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindExecuted
	KindCreateOrder
	KindCancelOrder
	KindCheckPrice
)

func (k Kind) String() string {
	switch k {
	case KindExecuted:
		return "EXECUTED"
	case KindCreateOrder:
		return "CREATE_ORDER"
	case KindCancelOrder:
		return "CANCEL_ORDER"
	case KindCheckPrice:
		return "CHECK_PRICE"
	default:
		return "UNKNOWN"
	}
}

// Event is one deferred effect.
type Event struct {
	Kind      Kind
	ReleaseAt int32
	Order     model.Order
	// Price carries the reference price for KindCheckPrice events.
	Price float64
}

// Queue is an unbounded FIFO of delayed events.
type Queue struct {
	events []Event
	head   int
}

// NewQueue allocates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Push appends an event.
func (q *Queue) Push(ev Event) {
	q.events = append(q.events, ev)
}

// Len returns the number of pending events.
func (q *Queue) Len() int {
	return len(q.events) - q.head
}

// Front returns the oldest pending event without removing it.
func (q *Queue) Front() (Event, bool) {
	if q.head >= len(q.events) {
		return Event{}, false
	}
	return q.events[q.head], true
}

// DrainDue pops events whose release time has been reached, in FIFO
// order, and hands each to fn. The handler may push new events; they
// are examined in the same drain only if their release time is also
// due, matching a zero-delay configuration.
func (q *Queue) DrainDue(now int32, fn func(Event)) {
	for q.head < len(q.events) && q.events[q.head].ReleaseAt <= now {
		ev := q.events[q.head]
		q.head++
		fn(ev)
	}
	if q.head == len(q.events) {
		q.events = q.events[:0]
		q.head = 0
	}
}
