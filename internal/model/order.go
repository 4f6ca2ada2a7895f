package model

import "main/internal/model/enum"

// Order is a resting or in-flight order. Every order carries an ID
// assigned by the strategy that created it; identity is always by ID,
// never by amount equality.
//
// A zero Price means market. For margin orders the amounts are signed:
// positive for buy exposure, negative for sell.
type Order struct {
	ID   int64
	Side enum.Side

	Price float64
	// Remaining is the amount still to be filled. It moves monotonically
	// toward zero as fills apply.
	Remaining  float64
	OrigAmount float64
	// ExecutedValue accumulates the notional filled so far. Only
	// maintained for market orders, where the fill price varies.
	ExecutedValue float64
}

// NewOrder builds an open order with nothing filled yet.
func NewOrder(id int64, side enum.Side, price, amount float64) Order {
	return Order{
		ID:         id,
		Side:       side,
		Price:      price,
		Remaining:  amount,
		OrigAmount: amount,
	}
}

// Done reports whether the order is completely filled.
func (o Order) Done() bool {
	if IsZero(o.OrigAmount) {
		return IsZero(o.Remaining)
	}
	return IsZero(o.Remaining / o.OrigAmount)
}

// Notional is the committed value of the order at its limit price.
func (o Order) Notional() float64 {
	return o.Price * o.OrigAmount
}

// Market reports whether the order executes at the print price.
func (o Order) Market() bool {
	return o.Price == 0
}
