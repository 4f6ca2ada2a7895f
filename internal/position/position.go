// Package position tracks a single net margin position through
// fee-adjusted fills.
package position

import (
	"errors"

	"main/internal/model"
	"main/internal/model/enum"
)

// ErrSideFlip reports a fill that would move the position through zero
// into the opposite direction in one step. The direction of a position
// may never flip without closing first; seeing it means the matching
// engine and strategy have desynchronized.
var ErrSideFlip = errors.New("position: side flipped through zero")

// Side is the direction of the open position.
type Side uint8

const (
	SideNone Side = iota
	SideLong
	SideShort
)

func (s Side) String() string {
	switch s {
	case SideLong:
		return "LONG"
	case SideShort:
		return "SHORT"
	default:
		return "NONE"
	}
}

// Outcome describes the effect of applying a fill.
type Outcome uint8

const (
	// OutcomeContinue means the position stays open.
	OutcomeContinue Outcome = iota
	// OutcomeOpened means the fill opened a flat position.
	OutcomeOpened
	// OutcomeClosed means the amount returned to zero; the caller
	// should take Gain and reset the position.
	OutcomeClosed
)

// Fill is one executed slice of an order, seen from the account's point
// of view: positive amount for buy exposure, negative for sell.
type Fill struct {
	Time   int32
	Price  float64
	Amount float64
	Side   enum.Side
}

// Position is a single net margin position. Cost accumulates the
// fee-adjusted signed notional of every entry and exit, so -Cost is the
// realized gain once Amount returns to zero.
type Position struct {
	Side   Side
	Cost   float64
	Amount float64
}

// Apply folds a fill into the position.
//
// The fee widens the cost of a buy and narrows the proceeds of a sell:
// feeMultiplier = 1+fee for buys, 1-fee for sells. Because the amounts
// are signed, one formula covers long and short exposure.
func Apply(p Position, f Fill, feeRate float64) (Position, Outcome, error) {
	newAmount := p.Amount + f.Amount

	if !model.IsZero(newAmount) && !model.IsZero(p.Amount) && newAmount*p.Amount < 0 {
		return p, OutcomeContinue, ErrSideFlip
	}

	feeMultiplier := 1 - feeRate
	if f.Side == enum.SideBuy {
		feeMultiplier = 1 + feeRate
	}
	newCost := p.Cost + f.Amount*f.Price*feeMultiplier

	if !model.IsZero(p.Amount) && model.IsZero(newAmount) {
		return Position{Side: p.Side, Cost: newCost, Amount: 0}, OutcomeClosed, nil
	}

	if model.IsZero(p.Amount) && !model.IsZero(newAmount) {
		side := SideShort
		if newAmount > 0 {
			side = SideLong
		}
		return Position{Side: side, Cost: newCost, Amount: newAmount}, OutcomeOpened, nil
	}

	return Position{Side: p.Side, Cost: newCost, Amount: newAmount}, OutcomeContinue, nil
}

// Gain is the realized profit of a closed position.
func (p Position) Gain() float64 {
	return -p.Cost
}

// BasePrice is the fee-adjusted average entry price.
func (p Position) BasePrice() float64 {
	return p.Cost / p.Amount
}

// ValueRatio is the unrealized return of the position at the given
// price, positive when the position is winning.
func (p Position) ValueRatio(price float64) float64 {
	base := p.BasePrice()
	ratio := (price - base) / base
	switch p.Side {
	case SideLong:
		return ratio
	case SideShort:
		return -ratio
	default:
		return 0
	}
}

// Value is the unrealized profit of the position at the given price.
func (p Position) Value(price float64) float64 {
	if p.Side == SideNone {
		return 0
	}
	return (price - p.BasePrice()) * p.Amount
}
