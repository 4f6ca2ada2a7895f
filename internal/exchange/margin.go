package exchange

import (
	"math"

	"github.com/yanun0323/logs"

	"main/internal/book"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/position"
	"main/internal/sched"
)

// Margin simulates a margin account holding a single net position,
// used by the momentum strategy. Both books hold pure market orders;
// matching is unconditional at the print price with the taker fee.
type Margin struct {
	queue   *sched.Queue
	fees    Fees
	delay   int32
	verbose bool

	bids book.Book
	asks book.Book

	money      float64
	volume     float64
	pos        position.Position
	lastClosed position.Position
}

// NewMargin creates a margin engine publishing into the given queue.
func NewMargin(queue *sched.Queue, fees Fees, delay int32, verbose bool) *Margin {
	return &Margin{
		queue:   queue,
		fees:    fees,
		delay:   delay,
		verbose: verbose,
	}
}

// Fund credits settled money. Called once when the simulation starts.
func (m *Margin) Fund(amount float64) {
	m.money += amount
}

// CreateOrder admits a market order onto the books. There is no
// balance check: with a single bounded position the reject would only
// reproduce what the position tracker already enforces.
func (m *Margin) CreateOrder(now int32, o model.Order) {
	logs.Infof("#%d EXG: created %s id:%d %f", now, o.Side, o.ID, o.OrigAmount)
	if o.Side == enum.SideBuy {
		m.bids.Insert(o)
	} else {
		m.asks.Insert(o)
	}
}

// Match fills resting market orders against one tape print. Every
// partial fill updates the position; a side flip from the tracker is a
// fatal invariant violation surfaced to the caller. At most one order
// is fully closed per print per side.
func (m *Margin) Match(trade *model.Trade) error {
	now := trade.Time

	// Sell orders are filled by buy-side prints. Sell amounts are
	// negative, so the fillable amount is -Remaining.
	for trade.Side == enum.SideBuy && trade.Amount > 0 && !m.asks.Empty() {
		o := m.asks.Front()
		amount := math.Min(-o.Remaining, trade.Amount)
		if m.verbose {
			logs.Infof("#%d EXG: id:%d sell @%f (%f->%f)", now, o.ID, trade.Price, o.Remaining, o.Remaining+amount)
		}
		trade.Amount -= amount
		o.Remaining += amount
		tradeValue := trade.Price * amount
		o.ExecutedValue += tradeValue
		m.volume += tradeValue

		if err := m.applyFill(now, trade.Price, -amount, enum.SideSell); err != nil {
			return err
		}

		if o.Done() {
			done := m.asks.PopFront()
			logs.Infof("#%d EXG: id:%d sell done, to notify", now, done.ID)
			m.queue.Push(sched.Event{Kind: sched.KindExecuted, ReleaseAt: now + m.delay, Order: done})
			return nil
		}
	}

	for trade.Side == enum.SideSell && trade.Amount > 0 && !m.bids.Empty() {
		o := m.bids.Back()
		amount := math.Min(o.Remaining, trade.Amount)
		if m.verbose {
			logs.Infof("#%d EXG: id:%d buy @%f (%f->%f)", now, o.ID, trade.Price, o.Remaining, o.Remaining-amount)
		}
		trade.Amount -= amount
		o.Remaining -= amount
		tradeValue := trade.Price * amount
		o.ExecutedValue += tradeValue
		m.volume += tradeValue

		if err := m.applyFill(now, trade.Price, amount, enum.SideBuy); err != nil {
			return err
		}

		if o.Done() {
			done := m.bids.PopBack()
			logs.Infof("#%d EXG: id:%d buy done, to notify", now, done.ID)
			m.queue.Push(sched.Event{Kind: sched.KindExecuted, ReleaseAt: now + m.delay, Order: done})
			return nil
		}
	}

	return nil
}

func (m *Margin) applyFill(now int32, price, amount float64, side enum.Side) error {
	fill := position.Fill{Time: now, Price: price, Amount: amount, Side: side}
	next, outcome, err := position.Apply(m.pos, fill, m.fees.Taker)
	if err != nil {
		return err
	}
	m.pos = next

	switch outcome {
	case position.OutcomeOpened:
		logs.Infof("#%d POS: opened %s at base price %f", now, m.pos.Side, m.pos.BasePrice())
	case position.OutcomeClosed:
		logs.Infof("#%d POS: closed with profit %f", now, m.pos.Gain())
		m.money += m.pos.Gain()
		m.lastClosed = m.pos
		m.pos = position.Position{}
	}
	return nil
}

// Money is the settled money balance.
func (m *Margin) Money() float64 { return m.money }

// Volume is the cumulative traded notional.
func (m *Margin) Volume() float64 { return m.volume }

// Position is the current open position.
func (m *Margin) Position() position.Position { return m.pos }

// LastClosed is the most recently closed position. The strategy reads
// it to decide the next side.
func (m *Margin) LastClosed() position.Position { return m.lastClosed }

// TotalValue is money plus the unrealized position value at the given
// price.
func (m *Margin) TotalValue(price float64) float64 {
	return m.money + m.pos.Value(price)
}

// PendingOrders is the number of orders resting on either book.
func (m *Margin) PendingOrders() int {
	return m.bids.Len() + m.asks.Len()
}
