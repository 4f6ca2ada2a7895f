package exchange

import (
	"math"

	"github.com/yanun0323/logs"

	"main/internal/book"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/risk"
	"main/internal/sched"
)

// Spot simulates a spot account with resting limit orders, used by the
// grid strategy. Settled money includes the locked portion; the locked
// counters only track outstanding commitments.
type Spot struct {
	queue   *sched.Queue
	risk    *risk.Engine
	fees    Fees
	delay   int32
	verbose bool
	metrics *obs.Metrics

	bids book.Book
	asks book.Book

	coin        float64
	coinLocked  float64
	money       float64
	moneyLocked float64
	volume      float64
}

// NewSpot creates a spot engine publishing into the given event queue.
func NewSpot(queue *sched.Queue, riskEngine *risk.Engine, fees Fees, delay int32, verbose bool) *Spot {
	return &Spot{
		queue:   queue,
		risk:    riskEngine,
		fees:    fees,
		delay:   delay,
		verbose: verbose,
	}
}

// Fund credits settled money. Called once when the simulation starts.
func (s *Spot) Fund(amount float64) {
	s.money += amount
}

// SetMetrics attaches playback counters. A nil metrics is fine.
func (s *Spot) SetMetrics(m *obs.Metrics) {
	s.metrics = m
}

// CreateOrder admits an order onto the books.
//
// A buy that would push settled money below the configured floor is
// rejected and dropped. A sell without enough unlocked coin is not
// dropped: it is re-scheduled for retry after one delay interval,
// since the coin may be released by an in-flight buy.
func (s *Spot) CreateOrder(now int32, o model.Order) {
	if o.Side == enum.SideBuy {
		if d := s.risk.EvaluateBuy(o, risk.StateView{Money: s.money}); !d.Allowed() {
			s.metrics.IncDeny(d.Reason)
			if s.verbose {
				logs.Infof("#%d EXG: money not enough to buy %f@%f", now, o.Remaining, o.Price)
			}
			return
		}
		if s.verbose {
			logs.Infof("#%d EXG: created BUY %f@%f", now, o.Remaining, o.Price)
		}
		s.moneyLocked += o.Price * o.Remaining
		s.bids.Insert(o)
		return
	}

	if o.Remaining > s.coin {
		if s.verbose {
			logs.Infof("#%d EXG: coin not enough to sell %f@%f, will retry", now, o.Remaining, o.Price)
		}
		s.queue.Push(sched.Event{Kind: sched.KindCreateOrder, ReleaseAt: now + s.delay, Order: o})
		return
	}
	if s.verbose {
		logs.Infof("#%d EXG: created SELL %f@%f", now, o.Remaining, o.Price)
	}
	s.coinLocked += o.Remaining
	s.coin -= o.Remaining
	s.asks.Insert(o)
}

// CancelOrder removes a resting buy and releases its locked money.
// Cancelling an order that is no longer resting is a no-op. Cancelling
// a sell is unsupported in this model.
func (s *Spot) CancelOrder(now int32, o model.Order) error {
	if o.Side != enum.SideBuy {
		return ErrCancelSellUnsupported
	}
	removed, ok := s.bids.RemoveID(o.ID)
	if !ok {
		return nil
	}
	s.moneyLocked -= removed.Remaining * removed.Price
	if s.verbose {
		logs.Infof("#%d EXG: canceled BUY %f@%f", now, removed.Remaining, removed.Price)
	}
	return nil
}

// Match fills resting orders against one tape print. A buy print lifts
// asks priced strictly below it at the ask's own price with the maker
// fee; a sell print hits bids priced above it (or market bids) at the
// bid's price, or at the print price with the taker fee for market
// bids. At most one order is fully closed per print; a closure emits a
// delayed Executed event and stops matching.
func (s *Spot) Match(trade *model.Trade) {
	now := trade.Time

	for trade.Side == enum.SideBuy && trade.Amount > 0 &&
		!s.asks.Empty() && s.asks.Front().Price < trade.Price {
		o := s.asks.Front()
		amount := math.Min(o.Remaining, trade.Amount)
		if s.verbose {
			logs.Infof("#%d EXG: sell @%f (%f->%f)", now, o.Price, o.Remaining, o.Remaining-amount)
		}
		o.Remaining -= amount
		trade.Amount -= amount
		s.coinLocked -= amount
		s.money += o.Price * amount * (1 - s.fees.Maker)
		s.volume += o.Price * amount

		if o.Done() {
			done := s.asks.PopFront()
			if s.verbose {
				logs.Infof("#%d EXG: sell done, to notify", now)
			}
			s.queue.Push(sched.Event{Kind: sched.KindExecuted, ReleaseAt: now + s.delay, Order: done})
			return
		}
	}

	for trade.Side == enum.SideSell && trade.Amount > 0 && !s.bids.Empty() &&
		(s.bids.Back().Market() || s.bids.Back().Price > trade.Price) {
		o := s.bids.Back()
		price, fee := o.Price, s.fees.Maker
		if o.Market() {
			price, fee = trade.Price, s.fees.Taker
		}
		amount := math.Min(o.Remaining, trade.Amount)
		if s.verbose {
			logs.Infof("#%d EXG: buy @%f (%f->%f)", now, price, o.Remaining, o.Remaining-amount)
		}
		o.Remaining -= amount
		trade.Amount -= amount
		s.coin += amount * (1 - fee)
		s.money -= amount * price
		s.moneyLocked -= o.Price * amount
		s.volume += price * amount

		if o.Done() {
			done := s.bids.PopBack()
			if s.verbose {
				logs.Infof("#%d EXG: buy done, to notify", now)
			}
			s.queue.Push(sched.Event{Kind: sched.KindExecuted, ReleaseAt: now + s.delay, Order: done})
			return
		}
	}
}

// Coin is the unlocked coin balance.
func (s *Spot) Coin() float64 { return s.coin }

// CoinTotal is the held coin including resting sell commitments.
func (s *Spot) CoinTotal() float64 { return s.coin + s.coinLocked }

// Money is the settled money balance.
func (s *Spot) Money() float64 { return s.money }

// MoneyLocked is the sum of resting buy commitments.
func (s *Spot) MoneyLocked() float64 { return s.moneyLocked }

// Volume is the cumulative traded notional.
func (s *Spot) Volume() float64 { return s.volume }

// TotalValue is money plus all held coin marked at the given price.
func (s *Spot) TotalValue(price float64) float64 {
	return s.money + s.CoinTotal()*price
}

// Bids returns a copy of the resting buy orders.
func (s *Spot) Bids() []model.Order { return s.bids.Orders() }

// Asks returns a copy of the resting sell orders.
func (s *Spot) Asks() []model.Order { return s.asks.Orders() }
