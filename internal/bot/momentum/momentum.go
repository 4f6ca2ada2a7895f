// Package momentum implements the momentum/backoff strategy: a single
// market-order position at a time, long after wins, flipped after
// losses with exponential backoff, closed by a trailing-stop ratio
// flow and/or a position-lifetime flow.
package momentum

import (
	"fmt"

	"github.com/yanun0323/logs"

	"main/internal/errors"
	"main/internal/exchange"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/position"
	"main/internal/sched"
)

// ErrOrderDesync reports an executed-order notification that does not
// match the front of the bot's pending queue. It means the matching
// engine and the strategy disagree about what is outstanding, which is
// fatal for the run.
var ErrOrderDesync = errors.New("momentum: executed order does not match pending front")

// Config holds the strategy parameters.
type Config struct {
	// Amount is the position size of every market order.
	Amount float64 `json:"amount"`
	// TakeProfitRatio arms the trailing stop once the unrealized
	// ratio exceeds it.
	TakeProfitRatio float64 `json:"takeProfitRatio"`
	// TrailingStopDiff is the distance the armed stop trails below
	// the best observed ratio.
	TrailingStopDiff float64 `json:"trailingStopDiff"`
	// StopLossRatio closes the position when the unrealized ratio
	// falls below it. Negative.
	StopLossRatio float64 `json:"stopLossRatio"`
	// InitBackoff is the wait before reopening after a close, in tape
	// seconds. Doubled after every loss, reset after every win.
	InitBackoff int32 `json:"initBackoff"`
	// MaxBackoff caps the doubling.
	MaxBackoff int32 `json:"maxBackoff"`
	// UseRatioFlow enables the stop-loss/trailing-stop flow.
	UseRatioFlow bool `json:"useRatioFlow"`
	// PositionLifetime force-closes a position that makes no new high
	// for this long. Zero disables the flow.
	PositionLifetime int32 `json:"positionLifetime"`
	// CheckInterval is the periodic price-check cadence the driver
	// schedules for this strategy.
	CheckInterval int32 `json:"checkInterval"`
}

// Bot is the momentum strategy state machine.
type Bot struct {
	cfg     Config
	ex      *exchange.Margin
	queue   *sched.Queue
	delay   int32
	verbose bool

	// pending holds the orders believed in flight, oldest first. The
	// strategy enforces a single outstanding order at a time.
	pending []model.Order
	nextID  int64
	backoff int32

	// takeProfitRatio is the armed trailing stop; zero means unarmed.
	takeProfitRatio float64
	highestRatio    float64
	lastHighTime    int32
}

// New creates a momentum bot trading through the given margin engine.
func New(queue *sched.Queue, ex *exchange.Margin, cfg Config, delay int32, verbose bool) *Bot {
	return &Bot{
		cfg:          cfg,
		ex:           ex,
		queue:        queue,
		delay:        delay,
		verbose:      verbose,
		nextID:       1,
		backoff:      cfg.InitBackoff,
		highestRatio: -1,
	}
}

// Init opens the first position. The first move is always long.
func (b *Bot) Init(now int32, _ float64) {
	b.openPosition(now, position.SideLong)
}

// Backoff returns the current wait before reopening after a close.
func (b *Bot) Backoff() int32 { return b.backoff }

// PendingOrders returns the number of orders believed in flight.
func (b *Bot) PendingOrders() int { return len(b.pending) }

// TrailingStop returns the armed trailing-stop ratio, zero if unarmed.
func (b *Bot) TrailingStop() float64 { return b.takeProfitRatio }

func (b *Bot) openPosition(now int32, side position.Side) {
	b.takeProfitRatio = 0
	b.highestRatio = -1
	b.lastHighTime = now

	if len(b.pending) > 0 {
		logs.Infof("#%d BOT: not opening, order id:%d still in flight", now, b.pending[0].ID)
		return
	}
	if side == position.SideLong {
		b.createMarketOrder(now, enum.SideBuy, b.cfg.Amount)
	} else {
		b.createMarketOrder(now, enum.SideSell, -b.cfg.Amount)
	}
}

func (b *Bot) closePosition(now int32) {
	b.takeProfitRatio = 0

	if len(b.pending) > 0 {
		logs.Infof("#%d BOT: not closing, order id:%d still in flight", now, b.pending[0].ID)
		return
	}
	if b.ex.Position().Side == position.SideLong {
		b.createMarketOrder(now, enum.SideSell, -b.cfg.Amount)
	} else {
		b.createMarketOrder(now, enum.SideBuy, b.cfg.Amount)
	}
}

func (b *Bot) createMarketOrder(now int32, side enum.Side, amount float64) {
	o := model.NewOrder(b.nextID, side, 0, amount)
	b.nextID++
	logs.Infof("#%d BOT: id:%d create %s %f", now, o.ID, o.Side, o.OrigAmount)
	b.pending = append(b.pending, o)
	b.queue.Push(sched.Event{Kind: sched.KindCreateOrder, ReleaseAt: now + b.delay, Order: o})
}

// OnExecuted confirms the front of the pending queue and, when the
// fill closed the position, decides the next move from the win/loss
// table: stay on the winning side and reset backoff, flip after a loss
// and double the backoff up to the cap.
func (b *Bot) OnExecuted(now int32, o model.Order) error {
	logs.Infof("#%d BOT: got executed id:%d %s %f @ %f (%f USD)",
		now, o.ID, o.Side, o.OrigAmount, o.ExecutedValue/abs(o.OrigAmount), o.ExecutedValue)

	if len(b.pending) == 0 || b.pending[0].ID != o.ID {
		expect := int64(-1)
		if len(b.pending) > 0 {
			expect = b.pending[0].ID
		}
		return errors.Wrap(ErrOrderDesync, fmt.Sprintf("got id:%d, expect id:%d", o.ID, expect))
	}
	b.pending = b.pending[1:]

	if b.ex.Position().Side != position.SideNone {
		// Opening fill; nothing to decide until the close.
		return nil
	}

	last := b.ex.LastClosed()
	win := last.Gain() > 0
	if win {
		logs.Infof("#%d BOT: closed a WIN position", now)
		b.backoff = b.cfg.InitBackoff
	} else {
		logs.Infof("#%d BOT: closed a LOSS position", now)
		b.backoff <<= 1
		if b.backoff > b.cfg.MaxBackoff {
			b.backoff = b.cfg.MaxBackoff
		}
	}

	next := last.Side
	if !win {
		if last.Side == position.SideLong {
			next = position.SideShort
		} else {
			next = position.SideLong
		}
	}

	logs.Infof("#%d BOT: next %s position after backoff %d", now, next, b.backoff)
	b.openPosition(now+b.backoff, next)
	return nil
}

// OnCheckPrice runs the enabled monitoring flows against the periodic
// price observation.
func (b *Bot) OnCheckPrice(now int32, price float64) {
	pos := b.ex.Position()
	if pos.Side == position.SideNone {
		return
	}

	ratio := pos.ValueRatio(price)
	if b.verbose {
		logs.Infof("#%d BOT: price %f ratio %f", now, price, ratio)
	}

	if b.cfg.UseRatioFlow {
		b.checkRatioFlow(now, ratio, price)
	}
	if b.cfg.PositionLifetime > 0 {
		b.checkLifetimeFlow(now, ratio, price)
	}
}

func (b *Bot) checkRatioFlow(now int32, ratio, price float64) {
	side := b.ex.Position().Side

	if ratio < b.cfg.StopLossRatio {
		logs.Infof("#%d BOT: price %f ratio %f, close %s position to stop loss", now, price, ratio, side)
		b.closePosition(now)
		return
	}

	if !model.IsZero(b.takeProfitRatio) && ratio < b.takeProfitRatio {
		logs.Infof("#%d BOT: price %f ratio %f, close %s position to take profit", now, price, ratio, side)
		b.closePosition(now)
		return
	}

	if model.IsZero(b.takeProfitRatio) && ratio > b.cfg.TakeProfitRatio {
		b.takeProfitRatio = ratio - b.cfg.TrailingStopDiff
		logs.Infof("#%d BOT: price %f ratio %f, arm trailing stop at %f", now, price, ratio, b.takeProfitRatio)
		return
	}

	// The armed stop only ever ratchets upward.
	if !model.IsZero(b.takeProfitRatio) {
		if next := ratio - b.cfg.TrailingStopDiff; next > b.takeProfitRatio {
			b.takeProfitRatio = next
			logs.Infof("#%d BOT: price %f ratio %f, raise trailing stop to %f", now, price, ratio, b.takeProfitRatio)
		}
	}
}

func (b *Bot) checkLifetimeFlow(now int32, ratio, price float64) {
	if ratio > b.highestRatio {
		b.highestRatio = ratio
		b.lastHighTime = now
		if b.verbose {
			logs.Infof("#%d BOT: price %f ratio %f, new high", now, price, ratio)
		}
		return
	}

	if now-b.lastHighTime >= b.cfg.PositionLifetime {
		result := "LOSS"
		if ratio > 0 {
			result = "WIN"
		}
		logs.Infof("#%d BOT: price %f ratio %f, close %s position past lifetime, a %s",
			now, price, ratio, b.ex.Position().Side, result)
		b.closePosition(now)
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
