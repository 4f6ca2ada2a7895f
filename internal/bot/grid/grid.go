// Package grid implements the grid/ladder market-making strategy. It
// keeps one buy rung below and one sell rung above the prevailing
// price; each fill re-opens the ladder one step further, producing an
// unbounded geometric grid with a bounded working-buy backlog and
// periodic coin replenishment.
package grid

import (
	"github.com/yanun0323/logs"

	"main/internal/book"
	"main/internal/exchange"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/sched"
)

const (
	defaultChaseInterval = 60
	defaultMaxResting    = 3
)

// Config holds the strategy parameters.
type Config struct {
	// Unit is the USD notional of one ladder rung.
	Unit float64 `json:"unit"`
	// Step is the geometric distance between rungs.
	Step float64 `json:"step"`
	// Profit is the sell-rung multiplier. Zero defaults to Step².
	Profit float64 `json:"profit"`
	// ChaseInterval throttles market coin-chase buys, in tape seconds.
	ChaseInterval int32 `json:"chaseInterval"`
	// MaxResting caps the working buy-order backlog.
	MaxResting int `json:"maxResting"`
}

func (c Config) withDefaults() Config {
	if c.Profit == 0 {
		c.Profit = c.Step * c.Step
	}
	if c.ChaseInterval == 0 {
		c.ChaseInterval = defaultChaseInterval
	}
	if c.MaxResting == 0 {
		c.MaxResting = defaultMaxResting
	}
	return c
}

// Bot is the grid strategy state: shadow books of the orders it
// believes are outstanding, plus the coin-chase throttle.
type Bot struct {
	cfg     Config
	ex      *exchange.Spot
	queue   *sched.Queue
	delay   int32
	verbose bool

	bids      book.Book
	asks      book.Book
	lastChase int32
	nextID    int64
}

// New creates a grid bot trading through the given spot engine.
func New(queue *sched.Queue, ex *exchange.Spot, cfg Config, delay int32, verbose bool) *Bot {
	return &Bot{
		cfg:     cfg.withDefaults(),
		ex:      ex,
		queue:   queue,
		delay:   delay,
		verbose: verbose,
		nextID:  1,
	}
}

// Init opens the first ladder around the reference price: a buy rung
// one step below, a sell rung one profit interval above, plus a coin
// chase if holdings are short.
func (b *Bot) Init(now int32, price float64) {
	buyPrice := price / b.cfg.Step
	b.createOrder(now, model.NewOrder(b.nextOrderID(), enum.SideBuy, buyPrice, b.cfg.Unit/buyPrice))

	b.mayChaseCoin(now, price)

	sellPrice := price * b.cfg.Profit
	b.createOrder(now, model.NewOrder(b.nextOrderID(), enum.SideSell, sellPrice, b.cfg.Unit/sellPrice))
}

// OnExecuted removes the filled order from the shadow book and, when
// the fill is a whole rung, re-ladders one step around the fill price.
// Afterwards the buy backlog is trimmed back to the configured cap.
func (b *Bot) OnExecuted(now int32, o model.Order) error {
	if b.verbose {
		logs.Infof("#%d BOT: got executed %s %f@%f (%f USD)",
			now, o.Side, o.OrigAmount, o.Price, o.OrigAmount*o.Price)
	}

	switch o.Side {
	case enum.SideSell:
		b.asks.RemoveID(o.ID)
		if model.Near(b.cfg.Unit*b.cfg.Profit, o.Notional()) {
			buyPrice := o.Price / b.cfg.Profit
			b.createOrder(now, model.NewOrder(b.nextOrderID(), enum.SideBuy, buyPrice, b.cfg.Unit/buyPrice))

			b.mayChaseCoin(now, o.Price)

			sellPrice := o.Price * b.cfg.Step
			b.createOrder(now, model.NewOrder(b.nextOrderID(), enum.SideSell, sellPrice, o.OrigAmount/b.cfg.Step))
		}

	case enum.SideBuy:
		b.bids.RemoveID(o.ID)
		if model.Near(b.cfg.Unit, o.Notional()) {
			buyPrice := o.Price / b.cfg.Step
			b.createOrder(now, model.NewOrder(b.nextOrderID(), enum.SideBuy, buyPrice, b.cfg.Unit/buyPrice))

			b.mayChaseCoin(now, o.Price)

			sellPrice := o.Price * b.cfg.Profit
			b.createOrder(now, model.NewOrder(b.nextOrderID(), enum.SideSell, sellPrice, o.OrigAmount))
		}
	}

	for b.bids.Len() > b.cfg.MaxResting {
		stale := b.bids.PopFront()
		b.cancelOrder(now, stale)
	}
	return nil
}

// OnCheckPrice is a no-op: the grid reacts to fills only.
func (b *Bot) OnCheckPrice(int32, float64) {}

// Bids returns a copy of the shadow buy book.
func (b *Bot) Bids() []model.Order { return b.bids.Orders() }

// Asks returns a copy of the shadow sell book.
func (b *Bot) Asks() []model.Order { return b.asks.Orders() }

func (b *Bot) nextOrderID() int64 {
	id := b.nextID
	b.nextID++
	return id
}

func (b *Bot) createOrder(now int32, o model.Order) {
	// Never double a rung the bot already believes is outstanding.
	shadow := &b.bids
	if o.Side == enum.SideSell {
		shadow = &b.asks
	}
	if shadow.ContainsAmount(o.OrigAmount) {
		return
	}
	if !o.Market() {
		shadow.Insert(o)
	}
	if b.verbose {
		logs.Infof("#%d BOT: create %s %f@%f", now, o.Side, o.OrigAmount, o.Price)
	}
	b.queue.Push(sched.Event{Kind: sched.KindCreateOrder, ReleaseAt: now + b.delay, Order: o})
}

func (b *Bot) cancelOrder(now int32, o model.Order) {
	if b.verbose {
		logs.Infof("#%d BOT: cancel %s %f@%f", now, o.Side, o.OrigAmount, o.Price)
	}
	b.queue.Push(sched.Event{Kind: sched.KindCancelOrder, ReleaseAt: now + b.delay, Order: o})
}

// mayChaseCoin places a throttled market buy when held coin drops
// below three rungs worth. The multiplier grows the further below the
// threshold the holdings are.
func (b *Bot) mayChaseCoin(now int32, price float64) {
	if b.lastChase+b.cfg.ChaseInterval > now {
		return
	}
	if b.ex.Coin() > b.cfg.Unit/price*3 {
		return
	}
	b.lastChase = now
	units := 3 - int(b.ex.Coin()*price/b.cfg.Unit) + 2
	if b.verbose {
		logs.Infof("#%d BOT: chase %d units of coin", now, units)
	}
	amount := b.cfg.Unit / price * float64(units)
	b.createOrder(now, model.NewOrder(b.nextOrderID(), enum.SideBuy, 0, amount))
}
