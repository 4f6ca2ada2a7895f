package grid_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/bot/grid"
	"main/internal/exchange"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/risk"
	"main/internal/sched"
)

const (
	testUnit  = 200.0
	testStep  = 1.025
	testDelay = int32(10)
)

func newBot(t *testing.T) (*grid.Bot, *exchange.Spot, *sched.Queue) {
	t.Helper()
	q := sched.NewQueue()
	engine := risk.NewEngine(risk.Config{Budget: 10_000, Floor: -1e18})
	ex := exchange.NewSpot(q, engine, exchange.Fees{Maker: 0.001, Taker: 0.002}, testDelay, false)
	ex.Fund(10_000)
	b := grid.New(q, ex, grid.Config{Unit: testUnit, Step: testStep}, testDelay, false)
	return b, ex, q
}

func drainAll(q *sched.Queue) []sched.Event {
	var out []sched.Event
	q.DrainDue(1<<31-1, func(ev sched.Event) {
		out = append(out, ev)
	})
	return out
}

func marketBuys(events []sched.Event) []model.Order {
	var out []model.Order
	for _, ev := range events {
		if ev.Kind == sched.KindCreateOrder && ev.Order.Market() {
			out = append(out, ev.Order)
		}
	}
	return out
}

func TestInitPlacesLadderAndChasesCoin(t *testing.T) {
	b, _, q := newBot(t)
	profit := testStep * testStep

	b.Init(1000, 100)

	bids, asks := b.Bids(), b.Asks()
	require.Len(t, bids, 1)
	require.Len(t, asks, 1)

	buyPrice := 100 / testStep
	assert.InDelta(t, buyPrice, bids[0].Price, 1e-9)
	assert.InDelta(t, testUnit, bids[0].Notional(), 1e-9)

	sellPrice := 100 * profit
	assert.InDelta(t, sellPrice, asks[0].Price, 1e-9)
	assert.InDelta(t, testUnit, asks[0].Notional(), 1e-9)

	events := drainAll(q)
	require.Len(t, events, 3)
	for _, ev := range events {
		assert.Equal(t, sched.KindCreateOrder, ev.Kind)
		assert.Equal(t, int32(1000+testDelay), ev.ReleaseAt)
	}

	// Holding no coin, the bot chases 3-0+2 rungs worth at market.
	chases := marketBuys(events)
	require.Len(t, chases, 1)
	assert.InDelta(t, testUnit/100*5, chases[0].OrigAmount, 1e-9)
}

func TestBuyFillReladdersOneStepDown(t *testing.T) {
	b, _, q := newBot(t)
	profit := testStep * testStep

	b.Init(1000, 100)
	bid := b.Bids()[0]
	drainAll(q)

	require.NoError(t, b.OnExecuted(1030, bid))

	bids, asks := b.Bids(), b.Asks()
	require.Len(t, bids, 1)
	require.Len(t, asks, 2)

	// A fresh buy one step below the fill, same rung notional.
	assert.InDelta(t, bid.Price/testStep, bids[0].Price, 1e-9)
	assert.InDelta(t, testUnit, bids[0].Notional(), 1e-9)

	// A sell of the bought coin one profit interval above. It prices
	// under the opening ask, so it sorts first.
	sell := asks[0]
	assert.InDelta(t, bid.Price*profit, sell.Price, 1e-9)
	assert.InDelta(t, bid.OrigAmount, sell.OrigAmount, 1e-9)
	assert.InDelta(t, testUnit*profit, sell.Notional(), 1e-9)
}

func TestSellFillReladdersOneStepUp(t *testing.T) {
	b, _, q := newBot(t)
	profit := testStep * testStep

	b.Init(1000, 100)
	drainAll(q)

	// A sell rung produced by a buy fill carries Unit*profit notional.
	fillPrice := 105.0
	fill := model.NewOrder(50, enum.SideSell, fillPrice, testUnit*profit/fillPrice)
	require.NoError(t, b.OnExecuted(1100, fill))

	bids, asks := b.Bids(), b.Asks()
	require.Len(t, bids, 2)
	require.Len(t, asks, 2)

	assert.InDelta(t, fillPrice/profit, bids[1].Price, 1e-9)
	assert.InDelta(t, testUnit, bids[1].Notional(), 1e-9)

	next := asks[1]
	assert.InDelta(t, fillPrice*testStep, next.Price, 1e-9)
	assert.InDelta(t, fill.OrigAmount/testStep, next.OrigAmount, 1e-9)
	// Re-laddered sells keep the Unit*profit notional.
	assert.InDelta(t, testUnit*profit, next.Notional(), 1e-9)
}

func TestInitialSellFillDoesNotReladder(t *testing.T) {
	b, _, q := newBot(t)

	b.Init(1000, 100)
	ask := b.Asks()[0]
	drainAll(q)

	// The opening sell rung carries plain Unit notional, below the
	// re-ladder threshold.
	require.NoError(t, b.OnExecuted(1100, ask))

	assert.Len(t, b.Asks(), 0)
	assert.Len(t, b.Bids(), 1)
	assert.Empty(t, drainAll(q))
}

func TestBuyBacklogTrimmedToCap(t *testing.T) {
	b, _, q := newBot(t)

	b.Init(1000, 100)
	drainAll(q)
	require.Len(t, b.Bids(), 1)

	// Whole-rung buy fills at sliding prices grow the backlog.
	for i, price := range []float64{97.5, 95.1, 92.8} {
		fill := model.NewOrder(int64(100+i), enum.SideBuy, price, testUnit/price)
		require.NoError(t, b.OnExecuted(1030, fill))
	}

	bids := b.Bids()
	require.Len(t, bids, 3)

	var cancels []model.Order
	for _, ev := range drainAll(q) {
		if ev.Kind == sched.KindCancelOrder {
			cancels = append(cancels, ev.Order)
		}
	}
	require.Len(t, cancels, 1)
	// The lowest rung is the one let go.
	for _, o := range bids {
		assert.Greater(t, o.Price, cancels[0].Price)
	}
}

func TestCoinChaseThrottled(t *testing.T) {
	b, _, q := newBot(t)

	b.Init(1000, 100)
	require.Len(t, marketBuys(drainAll(q)), 1)

	// Inside the chase interval no market order is placed.
	fill := model.NewOrder(60, enum.SideBuy, 97.5, testUnit/97.5)
	require.NoError(t, b.OnExecuted(1030, fill))
	assert.Empty(t, marketBuys(drainAll(q)))

	// Past the interval the chase fires again.
	fill2 := model.NewOrder(61, enum.SideBuy, 95.1, testUnit/95.1)
	require.NoError(t, b.OnExecuted(1061, fill2))
	assert.Len(t, marketBuys(drainAll(q)), 1)
}

func TestDuplicateRungSuppressed(t *testing.T) {
	b, _, q := newBot(t)

	b.Init(1000, 100)
	drainAll(q)

	// Replaying the same buy fill must not double the rung.
	fill := model.NewOrder(70, enum.SideBuy, 97.5, testUnit/97.5)
	require.NoError(t, b.OnExecuted(1030, fill))
	require.NoError(t, b.OnExecuted(1030, fill))

	assert.Len(t, b.Bids(), 2)
	assert.Len(t, b.Asks(), 2)
}
