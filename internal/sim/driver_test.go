package sim_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/position"
	"main/internal/sched"
	"main/internal/sim"
	"main/internal/tape"
)

func writeTape(t *testing.T, trades []model.Trade) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	w := tape.NewWriter(&buf)
	for _, tr := range trades {
		require.NoError(t, w.AppendTrade(tr))
	}
	require.NoError(t, w.Flush())
	return &buf
}

func TestMomentumPlaybackOpensLong(t *testing.T) {
	cfg := sim.DefaultMomentumConfig()
	cfg.Delay = 1

	q := sched.NewQueue()
	sess := sim.NewMarginSession(q, cfg, nil)
	d := sim.NewDriver(cfg, q, sess)

	buf := writeTape(t, []model.Trade{
		{Time: 1000, TradeID: 1, Price: 100, Amount: 1, Side: enum.SideBuy},
		{Time: 1001, TradeID: 2, Price: 100, Amount: 5, Side: enum.SideSell},
		{Time: 1002, TradeID: 3, Price: 101, Amount: 1, Side: enum.SideBuy},
	})
	require.NoError(t, d.Run(tape.NewReader(buf)))

	assert.Equal(t, 3, d.Trades())
	require.Equal(t, position.SideLong, sess.Exchange().Position().Side)
	assert.InDelta(t, 100*(1+cfg.TakerFee), sess.Exchange().Position().BasePrice(), 1e-9)
	assert.Equal(t, 0, sess.Bot().PendingOrders())

	sum := d.Summary()
	assert.Equal(t, "momentum", sum.Strategy)
	assert.InDelta(t, cfg.Budget, sum.Money, 1e-9)
	// The position is marked at the last print.
	assert.InDelta(t, 101-100*(1+cfg.TakerFee), sum.PositionValue, 1e-9)
	assert.InDelta(t, 101, sum.LastPrice, 1e-9)
}

func TestGridPlaybackLaddersAndChases(t *testing.T) {
	cfg := sim.DefaultGridConfig()
	cfg.Delay = 1

	q := sched.NewQueue()
	sess := sim.NewSpotSession(q, cfg, nil)
	d := sim.NewDriver(cfg, q, sess)

	buf := writeTape(t, []model.Trade{
		{Time: 1000, TradeID: 1, Price: 100, Amount: 1, Side: enum.SideBuy},
		{Time: 1001, TradeID: 2, Price: 100, Amount: 20, Side: enum.SideSell},
		{Time: 1002, TradeID: 3, Price: 100, Amount: 0.1, Side: enum.SideBuy},
	})
	require.NoError(t, d.Run(tape.NewReader(buf)))

	ex := sess.Exchange()
	// The opening coin chase bought five rungs worth at market; the
	// taker fee comes out of the received coin.
	assert.InDelta(t, 10*(1-cfg.TakerFee), ex.CoinTotal(), 1e-9)
	assert.InDelta(t, cfg.Budget-10*100, ex.Money(), 1e-9)
	// One buy rung resting, and the sell rung admitted once coin
	// arrived.
	assert.Len(t, ex.Bids(), 1)
	assert.Len(t, ex.Asks(), 1)

	sum := d.Summary()
	assert.Equal(t, "grid", sum.Strategy)
	assert.InDelta(t, ex.Money()+10*(1-cfg.TakerFee)*100, sum.TotalValue, 1e-9)
}

func TestExcludedTradeSkipped(t *testing.T) {
	cfg := sim.DefaultMomentumConfig()
	cfg.Delay = 1

	q := sched.NewQueue()
	sess := sim.NewMarginSession(q, cfg, nil)
	d := sim.NewDriver(cfg, q, sess)

	// The excluded print carries an impossible timestamp; skipping
	// must happen before the monotonic check.
	buf := writeTape(t, []model.Trade{
		{Time: 1000, TradeID: 1, Price: 100, Amount: 1, Side: enum.SideBuy},
		{Time: 500, TradeID: sim.DefaultExcludedTradeID, Price: 1, Amount: 1, Side: enum.SideSell},
		{Time: 1001, TradeID: 2, Price: 100, Amount: 1, Side: enum.SideSell},
	})
	require.NoError(t, d.Run(tape.NewReader(buf)))
	assert.Equal(t, 2, d.Trades())
}

func TestTimeReversalFatal(t *testing.T) {
	cfg := sim.DefaultMomentumConfig()
	q := sched.NewQueue()
	d := sim.NewDriver(cfg, q, sim.NewMarginSession(q, cfg, nil))

	buf := writeTape(t, []model.Trade{
		{Time: 1000, TradeID: 1, Price: 100, Amount: 1, Side: enum.SideBuy},
		{Time: 999, TradeID: 2, Price: 100, Amount: 1, Side: enum.SideSell},
	})
	err := d.Run(tape.NewReader(buf))
	require.ErrorIs(t, err, sim.ErrTimeReversal)
}

func TestMaxTradesStopsEarly(t *testing.T) {
	cfg := sim.DefaultMomentumConfig()
	cfg.Delay = 1
	cfg.MaxTrades = 2

	q := sched.NewQueue()
	d := sim.NewDriver(cfg, q, sim.NewMarginSession(q, cfg, nil))

	buf := writeTape(t, []model.Trade{
		{Time: 1000, TradeID: 1, Price: 100, Amount: 1, Side: enum.SideBuy},
		{Time: 1001, TradeID: 2, Price: 100, Amount: 1, Side: enum.SideSell},
		{Time: 1002, TradeID: 3, Price: 100, Amount: 1, Side: enum.SideBuy},
	})
	require.NoError(t, d.Run(tape.NewReader(buf)))
	assert.Equal(t, 2, d.Trades())
}

func TestPlaybackIsDeterministic(t *testing.T) {
	trades := make([]model.Trade, 0, 400)
	price := 100.0
	for i := 0; i < 400; i++ {
		// A deterministic zig-zag with enough swing to trip both the
		// stop loss and the trailing stop.
		if i%40 < 20 {
			price *= 1.004
		} else {
			price *= 0.996
		}
		side := enum.SideBuy
		if i%3 == 0 {
			side = enum.SideSell
		}
		trades = append(trades, model.Trade{
			Time:    int32(1000 + i*20),
			TradeID: uint32(i + 1),
			Price:   price,
			Amount:  2,
			Side:    side,
		})
	}

	run := func() sim.Summary {
		cfg := sim.DefaultMomentumConfig()
		cfg.Delay = 1
		cfg.Momentum.UseRatioFlow = true
		cfg.Momentum.InitBackoff = 10
		cfg.Momentum.MaxBackoff = 100

		q := sched.NewQueue()
		d := sim.NewDriver(cfg, q, sim.NewMarginSession(q, cfg, nil))
		require.NoError(t, d.Run(tape.NewReader(writeTape(t, trades))))
		return d.Summary()
	}

	first := run()
	second := run()
	assert.Equal(t, first, second)
	assert.Positive(t, first.Volume)
}
