package sim

import (
	"github.com/yanun0323/logs"

	"main/internal/bot"
	"main/internal/bot/grid"
	"main/internal/bot/momentum"
	"main/internal/errors"
	"main/internal/exchange"
	"main/internal/ledger"
	"main/internal/model"
	"main/internal/obs"
	"main/internal/risk"
	"main/internal/sched"
)

// ErrInsolvent terminates a playback whose account value went negative.
var ErrInsolvent = errors.New("sim: lost all the money")

// Session couples a matching engine with its strategy for one playback.
type Session interface {
	// Begin funds the account and opens the strategy on the first
	// print.
	Begin(now int32, price float64)
	// HandleEvent applies one released queue event.
	HandleEvent(now int32, ev sched.Event) error
	// Match replays one print through the matching engine.
	Match(trade *model.Trade) error
	// CheckSolvency returns ErrInsolvent when the marked account
	// value is negative.
	CheckSolvency(price float64) error
	// CheckInterval is the periodic price-check cadence in tape
	// seconds. Zero disables the checks.
	CheckInterval() int32
	// Attach hooks playback counters into the engine.
	Attach(m *obs.Metrics)
	// LogState emits the per-print account snapshot.
	LogState(now int32, price float64)
	// Summarize builds the final report.
	Summarize(initPrice, lastPrice float64, trades int) Summary
}

// SpotSession runs the grid strategy against the spot engine.
type SpotSession struct {
	cfg  Config
	ex   *exchange.Spot
	bot  *grid.Bot
	risk *risk.Engine
	rec  *ledger.Recorder

	lastCoin  float64
	lastMoney float64
}

// NewSpotSession wires the spot engine, the risk gate, and the grid
// bot onto one queue. rec may be nil.
func NewSpotSession(queue *sched.Queue, cfg Config, rec *ledger.Recorder) *SpotSession {
	engine := risk.NewEngine(risk.Config{Budget: cfg.Budget, Floor: cfg.Floor})
	ex := exchange.NewSpot(queue, engine, exchange.Fees{Maker: cfg.MakerFee, Taker: cfg.TakerFee}, cfg.Delay, cfg.Verbose)
	return &SpotSession{
		cfg:  cfg,
		ex:   ex,
		bot:  grid.New(queue, ex, cfg.Grid, cfg.Delay, cfg.Verbose),
		risk: engine,
		rec:  rec,
	}
}

// Exchange exposes the engine for inspection.
func (s *SpotSession) Exchange() *exchange.Spot { return s.ex }

// Bot exposes the strategy for inspection.
func (s *SpotSession) Bot() bot.Strategy { return s.bot }

func (s *SpotSession) Begin(now int32, price float64) {
	s.ex.Fund(s.cfg.Budget)
	s.lastMoney = s.ex.Money()
	s.bot.Init(now, price)
}

func (s *SpotSession) HandleEvent(now int32, ev sched.Event) error {
	switch ev.Kind {
	case sched.KindExecuted:
		if err := recordFill(s.rec, now, ev.Order); err != nil {
			return err
		}
		return s.bot.OnExecuted(now, ev.Order)
	case sched.KindCreateOrder:
		s.ex.CreateOrder(now, ev.Order)
	case sched.KindCancelOrder:
		return s.ex.CancelOrder(now, ev.Order)
	case sched.KindCheckPrice:
		s.bot.OnCheckPrice(now, ev.Price)
	}
	return nil
}

func (s *SpotSession) Match(trade *model.Trade) error {
	s.ex.Match(trade)
	return nil
}

func (s *SpotSession) CheckSolvency(price float64) error {
	if d := s.risk.EvaluateSolvency(s.ex.TotalValue(price)); !d.Allowed() {
		return ErrInsolvent
	}
	return nil
}

func (s *SpotSession) CheckInterval() int32 { return 0 }

func (s *SpotSession) Attach(m *obs.Metrics) { s.ex.SetMetrics(m) }

// LogState prints the account whenever settled coin or money moved,
// which marks a fill or an admitted order.
func (s *SpotSession) LogState(now int32, price float64) {
	if s.ex.Coin() == s.lastCoin && s.ex.Money() == s.lastMoney {
		return
	}
	s.lastCoin = s.ex.Coin()
	s.lastMoney = s.ex.Money()
	if !s.cfg.Verbose {
		return
	}
	total := s.ex.TotalValue(price)
	logs.Infof("#%d ACC: price=%f money=%f coin=%f (%f free) total=%f ratio=%f",
		now, price, s.ex.Money(), s.ex.CoinTotal(), s.ex.Coin(), total, total/s.cfg.Budget)
}

func (s *SpotSession) Summarize(initPrice, lastPrice float64, trades int) Summary {
	return Summary{
		Strategy:   "grid",
		Budget:     s.cfg.Budget,
		Money:      s.ex.Money(),
		Coin:       s.ex.CoinTotal(),
		CoinFree:   s.ex.Coin(),
		TotalValue: s.ex.TotalValue(lastPrice),
		Volume:     s.ex.Volume(),
		InitPrice:  initPrice,
		LastPrice:  lastPrice,
		Trades:     trades,
	}
}

// MarginSession runs the momentum strategy against the margin engine.
type MarginSession struct {
	cfg  Config
	ex   *exchange.Margin
	bot  *momentum.Bot
	risk *risk.Engine
	rec  *ledger.Recorder
}

// NewMarginSession wires the margin engine and the momentum bot onto
// one queue. rec may be nil.
func NewMarginSession(queue *sched.Queue, cfg Config, rec *ledger.Recorder) *MarginSession {
	ex := exchange.NewMargin(queue, exchange.Fees{Maker: cfg.MakerFee, Taker: cfg.TakerFee}, cfg.Delay, cfg.Verbose)
	return &MarginSession{
		cfg:  cfg,
		ex:   ex,
		bot:  momentum.New(queue, ex, cfg.Momentum, cfg.Delay, cfg.Verbose),
		risk: risk.NewEngine(risk.Config{Budget: cfg.Budget, Floor: cfg.Floor}),
		rec:  rec,
	}
}

// Exchange exposes the engine for inspection.
func (s *MarginSession) Exchange() *exchange.Margin { return s.ex }

// Bot exposes the strategy for inspection.
func (s *MarginSession) Bot() *momentum.Bot { return s.bot }

func (s *MarginSession) Begin(now int32, price float64) {
	s.ex.Fund(s.cfg.Budget)
	s.bot.Init(now, price)
}

func (s *MarginSession) HandleEvent(now int32, ev sched.Event) error {
	switch ev.Kind {
	case sched.KindExecuted:
		if err := recordFill(s.rec, now, ev.Order); err != nil {
			return err
		}
		return s.bot.OnExecuted(now, ev.Order)
	case sched.KindCreateOrder:
		s.ex.CreateOrder(now, ev.Order)
	case sched.KindCheckPrice:
		s.bot.OnCheckPrice(now, ev.Price)
	}
	return nil
}

func (s *MarginSession) Match(trade *model.Trade) error {
	return s.ex.Match(trade)
}

func (s *MarginSession) CheckSolvency(price float64) error {
	if d := s.risk.EvaluateSolvency(s.ex.TotalValue(price)); !d.Allowed() {
		return ErrInsolvent
	}
	return nil
}

func (s *MarginSession) CheckInterval() int32 { return s.cfg.Momentum.CheckInterval }

// Attach is a no-op: the margin engine admits every market order.
func (s *MarginSession) Attach(*obs.Metrics) {}

func (s *MarginSession) LogState(now int32, price float64) {
	if !s.cfg.Verbose {
		return
	}
	total := s.ex.TotalValue(price)
	logs.Infof("#%d ACC: price=%f money=%f pos=%s total=%f ratio=%f",
		now, price, s.ex.Money(), s.ex.Position().Side, total, total/s.cfg.Budget)
}

func (s *MarginSession) Summarize(initPrice, lastPrice float64, trades int) Summary {
	return Summary{
		Strategy:      "momentum",
		Budget:        s.cfg.Budget,
		Money:         s.ex.Money(),
		PositionValue: s.ex.Position().Value(lastPrice),
		TotalValue:    s.ex.TotalValue(lastPrice),
		Volume:        s.ex.Volume(),
		InitPrice:     initPrice,
		LastPrice:     lastPrice,
		Trades:        trades,
	}
}

func recordFill(rec *ledger.Recorder, now int32, o model.Order) error {
	return rec.RecordFill(now, o.ID, o.Side.String(), o.Price, o.OrigAmount, o.ExecutedValue)
}
