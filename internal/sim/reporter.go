package sim

import (
	"github.com/yanun0323/logs"

	"main/internal/ledger"
)

// Summary is the final account report of one playback.
type Summary struct {
	Strategy      string
	Budget        float64
	Money         float64
	Coin          float64
	CoinFree      float64
	PositionValue float64
	TotalValue    float64
	Volume        float64
	InitPrice     float64
	LastPrice     float64
	Trades        int
}

// Ratio is the final account value relative to the starting budget.
func (s Summary) Ratio() float64 {
	return s.TotalValue / s.Budget
}

// PriceRatio is the market move over the replayed period.
func (s Summary) PriceRatio() float64 {
	if s.InitPrice == 0 {
		return 0
	}
	return s.LastPrice / s.InitPrice
}

// Log prints the report.
func (s Summary) Log() {
	logs.Infof("simulation done, %d trades", s.Trades)
	switch s.Strategy {
	case "grid":
		logs.Infof("price=%f: money=%f, coin=%f (%f free), total value=%f; ratio=%f",
			s.LastPrice, s.Money, s.Coin, s.CoinFree, s.TotalValue, s.Ratio())
	default:
		logs.Infof("price=%f: money=%f, position value=%f, total value=%f; ratio=%f",
			s.LastPrice, s.Money, s.PositionValue, s.TotalValue, s.Ratio())
	}
	logs.Infof("volume=%f", s.Volume)
	logs.Infof("init_price=%f, last_price=%f, ratio=%f", s.InitPrice, s.LastPrice, s.PriceRatio())
}

// Run converts the summary into its ledger row.
func (s Summary) Run() ledger.Run {
	return ledger.Run{
		Strategy:   s.Strategy,
		Budget:     s.Budget,
		Money:      s.Money,
		Coin:       s.Coin,
		TotalValue: s.TotalValue,
		Volume:     s.Volume,
		InitPrice:  s.InitPrice,
		LastPrice:  s.LastPrice,
		Trades:     s.Trades,
	}
}
