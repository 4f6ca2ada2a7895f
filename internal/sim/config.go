package sim

import (
	"encoding/json"
	"fmt"
	"os"

	"main/internal/bot/grid"
	"main/internal/bot/momentum"
)

// DefaultExcludedTradeID is a corrupt print known to exist in the
// QSHUSD tape. It is skipped during playback.
const DefaultExcludedTradeID uint32 = 105316808

// Config drives one playback run.
type Config struct {
	// Budget is the money the account starts with.
	Budget float64 `json:"budget"`
	// Floor is the settled-money floor for buy admission. Only the
	// spot engine enforces it.
	Floor    float64 `json:"floor"`
	MakerFee float64 `json:"makerFee"`
	TakerFee float64 `json:"takerFee"`
	// Delay is the latency, in tape seconds, between deciding an
	// effect and it taking hold.
	Delay   int32 `json:"delay"`
	Verbose bool  `json:"verbose"`
	// MaxTrades stops playback early when positive.
	MaxTrades int `json:"maxTrades"`
	// ExcludedTradeID is skipped on the tape. Zero excludes nothing.
	ExcludedTradeID uint32 `json:"excludedTradeId"`
	// LedgerDSN enables PostgreSQL recording when set.
	LedgerDSN string `json:"ledgerDsn"`

	Grid     grid.Config     `json:"grid"`
	Momentum momentum.Config `json:"momentum"`
}

// DefaultGridConfig is the baseline configuration of the grid playback:
// a 200 USD rung, thirty rungs of budget, and a floor fifty rungs
// below it.
func DefaultGridConfig() Config {
	const unit = 200
	return Config{
		Budget:          unit * 30,
		Floor:           unit*30 - unit*50,
		MakerFee:        0.001,
		TakerFee:        0.002,
		Delay:           10,
		ExcludedTradeID: DefaultExcludedTradeID,
		Grid: grid.Config{
			Unit: unit,
			Step: 1.025,
		},
	}
}

// DefaultMomentumConfig is the baseline configuration of the momentum
// playback.
func DefaultMomentumConfig() Config {
	return Config{
		Budget:          10000,
		Floor:           -1e18,
		MakerFee:        0.001,
		TakerFee:        0.002,
		Delay:           10,
		ExcludedTradeID: DefaultExcludedTradeID,
		Momentum: momentum.Config{
			Amount:           1,
			TakeProfitRatio:  0.02,
			TrailingStopDiff: 0.01,
			StopLossRatio:    -0.01,
			InitBackoff:      600,
			MaxBackoff:       86400,
			CheckInterval:    30,
		},
	}
}

// Load reads a JSON config file over the given baseline, so the file
// only needs the fields it wants to change.
func Load(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	cfg := base
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks if the configuration is usable.
func (c Config) Validate() error {
	if c.Budget <= 0 {
		return fmt.Errorf("invalid sim config: Budget must be > 0")
	}
	if c.MakerFee < 0 || c.TakerFee < 0 {
		return fmt.Errorf("invalid sim config: fees must be >= 0")
	}
	if c.Delay < 0 {
		return fmt.Errorf("invalid sim config: Delay must be >= 0")
	}
	if c.MaxTrades < 0 {
		return fmt.Errorf("invalid sim config: MaxTrades must be >= 0")
	}
	return nil
}
