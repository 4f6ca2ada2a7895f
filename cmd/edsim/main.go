// Command edsim replays a trade tape against the momentum strategy and
// reports the final account value.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"

	"main/internal/errors"
	"main/internal/ledger"
	"main/internal/sched"
	"main/internal/sim"
)

func main() {
	var (
		configPath   = flag.String("config", "", "path to JSON config")
		budget       = flag.Float64("b", 0, "starting budget in USD")
		amount       = flag.Float64("a", 0, "position size in coin")
		takerFee     = flag.Float64("t", 0, "taker fee rate")
		delay        = flag.Int("d", 0, "exchange latency in tape seconds")
		takeProfit   = flag.Float64("p", 0, "ratio that arms the trailing stop")
		trailingDiff = flag.Float64("s", 0, "trailing stop distance")
		stopLoss     = flag.Float64("l", 0, "stop loss ratio (negative)")
		initBackoff  = flag.Int("w", 0, "initial reopen backoff in tape seconds")
		maxBackoff   = flag.Int("m", 0, "backoff cap in tape seconds")
		maxTrades    = flag.Int("n", 0, "stop after N trades (0=all)")
		useRatio     = flag.Bool("r", false, "enable the stop-loss/trailing-stop flow")
		lifetime     = flag.Int("o", 0, "close positions making no new high for this long (0=off)")
		verbose      = flag.Bool("v", false, "verbose output")
		ledgerDSN    = flag.String("ledger-dsn", "", "PostgreSQL DSN for result recording")
		profileAddr  = flag.String("pyroscope", "", "pyroscope server address")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: edsim [flags] tape.bin [tape.bin ...]")
		os.Exit(2)
	}

	cfg := sim.DefaultMomentumConfig()
	if *configPath != "" {
		loaded, err := sim.Load(*configPath, cfg)
		if err != nil {
			logs.Errorf("load config: %v", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "b":
			cfg.Budget = *budget
		case "a":
			cfg.Momentum.Amount = *amount
		case "t":
			cfg.TakerFee = *takerFee
		case "d":
			cfg.Delay = int32(*delay)
		case "p":
			cfg.Momentum.TakeProfitRatio = *takeProfit
		case "s":
			cfg.Momentum.TrailingStopDiff = *trailingDiff
		case "l":
			cfg.Momentum.StopLossRatio = *stopLoss
		case "w":
			cfg.Momentum.InitBackoff = int32(*initBackoff)
		case "m":
			cfg.Momentum.MaxBackoff = int32(*maxBackoff)
		case "n":
			cfg.MaxTrades = *maxTrades
		case "r":
			cfg.Momentum.UseRatioFlow = *useRatio
		case "o":
			cfg.Momentum.PositionLifetime = int32(*lifetime)
		case "v":
			cfg.Verbose = *verbose
		case "ledger-dsn":
			cfg.LedgerDSN = *ledgerDSN
		}
	})
	if err := cfg.Validate(); err != nil {
		logs.Errorf("%v", err)
		os.Exit(1)
	}

	if *profileAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "bot-simulator/edsim",
			ServerAddress:   *profileAddr,
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			logs.Errorf("pyroscope start failed: %v", err)
			os.Exit(1)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	rec, err := ledger.Open(cfg.LedgerDSN, fmt.Sprintf("momentum-%d", time.Now().Unix()))
	if err != nil {
		logs.Errorf("open ledger: %v", err)
		os.Exit(1)
	}
	defer func() {
		_ = rec.Close()
	}()

	queue := sched.NewQueue()
	sess := sim.NewMarginSession(queue, cfg, rec)
	driver := sim.NewDriver(cfg, queue, sess)

	runErr := driver.RunFiles(flag.Args())
	if runErr != nil && !errors.Is(runErr, sim.ErrInsolvent) {
		logs.Errorf("playback failed: %v", runErr)
		os.Exit(1)
	}

	summary := driver.Summary()
	summary.Log()
	if cfg.Verbose {
		driver.LogMetrics()
	}
	if err := rec.RecordRun(summary.Run()); err != nil {
		logs.Errorf("record run: %v", err)
	}

	if runErr != nil {
		logs.Errorf("%v", runErr)
		os.Exit(1)
	}
}
