// Command simulate replays a trade tape against the grid strategy and
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
		configPath  = flag.String("config", "", "path to JSON config")
		budget      = flag.Float64("b", 0, "starting budget in USD")
		step        = flag.Float64("s", 0, "grid step")
		profit      = flag.Float64("p", 0, "sell rung multiplier (default step squared)")
		unit        = flag.Float64("a", 0, "rung notional in USD")
		makerFee    = flag.Float64("m", 0, "maker fee rate")
		takerFee    = flag.Float64("t", 0, "taker fee rate")
		delay       = flag.Int("d", 0, "exchange latency in tape seconds")
		maxTrades   = flag.Int("n", 0, "stop after N trades (0=all)")
		verbose     = flag.Bool("v", false, "verbose output")
		ledgerDSN   = flag.String("ledger-dsn", "", "PostgreSQL DSN for result recording")
		profileAddr = flag.String("pyroscope", "", "pyroscope server address")
	)
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: simulate [flags] tape.bin [tape.bin ...]")
		os.Exit(2)
	}

	cfg := sim.DefaultGridConfig()
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
		case "s":
			cfg.Grid.Step = *step
		case "p":
			cfg.Grid.Profit = *profit
		case "a":
			cfg.Grid.Unit = *unit
		case "m":
			cfg.MakerFee = *makerFee
		case "t":
			cfg.TakerFee = *takerFee
		case "d":
			cfg.Delay = int32(*delay)
		case "n":
			cfg.MaxTrades = *maxTrades
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
			ApplicationName: "bot-simulator/simulate",
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

	rec, err := ledger.Open(cfg.LedgerDSN, fmt.Sprintf("grid-%d", time.Now().Unix()))
	if err != nil {
		logs.Errorf("open ledger: %v", err)
		os.Exit(1)
	}
	defer func() {
		_ = rec.Close()
	}()

	queue := sched.NewQueue()
	sess := sim.NewSpotSession(queue, cfg, rec)
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
