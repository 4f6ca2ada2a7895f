package sim

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/errors"
	"main/internal/model"
	"main/internal/obs"
	"main/internal/sched"
	"main/internal/tape"
)

// ErrTimeReversal reports a print older than one already replayed. The
// tape is expected to be sorted; replaying out of order would change
// every downstream decision silently.
var ErrTimeReversal = errors.New("sim: tape time moved backwards")

// Driver replays a tape through a session, releasing delayed effects
// between prints. Everything is single threaded; determinism comes
// from the strict print-then-events-then-match ordering.
type Driver struct {
	cfg     Config
	queue   *sched.Queue
	sess    Session
	metrics *obs.Metrics

	now       int32
	begin     int32
	lastDay   int
	lastCheck int32
	initPrice float64
	lastPrice float64
	started   bool
	trades    int
}

// NewDriver creates a driver over the given session and its queue.
func NewDriver(cfg Config, queue *sched.Queue, sess Session) *Driver {
	d := &Driver{
		cfg:     cfg,
		queue:   queue,
		sess:    sess,
		metrics: obs.NewMetrics(),
		lastDay: -1,
	}
	sess.Attach(d.metrics)
	return d
}

// Step replays one print. It returns done=true when the configured
// trade cap is reached.
func (d *Driver) Step(trade model.Trade) (bool, error) {
	if d.cfg.ExcludedTradeID != 0 && trade.TradeID == d.cfg.ExcludedTradeID {
		d.metrics.IncSkipped()
		return false, nil
	}
	if trade.Time < d.now {
		return false, errors.Wrap(ErrTimeReversal,
			fmt.Sprintf("trade %d at #%d after #%d", trade.TradeID, trade.Time, d.now))
	}
	d.now = trade.Time
	if d.begin == 0 {
		d.begin = d.now
	}
	d.lastPrice = trade.Price

	if !d.started {
		d.started = true
		d.initPrice = trade.Price
		d.sess.Begin(d.now, trade.Price)
	}

	if day := int(float64(trade.Time-d.begin) / 86400); day != d.lastDay {
		if d.cfg.Verbose {
			logs.Infof("day=%d ------------------- last_price=%f", day, d.lastPrice)
		}
		d.lastDay = day
	}

	var evErr error
	d.queue.DrainDue(d.now, func(ev sched.Event) {
		if evErr != nil {
			return
		}
		d.metrics.IncEvent(ev.Kind)
		evErr = d.sess.HandleEvent(d.now, ev)
	})
	if evErr != nil {
		return false, evErr
	}

	if interval := d.sess.CheckInterval(); interval > 0 && trade.Time-d.lastCheck > interval {
		d.queue.Push(sched.Event{
			Kind:      sched.KindCheckPrice,
			ReleaseAt: d.now + d.cfg.Delay,
			Price:     trade.Price,
		})
		d.lastCheck = trade.Time
	}

	matchStart := time.Now()
	if err := d.sess.Match(&trade); err != nil {
		return false, err
	}
	d.metrics.ObserveMatch(time.Since(matchStart))

	if err := d.sess.CheckSolvency(trade.Price); err != nil {
		return false, err
	}

	d.sess.LogState(d.now, trade.Price)

	d.metrics.IncPrint()
	d.trades++
	if d.cfg.MaxTrades > 0 && d.trades == d.cfg.MaxTrades {
		return true, nil
	}
	return false, nil
}

// Run replays a whole tape. A clean EOF or the trade cap ends the run
// without error.
func (d *Driver) Run(r *tape.Reader) error {
	for {
		select {
		case <-sys.Shutdown():
			logs.Info("shutdown requested, stopping playback")
			return nil
		default:
		}

		trade, err := r.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errors.Wrap(err, "read tape")
		}

		done, err := d.Step(trade)
		if err != nil {
			return err
		}
		if done {
			return nil
		}
	}
}

// RunFiles replays tape files in order, carrying all state across the
// file boundaries.
func (d *Driver) RunFiles(paths []string) error {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrap(err, "open tape")
		}

		logs.Infof("replaying %s", path)
		err = d.Run(tape.NewReader(f))
		_ = f.Close()
		if err != nil {
			return err
		}

		if d.cfg.MaxTrades > 0 && d.trades >= d.cfg.MaxTrades {
			return nil
		}
	}
	return nil
}

// Trades is the number of prints replayed so far.
func (d *Driver) Trades() int { return d.trades }

// Metrics exposes the playback counters.
func (d *Driver) Metrics() *obs.Metrics { return d.metrics }

// LogMetrics prints the playback counters.
func (d *Driver) LogMetrics() {
	snap := d.metrics.Snapshot()
	logs.Infof("prints=%d skipped=%d events=%v denies=%v",
		snap.Prints, snap.Skipped, snap.EventCounts, snap.DenyCounts)
	if snap.MatchLatency.Count > 0 {
		logs.Infof("match latency: avg=%s min=%s max=%s",
			snap.MatchLatency.Avg, snap.MatchLatency.Min, snap.MatchLatency.Max)
	}
}

// Summary builds the final report of the run.
func (d *Driver) Summary() Summary {
	return d.sess.Summarize(d.initPrice, d.lastPrice, d.trades)
}
