// Package ledger persists playback results to PostgreSQL. Recording is
// optional: a nil Recorder is valid and drops everything, so playback
// never takes a database dependency unless asked to.
package ledger

import (
	"time"

	"gorm.io/gorm"

	"main/internal/errors"
	"main/pkg/conn"
)

// Fill is one fully executed order.
type Fill struct {
	ID        uint    `gorm:"primaryKey"`
	RunID     string  `gorm:"index;size:64"`
	TapeTime  int32   `gorm:"index"`
	OrderID   int64   `gorm:"column:order_id"`
	Side      string  `gorm:"size:8"`
	Price     float64 `gorm:"column:price"`
	Amount    float64 `gorm:"column:amount"`
	Notional  float64 `gorm:"column:notional"`
	CreatedAt time.Time
}

// Run is the final account summary of one playback.
type Run struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      string `gorm:"uniqueIndex;size:64"`
	Strategy   string `gorm:"size:16"`
	Budget     float64
	Money      float64
	Coin       float64
	TotalValue float64
	Volume     float64
	InitPrice  float64
	LastPrice  float64
	Trades     int
	CreatedAt  time.Time
}

// Recorder writes fills and run summaries through one connection.
type Recorder struct {
	client *conn.Client
	runID  string
}

// Open connects to PostgreSQL and migrates the schema. An empty
// connString returns a nil Recorder, which records nothing.
func Open(connString, runID string) (*Recorder, error) {
	if connString == "" {
		return nil, nil
	}

	client, err := conn.New(conn.Option{ConnString: connString})
	if err != nil {
		return nil, errors.Wrap(err, "connect ledger")
	}

	if err := client.DB().AutoMigrate(&Fill{}, &Run{}); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "migrate ledger")
	}

	return &Recorder{client: client, runID: runID}, nil
}

// RecordFill stores one executed order.
func (r *Recorder) RecordFill(tapeTime int32, orderID int64, side string, price, amount, notional float64) error {
	if r == nil {
		return nil
	}
	fill := Fill{
		RunID:    r.runID,
		TapeTime: tapeTime,
		OrderID:  orderID,
		Side:     side,
		Price:    price,
		Amount:   amount,
		Notional: notional,
	}
	return r.client.DB().Create(&fill).Error
}

// RecordRun stores the final summary of the playback.
func (r *Recorder) RecordRun(run Run) error {
	if r == nil {
		return nil
	}
	run.RunID = r.runID
	return r.client.DB().Create(&run).Error
}

// DB exposes the underlying handle for queries.
func (r *Recorder) DB() *gorm.DB {
	if r == nil {
		return nil
	}
	return r.client.DB()
}

// Close releases the connection.
func (r *Recorder) Close() error {
	if r == nil {
		return nil
	}
	return r.client.Close()
}
