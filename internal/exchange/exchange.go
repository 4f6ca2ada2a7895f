// Package exchange implements the simulated matching engines. Each
// engine owns two price-sorted books plus the account balances, fills
// resting orders against the tape one trade at a time, and notifies
// the strategy through delayed Executed events.
package exchange

import "errors"

// ErrCancelSellUnsupported is returned for sell-order cancellation on
// the spot engine. The grid strategy never cancels a sell, so the path
// is preserved as an explicit unsupported operation instead of being
// silently accepted.
var ErrCancelSellUnsupported = errors.New("exchange: sell order cancellation unsupported")

// Fees holds the exchange fee rates. Maker applies to resting limit
// orders, taker to market orders.
type Fees struct {
	Maker float64 `json:"maker"`
	Taker float64 `json:"taker"`
}
