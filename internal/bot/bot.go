// Package bot defines the strategy surface driven by the simulation.
package bot

import "main/internal/model"

// Strategy is a trading policy. The driver calls Init on the first
// tape trade, OnExecuted when a delayed fill notification is released,
// and OnCheckPrice on periodic price observations.
type Strategy interface {
	Init(now int32, price float64)
	OnExecuted(now int32, order model.Order) error
	OnCheckPrice(now int32, price float64)
}
