// Package risk gates order admission against the simulated account.
package risk

import "main/internal/model"

// Config defines the account limits.
type Config struct {
	// Budget is the money the account starts with.
	Budget float64 `json:"budget"`
	// Floor is the settled money that must remain after reserving a
	// buy. A buy that would push money below the floor is rejected.
	Floor float64 `json:"floor"`
}

// Action is the outcome of an admission decision.
type Action uint8

const (
	ActionAllow Action = iota
	ActionDeny
)

// Reason explains a deny.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonBudgetFloor
	ReasonInsolvent
)

func (r Reason) String() string {
	switch r {
	case ReasonBudgetFloor:
		return "budget floor"
	case ReasonInsolvent:
		return "insolvent"
	default:
		return "none"
	}
}

// Decision is the result of evaluating an order or account state.
type Decision struct {
	Action Action
	Reason Reason
}

// Allowed reports whether the decision admits the action.
func (d Decision) Allowed() bool {
	return d.Action == ActionAllow
}

// StateView is the account snapshot an evaluation runs against.
type StateView struct {
	Money float64
}

// Engine evaluates admission decisions against static limits.
type Engine struct {
	cfg Config
}

// NewEngine creates an engine with static limits.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// EvaluateBuy checks that reserving the order's notional keeps settled
// money above the configured floor.
func (e *Engine) EvaluateBuy(order model.Order, state StateView) Decision {
	if state.Money-order.Price*order.Remaining < e.cfg.Floor {
		return Decision{Action: ActionDeny, Reason: ReasonBudgetFloor}
	}
	return Decision{Action: ActionAllow}
}

// EvaluateSolvency checks whether the account still holds positive
// total value. A deny here is the terminal insolvency condition.
func (e *Engine) EvaluateSolvency(totalValue float64) Decision {
	if totalValue < 0 {
		return Decision{Action: ActionDeny, Reason: ReasonInsolvent}
	}
	return Decision{Action: ActionAllow}
}
