package enum

// Side is the direction of a trade print or an order.
// The values match the byte codes stored in tape records.
type Side uint8

const (
	SideUnknown Side = ' '
	SideBuy     Side = 'b'
	SideSell    Side = 's'
)

func (s Side) IsAvailable() bool {
	switch s {
	case SideBuy, SideSell, SideUnknown:
		return true
	default:
		return false
	}
}

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}
