package model

import "main/internal/model/enum"

// Trade is one decoded print from the tape.
type Trade struct {
	Time    int32
	TradeID uint32
	Price   float64
	Amount  float64
	Side    enum.Side
}
