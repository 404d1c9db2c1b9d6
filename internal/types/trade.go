package types

import (
	"time"

	"github.com/shopspring/decimal"
)

type PositionSide string

const (
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
)

// RoundTrip is a completed trade reconstructed from the fill log by FIFO
// lot matching: a closing fill matched against the oldest opening fill.
type RoundTrip struct {
	Symbol     string       `yaml:"symbol" json:"symbol" csv:"symbol"`
	Side       PositionSide `yaml:"side" json:"side" csv:"side"`
	Quantity   float64      `yaml:"quantity" json:"quantity" csv:"quantity"`
	EntryTime  time.Time    `yaml:"entry_time" json:"entry_time" csv:"entry_time"`
	ExitTime   time.Time    `yaml:"exit_time" json:"exit_time" csv:"exit_time"`
	EntryPrice float64      `yaml:"entry_price" json:"entry_price" csv:"entry_price"`
	ExitPrice  float64      `yaml:"exit_price" json:"exit_price" csv:"exit_price"`
	// Fees is the portion of entry and exit fees attributed to this round
	// trip, pro-rated by quantity when a fill is split across lots.
	Fees float64 `yaml:"fees" json:"fees" csv:"fees"`
	// PnL is net of fees.
	PnL float64 `yaml:"pnl" json:"pnl" csv:"pnl"`
}

// Duration returns the holding time of the round trip.
func (r *RoundTrip) Duration() time.Duration {
	return r.ExitTime.Sub(r.EntryTime)
}

// GrossPnL recomputes the price move PnL before fees using decimal arithmetic.
func (r *RoundTrip) GrossPnL() float64 {
	entry := decimal.NewFromFloat(r.EntryPrice).Mul(decimal.NewFromFloat(r.Quantity))
	exit := decimal.NewFromFloat(r.ExitPrice).Mul(decimal.NewFromFloat(r.Quantity))

	result := exit.Sub(entry)
	if r.Side == PositionSideShort {
		result = result.Neg()
	}

	gross, _ := result.Float64()

	return gross
}
