package types

import (
	"maps"
	"time"
)

// PortfolioSnapshot is one immutable row of the portfolio log, appended at
// each session close. It is the canonical input for post-run statistics.
type PortfolioSnapshot struct {
	Timestamp      time.Time          `yaml:"timestamp" json:"timestamp" csv:"timestamp"`
	Equity         float64            `yaml:"equity" json:"equity" csv:"equity"`
	Cash           float64            `yaml:"cash" json:"cash" csv:"cash"`
	PositionsValue float64            `yaml:"positions_value" json:"positions_value" csv:"positions_value"`
	Positions      map[string]float64 `yaml:"positions" json:"positions" csv:"-"`
}

// NewPortfolioSnapshot copies positions so later ledger mutations cannot
// reach into an already-appended row.
func NewPortfolioSnapshot(ts time.Time, equity, cash, positionsValue float64, positions map[string]float64) PortfolioSnapshot {
	copied := make(map[string]float64, len(positions))
	maps.Copy(copied, positions)

	return PortfolioSnapshot{
		Timestamp:      ts,
		Equity:         equity,
		Cash:           cash,
		PositionsValue: positionsValue,
		Positions:      copied,
	}
}
