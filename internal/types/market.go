package types

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// Bar is one OHLCV summary for one instrument over one time interval.
type Bar struct {
	Time   time.Time `yaml:"time" json:"time" csv:"time"`
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol"`
	Open   float64   `yaml:"open" json:"open" csv:"open"`
	High   float64   `yaml:"high" json:"high" csv:"high"`
	Low    float64   `yaml:"low" json:"low" csv:"low"`
	Close  float64   `yaml:"close" json:"close" csv:"close"`
	Volume float64   `yaml:"volume" json:"volume" csv:"volume"`
}

// Granularity is the bar interval of a simulation run.
type Granularity string

const (
	GranularityDaily Granularity = "daily"
	Granularity1m    Granularity = "1m"
	Granularity5m    Granularity = "5m"
	Granularity15m   Granularity = "15m"
	Granularity30m   Granularity = "30m"
	Granularity1h    Granularity = "1h"
)

var AllGranularities = []any{
	GranularityDaily,
	Granularity1m,
	Granularity5m,
	Granularity15m,
	Granularity30m,
	Granularity1h,
}

// IsIntraday reports whether the granularity subdivides a trading session.
func (g Granularity) IsIntraday() bool {
	return g != GranularityDaily
}

// Duration returns the bar interval for intraday granularities.
// Daily bars have no fixed duration because session lengths vary.
func (g Granularity) Duration() (time.Duration, error) {
	switch g {
	case Granularity1m:
		return time.Minute, nil
	case Granularity5m:
		return 5 * time.Minute, nil
	case Granularity15m:
		return 15 * time.Minute, nil
	case Granularity30m:
		return 30 * time.Minute, nil
	case Granularity1h:
		return time.Hour, nil
	case GranularityDaily:
		return 0, errors.New(errors.ErrCodeInvalidParameter, "daily granularity has no fixed bar duration")
	default:
		return 0, errors.Newf(errors.ErrCodeInvalidParameter, "unknown granularity: %s", g)
	}
}

// GapPolicy controls what happens when an instrument has no bar at the
// current simulation timestamp.
type GapPolicy string

const (
	// GapPolicyForwardFill repeats the last known bar at the new timestamp
	// with zero volume.
	GapPolicyForwardFill GapPolicy = "forward_fill"
	// GapPolicySkip records no bar for the timestamp; consumers see the
	// instrument's history unchanged.
	GapPolicySkip GapPolicy = "skip"
)

var AllGapPolicies = []any{
	GapPolicyForwardFill,
	GapPolicySkip,
}
