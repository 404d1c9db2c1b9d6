package indicator

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// SMA returns the simple moving average of the closes of the last period
// bars. The slice must hold at least period bars, oldest first.
func SMA(bars []types.Bar, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be positive, got %d", period)
	}

	if len(bars) < period {
		return 0, errors.NewInsufficientDataErrorf(period, len(bars), "",
			"need %d bars for SMA, have %d", period, len(bars))
	}

	window := bars[len(bars)-period:]

	var sum float64
	for _, bar := range window {
		sum += bar.Close
	}

	return sum / float64(period), nil
}

// EMA returns the exponential moving average of the closes, seeded with the
// SMA of the first period bars and smoothed over the rest of the slice.
func EMA(bars []types.Bar, period int) (float64, error) {
	seed, err := SMA(bars[:min(period, len(bars))], period)
	if err != nil {
		return 0, err
	}

	multiplier := 2.0 / (float64(period) + 1.0)
	ema := seed

	for _, bar := range bars[period:] {
		ema = (bar.Close-ema)*multiplier + ema
	}

	return ema, nil
}

// CrossSignal is the relation of a fast average to a slow one.
type CrossSignal int

const (
	CrossNone CrossSignal = iota
	// CrossAbove means the fast average moved above the slow one this bar.
	CrossAbove
	// CrossBelow means the fast average moved below the slow one this bar.
	CrossBelow
)

// DetectCross compares the fast and slow SMAs on the latest bar against the
// previous bar. It needs slowPeriod+1 bars of history.
func DetectCross(bars []types.Bar, fastPeriod int, slowPeriod int) (CrossSignal, error) {
	if fastPeriod >= slowPeriod {
		return CrossNone, errors.Newf(errors.ErrCodeInvalidPeriod,
			"fast period %d must be shorter than slow period %d", fastPeriod, slowPeriod)
	}

	if len(bars) < slowPeriod+1 {
		return CrossNone, errors.NewInsufficientDataErrorf(slowPeriod+1, len(bars), "",
			"need %d bars to detect a cross, have %d", slowPeriod+1, len(bars))
	}

	previous := bars[:len(bars)-1]

	prevFast, err := SMA(previous, fastPeriod)
	if err != nil {
		return CrossNone, err
	}

	prevSlow, err := SMA(previous, slowPeriod)
	if err != nil {
		return CrossNone, err
	}

	currFast, err := SMA(bars, fastPeriod)
	if err != nil {
		return CrossNone, err
	}

	currSlow, err := SMA(bars, slowPeriod)
	if err != nil {
		return CrossNone, err
	}

	switch {
	case prevFast <= prevSlow && currFast > currSlow:
		return CrossAbove, nil
	case prevFast >= prevSlow && currFast < currSlow:
		return CrossBelow, nil
	default:
		return CrossNone, nil
	}
}
