package datasource

import (
	"sort"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// MemoryLoader serves bars from an in-memory map. Used in tests and for
// programmatically generated data.
type MemoryLoader struct {
	bars map[string][]types.Bar
}

// NewMemoryLoader creates a loader over the given bars. Bars are sorted by
// time per symbol so callers can pass them in any order.
func NewMemoryLoader(bars map[string][]types.Bar) *MemoryLoader {
	sorted := make(map[string][]types.Bar, len(bars))

	for symbol, symbolBars := range bars {
		copied := make([]types.Bar, len(symbolBars))
		copy(copied, symbolBars)
		sort.Slice(copied, func(i, j int) bool {
			return copied[i].Time.Before(copied[j].Time)
		})
		sorted[symbol] = copied
	}

	return &MemoryLoader{bars: sorted}
}

// Load implements BarLoader.
func (l *MemoryLoader) Load(symbol string, start time.Time, end time.Time, _ types.Granularity, _ bool) ([]types.Bar, error) {
	symbolBars, ok := l.bars[symbol]
	if !ok {
		return nil, errors.Newf(errors.ErrCodeDataNotFound, "no data for symbol %s", symbol)
	}

	var result []types.Bar

	for _, bar := range symbolBars {
		if bar.Time.Before(start) || bar.Time.After(end) {
			continue
		}

		result = append(result, bar)
	}

	return result, nil
}

// Close implements BarLoader.
func (l *MemoryLoader) Close() error {
	return nil
}
