package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// BarLoader fetches an instrument's complete bar history. All loading
// happens before the simulation loop starts; nothing inside the loop
// touches storage.
type BarLoader interface {
	// Load returns the instrument's bars in [start, end], ordered by time
	// ascending.
	Load(symbol string, start time.Time, end time.Time, granularity types.Granularity, extendedHours bool) ([]types.Bar, error)
	// Close releases any resources held by the loader.
	Close() error
}

// MarketDataSource is the simulation-facing market data view. It drip-feeds
// preloaded history: bars become visible only as AdvanceTo reaches their
// timestamp, so consumers can never observe the future.
type MarketDataSource interface {
	// LoadInstrument preloads the symbol's bars for the run range.
	// Loading an already-loaded symbol replaces its data.
	LoadInstrument(symbol string, start time.Time, end time.Time, granularity types.Granularity, extendedHours bool) error
	// Unload removes the symbol and its history.
	Unload(symbol string)
	// LoadedSymbols returns the loaded symbols in load order.
	LoadedSymbols() []string
	// AdvanceTo reveals at most one new bar per instrument for ts. A
	// missing bar is handled per the configured gap policy and is never
	// fatal.
	AdvanceTo(ts time.Time)
	// LatestBars returns up to n most recent revealed bars for the symbol,
	// oldest first. Returns fewer when less history is available and nil
	// for unknown symbols.
	LatestBars(symbol string, n int) []types.Bar
	// LatestBar returns the most recent revealed bar, if any.
	LatestBar(symbol string) optional.Option[types.Bar]
	// CurrentTime returns the advancement point.
	CurrentTime() time.Time
}
