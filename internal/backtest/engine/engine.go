package engine

import (
	"context"

	"github.com/rxtech-lab/argo-backtest/internal/strategy"
)

// Lifecycle callback types for backtest phases.
// Callbacks that return an error abort the run.

// OnRunStartCallback is called once before the simulation loop begins.
// runID is a unique identifier for the run; totalTicks is the clock length.
type OnRunStartCallback func(runID string, totalTicks int) error

// OnTickCallback is called after each fully drained tick.
type OnTickCallback func(current int, total int) error

// OnRunEndCallback is called after the run completes (always called via defer).
type OnRunEndCallback func(err error)

// LifecycleCallbacks holds all lifecycle callback functions for the backtest
// engine. All fields are pointers - nil means no callback will be invoked.
type LifecycleCallbacks struct {
	OnRunStart *OnRunStartCallback
	OnTick     *OnTickCallback
	OnRunEnd   *OnRunEndCallback
}

// Engine drives a deterministic, single-threaded backtest: it advances the
// simulation clock bar by bar and fully drains the event queue before each
// advance.
type Engine interface {
	// Initialize the engine with the given YAML configuration content.
	Initialize(config string) error
	// LoadStrategy sets the strategy under test. Exactly one strategy runs
	// per engine instance.
	LoadStrategy(s strategy.Strategy, strategyConfig string) error
	// SetDataPath points the engine at the market data file (parquet or CSV).
	SetDataPath(path string) error
	// SetResultsFolder sets the output directory for run artifacts
	// (portfolio log, fill log, trade log, performance summary).
	SetResultsFolder(folder string) error
	// Run executes the simulation. The context cancels cooperatively
	// between ticks; a drained tick is never interrupted halfway.
	Run(ctx context.Context, callbacks LifecycleCallbacks) error
	// GetConfigSchema returns the JSON schema of the engine configuration.
	GetConfigSchema() (string, error)
}
