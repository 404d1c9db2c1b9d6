package writer

import "github.com/rxtech-lab/argo-backtest/internal/types"

// MarketDataWriter persists downloaded bars and produces a file the
// backtest engine can load directly.
type MarketDataWriter interface {
	// Initialize prepares the writer for a new download session.
	Initialize() error
	// Write persists a single bar.
	Write(bar types.Bar) error
	// Finalize flushes all buffered bars and returns the path of the
	// produced data file.
	Finalize() (string, error)
	// Close releases writer resources. Safe to call after Finalize.
	Close() error
}
