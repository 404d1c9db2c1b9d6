package strategy

import (
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/cache"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

// PortfolioReader is the read-only ledger view handed to strategies.
// Strategies can inspect holdings but never mutate them; all changes flow
// through orders.
type PortfolioReader interface {
	Cash() float64
	InitialCapital() float64
	Position(symbol string) float64
	Positions() map[string]float64
}

// OrderSubmitter accepts orders from the strategy. The engine enqueues them
// as events; submission never fills synchronously.
type OrderSubmitter interface {
	SubmitOrder(order types.Order) error
}

// Context bundles everything a strategy may touch during a callback. All
// reads are bounded by the current simulation time.
type Context struct {
	// DataSource provides the revealed market data and the current time.
	DataSource datasource.MarketDataSource
	// Portfolio is the read-only ledger view.
	Portfolio PortfolioReader
	// Orders is used to place orders.
	Orders OrderSubmitter
	// Cache is per-run scratch storage for strategy state.
	Cache cache.Cache
	// Commission is the fee model of the run, for fee-aware sizing.
	Commission commission_fee.CommissionFee
	// Logger is the engine logger.
	Logger *logger.Logger
	// Symbols are the instruments loaded for the run.
	Symbols []string
}

// CurrentTime returns the simulation time of the callback.
func (c *Context) CurrentTime() time.Time {
	return c.DataSource.CurrentTime()
}

// SubmitMarketOrder builds and submits a day market order at the current
// simulation time.
func (c *Context) SubmitMarketOrder(strategyName string, symbol string, side types.Side, quantity float64) error {
	return c.Orders.SubmitOrder(types.Order{
		ID:           uuid.New().String(),
		Symbol:       symbol,
		Side:         side,
		Quantity:     quantity,
		OrderType:    types.OrderTypeMarket,
		TimeInForce:  types.TimeInForceDay,
		CreatedAt:    c.CurrentTime(),
		StrategyName: strategyName,
	})
}

// Strategy reacts to revealed market data by placing orders. Implementations
// must be deterministic: same data in, same orders out.
type Strategy interface {
	// Name identifies the strategy in logs and result artifacts.
	Name() string
	// Initialize parses the strategy's YAML configuration content.
	Initialize(config string) error
	// ProcessBar is called once per market update, after all instruments
	// have been advanced to the current timestamp.
	ProcessBar(ctx *Context) error
}

// SessionOpenHandler is implemented by strategies that want a callback at
// each session open.
type SessionOpenHandler interface {
	OnSessionOpen(ctx *Context) error
}

// SessionCloseHandler is implemented by strategies that want a callback at
// each session close, after the day's market updates.
type SessionCloseHandler interface {
	OnSessionClose(ctx *Context) error
}

// BacktestEndHandler is implemented by strategies that want a final callback
// before the run stops, typically to liquidate.
type BacktestEndHandler interface {
	OnBacktestEnd(ctx *Context) error
}
