package engine

import (
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Portfolio is the pure ledger of the simulation. It records what happened
// to cash and positions; it makes no decisions and emits no events. Cash
// moves only through ApplyFill, so final equity is always explainable by
// the fill log.
type Portfolio struct {
	initialCapital decimal.Decimal
	cash           decimal.Decimal
	positions      map[string]float64
	totalFees      decimal.Decimal

	fills     []types.Fill
	snapshots []types.PortfolioSnapshot

	logger *logger.Logger
}

// NewPortfolio creates a ledger with all capital in cash and no positions.
func NewPortfolio(initialCapital float64, log *logger.Logger) *Portfolio {
	capital := decimal.NewFromFloat(initialCapital)

	return &Portfolio{
		initialCapital: capital,
		cash:           capital,
		positions:      make(map[string]float64),
		totalFees:      decimal.Zero,
		fills:          nil,
		snapshots:      nil,
		logger:         log,
	}
}

// ApplyFill books a fill into the ledger. Cash moves by price times
// quantity times direction plus fees, fees deducted exactly once here and
// nowhere else. A symbol with no existing position starts from zero.
func (p *Portfolio) ApplyFill(fill types.Fill) error {
	if err := fill.Validate(); err != nil {
		return err
	}

	direction := fill.Side.Direction()

	notional := decimal.NewFromFloat(fill.FillPrice).
		Mul(decimal.NewFromFloat(fill.Quantity)).
		Mul(decimal.NewFromFloat(direction))
	fees := decimal.NewFromFloat(fill.Fees)

	p.cash = p.cash.Sub(notional).Sub(fees)
	p.totalFees = p.totalFees.Add(fees)

	newPosition := p.positions[fill.Symbol] + fill.Quantity*direction
	if newPosition == 0 {
		delete(p.positions, fill.Symbol)
	} else {
		p.positions[fill.Symbol] = newPosition
	}

	p.fills = append(p.fills, fill)

	p.logger.Debug("Fill applied",
		zap.String("symbol", fill.Symbol),
		zap.String("side", string(fill.Side)),
		zap.Float64("quantity", fill.Quantity),
		zap.Float64("position", newPosition),
		zap.Float64("cash", p.Cash()),
	)

	return nil
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 {
	cash, _ := p.cash.Float64()

	return cash
}

// InitialCapital returns the starting cash balance.
func (p *Portfolio) InitialCapital() float64 {
	capital, _ := p.initialCapital.Float64()

	return capital
}

// TotalFees returns the cumulative fees paid across all fills.
func (p *Portfolio) TotalFees() float64 {
	fees, _ := p.totalFees.Float64()

	return fees
}

// Position returns the signed quantity held for the symbol, zero when none.
func (p *Portfolio) Position(symbol string) float64 {
	return p.positions[symbol]
}

// Positions returns a copy of all non-zero positions.
func (p *Portfolio) Positions() map[string]float64 {
	copied := make(map[string]float64, len(p.positions))
	for symbol, quantity := range p.positions {
		copied[symbol] = quantity
	}

	return copied
}

// PositionsValue marks every open position at its latest visible close.
// Positions with no visible bar yet contribute an error, not zero.
func (p *Portfolio) PositionsValue(ds datasource.MarketDataSource) (float64, error) {
	total := decimal.Zero

	for symbol, quantity := range p.positions {
		bar, err := ds.LatestBar(symbol).Take()
		if err != nil {
			return 0, errors.Newf(errors.ErrCodeSnapshotFailed,
				"cannot value position in %s: no visible market data", symbol)
		}

		value := decimal.NewFromFloat(bar.Close).Mul(decimal.NewFromFloat(quantity))
		total = total.Add(value)
	}

	value, _ := total.Float64()

	return value, nil
}

// Equity returns cash plus the mark-to-market value of open positions.
func (p *Portfolio) Equity(ds datasource.MarketDataSource) (float64, error) {
	positionsValue, err := p.PositionsValue(ds)
	if err != nil {
		return 0, err
	}

	equity, _ := p.cash.Add(decimal.NewFromFloat(positionsValue)).Float64()

	return equity, nil
}

// AppendSnapshot marks the portfolio to market and appends one row to the
// portfolio log. The driver calls this exactly once per session close.
func (p *Portfolio) AppendSnapshot(ts time.Time, ds datasource.MarketDataSource) error {
	positionsValue, err := p.PositionsValue(ds)
	if err != nil {
		return err
	}

	cash := p.Cash()
	equity, _ := p.cash.Add(decimal.NewFromFloat(positionsValue)).Float64()

	p.snapshots = append(p.snapshots, types.NewPortfolioSnapshot(ts, equity, cash, positionsValue, p.positions))

	return nil
}

// Fills returns the fill log in application order.
func (p *Portfolio) Fills() []types.Fill {
	return p.fills
}

// Snapshots returns the portfolio log in append order.
func (p *Portfolio) Snapshots() []types.PortfolioSnapshot {
	return p.snapshots
}
