package engine

import (
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Broker turns orders into fills. Implementations decide the fill price and
// fees; they never touch the portfolio.
type Broker interface {
	// Execute fills a market order at the current simulation time. A nil
	// error always carries a valid fill.
	Execute(order types.Order, now time.Time) (types.Fill, error)
}

// SimulatedBroker fills every valid market order in full at the latest
// visible close for the symbol, adjusted for half the bid/ask spread, and
// charges the configured commission schedule. It has no notion of liquidity
// or partial fills.
type SimulatedBroker struct {
	dataSource  datasource.MarketDataSource
	commission  commission_fee.CommissionFee
	spreadRatio float64
	logger      *logger.Logger
}

// NewSimulatedBroker creates a broker over the given data source.
// spreadRatio is the full relative bid/ask spread, e.g. 0.001 for 10 bps;
// buys pay half above the close, sells receive half below.
func NewSimulatedBroker(ds datasource.MarketDataSource, commission commission_fee.CommissionFee, spreadRatio float64, log *logger.Logger) *SimulatedBroker {
	return &SimulatedBroker{
		dataSource:  ds,
		commission:  commission,
		spreadRatio: spreadRatio,
		logger:      log,
	}
}

// Execute implements Broker.
func (b *SimulatedBroker) Execute(order types.Order, now time.Time) (types.Fill, error) {
	if err := order.Validate(); err != nil {
		return types.Fill{}, err
	}

	bar, err := b.dataSource.LatestBar(order.Symbol).Take()
	if err != nil {
		return types.Fill{}, errors.Newf(errors.ErrCodeNoMarketDataForOrder,
			"no market data for %s at %s", order.Symbol, now.Format(time.RFC3339))
	}

	fillPrice := b.adjustForSpread(bar.Close, order.Side)
	fees := b.commission.Calculate(fillPrice, order.Quantity)

	fill := types.Fill{
		ID:        uuid.New().String(),
		OrderID:   order.ID,
		Timestamp: now,
		Symbol:    order.Symbol,
		Side:      order.Side,
		Quantity:  order.Quantity,
		FillPrice: fillPrice,
		Fees:      fees,
	}

	b.logger.Debug("Order filled",
		zap.String("order_id", order.ID),
		zap.String("symbol", order.Symbol),
		zap.String("side", string(order.Side)),
		zap.Float64("quantity", order.Quantity),
		zap.Float64("fill_price", fillPrice),
		zap.Float64("fees", fees),
	)

	return fill, nil
}

// adjustForSpread moves the close against the taker by half the spread.
func (b *SimulatedBroker) adjustForSpread(close float64, side types.Side) float64 {
	if b.spreadRatio == 0 {
		return close
	}

	half := decimal.NewFromFloat(b.spreadRatio).Div(decimal.NewFromInt(2))
	price := decimal.NewFromFloat(close)

	if side == types.SideBuy {
		price = price.Mul(decimal.NewFromInt(1).Add(half))
	} else {
		price = price.Mul(decimal.NewFromInt(1).Sub(half))
	}

	result, _ := price.Float64()

	return result
}
