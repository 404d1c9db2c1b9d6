package strategy

import (
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// BuyAndHoldConfig configures the buy and hold strategy.
type BuyAndHoldConfig struct {
	// CashBuffer is the fraction of capital left uninvested, e.g. 0.01
	// keeps 1% in cash so fees and spread never overdraw the account.
	CashBuffer float64 `yaml:"cash_buffer"`
}

// BuyAndHold invests the starting capital equally across all loaded
// instruments on the first bar where every instrument has a price, then
// holds until the end of the run and liquidates.
type BuyAndHold struct {
	config   BuyAndHoldConfig
	invested bool
}

// NewBuyAndHold creates an uninvested buy and hold strategy.
func NewBuyAndHold() *BuyAndHold {
	return &BuyAndHold{}
}

// Name implements Strategy.
func (b *BuyAndHold) Name() string {
	return "buy_and_hold"
}

// Initialize implements Strategy.
func (b *BuyAndHold) Initialize(config string) error {
	if config == "" {
		b.config = BuyAndHoldConfig{CashBuffer: 0}

		return nil
	}

	if err := yaml.Unmarshal([]byte(config), &b.config); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse buy and hold config", err)
	}

	if b.config.CashBuffer < 0 || b.config.CashBuffer >= 1 {
		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"cash_buffer must be in [0, 1), got %f", b.config.CashBuffer)
	}

	return nil
}

// ProcessBar implements Strategy.
func (b *BuyAndHold) ProcessBar(ctx *Context) error {
	if b.invested {
		return nil
	}

	// Wait until every instrument has a visible price so the split is
	// equal-weighted over all of them.
	closes := make(map[string]float64, len(ctx.Symbols))

	for _, symbol := range ctx.Symbols {
		bar, err := ctx.DataSource.LatestBar(symbol).Take()
		if err != nil {
			return nil
		}

		closes[symbol] = bar.Close
	}

	investable := decimal.NewFromFloat(ctx.Portfolio.Cash()).
		Mul(decimal.NewFromFloat(1 - b.config.CashBuffer))
	perSymbol := investable.Div(decimal.NewFromInt(int64(len(ctx.Symbols))))

	for _, symbol := range ctx.Symbols {
		quantity, _ := perSymbol.Div(decimal.NewFromFloat(closes[symbol])).Float64()
		if quantity <= 0 {
			continue
		}

		if err := ctx.SubmitMarketOrder(b.Name(), symbol, types.SideBuy, quantity); err != nil {
			return err
		}
	}

	b.invested = true

	ctx.Logger.Info("Initial allocation placed",
		zap.Int("symbols", len(ctx.Symbols)),
		zap.Time("time", ctx.CurrentTime()),
	)

	return nil
}

// OnBacktestEnd implements BacktestEndHandler: close every open position so
// the final equity is fully realized in cash.
func (b *BuyAndHold) OnBacktestEnd(ctx *Context) error {
	for symbol, quantity := range ctx.Portfolio.Positions() {
		side := types.SideSell
		if quantity < 0 {
			side = types.SideBuy
			quantity = -quantity
		}

		if err := ctx.SubmitMarketOrder(b.Name(), symbol, side, quantity); err != nil {
			return err
		}
	}

	return nil
}
