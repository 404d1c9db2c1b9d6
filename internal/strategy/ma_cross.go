package strategy

import (
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/internal/utils"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// MovingAverageCrossConfig configures the crossover strategy.
type MovingAverageCrossConfig struct {
	FastPeriod int `yaml:"fast_period"`
	SlowPeriod int `yaml:"slow_period"`
	// CashBuffer is the fraction of capital left uninvested per entry.
	CashBuffer float64 `yaml:"cash_buffer"`
}

// MovingAverageCross goes long an instrument when its fast SMA crosses
// above its slow SMA and exits when it crosses back below. Long only, one
// entry per instrument, equal capital split across instruments.
type MovingAverageCross struct {
	config MovingAverageCrossConfig
}

// NewMovingAverageCross creates the strategy with unset periods; Initialize
// must provide them.
func NewMovingAverageCross() *MovingAverageCross {
	return &MovingAverageCross{}
}

// Name implements Strategy.
func (m *MovingAverageCross) Name() string {
	return "ma_cross"
}

// Initialize implements Strategy.
func (m *MovingAverageCross) Initialize(config string) error {
	if err := yaml.Unmarshal([]byte(config), &m.config); err != nil {
		return errors.Wrap(errors.ErrCodeStrategyConfigError, "failed to parse ma cross config", err)
	}

	if m.config.FastPeriod <= 0 || m.config.SlowPeriod <= 0 {
		return errors.New(errors.ErrCodeStrategyConfigError, "fast_period and slow_period must be positive")
	}

	if m.config.FastPeriod >= m.config.SlowPeriod {
		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"fast_period %d must be shorter than slow_period %d", m.config.FastPeriod, m.config.SlowPeriod)
	}

	if m.config.CashBuffer < 0 || m.config.CashBuffer >= 1 {
		return errors.Newf(errors.ErrCodeStrategyConfigError,
			"cash_buffer must be in [0, 1), got %f", m.config.CashBuffer)
	}

	return nil
}

// ProcessBar implements Strategy.
func (m *MovingAverageCross) ProcessBar(ctx *Context) error {
	for _, symbol := range ctx.Symbols {
		bars := ctx.DataSource.LatestBars(symbol, m.config.SlowPeriod+1)

		signal, err := indicator.DetectCross(bars, m.config.FastPeriod, m.config.SlowPeriod)
		if err != nil {
			// Not enough history yet for this instrument.
			if errors.IsInsufficientDataError(err) {
				continue
			}

			return err
		}

		position := ctx.Portfolio.Position(symbol)

		switch {
		case signal == indicator.CrossAbove && position == 0:
			if err := m.enter(ctx, symbol); err != nil {
				return err
			}
		case signal == indicator.CrossBelow && position > 0:
			if err := ctx.SubmitMarketOrder(m.Name(), symbol, types.SideSell, position); err != nil {
				return err
			}

			ctx.Logger.Debug("Exit signal",
				zap.String("symbol", symbol),
				zap.Time("time", ctx.CurrentTime()),
			)
		}
	}

	return nil
}

func (m *MovingAverageCross) enter(ctx *Context, symbol string) error {
	bar, err := ctx.DataSource.LatestBar(symbol).Take()
	if err != nil {
		return nil
	}

	// Split the available cash over the instruments that are still flat so
	// late entries are not starved.
	flat := 0

	for _, s := range ctx.Symbols {
		if ctx.Portfolio.Position(s) == 0 {
			flat++
		}
	}

	if flat == 0 {
		return nil
	}

	investable, _ := decimal.NewFromFloat(ctx.Portfolio.Cash()).
		Mul(decimal.NewFromFloat(1 - m.config.CashBuffer)).
		Div(decimal.NewFromInt(int64(flat))).
		Float64()

	quantity := utils.CalculateMaxQuantity(investable, bar.Close, ctx.Commission)
	if quantity <= 0 {
		return nil
	}

	ctx.Logger.Debug("Entry signal",
		zap.String("symbol", symbol),
		zap.Time("time", ctx.CurrentTime()),
		zap.Float64("quantity", quantity),
	)

	return ctx.SubmitMarketOrder(m.Name(), symbol, types.SideBuy, quantity)
}
