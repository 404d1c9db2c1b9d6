package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	bt "github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/cache"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/calendar"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/clock"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1/datasource"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/performance"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// BacktestEngineV1 is the reference implementation of engine.Engine: a
// single-threaded event loop over a precomputed clock. Each tick reveals
// market data, enqueues the tick's events and drains the queue to empty
// before the clock moves again, so nothing can act on a bar that has not
// been revealed yet.
type BacktestEngineV1 struct {
	config         BacktestEngineV1Config
	strategy       strategy.Strategy
	strategyConfig string
	dataPath       string
	resultsFolder  string
	log            *logger.Logger
	state          *BacktestState
	cache          cache.Cache
	droppedOrders  int
}

func NewBacktestEngineV1() bt.Engine {
	return &BacktestEngineV1{
		config:         EmptyConfig(),
		strategy:       nil,
		strategyConfig: "",
		dataPath:       "",
		resultsFolder:  "",
		log:            nil,
		state:          nil,
		cache:          cache.NewCacheV1(),
		droppedOrders:  0,
	}
}

// Initialize implements engine.Engine.
func (b *BacktestEngineV1) Initialize(config string) error {
	if err := yaml.Unmarshal([]byte(config), &b.config); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestConfigError, "failed to parse engine config", err)
	}

	if err := b.config.Validate(); err != nil {
		return err
	}

	var loggerError error

	b.log, loggerError = logger.NewLogger()
	if loggerError != nil {
		return loggerError
	}

	b.state = NewBacktestState(b.log)
	if b.state == nil {
		return errors.New(errors.ErrCodeStateNil, "failed to create backtest state")
	}

	if err := b.state.Initialize(); err != nil {
		return err
	}

	b.log.Debug("Backtest engine initialized",
		zap.Float64("initial_capital", b.config.InitialCapital),
		zap.Strings("symbols", b.config.Symbols),
	)

	return nil
}

// LoadStrategy implements engine.Engine.
func (b *BacktestEngineV1) LoadStrategy(s strategy.Strategy, strategyConfig string) error {
	if s == nil {
		return errors.New(errors.ErrCodeBacktestNoStrategy, "strategy is nil")
	}

	b.strategy = s
	b.strategyConfig = strategyConfig

	return nil
}

// SetDataPath implements engine.Engine.
func (b *BacktestEngineV1) SetDataPath(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "data file not found: %s", path)
	}

	b.dataPath = path

	return nil
}

// SetResultsFolder implements engine.Engine.
func (b *BacktestEngineV1) SetResultsFolder(folder string) error {
	if folder == "" {
		return errors.New(errors.ErrCodeBacktestNoResultsDir, "results folder is empty")
	}

	b.resultsFolder = folder

	return nil
}

// GetConfigSchema implements engine.Engine.
func (b *BacktestEngineV1) GetConfigSchema() (string, error) {
	return b.config.GenerateSchemaJSON()
}

// queueOrderSubmitter turns strategy order submissions into queued events.
// Orders never fill synchronously; they wait their turn in the FIFO.
type queueOrderSubmitter struct {
	queue *EventQueue
}

func (q *queueOrderSubmitter) SubmitOrder(order types.Order) error {
	if err := order.Validate(); err != nil {
		return err
	}

	q.queue.Push(types.NewOrderEvent(order))

	return nil
}

// Run implements engine.Engine.
func (b *BacktestEngineV1) Run(ctx context.Context, callbacks bt.LifecycleCallbacks) (err error) {
	defer func() {
		if callbacks.OnRunEnd != nil {
			(*callbacks.OnRunEnd)(err)
		}
	}()

	if err = b.preflight(); err != nil {
		return err
	}

	// A fresh run starts from clean per-run state.
	b.droppedOrders = 0
	b.cache.Reset()

	if err = b.state.Cleanup(); err != nil {
		return err
	}

	if err = b.state.Initialize(); err != nil {
		return err
	}

	cal, err := calendar.NewUSEquityCalendar(b.config.CalendarConfig())
	if err != nil {
		return err
	}

	clk, err := clock.New(cal, b.config.StartTime, b.config.EndTime, b.config.Granularity, b.config.ExtendedHours)
	if err != nil {
		return err
	}

	loader, err := datasource.NewDuckDBLoader(b.dataPath, b.log)
	if err != nil {
		return err
	}
	defer loader.Close()

	ds := datasource.NewHistoricalDataSource(loader, b.config.GapPolicy, b.log)

	for _, symbol := range b.config.Symbols {
		if err = ds.LoadInstrument(symbol, b.config.StartTime, b.config.EndTime, b.config.Granularity, b.config.ExtendedHours); err != nil {
			return err
		}
	}

	commission := commission_fee.GetCommissionFeeHandler(b.config.Broker)
	portfolio := NewPortfolio(b.config.InitialCapital, b.log)
	broker := NewSimulatedBroker(ds, commission, b.config.SpreadRatio, b.log)
	queue := NewEventQueue()

	if err = b.strategy.Initialize(b.strategyConfig); err != nil {
		return err
	}

	strategyCtx := &strategy.Context{
		DataSource: ds,
		Portfolio:  portfolio,
		Orders:     &queueOrderSubmitter{queue: queue},
		Cache:      b.cache,
		Commission: commission,
		Logger:     b.log,
		Symbols:    b.config.Symbols,
	}

	handlers := b.buildHandlers(strategyCtx, queue, broker, portfolio, ds)

	runID := uuid.New().String()
	resultsDir := b.resultsDir(runID)

	if err = os.MkdirAll(resultsDir, 0755); err != nil {
		return errors.Wrap(errors.ErrCodeBacktestNoResultsDir, "failed to create results folder", err)
	}

	total := clk.Len()

	if callbacks.OnRunStart != nil {
		if err = (*callbacks.OnRunStart)(runID, total); err != nil {
			return err
		}
	}

	b.log.Info("Backtest run started",
		zap.String("run_id", runID),
		zap.Int("total_ticks", total),
		zap.Time("start", b.config.StartTime),
		zap.Time("end", b.config.EndTime),
	)

	current := 0

	for !clk.Exhausted() {
		// Cancellation is honored between ticks only; a tick's event
		// cascade always resolves completely.
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr

			return err
		}

		var ts time.Time

		ts, err = clk.Advance()
		if err != nil {
			return err
		}

		ds.AdvanceTo(ts)

		boundary := clk.SessionBoundary(ts)

		if boundary == clock.BoundaryOpen {
			queue.Push(types.NewSessionOpenEvent(ts))
		}

		queue.Push(types.NewMarketUpdateEvent(ts))

		if boundary == clock.BoundaryClose {
			queue.Push(types.NewSessionCloseEvent(ts))
		}

		if clk.IsFinal(ts) {
			queue.Push(types.NewBacktestEndEvent(ts))
		}

		if err = queue.DrainAll(handlers); err != nil {
			return err
		}

		current++

		if callbacks.OnTick != nil {
			if err = (*callbacks.OnTick)(current, total); err != nil {
				return err
			}
		}
	}

	if err = b.writeResults(runID, resultsDir, portfolio); err != nil {
		return err
	}

	b.log.Info("Backtest run finished",
		zap.String("run_id", runID),
		zap.String("results", resultsDir),
		zap.Int("dropped_orders", b.droppedOrders),
	)

	return nil
}

func (b *BacktestEngineV1) preflight() error {
	if b.strategy == nil {
		return errors.New(errors.ErrCodeBacktestNoStrategy, "no strategy loaded")
	}

	if b.dataPath == "" {
		return errors.New(errors.ErrCodeBacktestNoDatasource, "no data path set")
	}

	if b.resultsFolder == "" {
		return errors.New(errors.ErrCodeBacktestNoResultsDir, "no results folder set")
	}

	if b.state == nil {
		return errors.New(errors.ErrCodeStateNil, "engine is not initialized")
	}

	return nil
}

// buildHandlers wires the run's components into the exhaustive handler
// table the queue dispatches against.
func (b *BacktestEngineV1) buildHandlers(
	strategyCtx *strategy.Context,
	queue *EventQueue,
	broker Broker,
	portfolio *Portfolio,
	ds datasource.MarketDataSource,
) EventHandlers {
	return EventHandlers{
		OnMarketUpdate: func(event types.Event) error {
			if err := b.strategy.ProcessBar(strategyCtx); err != nil {
				return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy failed on market update", err)
			}

			return nil
		},
		OnSessionOpen: func(event types.Event) error {
			if handler, ok := b.strategy.(strategy.SessionOpenHandler); ok {
				if err := handler.OnSessionOpen(strategyCtx); err != nil {
					return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy failed on session open", err)
				}
			}

			return nil
		},
		OnSessionClose: func(event types.Event) error {
			if handler, ok := b.strategy.(strategy.SessionCloseHandler); ok {
				if err := handler.OnSessionClose(strategyCtx); err != nil {
					return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy failed on session close", err)
				}
			}

			if err := portfolio.AppendSnapshot(event.Time, ds); err != nil {
				return err
			}

			snapshots := portfolio.Snapshots()

			return b.state.RecordSnapshot(snapshots[len(snapshots)-1])
		},
		OnBacktestEnd: func(event types.Event) error {
			if handler, ok := b.strategy.(strategy.BacktestEndHandler); ok {
				if err := handler.OnBacktestEnd(strategyCtx); err != nil {
					return errors.Wrap(errors.ErrCodeStrategyRuntimeError, "strategy failed on backtest end", err)
				}
			}

			return nil
		},
		OnOrder: func(event types.Event) error {
			order, takeErr := event.Order.Take()
			if takeErr != nil {
				return errors.New(errors.ErrCodeUnknownEvent, "order event without order payload")
			}

			fill, execErr := broker.Execute(order, event.Time)
			if execErr != nil {
				// An unpriceable or invalid order is dropped and counted,
				// not fatal: the reference data may simply have a gap.
				if errors.HasCode(execErr, errors.ErrCodeNoMarketDataForOrder) ||
					errors.HasCode(execErr, errors.ErrCodeInvalidOrder) {
					b.droppedOrders++
					b.log.Warn("Order dropped",
						zap.String("order_id", order.ID),
						zap.String("symbol", order.Symbol),
						zap.Error(execErr),
					)

					return nil
				}

				return execErr
			}

			queue.Push(types.NewFillEvent(fill))

			return nil
		},
		OnFill: func(event types.Event) error {
			fill, takeErr := event.Fill.Take()
			if takeErr != nil {
				return errors.New(errors.ErrCodeUnknownEvent, "fill event without fill payload")
			}

			if err := portfolio.ApplyFill(fill); err != nil {
				return err
			}

			return b.state.RecordFill(fill)
		},
	}
}

func (b *BacktestEngineV1) resultsDir(runID string) string {
	timeRange := fmt.Sprintf("%s_%s",
		b.config.StartTime.Format("20060102"),
		b.config.EndTime.Format("20060102"),
	)

	return filepath.Join(b.resultsFolder, b.strategy.Name(), timeRange, runID)
}

// writeResults exports the run's logs and the performance summary.
func (b *BacktestEngineV1) writeResults(runID string, resultsDir string, portfolio *Portfolio) error {
	if err := b.state.Write(resultsDir); err != nil {
		return err
	}

	trades := performance.FillsToRoundTrips(portfolio.Fills())

	tradeLogPath := filepath.Join(resultsDir, "trades.yaml")
	if err := writeTradeLog(tradeLogPath, trades); err != nil {
		return err
	}

	summary, err := performance.Compute(performance.Input{
		InitialCapital: portfolio.InitialCapital(),
		Snapshots:      portfolio.Snapshots(),
		Fills:          portfolio.Fills(),
		Trades:         trades,
		PeriodsPerYear: performance.PeriodsPerYear(b.config.Granularity),
	})
	if err != nil {
		return err
	}

	summary.ID = runID
	summary.Timestamp = time.Now()
	summary.StrategyName = b.strategy.Name()
	summary.DroppedOrders = b.droppedOrders
	summary.PortfolioLogPath = filepath.Join(resultsDir, "equity_curve.parquet")
	summary.FillLogPath = filepath.Join(resultsDir, "fills.parquet")
	summary.TradeLogPath = tradeLogPath
	summary.DataPath = b.dataPath

	return types.WritePerformanceSummary(filepath.Join(resultsDir, "performance_summary.yaml"), summary)
}

func writeTradeLog(path string, trades []types.RoundTrip) error {
	data, err := yaml.Marshal(trades)
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to marshal trade log", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to write trade log", err)
	}

	return nil
}
