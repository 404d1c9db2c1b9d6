package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v3"

	bt "github.com/rxtech-lab/argo-backtest/internal/backtest/engine"
	engine "github.com/rxtech-lab/argo-backtest/internal/backtest/engine/engine_v1"
	"github.com/rxtech-lab/argo-backtest/internal/strategy"
	"github.com/rxtech-lab/argo-backtest/internal/version"
	"github.com/rxtech-lab/argo-backtest/pkg/utils"
)

// newStrategy resolves a built-in strategy by name.
func newStrategy(name string) (strategy.Strategy, error) {
	switch name {
	case "buy_and_hold":
		return strategy.NewBuyAndHold(), nil
	case "ma_cross":
		return strategy.NewMovingAverageCross(), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q (available: buy_and_hold, ma_cross)", name)
	}
}

// runAction wires the engine together from CLI flags and executes the run
// with a progress bar driven by the tick callback.
func runAction(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")
	dataPath := cmd.String("data")
	strategyName := cmd.String("strategy")
	strategyConfigPath := cmd.String("strategy-config")
	output := cmd.String("output")

	config, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	strategyConfig := ""

	if strategyConfigPath != "" {
		content, err := os.ReadFile(strategyConfigPath)
		if err != nil {
			return fmt.Errorf("failed to read strategy config %s: %w", strategyConfigPath, err)
		}

		strategyConfig = string(content)
	}

	s, err := newStrategy(strategyName)
	if err != nil {
		return err
	}

	backtester := engine.NewBacktestEngineV1()

	if err := backtester.Initialize(string(config)); err != nil {
		return fmt.Errorf("failed to initialize engine: %w", err)
	}

	if err := backtester.LoadStrategy(s, strategyConfig); err != nil {
		return fmt.Errorf("failed to load strategy: %w", err)
	}

	if err := backtester.SetDataPath(dataPath); err != nil {
		return fmt.Errorf("failed to set data path: %w", err)
	}

	if err := backtester.SetResultsFolder(output); err != nil {
		return fmt.Errorf("failed to set results folder: %w", err)
	}

	var bar *progressbar.ProgressBar

	onRunStart := bt.OnRunStartCallback(func(runID string, totalTicks int) error {
		log.Printf("Starting run %s with %d ticks", runID, totalTicks)
		bar = progressbar.NewOptions(totalTicks,
			progressbar.OptionSetDescription(fmt.Sprintf("Backtesting %s", strategyName)),
			progressbar.OptionShowCount())

		return nil
	})

	onTick := bt.OnTickCallback(func(current int, total int) error {
		if bar != nil {
			bar.Set(current)
		}

		return nil
	})

	onRunEnd := bt.OnRunEndCallback(func(err error) {
		if bar != nil {
			bar.Finish()
		}

		if err == nil {
			log.Printf("Run finished. Results written to %s", output)
		}
	})

	callbacks := bt.LifecycleCallbacks{
		OnRunStart: &onRunStart,
		OnTick:     &onTick,
		OnRunEnd:   &onRunEnd,
	}

	if err := backtester.Run(ctx, callbacks); err != nil {
		return fmt.Errorf("backtest failed: %w", err)
	}

	return nil
}

// schemaAction prints the JSON schema of the engine configuration, or of
// a strategy configuration when --strategy is given.
func schemaAction(ctx context.Context, cmd *cli.Command) error {
	strategyName := cmd.String("strategy")

	if strategyName != "" {
		var config any

		switch strategyName {
		case "buy_and_hold":
			config = strategy.BuyAndHoldConfig{}
		case "ma_cross":
			config = strategy.MovingAverageCrossConfig{}
		default:
			return fmt.Errorf("unknown strategy %q (available: buy_and_hold, ma_cross)", strategyName)
		}

		schema, err := utils.GetSchemaFromConfig(config)
		if err != nil {
			return fmt.Errorf("failed to generate strategy config schema: %w", err)
		}

		fmt.Println(schema)

		return nil
	}

	backtester := engine.NewBacktestEngineV1()

	schema, err := backtester.GetConfigSchema()
	if err != nil {
		return fmt.Errorf("failed to generate config schema: %w", err)
	}

	fmt.Println(schema)

	return nil
}

func main() {
	cmd := &cli.Command{
		Name:    "backtest",
		Usage:   "Run event-driven backtests over historical market data",
		Version: version.GetVersion(),
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Run a backtest",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "config",
						Aliases:  []string{"c"},
						Usage:    "Path to the engine YAML configuration",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"d"},
						Usage:    "Path to the market data file (parquet or CSV)",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "strategy",
						Aliases:  []string{"s"},
						Usage:    "Strategy to run (buy_and_hold, ma_cross)",
						Value:    "buy_and_hold",
						Required: false,
					},
					&cli.StringFlag{
						Name:     "strategy-config",
						Usage:    "Path to the strategy YAML configuration",
						Required: false,
					},
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "Results output directory",
						Value:    "results",
						Required: false,
					},
				},
				Action: runAction,
			},
			{
				Name:  "schema",
				Usage: "Print the JSON schema of the engine configuration",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "strategy",
						Aliases:  []string{"s"},
						Usage:    "Print the schema of a strategy configuration instead",
						Required: false,
					},
				},
				Action: schemaAction,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
