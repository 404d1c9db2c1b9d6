package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// PerformanceSummary is the post-run report written next to the exported
// portfolio and fill logs. All ratio fields are computed from the portfolio
// log only, so recomputing from the same logs yields identical values.
type PerformanceSummary struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed (wall clock).
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	// StrategyName is the strategy that produced the run.
	StrategyName string `yaml:"strategy_name" json:"strategy_name"`
	// Start and End are the simulated range.
	Start time.Time `yaml:"start" json:"start"`
	End   time.Time `yaml:"end" json:"end"`

	InitialEquity float64 `yaml:"initial_equity" json:"initial_equity"`
	FinalEquity   float64 `yaml:"final_equity" json:"final_equity"`
	TotalFees     float64 `yaml:"total_fees" json:"total_fees"`
	FillCount     int     `yaml:"fill_count" json:"fill_count"`
	// DroppedOrders counts orders the broker could not price.
	DroppedOrders int `yaml:"dropped_orders" json:"dropped_orders"`

	// Cumulative return over the whole run.
	TotalReturn float64 `yaml:"total_return" json:"total_return"`
	// Annualized return, geometric.
	AnnualReturn float64 `yaml:"annual_return" json:"annual_return"`
	Sharpe       float64 `yaml:"sharpe" json:"sharpe"`
	Sortino      float64 `yaml:"sortino" json:"sortino"`
	// MaxDrawdown is reported as a negative fraction of peak equity.
	MaxDrawdown         float64       `yaml:"max_drawdown" json:"max_drawdown"`
	MaxDrawdownDuration time.Duration `yaml:"max_drawdown_duration" json:"max_drawdown_duration"`
	WinningMonths       float64       `yaml:"winning_months" json:"winning_months"`
	TimeInMarket        float64       `yaml:"time_in_market" json:"time_in_market"`
	ProfitFactor        float64       `yaml:"profit_factor" json:"profit_factor"`
	TradesPerMonth      float64       `yaml:"trades_per_month" json:"trades_per_month"`
	// AnnualFeeDrag is fees paid per year as a fraction of initial capital.
	AnnualFeeDrag float64 `yaml:"annual_fee_drag" json:"annual_fee_drag"`

	// TradeCount is the number of reconstructed round trips.
	TradeCount   int     `yaml:"trade_count" json:"trade_count"`
	WinningCount int     `yaml:"winning_count" json:"winning_count"`
	LosingCount  int     `yaml:"losing_count" json:"losing_count"`
	WinRate      float64 `yaml:"win_rate" json:"win_rate"`

	// Paths to the exported logs.
	PortfolioLogPath string `yaml:"portfolio_log_path" json:"portfolio_log_path"`
	FillLogPath      string `yaml:"fill_log_path" json:"fill_log_path"`
	TradeLogPath     string `yaml:"trade_log_path" json:"trade_log_path"`
	DataPath         string `yaml:"data_path" json:"data_path"`
}

// WritePerformanceSummary marshals the summary to YAML at path.
func WritePerformanceSummary(path string, summary PerformanceSummary) error {
	data, err := yaml.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal performance summary to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write performance summary to file: %w", err)
	}

	return nil
}
