package performance

import (
	"math"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
)

// TradingDaysPerYear is the US equity session count used for annualization.
const TradingDaysPerYear = 252.0

const (
	regularSessionHours = 6.5
	averageDaysPerMonth = 30.44
)

// PeriodsPerYear returns how many bars of the given granularity make up a
// year of regular trading.
func PeriodsPerYear(granularity types.Granularity) float64 {
	if !granularity.IsIntraday() {
		return TradingDaysPerYear
	}

	duration, err := granularity.Duration()
	if err != nil {
		return TradingDaysPerYear
	}

	barsPerSession := regularSessionHours * float64(time.Hour) / float64(duration)

	return TradingDaysPerYear * barsPerSession
}

// Input is everything Compute needs, all of it read from the run's logs.
type Input struct {
	InitialCapital float64
	Snapshots      []types.PortfolioSnapshot
	Fills          []types.Fill
	Trades         []types.RoundTrip
	PeriodsPerYear float64
}

// Compute derives the statistics block of a performance summary from the
// portfolio and fill logs. It is a pure function of its input: recomputing
// from the same logs yields the same summary.
func Compute(input Input) (types.PerformanceSummary, error) {
	if len(input.Snapshots) == 0 {
		return types.PerformanceSummary{}, errors.New(errors.ErrCodeInsufficientData,
			"cannot compute performance without portfolio snapshots")
	}

	if input.InitialCapital <= 0 {
		return types.PerformanceSummary{}, errors.Newf(errors.ErrCodeInvalidParameter,
			"initial capital must be positive, got %f", input.InitialCapital)
	}

	returns := Returns(input.InitialCapital, input.Snapshots)
	finalEquity := input.Snapshots[len(input.Snapshots)-1].Equity
	totalReturn := finalEquity/input.InitialCapital - 1

	totalFees := 0.0
	for _, fill := range input.Fills {
		totalFees += fill.Fees
	}

	years := float64(len(returns)) / input.PeriodsPerYear
	months := years * 12

	maxDrawdown, drawdownDuration := MaxDrawdown(input.InitialCapital, input.Snapshots)

	winning, losing := 0, 0

	for _, trade := range input.Trades {
		if trade.PnL > 0 {
			winning++
		} else if trade.PnL < 0 {
			losing++
		}
	}

	winRate := 0.0
	if len(input.Trades) > 0 {
		winRate = float64(winning) / float64(len(input.Trades))
	}

	tradesPerMonth := 0.0
	annualFeeDrag := 0.0

	if months > 0 {
		tradesPerMonth = float64(len(input.Trades)) / months
	}

	if years > 0 {
		annualFeeDrag = totalFees / input.InitialCapital / years
	}

	summary := types.PerformanceSummary{
		Start:               input.Snapshots[0].Timestamp,
		End:                 input.Snapshots[len(input.Snapshots)-1].Timestamp,
		InitialEquity:       input.InitialCapital,
		FinalEquity:         finalEquity,
		TotalFees:           totalFees,
		FillCount:           len(input.Fills),
		TotalReturn:         totalReturn,
		AnnualReturn:        AnnualReturn(totalReturn, len(returns), input.PeriodsPerYear),
		Sharpe:              Sharpe(returns, input.PeriodsPerYear),
		Sortino:             Sortino(returns, input.PeriodsPerYear),
		MaxDrawdown:         maxDrawdown,
		MaxDrawdownDuration: drawdownDuration,
		WinningMonths:       WinningMonths(input.InitialCapital, input.Snapshots),
		TimeInMarket:        TimeInMarket(input.Snapshots),
		ProfitFactor:        ProfitFactor(input.Trades),
		TradesPerMonth:      tradesPerMonth,
		AnnualFeeDrag:       annualFeeDrag,
		TradeCount:          len(input.Trades),
		WinningCount:        winning,
		LosingCount:         losing,
		WinRate:             winRate,
	}

	return summary, nil
}

// Returns computes per-snapshot simple returns, using the initial capital as
// the base for the first snapshot.
func Returns(initialCapital float64, snapshots []types.PortfolioSnapshot) []float64 {
	returns := make([]float64, 0, len(snapshots))
	previous := initialCapital

	for _, snapshot := range snapshots {
		returns = append(returns, snapshot.Equity/previous-1)
		previous = snapshot.Equity
	}

	return returns
}

// AnnualReturn geometrically annualizes the total return over numPeriods
// bars.
func AnnualReturn(totalReturn float64, numPeriods int, periodsPerYear float64) float64 {
	if numPeriods == 0 {
		return 0
	}

	return math.Pow(1+totalReturn, periodsPerYear/float64(numPeriods)) - 1
}

// Sharpe is the annualized mean over standard deviation of per-bar returns,
// zero risk-free rate. Returns 0 when the deviation is zero.
func Sharpe(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	mean := mean(returns)
	stddev := stddev(returns, mean)

	if stddev == 0 {
		return 0
	}

	return mean / stddev * math.Sqrt(periodsPerYear)
}

// Sortino is like Sharpe but penalizes only downside deviation. Returns 0
// when there are no negative returns.
func Sortino(returns []float64, periodsPerYear float64) float64 {
	if len(returns) < 2 {
		return 0
	}

	var downsideSquares float64

	for _, r := range returns {
		if r < 0 {
			downsideSquares += r * r
		}
	}

	downside := math.Sqrt(downsideSquares / float64(len(returns)))
	if downside == 0 {
		return 0
	}

	return mean(returns) / downside * math.Sqrt(periodsPerYear)
}

// MaxDrawdown returns the deepest peak-to-trough equity loss as a negative
// fraction, plus the longest time spent below a prior peak.
func MaxDrawdown(initialCapital float64, snapshots []types.PortfolioSnapshot) (float64, time.Duration) {
	if len(snapshots) == 0 {
		return 0, 0
	}

	peak := initialCapital
	peakTime := snapshots[0].Timestamp
	maxDrawdown := 0.0

	var longest time.Duration

	for _, snapshot := range snapshots {
		if snapshot.Equity >= peak {
			peak = snapshot.Equity
			peakTime = snapshot.Timestamp

			continue
		}

		drawdown := snapshot.Equity/peak - 1
		if drawdown < maxDrawdown {
			maxDrawdown = drawdown
		}

		if underwater := snapshot.Timestamp.Sub(peakTime); underwater > longest {
			longest = underwater
		}
	}

	return maxDrawdown, longest
}

// WinningMonths returns the fraction of calendar months with a positive
// compounded return.
func WinningMonths(initialCapital float64, snapshots []types.PortfolioSnapshot) float64 {
	if len(snapshots) == 0 {
		return 0
	}

	type month struct {
		year  int
		month time.Month
	}

	growth := make(map[month]float64)
	order := make([]month, 0)

	previous := initialCapital

	for _, snapshot := range snapshots {
		key := month{snapshot.Timestamp.Year(), snapshot.Timestamp.Month()}
		if _, seen := growth[key]; !seen {
			growth[key] = 1
			order = append(order, key)
		}

		growth[key] *= snapshot.Equity / previous
		previous = snapshot.Equity
	}

	winning := 0

	for _, key := range order {
		if growth[key] > 1 {
			winning++
		}
	}

	return float64(winning) / float64(len(order))
}

// TimeInMarket returns the fraction of snapshots with capital deployed.
func TimeInMarket(snapshots []types.PortfolioSnapshot) float64 {
	if len(snapshots) == 0 {
		return 0
	}

	invested := 0

	for _, snapshot := range snapshots {
		if snapshot.PositionsValue != 0 {
			invested++
		}
	}

	return float64(invested) / float64(len(snapshots))
}

// ProfitFactor is gross trade wins over gross trade losses. It is +Inf for
// a run with wins and no losses, and 0 for a run with no winning trades.
func ProfitFactor(trades []types.RoundTrip) float64 {
	var wins, losses float64

	for _, trade := range trades {
		if trade.PnL > 0 {
			wins += trade.PnL
		} else {
			losses -= trade.PnL
		}
	}

	if losses == 0 {
		if wins > 0 {
			return math.Inf(1)
		}

		return 0
	}

	return wins / losses
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// stddev is the sample standard deviation.
func stddev(values []float64, mean float64) float64 {
	var squares float64

	for _, v := range values {
		diff := v - mean
		squares += diff * diff
	}

	return math.Sqrt(squares / float64(len(values)-1))
}
