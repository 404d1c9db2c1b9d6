package datasource

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// HistoricalDataSource drip-feeds preloaded bar history. Per instrument it
// keeps the full history plus a cursor marking how much has been revealed;
// LatestBars only ever serves revealed bars.
type HistoricalDataSource struct {
	loader    BarLoader
	logger    *logger.Logger
	gapPolicy types.GapPolicy

	symbols     []string
	allBars     map[string][]types.Bar
	cursors     map[string]int
	latestBars  map[string][]types.Bar
	granularity map[string]types.Granularity
	currentTime time.Time
}

// NewHistoricalDataSource creates a data source backed by the given loader.
func NewHistoricalDataSource(loader BarLoader, gapPolicy types.GapPolicy, log *logger.Logger) *HistoricalDataSource {
	return &HistoricalDataSource{
		loader:      loader,
		logger:      log,
		gapPolicy:   gapPolicy,
		symbols:     nil,
		allBars:     make(map[string][]types.Bar),
		cursors:     make(map[string]int),
		latestBars:  make(map[string][]types.Bar),
		granularity: make(map[string]types.Granularity),
		currentTime: time.Time{},
	}
}

// LoadInstrument implements MarketDataSource.
func (d *HistoricalDataSource) LoadInstrument(symbol string, start time.Time, end time.Time, granularity types.Granularity, extendedHours bool) error {
	bars, err := d.loader.Load(symbol, start, end, granularity, extendedHours)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to load bars for %s", symbol)
	}

	if len(bars) == 0 {
		return errors.Newf(errors.ErrCodeDataNotFound, "no bars for %s between %s and %s",
			symbol, start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	if _, loaded := d.allBars[symbol]; !loaded {
		d.symbols = append(d.symbols, symbol)
	}

	d.allBars[symbol] = bars
	d.cursors[symbol] = 0
	d.latestBars[symbol] = nil
	d.granularity[symbol] = granularity

	d.logger.Debug("Instrument loaded",
		zap.String("symbol", symbol),
		zap.Int("bars", len(bars)),
	)

	return nil
}

// Unload implements MarketDataSource.
func (d *HistoricalDataSource) Unload(symbol string) {
	delete(d.allBars, symbol)
	delete(d.cursors, symbol)
	delete(d.latestBars, symbol)
	delete(d.granularity, symbol)

	for i, s := range d.symbols {
		if s == symbol {
			d.symbols = append(d.symbols[:i], d.symbols[i+1:]...)

			break
		}
	}
}

// LoadedSymbols implements MarketDataSource.
func (d *HistoricalDataSource) LoadedSymbols() []string {
	return d.symbols
}

// AdvanceTo implements MarketDataSource. For each instrument it reveals the
// bar stamped ts, if one exists. Bars stamped before ts that the clock never
// visited are skipped. A missing bar at ts is a data gap: forward_fill
// repeats the last revealed bar at ts with zero volume, skip leaves the
// history unchanged. Both are logged, neither is fatal.
func (d *HistoricalDataSource) AdvanceTo(ts time.Time) {
	d.currentTime = ts

	for _, symbol := range d.symbols {
		bars := d.allBars[symbol]
		cursor := d.cursors[symbol]
		daily := !d.granularity[symbol].IsIntraday()

		for cursor < len(bars) && barBefore(bars[cursor].Time, ts, daily) {
			cursor++
		}

		if cursor < len(bars) && barMatches(bars[cursor].Time, ts, daily) {
			bar := bars[cursor]
			// Normalize the revealed timestamp to the clock's so every log
			// speaks the same timeline.
			bar.Time = ts
			d.latestBars[symbol] = append(d.latestBars[symbol], bar)
			cursor++
			d.cursors[symbol] = cursor

			continue
		}

		d.cursors[symbol] = cursor
		d.fillGap(symbol, ts)
	}
}

// dateKey flattens a timestamp to its wall-clock date. Daily bar files
// often store naive midnights that parse as UTC while the clock runs in
// exchange time, so daily bars are matched by date, not by instant.
func dateKey(t time.Time) int {
	return t.Year()*10000 + int(t.Month())*100 + t.Day()
}

func barBefore(barTime time.Time, ts time.Time, daily bool) bool {
	if daily {
		return dateKey(barTime) < dateKey(ts)
	}

	return barTime.Before(ts)
}

func barMatches(barTime time.Time, ts time.Time, daily bool) bool {
	if daily {
		return dateKey(barTime) == dateKey(ts)
	}

	return barTime.Equal(ts)
}

func (d *HistoricalDataSource) fillGap(symbol string, ts time.Time) {
	revealed := d.latestBars[symbol]

	if d.gapPolicy == types.GapPolicyForwardFill && len(revealed) > 0 {
		last := revealed[len(revealed)-1]
		filled := last
		filled.Time = ts
		filled.Volume = 0
		d.latestBars[symbol] = append(revealed, filled)

		d.logger.Warn("Data gap forward-filled",
			zap.String("symbol", symbol),
			zap.Time("timestamp", ts),
			zap.Float64("carried_close", last.Close),
		)

		return
	}

	d.logger.Warn("Data gap skipped",
		zap.String("symbol", symbol),
		zap.Time("timestamp", ts),
	)
}

// LatestBars implements MarketDataSource.
func (d *HistoricalDataSource) LatestBars(symbol string, n int) []types.Bar {
	revealed, ok := d.latestBars[symbol]
	if !ok || n <= 0 {
		return nil
	}

	if n > len(revealed) {
		n = len(revealed)
	}

	return revealed[len(revealed)-n:]
}

// LatestBar implements MarketDataSource.
func (d *HistoricalDataSource) LatestBar(symbol string) optional.Option[types.Bar] {
	revealed := d.latestBars[symbol]
	if len(revealed) == 0 {
		return optional.None[types.Bar]()
	}

	return optional.Some(revealed[len(revealed)-1])
}

// CurrentTime implements MarketDataSource.
func (d *HistoricalDataSource) CurrentTime() time.Time {
	return d.currentTime
}
