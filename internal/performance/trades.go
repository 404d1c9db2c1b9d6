package performance

import (
	"sort"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/shopspring/decimal"
)

// openLot is an unmatched portion of an opening fill.
type openLot struct {
	quantity   decimal.Decimal
	price      float64
	entry      types.Fill
	feePerUnit decimal.Decimal
}

// FillsToRoundTrips reconstructs completed trades from the fill log by FIFO
// lot matching per symbol: each closing fill is matched against the oldest
// open lot in the opposite direction. A fill larger than the open quantity
// closes everything and opens a new lot the other way. Fees are pro-rated
// by quantity across the lots a fill touches.
func FillsToRoundTrips(fills []types.Fill) []types.RoundTrip {
	bySymbol := make(map[string][]types.Fill)
	symbols := make([]string, 0)

	for _, fill := range fills {
		if _, seen := bySymbol[fill.Symbol]; !seen {
			symbols = append(symbols, fill.Symbol)
		}

		bySymbol[fill.Symbol] = append(bySymbol[fill.Symbol], fill)
	}

	sort.Strings(symbols)

	var trades []types.RoundTrip

	for _, symbol := range symbols {
		trades = append(trades, matchSymbol(bySymbol[symbol])...)
	}

	sort.SliceStable(trades, func(i, j int) bool {
		return trades[i].ExitTime.Before(trades[j].ExitTime)
	})

	return trades
}

func matchSymbol(fills []types.Fill) []types.RoundTrip {
	var trades []types.RoundTrip

	var lots []openLot

	// direction of the open lots: +1 long, -1 short, 0 flat
	direction := 0.0

	for _, fill := range fills {
		remaining := decimal.NewFromFloat(fill.Quantity)
		feePerUnit := decimal.Zero

		if fill.Quantity > 0 {
			feePerUnit = decimal.NewFromFloat(fill.Fees).Div(remaining)
		}

		fillDirection := fill.Side.Direction()

		// Same direction as the book (or flat): just stack a lot.
		if direction == 0 || fillDirection == direction {
			lots = append(lots, openLot{
				quantity:   remaining,
				price:      fill.FillPrice,
				entry:      fill,
				feePerUnit: feePerUnit,
			})
			direction = fillDirection

			continue
		}

		// Opposite direction: consume lots oldest first.
		for remaining.IsPositive() && len(lots) > 0 {
			lot := &lots[0]

			matched := decimal.Min(remaining, lot.quantity)
			trades = append(trades, buildRoundTrip(*lot, fill, matched, feePerUnit, direction))

			lot.quantity = lot.quantity.Sub(matched)
			remaining = remaining.Sub(matched)

			if lot.quantity.IsZero() {
				lots = lots[1:]
			}
		}

		switch {
		case len(lots) == 0 && remaining.IsPositive():
			// The fill flipped the book.
			lots = append(lots, openLot{
				quantity:   remaining,
				price:      fill.FillPrice,
				entry:      fill,
				feePerUnit: feePerUnit,
			})
			direction = fillDirection
		case len(lots) == 0:
			direction = 0
		}
	}

	return trades
}

func buildRoundTrip(lot openLot, exit types.Fill, matched decimal.Decimal, exitFeePerUnit decimal.Decimal, direction float64) types.RoundTrip {
	side := types.PositionSideLong
	if direction < 0 {
		side = types.PositionSideShort
	}

	quantity, _ := matched.Float64()

	fees, _ := lot.feePerUnit.Add(exitFeePerUnit).Mul(matched).Float64()

	trade := types.RoundTrip{
		Symbol:     exit.Symbol,
		Side:       side,
		Quantity:   quantity,
		EntryTime:  lot.entry.Timestamp,
		ExitTime:   exit.Timestamp,
		EntryPrice: lot.price,
		ExitPrice:  exit.FillPrice,
		Fees:       fees,
		PnL:        0,
	}

	gross := decimal.NewFromFloat(trade.GrossPnL())
	trade.PnL, _ = gross.Sub(decimal.NewFromFloat(fees)).Float64()

	return trade
}
