package engine

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type StateTestSuite struct {
	suite.Suite
	state *BacktestState
}

func TestStateTestSuite(t *testing.T) {
	suite.Run(t, new(StateTestSuite))
}

func (s *StateTestSuite) SetupTest() {
	s.state = NewBacktestState(logger.NewNopLogger())
	s.Require().NotNil(s.state)
	s.Require().NoError(s.state.Initialize())
}

func (s *StateTestSuite) TearDownTest() {
	s.Require().NoError(s.state.Close())
}

func stateFill(id string, ts time.Time, side types.Side, quantity, price, fees float64) types.Fill {
	return types.Fill{
		ID:        id,
		OrderID:   "order-" + id,
		Timestamp: ts,
		Symbol:    "AAPL",
		Side:      side,
		Quantity:  quantity,
		FillPrice: price,
		Fees:      fees,
	}
}

func (s *StateTestSuite) TestRecordAndGetFills() {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	s.Require().NoError(s.state.RecordFill(stateFill("1", base, types.SideBuy, 10, 100, 1)))
	s.Require().NoError(s.state.RecordFill(stateFill("2", base.AddDate(0, 0, 1), types.SideSell, 10, 110, 1)))

	fills, err := s.state.GetAllFills()
	s.Require().NoError(err)
	s.Require().Len(fills, 2)

	s.Equal("1", fills[0].ID)
	s.Equal(types.SideBuy, fills[0].Side)
	s.Equal(100.0, fills[0].FillPrice)
	s.Equal("2", fills[1].ID)
	s.Equal(types.SideSell, fills[1].Side)
}

func (s *StateTestSuite) TestFillsOrderedByTimestamp() {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	s.Require().NoError(s.state.RecordFill(stateFill("later", base.AddDate(0, 0, 1), types.SideBuy, 1, 100, 0)))
	s.Require().NoError(s.state.RecordFill(stateFill("earlier", base, types.SideBuy, 1, 100, 0)))

	fills, err := s.state.GetAllFills()
	s.Require().NoError(err)
	s.Require().Len(fills, 2)
	s.Equal("earlier", fills[0].ID)
	s.Equal("later", fills[1].ID)
}

func (s *StateTestSuite) TestTotalFeesAndFillCount() {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	fees, err := s.state.TotalFees()
	s.Require().NoError(err)
	s.Equal(0.0, fees)

	s.Require().NoError(s.state.RecordFill(stateFill("1", base, types.SideBuy, 10, 100, 1.5)))
	s.Require().NoError(s.state.RecordFill(stateFill("2", base, types.SideSell, 10, 100, 2.5)))

	fees, err = s.state.TotalFees()
	s.Require().NoError(err)
	s.Equal(4.0, fees)

	count, err := s.state.FillCount()
	s.Require().NoError(err)
	s.Equal(2, count)
}

func (s *StateTestSuite) TestRecordAndGetEquityCurve() {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	s.Require().NoError(s.state.RecordSnapshot(types.PortfolioSnapshot{
		Timestamp: base, Equity: 100000, Cash: 99000, PositionsValue: 1000,
	}))
	s.Require().NoError(s.state.RecordSnapshot(types.PortfolioSnapshot{
		Timestamp: base.AddDate(0, 0, 1), Equity: 100500, Cash: 99000, PositionsValue: 1500,
	}))

	curve, err := s.state.GetEquityCurve()
	s.Require().NoError(err)
	s.Require().Len(curve, 2)
	s.Equal(100000.0, curve[0].Equity)
	s.Equal(1500.0, curve[1].PositionsValue)
}

func (s *StateTestSuite) TestWriteExportsParquet() {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	s.Require().NoError(s.state.RecordFill(stateFill("1", base, types.SideBuy, 10, 100, 1)))
	s.Require().NoError(s.state.RecordSnapshot(types.PortfolioSnapshot{
		Timestamp: base, Equity: 100000, Cash: 99000, PositionsValue: 1000,
	}))

	dir := s.T().TempDir()
	s.Require().NoError(s.state.Write(dir))

	for _, name := range []string{"fills.parquet", "equity_curve.parquet"} {
		info, err := os.Stat(filepath.Join(dir, name))
		s.Require().NoError(err)
		s.Positive(info.Size())
	}
}

func (s *StateTestSuite) TestCleanupResetsState() {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	s.Require().NoError(s.state.RecordFill(stateFill("1", base, types.SideBuy, 10, 100, 1)))
	s.Require().NoError(s.state.Cleanup())
	s.Require().NoError(s.state.Initialize())

	count, err := s.state.FillCount()
	s.Require().NoError(err)
	s.Equal(0, count)
}
