package indicator

import (
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type MATestSuite struct {
	suite.Suite
}

func TestMATestSuite(t *testing.T) {
	suite.Run(t, new(MATestSuite))
}

func barsFromCloses(closes ...float64) []types.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	bars := make([]types.Bar, len(closes))

	for i, close := range closes {
		bars[i] = types.Bar{
			Time:   base.AddDate(0, 0, i),
			Symbol: "AAPL",
			Open:   close,
			High:   close,
			Low:    close,
			Close:  close,
			Volume: 1,
		}
	}

	return bars
}

func (s *MATestSuite) TestSMA() {
	bars := barsFromCloses(1, 2, 3, 4, 5)

	sma, err := SMA(bars, 5)
	s.Require().NoError(err)
	s.InDelta(3.0, sma, 1e-9)

	// Only the most recent bars of the window count.
	sma, err = SMA(bars, 2)
	s.Require().NoError(err)
	s.InDelta(4.5, sma, 1e-9)
}

func (s *MATestSuite) TestSMAInsufficientData() {
	bars := barsFromCloses(1, 2)

	_, err := SMA(bars, 3)
	s.Require().Error(err)
	s.True(errors.IsInsufficientDataError(err))
}

func (s *MATestSuite) TestSMAInvalidPeriod() {
	_, err := SMA(barsFromCloses(1, 2, 3), 0)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}

func (s *MATestSuite) TestEMAConstantSeries() {
	bars := barsFromCloses(5, 5, 5, 5, 5, 5)

	ema, err := EMA(bars, 3)
	s.Require().NoError(err)
	s.InDelta(5.0, ema, 1e-9)
}

func (s *MATestSuite) TestEMAFollowsTrend() {
	bars := barsFromCloses(1, 2, 3, 4, 5, 6, 7, 8)

	ema, err := EMA(bars, 3)
	s.Require().NoError(err)

	sma, err := SMA(bars, 8)
	s.Require().NoError(err)

	// EMA weights recent closes more heavily than a full-window SMA.
	s.Greater(ema, sma)
}

func (s *MATestSuite) TestDetectCrossAbove() {
	// Fast SMA(2) crosses above slow SMA(3) on the last bar.
	bars := barsFromCloses(10, 9, 8, 9, 12)

	signal, err := DetectCross(bars, 2, 3)
	s.Require().NoError(err)
	s.Equal(CrossAbove, signal)
}

func (s *MATestSuite) TestDetectCrossBelow() {
	bars := barsFromCloses(8, 9, 10, 9, 6)

	signal, err := DetectCross(bars, 2, 3)
	s.Require().NoError(err)
	s.Equal(CrossBelow, signal)
}

func (s *MATestSuite) TestDetectCrossNone() {
	bars := barsFromCloses(1, 2, 3, 4, 5)

	signal, err := DetectCross(bars, 2, 3)
	s.Require().NoError(err)
	s.Equal(CrossNone, signal)
}

func (s *MATestSuite) TestDetectCrossRequiresHistory() {
	bars := barsFromCloses(1, 2, 3)

	_, err := DetectCross(bars, 2, 3)
	s.Require().Error(err)
	s.True(errors.IsInsufficientDataError(err))
}

func (s *MATestSuite) TestDetectCrossRejectsBadPeriods() {
	bars := barsFromCloses(1, 2, 3, 4, 5)

	_, err := DetectCross(bars, 3, 3)
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidPeriod))
}
