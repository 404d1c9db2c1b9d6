package datasource

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type DuckDBLoaderTestSuite struct {
	suite.Suite
	path string
}

func TestDuckDBLoaderSuite(t *testing.T) {
	suite.Run(t, new(DuckDBLoaderTestSuite))
}

func (s *DuckDBLoaderTestSuite) SetupTest() {
	content := "time,symbol,open,high,low,close,volume\n"

	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	for i, close := range []float64{100, 105, 110} {
		ts := base.AddDate(0, 0, i).Format("2006-01-02 15:04:05")
		content += fmt.Sprintf("%s,AAPL,%.2f,%.2f,%.2f,%.2f,1000\n", ts, close, close, close, close)
	}

	content += fmt.Sprintf("%s,MSFT,370.00,370.00,370.00,370.00,2000\n", base.Format("2006-01-02 15:04:05"))

	s.path = filepath.Join(s.T().TempDir(), "bars.csv")
	s.Require().NoError(os.WriteFile(s.path, []byte(content), 0644))
}

func (s *DuckDBLoaderTestSuite) newLoader() *DuckDBLoader {
	loader, err := NewDuckDBLoader(s.path, logger.NewNopLogger())
	s.Require().NoError(err)
	s.T().Cleanup(func() { loader.Close() })

	return loader
}

func (s *DuckDBLoaderTestSuite) TestLoadReturnsOrderedBars() {
	loader := s.newLoader()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	bars, err := loader.Load("AAPL", start, end, types.GranularityDaily, false)
	s.Require().NoError(err)
	s.Require().Len(bars, 3)

	s.Equal("AAPL", bars[0].Symbol)
	s.Equal(100.0, bars[0].Close)
	s.Equal(110.0, bars[2].Close)
	s.True(bars[0].Time.Before(bars[1].Time))
	s.True(bars[1].Time.Before(bars[2].Time))
}

func (s *DuckDBLoaderTestSuite) TestLoadFiltersByRange() {
	loader := s.newLoader()

	start := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 23, 59, 59, 0, time.UTC)

	bars, err := loader.Load("AAPL", start, end, types.GranularityDaily, false)
	s.Require().NoError(err)
	s.Require().Len(bars, 1)
	s.Equal(105.0, bars[0].Close)
}

func (s *DuckDBLoaderTestSuite) TestLoadUnknownSymbolReturnsNoBars() {
	loader := s.newLoader()

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	bars, err := loader.Load("TSLA", start, end, types.GranularityDaily, false)
	s.Require().NoError(err)
	s.Empty(bars)
}

func (s *DuckDBLoaderTestSuite) TestSymbols() {
	loader := s.newLoader()

	symbols, err := loader.Symbols()
	s.Require().NoError(err)
	s.Equal([]string{"AAPL", "MSFT"}, symbols)
}

func (s *DuckDBLoaderTestSuite) TestUnsupportedExtension() {
	path := filepath.Join(s.T().TempDir(), "bars.json")
	s.Require().NoError(os.WriteFile(path, []byte("{}"), 0644))

	_, err := NewDuckDBLoader(path, logger.NewNopLogger())
	s.Require().Error(err)
	s.True(errors.HasCode(err, errors.ErrCodeInvalidParameter))
}
