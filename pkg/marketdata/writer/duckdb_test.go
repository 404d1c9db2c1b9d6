package writer

import (
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/stretchr/testify/suite"
)

type DuckDBWriterTestSuite struct {
	suite.Suite
}

func TestDuckDBWriterSuite(t *testing.T) {
	suite.Run(t, new(DuckDBWriterTestSuite))
}

func (s *DuckDBWriterTestSuite) sampleBars() []types.Bar {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	return []types.Bar{
		{Time: base, Symbol: "AAPL", Open: 100, High: 102, Low: 99, Close: 101, Volume: 1000},
		{Time: base.AddDate(0, 0, 1), Symbol: "AAPL", Open: 101, High: 103, Low: 100, Close: 102, Volume: 1100},
	}
}

func (s *DuckDBWriterTestSuite) TestWriteAndFinalizeProducesParquet() {
	outputPath := filepath.Join(s.T().TempDir(), "AAPL.parquet")
	w := NewDuckDBWriter(outputPath)

	s.Require().NoError(w.Initialize())
	defer w.Close()

	for _, bar := range s.sampleBars() {
		s.Require().NoError(w.Write(bar))
	}

	path, err := w.Finalize()
	s.Require().NoError(err)
	s.Equal(outputPath, path)
	s.FileExists(path)

	// Read the file back through DuckDB and verify the contents.
	db, err := sql.Open("duckdb", ":memory:")
	s.Require().NoError(err)
	defer db.Close()

	var count int
	s.Require().NoError(db.QueryRow(`SELECT COUNT(*) FROM read_parquet('`+path+`')`).Scan(&count))
	s.Equal(2, count)

	var symbol string
	var closePrice float64
	s.Require().NoError(db.QueryRow(`SELECT symbol, close FROM read_parquet('` + path + `') ORDER BY time LIMIT 1`).Scan(&symbol, &closePrice))
	s.Equal("AAPL", symbol)
	s.Equal(101.0, closePrice)
}

func (s *DuckDBWriterTestSuite) TestWriteBeforeInitializeFails() {
	w := NewDuckDBWriter(filepath.Join(s.T().TempDir(), "out.parquet"))

	err := w.Write(types.Bar{Symbol: "AAPL"})
	s.Error(err)
}

func (s *DuckDBWriterTestSuite) TestFinalizeTwiceFails() {
	w := NewDuckDBWriter(filepath.Join(s.T().TempDir(), "out.parquet"))
	s.Require().NoError(w.Initialize())
	defer w.Close()

	s.Require().NoError(w.Write(s.sampleBars()[0]))

	_, err := w.Finalize()
	s.Require().NoError(err)

	_, err = w.Finalize()
	s.Error(err)
}

func (s *DuckDBWriterTestSuite) TestCloseWithoutFinalize() {
	w := NewDuckDBWriter(filepath.Join(s.T().TempDir(), "out.parquet"))
	s.Require().NoError(w.Initialize())
	s.Require().NoError(w.Write(s.sampleBars()[0]))

	s.NoError(w.Close())
}
