package datasource

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBLoader reads bar history from a parquet or CSV file through an
// in-memory DuckDB instance. The file must carry the columns
// time, symbol, open, high, low, close, volume.
//
// The loader does not filter by session: the clock only reveals bars at
// timestamps it visits, so extended-hours rows in the file are simply never
// surfaced on a regular-hours run.
type DuckDBLoader struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

// NewDuckDBLoader opens an in-memory DuckDB over the given data file.
func NewDuckDBLoader(path string, log *logger.Logger) (*DuckDBLoader, error) {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open DuckDB", err)
	}

	var readFn string

	switch filepath.Ext(path) {
	case ".parquet":
		readFn = "read_parquet"
	case ".csv":
		readFn = "read_csv_auto"
	default:
		db.Close()

		return nil, errors.Newf(errors.ErrCodeInvalidParameter, "unsupported data file extension: %s", path)
	}

	// CREATE VIEW has no placeholder support; the path comes from config,
	// not user-facing input.
	query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM %s('%s')`, readFn, path)
	if _, err := db.Exec(query); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to create view over %s", path)
	}

	log.Debug("DuckDB loader initialized", zap.String("path", path))

	return &DuckDBLoader{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}, nil
}

// Load implements BarLoader.
func (l *DuckDBLoader) Load(symbol string, start time.Time, end time.Time, granularity types.Granularity, extendedHours bool) ([]types.Bar, error) {
	selectQuery := l.sq.
		Select("time", "symbol", "open", "high", "low", "close", "volume").
		From("market_data").
		Where(squirrel.Eq{"symbol": symbol}).
		Where(squirrel.GtOrEq{"time": start}).
		Where(squirrel.LtOrEq{"time": end}).
		OrderBy("time ASC").
		RunWith(l.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeQueryFailed, err, "failed to query bars for %s", symbol)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		var bar types.Bar

		err := rows.Scan(&bar.Time, &bar.Symbol, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err)
	}

	return bars, nil
}

// Symbols returns the distinct symbols present in the data file.
func (l *DuckDBLoader) Symbols() ([]string, error) {
	selectQuery := l.sq.
		Select("DISTINCT symbol").
		From("market_data").
		OrderBy("symbol").
		RunWith(l.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query symbols", err)
	}
	defer rows.Close()

	var symbols []string

	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan symbol", err)
		}

		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating symbols", err)
	}

	return symbols, nil
}

// Close implements BarLoader.
func (l *DuckDBLoader) Close() error {
	return l.db.Close()
}
