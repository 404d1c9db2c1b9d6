package engine

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-backtest/internal/logger"
	"github.com/rxtech-lab/argo-backtest/internal/types"
	"github.com/rxtech-lab/argo-backtest/pkg/errors"
	"go.uber.org/zap"
)

// BacktestState persists the run's fill log and equity curve in an
// in-memory DuckDB so results can be queried with SQL during the run and
// exported to Parquet afterwards.
type BacktestState struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
}

func NewBacktestState(logger *logger.Logger) *BacktestState {
	db, err := sql.Open("duckdb", ":memory:")
	if err != nil {
		logger.Error("Failed to open database", zap.Error(err))
		return nil
	}

	return &BacktestState{
		logger: logger,
		db:     db,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question),
	}
}

// Initialize creates the fills and equity curve tables.
func (b *BacktestState) Initialize() error {
	_, err := b.db.Exec(`
		CREATE TABLE IF NOT EXISTS fills (
			fill_id TEXT PRIMARY KEY,
			order_id TEXT,
			timestamp TIMESTAMP,
			symbol TEXT,
			side TEXT,
			quantity DOUBLE,
			fill_price DOUBLE,
			fees DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStateInitFailed, "failed to create fills table", err)
	}

	_, err = b.db.Exec(`
		CREATE TABLE IF NOT EXISTS equity_curve (
			timestamp TIMESTAMP PRIMARY KEY,
			equity DOUBLE,
			cash DOUBLE,
			positions_value DOUBLE
		)
	`)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStateInitFailed, "failed to create equity_curve table", err)
	}

	return nil
}

// RecordFill appends one fill to the fill log.
func (b *BacktestState) RecordFill(fill types.Fill) error {
	insertQuery := b.sq.
		Insert("fills").
		Columns("fill_id", "order_id", "timestamp", "symbol", "side", "quantity", "fill_price", "fees").
		Values(fill.ID, fill.OrderID, fill.Timestamp, fill.Symbol, string(fill.Side), fill.Quantity, fill.FillPrice, fill.Fees).
		RunWith(b.db)

	if _, err := insertQuery.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert fill", err)
	}

	return nil
}

// RecordSnapshot appends one equity curve row.
func (b *BacktestState) RecordSnapshot(snapshot types.PortfolioSnapshot) error {
	insertQuery := b.sq.
		Insert("equity_curve").
		Columns("timestamp", "equity", "cash", "positions_value").
		Values(snapshot.Timestamp, snapshot.Equity, snapshot.Cash, snapshot.PositionsValue).
		RunWith(b.db)

	if _, err := insertQuery.Exec(); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to insert snapshot", err)
	}

	return nil
}

// GetAllFills returns the fill log ordered by time, then insertion.
func (b *BacktestState) GetAllFills() ([]types.Fill, error) {
	selectQuery := b.sq.
		Select("fill_id", "order_id", "timestamp", "symbol", "side", "quantity", "fill_price", "fees").
		From("fills").
		OrderBy("timestamp ASC", "rowid ASC").
		RunWith(b.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query fills", err)
	}
	defer rows.Close()

	var fills []types.Fill

	for rows.Next() {
		var fill types.Fill
		var side string

		err := rows.Scan(&fill.ID, &fill.OrderID, &fill.Timestamp, &fill.Symbol, &side, &fill.Quantity, &fill.FillPrice, &fill.Fees)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan fill", err)
		}

		fill.Side = types.Side(side)
		fills = append(fills, fill)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating fills", err)
	}

	return fills, nil
}

// GetEquityCurve returns the equity curve rows ordered by time. The
// per-symbol position map is not stored in the table, so it is nil here.
func (b *BacktestState) GetEquityCurve() ([]types.PortfolioSnapshot, error) {
	selectQuery := b.sq.
		Select("timestamp", "equity", "cash", "positions_value").
		From("equity_curve").
		OrderBy("timestamp ASC").
		RunWith(b.db)

	rows, err := selectQuery.Query()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query equity curve", err)
	}
	defer rows.Close()

	var snapshots []types.PortfolioSnapshot

	for rows.Next() {
		var snapshot types.PortfolioSnapshot

		err := rows.Scan(&snapshot.Timestamp, &snapshot.Equity, &snapshot.Cash, &snapshot.PositionsValue)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan snapshot", err)
		}

		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating equity curve", err)
	}

	return snapshots, nil
}

// TotalFees sums fees across the fill log.
func (b *BacktestState) TotalFees() (float64, error) {
	var fees sql.NullFloat64

	selectQuery := b.sq.
		Select("SUM(fees)").
		From("fills").
		RunWith(b.db)

	if err := selectQuery.QueryRow().Scan(&fees); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to sum fees", err)
	}

	return fees.Float64, nil
}

// FillCount returns the number of recorded fills.
func (b *BacktestState) FillCount() (int, error) {
	var count int

	selectQuery := b.sq.
		Select("COUNT(*)").
		From("fills").
		RunWith(b.db)

	if err := selectQuery.QueryRow().Scan(&count); err != nil {
		return 0, errors.Wrap(errors.ErrCodeQueryFailed, "failed to count fills", err)
	}

	return count, nil
}

// Write exports both tables as Parquet files into the given directory.
func (b *BacktestState) Write(path string) error {
	fillsPath := filepath.Join(path, "fills.parquet")
	equityPath := filepath.Join(path, "equity_curve.parquet")

	// Squirrel has no COPY support, raw SQL here.
	_, err := b.db.Exec(fmt.Sprintf(`COPY fills TO '%s' (FORMAT PARQUET)`, fillsPath))
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to export fills", err)
	}

	_, err = b.db.Exec(fmt.Sprintf(`COPY equity_curve TO '%s' (FORMAT PARQUET)`, equityPath))
	if err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to export equity curve", err)
	}

	b.logger.Debug("State exported",
		zap.String("fills", fillsPath),
		zap.String("equity_curve", equityPath),
	)

	return nil
}

// Cleanup drops all tables so the state can be reused for another run.
func (b *BacktestState) Cleanup() error {
	if _, err := b.db.Exec(`DROP TABLE IF EXISTS fills`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop fills table", err)
	}

	if _, err := b.db.Exec(`DROP TABLE IF EXISTS equity_curve`); err != nil {
		return errors.Wrap(errors.ErrCodeQueryFailed, "failed to drop equity_curve table", err)
	}

	return nil
}

// Close releases the underlying database.
func (b *BacktestState) Close() error {
	return b.db.Close()
}
