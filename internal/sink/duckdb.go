package sink

import (
	"database/sql"
	"fmt"
	"sync"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/metrics"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// DuckDBSink collects closed bars in an in-memory DuckDB table inside one
// transaction and optionally exports them to parquet on Finalize.
type DuckDBSink struct {
	mu         sync.Mutex
	db         *sql.DB
	tx         *sql.Tx
	stmt       *sql.Stmt
	sq         squirrel.StatementBuilderType
	outputPath string // Parquet file written by Finalize, empty to skip export
	written    int
	logger     *logger.Logger
	metrics    *metrics.Metrics
}

// NewDuckDBSink creates a new DuckDBSink. Call Initialize before writing.
func NewDuckDBSink(outputPath string, log *logger.Logger, m *metrics.Metrics) *DuckDBSink {
	if log == nil {
		log = logger.NewNopLogger()
	}

	return &DuckDBSink{
		outputPath: outputPath,
		sq:         squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		logger:     log,
		metrics:    m,
	}
}

// Initialize opens the database, creates the bars table, begins a transaction
// and prepares the insert statement.
func (s *DuckDBSink) Initialize() (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.db, err = sql.Open("duckdb", "")
	if err != nil {
		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to open DuckDB connection", err)
	}

	_, err = s.db.Exec(`
		CREATE TABLE IF NOT EXISTS bars (
			id TEXT,
			symbol TEXT,
			exchange TEXT,
			period TEXT,
			start_time TIMESTAMP,
			end_time TIMESTAMP,
			open DOUBLE,
			high DOUBLE,
			low DOUBLE,
			close DOUBLE,
			volume DOUBLE,
			samples INTEGER
		)
	`)
	if err != nil {
		s.db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to create table", err)
	}

	s.tx, err = s.db.Begin()
	if err != nil {
		s.db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to begin transaction", err)
	}

	s.stmt, err = s.tx.Prepare(`
		INSERT INTO bars (id, symbol, exchange, period, start_time, end_time, open, high, low, close, volume, samples)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		s.tx.Rollback()
		s.db.Close()

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to prepare statement", err)
	}

	return nil
}

// Write implements BarWriter.
func (s *DuckDBSink) Write(bar types.Bar, key period.Key) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stmt == nil {
		s.metrics.BarPersisted(false)

		return errors.New(errors.ErrCodeMarketDataWriteFailed, "sink not initialized or already finalized")
	}

	_, err := s.stmt.Exec(
		uuid.New().String(),
		bar.Instrument.Symbol,
		bar.Instrument.Exchange,
		key.String(),
		bar.Start,
		bar.End,
		bar.Open.InexactFloat64(),
		bar.High.InexactFloat64(),
		bar.Low.InexactFloat64(),
		bar.Close.InexactFloat64(),
		bar.Volume.InexactFloat64(),
		bar.Count,
	)
	if err != nil {
		s.metrics.BarPersisted(false)

		return errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to insert bar", err)
	}

	s.written++
	s.metrics.BarPersisted(true)

	return nil
}

// Written returns the number of bars inserted.
func (s *DuckDBSink) Written() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.written
}

// Bars reads back the stored bars of instrument and key in time order.
func (s *DuckDBSink) Bars(instrument types.Instrument, key period.Key) ([]types.Bar, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query, args, err := s.sq.
		Select("start_time", "end_time", "open", "high", "low", "close", "volume", "samples").
		From("bars").
		Where(squirrel.And{
			squirrel.Eq{"symbol": instrument.Symbol},
			squirrel.Eq{"exchange": instrument.Exchange},
			squirrel.Eq{"period": key.String()},
		}).
		OrderBy("start_time ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err)
	}

	var rows *sql.Rows

	switch {
	case s.tx != nil:
		rows, err = s.tx.Query(query, args...)
	case s.db != nil:
		rows, err = s.db.Query(query, args...)
	default:
		return nil, errors.New(errors.ErrCodeQueryFailed, "sink is closed")
	}

	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query bars", err)
	}
	defer rows.Close()

	var bars []types.Bar

	for rows.Next() {
		bar := types.Bar{Instrument: instrument}

		err := rows.Scan(&bar.Start, &bar.End, &bar.Open, &bar.High, &bar.Low, &bar.Close, &bar.Volume, &bar.Count)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeQueryFailed, "failed to scan bar", err)
		}

		bar.Start = bar.Start.UTC()
		bar.End = bar.End.UTC()
		bars = append(bars, bar)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating bars", err)
	}

	return bars, nil
}

// Finalize commits the transaction and exports the bars to parquet when an output path is set.
func (s *DuckDBSink) Finalize() (outputPath string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.tx == nil {
		return "", errors.New(errors.ErrCodeMarketDataWriteFailed, "sink not initialized or transaction is nil")
	}

	if s.stmt != nil {
		s.stmt.Close()
		s.stmt = nil
	}

	if err = s.tx.Commit(); err != nil {
		s.tx.Rollback()
		s.tx = nil

		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to commit transaction", err)
	}

	s.tx = nil

	if s.outputPath == "" {
		return "", nil
	}

	_, err = s.db.Exec(fmt.Sprintf(`COPY (SELECT * FROM bars ORDER BY period, symbol, start_time) TO '%s' (FORMAT PARQUET)`, s.outputPath))
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeMarketDataWriteFailed, "failed to export to parquet", err)
	}

	s.logger.Info("Exported closed bars", zap.String("path", s.outputPath), zap.Int("bars", s.written))

	return s.outputPath, nil
}

// Close releases the statement, rolls back an unfinished transaction and closes the database.
func (s *DuckDBSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error

	if s.stmt != nil {
		err = multierr.Append(err, s.stmt.Close())
		s.stmt = nil
	}

	if s.tx != nil {
		if rbErr := s.tx.Rollback(); rbErr != nil {
			s.logger.Warn("Failed to rollback transaction during close", zap.Error(rbErr))
		}

		s.tx = nil
	}

	if s.db != nil {
		err = multierr.Append(err, s.db.Close())
		s.db = nil
	}

	return err
}
