package history

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/marcboeker/go-duckdb"
	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"go.uber.org/zap"
)

// DuckDBSource reads samples from a parquet file through an in-memory DuckDB view
// named market_data with columns time, symbol, open, high, low, close, volume.
type DuckDBSource struct {
	db     *sql.DB
	logger *logger.Logger
	sq     squirrel.StatementBuilderType
	// aggregate pre-buckets rows to the requested key inside DuckDB.
	aggregate bool
}

// DuckDBOption configures a DuckDBSource.
type DuckDBOption func(*DuckDBSource)

// WithAggregation makes the source return one pre-aggregated row per period
// instead of raw rows.
func WithAggregation() DuckDBOption {
	return func(d *DuckDBSource) {
		d.aggregate = true
	}
}

// NewDuckDBSource opens an in-memory DuckDB database and exposes the parquet file at path.
func NewDuckDBSource(path string, log *logger.Logger, opts ...DuckDBOption) (*DuckDBSource, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "duckdb source requires a parquet path")
	}

	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDataSourceUnavailable, "failed to open duckdb", err)
	}

	// Create a view from the parquet file - using raw SQL as Squirrel doesn't support CREATE VIEW
	query := fmt.Sprintf(`CREATE VIEW market_data AS SELECT * FROM read_parquet('%s');`, path)

	if _, err := db.Exec(query); err != nil {
		db.Close()

		return nil, errors.Wrapf(errors.ErrCodeDataSourceUnavailable, err, "failed to read parquet file %s", path)
	}

	d := &DuckDBSource{
		db:     db,
		logger: log,
		sq:     squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}

	for _, opt := range opts {
		opt(d)
	}

	log.Debug("DuckDB history source ready", zap.String("path", path), zap.Bool("aggregate", d.aggregate))

	return d, nil
}

// Close releases the database.
func (d *DuckDBSource) Close() error {
	return d.db.Close()
}

// Fetch implements Source.
func (d *DuckDBSource) Fetch(ctx context.Context, instrument types.Instrument, key period.Key, from, to time.Time) iter.Seq2[types.MarketData, error] {
	query, args, err := d.buildQuery(instrument, key, from, to)
	if err != nil {
		return fail(errors.Wrap(errors.ErrCodeQueryFailed, "failed to build query", err))
	}

	return func(yield func(types.MarketData, error) bool) {
		rows, err := d.db.QueryContext(ctx, query, args...)
		if err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "failed to query market data", err))

			return
		}
		defer rows.Close()

		for rows.Next() {
			sample := types.MarketData{Instrument: instrument}

			err := rows.Scan(&sample.Time, &sample.Open, &sample.High, &sample.Low, &sample.Close, &sample.Volume)
			if err != nil {
				yield(types.MarketData{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to scan market data", err))

				return
			}

			sample.Time = sample.Time.UTC()

			if !yield(sample, nil) {
				return
			}
		}

		if err := rows.Err(); err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeQueryFailed, "error iterating rows", err))
		}
	}
}

func (d *DuckDBSource) buildQuery(instrument types.Instrument, key period.Key, from, to time.Time) (string, []any, error) {
	window := squirrel.And{
		squirrel.Eq{"symbol": instrument.Symbol},
		squirrel.GtOrEq{"time": from},
		squirrel.Lt{"time": to},
	}

	if !d.aggregate {
		return d.sq.
			Select("time", "open", "high", "low", "close", "volume").
			From("market_data").
			Where(window).
			OrderBy("time ASC").
			ToSql()
	}

	// bucket origin is the period start of from so buckets line up with Key.Floor
	bucket := fmt.Sprintf("time_bucket(INTERVAL '%d microseconds', time, TIMESTAMP '%s')",
		key.Duration().Microseconds(), key.Floor(from).Format("2006-01-02 15:04:05.999999"))

	return d.sq.
		Select(
			bucket+" AS bucket",
			"arg_min(open, time) AS open",
			"max(high) AS high",
			"min(low) AS low",
			"arg_max(close, time) AS close",
			"sum(volume) AS volume",
		).
		From("market_data").
		Where(window).
		GroupBy("bucket").
		OrderBy("bucket ASC").
		ToSql()
}
