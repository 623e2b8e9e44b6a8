// Package history provides the historical market data sources used to warm up
// indicators before live samples arrive.
package history

import (
	"context"
	"iter"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
)

// Kind selects a Source implementation.
type Kind string

const (
	KindMemory  Kind = "memory"
	KindDuckDB  Kind = "duckdb"
	KindPolygon Kind = "polygon"
	KindBinance Kind = "binance"
)

// Source yields historical samples for an instrument in ascending time order.
//
// key is a hint: a source may return samples at the key's granularity or finer,
// and the caller consolidates them. Samples outside [from, to) are allowed and
// filtered by the caller. The sequence must be finite.
type Source interface {
	Fetch(ctx context.Context, instrument types.Instrument, key period.Key, from, to time.Time) iter.Seq2[types.MarketData, error]
}

// Config selects and configures a Source.
type Config struct {
	Kind Kind
	// Path is the parquet file read by the duckdb source.
	Path string
	// APIKey authenticates against polygon.io.
	APIKey string
	// Aggregate makes the duckdb source pre-aggregate rows to the requested period.
	Aggregate bool
}

// NewSource creates a Source for the configured kind.
func NewSource(cfg Config, log *logger.Logger) (Source, error) {
	switch cfg.Kind {
	case KindMemory:
		return NewMemorySource(), nil
	case KindDuckDB:
		var opts []DuckDBOption
		if cfg.Aggregate {
			opts = append(opts, WithAggregation())
		}

		return NewDuckDBSource(cfg.Path, log, opts...)
	case KindPolygon:
		return NewPolygonSource(cfg.APIKey)
	case KindBinance:
		return NewBinanceSource(), nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidProvider, "unsupported history source: %s", cfg.Kind)
	}
}

// fail returns a sequence that yields a single error.
func fail(err error) iter.Seq2[types.MarketData, error] {
	return func(yield func(types.MarketData, error) bool) {
		yield(types.MarketData{}, err)
	}
}
