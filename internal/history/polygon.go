package history

import (
	"context"
	"iter"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
)

// PolygonSource fetches aggregates from polygon.io.
type PolygonSource struct {
	client *polygon.Client
}

// NewPolygonSource creates a PolygonSource. apiKey is required.
func NewPolygonSource(apiKey string) (*PolygonSource, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeMissingParameter, "polygon source requires an api key")
	}

	return &PolygonSource{client: polygon.New(apiKey)}, nil
}

// Fetch implements Source.
func (p *PolygonSource) Fetch(ctx context.Context, instrument types.Instrument, key period.Key, from, to time.Time) iter.Seq2[types.MarketData, error] {
	multiplier, timespan, err := polygonTimespan(key)
	if err != nil {
		return fail(err)
	}

	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     instrument.Symbol,
		Multiplier: multiplier,
		Timespan:   timespan,
		From:       models.Millis(from),
		To:         models.Millis(to),
	}.WithLimit(50000)

	return func(yield func(types.MarketData, error) bool) {
		aggs := p.client.ListAggs(ctx, params)

		for aggs.Next() {
			agg := aggs.Item()

			sample := types.MarketData{
				Instrument: instrument,
				Time:       time.Time(agg.Timestamp).UTC(),
				Open:       decimal.NewFromFloat(agg.Open),
				High:       decimal.NewFromFloat(agg.High),
				Low:        decimal.NewFromFloat(agg.Low),
				Close:      decimal.NewFromFloat(agg.Close),
				Volume:     decimal.NewFromFloat(agg.Volume),
			}

			if !yield(sample, nil) {
				return
			}
		}

		if err := aggs.Err(); err != nil {
			yield(types.MarketData{}, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "error iterating polygon aggregates", err))
		}
	}
}

// polygonTimespan picks the coarsest polygon timespan that divides the key evenly.
func polygonTimespan(key period.Key) (int, models.Timespan, error) {
	units := []struct {
		size     time.Duration
		timespan models.Timespan
	}{
		{7 * 24 * time.Hour, models.Week},
		{24 * time.Hour, models.Day},
		{time.Hour, models.Hour},
		{time.Minute, models.Minute},
		{time.Second, models.Second},
	}

	d := key.Duration()
	for _, unit := range units {
		if d >= unit.size && d%unit.size == 0 {
			return int(d / unit.size), unit.timespan, nil
		}
	}

	return 0, "", errors.Newf(errors.ErrCodeInvalidPeriod, "polygon has no aggregate for period %s", key)
}
