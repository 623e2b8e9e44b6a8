package history

import (
	"context"
	"iter"
	"time"

	binance "github.com/adshao/go-binance/v2"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
)

// binancePageSize is the kline limit requested per call.
const binancePageSize = 1000

// binanceIntervals are the kline intervals Binance serves, coarsest first.
// 1M is omitted since it is not a fixed duration.
var binanceIntervals = []struct {
	size     time.Duration
	interval string
}{
	{7 * 24 * time.Hour, "1w"},
	{3 * 24 * time.Hour, "3d"},
	{24 * time.Hour, "1d"},
	{12 * time.Hour, "12h"},
	{8 * time.Hour, "8h"},
	{6 * time.Hour, "6h"},
	{4 * time.Hour, "4h"},
	{2 * time.Hour, "2h"},
	{time.Hour, "1h"},
	{30 * time.Minute, "30m"},
	{15 * time.Minute, "15m"},
	{5 * time.Minute, "5m"},
	{3 * time.Minute, "3m"},
	{time.Minute, "1m"},
	{time.Second, "1s"},
}

// BinanceSource fetches klines from the public Binance spot API.
type BinanceSource struct {
	client *binance.Client
}

// NewBinanceSource creates a BinanceSource. Klines need no credentials.
func NewBinanceSource() *BinanceSource {
	return &BinanceSource{client: binance.NewClient("", "")}
}

// Fetch implements Source. Klines are paged forward from from until to is reached.
func (b *BinanceSource) Fetch(ctx context.Context, instrument types.Instrument, key period.Key, from, to time.Time) iter.Seq2[types.MarketData, error] {
	interval, err := binanceInterval(key)
	if err != nil {
		return fail(err)
	}

	return func(yield func(types.MarketData, error) bool) {
		start := from.UnixMilli()
		// EndTime is inclusive on Binance
		end := to.UnixMilli() - 1

		for start <= end {
			klines, err := b.client.NewKlinesService().
				Symbol(instrument.Symbol).
				Interval(interval).
				StartTime(start).
				EndTime(end).
				Limit(binancePageSize).
				Do(ctx)
			if err != nil {
				yield(types.MarketData{}, errors.Wrap(errors.ErrCodeMarketDataFetchFailed, "failed to fetch klines from Binance", err))

				return
			}

			for _, k := range klines {
				sample, err := klineToMarketData(instrument, k)
				if err != nil {
					yield(types.MarketData{}, err)

					return
				}

				if !yield(sample, nil) {
					return
				}
			}

			if len(klines) < binancePageSize {
				return
			}

			// close time + 1ms avoids duplicates on the next page
			start = klines[len(klines)-1].CloseTime + 1
		}
	}
}

// binanceInterval picks the coarsest Binance interval that divides the key evenly.
func binanceInterval(key period.Key) (string, error) {
	d := key.Duration()
	for _, candidate := range binanceIntervals {
		if d >= candidate.size && d%candidate.size == 0 {
			return candidate.interval, nil
		}
	}

	return "", errors.Newf(errors.ErrCodeInvalidPeriod, "binance has no kline interval for period %s", key)
}

// klineToMarketData converts a kline stamped at its open time.
func klineToMarketData(instrument types.Instrument, k *binance.Kline) (types.MarketData, error) {
	fields := []string{k.Open, k.High, k.Low, k.Close, k.Volume}
	values := make([]decimal.Decimal, len(fields))

	for i, raw := range fields {
		v, err := decimal.NewFromString(raw)
		if err != nil {
			return types.MarketData{}, errors.Wrapf(errors.ErrCodeMarketDataParseFailed, err, "invalid kline value %q", raw)
		}

		values[i] = v
	}

	return types.MarketData{
		Instrument: instrument,
		Time:       time.UnixMilli(k.OpenTime).UTC(),
		Open:       values[0],
		High:       values[1],
		Low:        values[2],
		Close:      values[3],
		Volume:     values[4],
	}, nil
}
