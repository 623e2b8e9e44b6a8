package history

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
)

// DownloadParams selects the history copied by Download.
type DownloadParams struct {
	Provider   Kind             `validate:"required,oneof=polygon binance"`
	APIKey     string           `validate:"required_if=Provider polygon"`
	Instrument types.Instrument `validate:"-"`
	Period     string           `validate:"required"`
	From       time.Time        `validate:"required"`
	To         time.Time        `validate:"required,gtfield=From"`
}

// Validate checks the parameters and parses the period.
func (p DownloadParams) Validate() (period.Key, error) {
	if err := validator.New().Struct(p); err != nil {
		return period.Key{}, errors.Wrap(errors.ErrCodeInvalidParameter, "invalid download parameters", err)
	}

	if p.Instrument.Symbol == "" {
		return period.Key{}, errors.New(errors.ErrCodeMissingParameter, "download requires a symbol")
	}

	return period.Parse(p.Period)
}

// Download reads [From, To) from the configured provider. onSample is called
// after every sample so callers can report progress; it may be nil.
func Download(ctx context.Context, params DownloadParams, log *logger.Logger, onSample func()) ([]types.MarketData, error) {
	key, err := params.Validate()
	if err != nil {
		return nil, err
	}

	source, err := NewSource(Config{Kind: params.Provider, APIKey: params.APIKey}, log)
	if err != nil {
		return nil, err
	}

	return Collect(ctx, source, params.Instrument, key, params.From, params.To, onSample)
}

// Collect drains source for instrument over [from, to), dropping samples the
// source returned outside the window.
func Collect(ctx context.Context, source Source, instrument types.Instrument, key period.Key, from, to time.Time, onSample func()) ([]types.MarketData, error) {
	var samples []types.MarketData

	for sample, err := range source.Fetch(ctx, instrument, key, from, to) {
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to download %s", instrument)
		}

		if sample.Time.Before(from) || !sample.Time.Before(to) {
			continue
		}

		samples = append(samples, sample)

		if onSample != nil {
			onSample()
		}
	}

	return samples, nil
}
