// Package selector extracts the value an indicator consumes from a closed bar.
package selector

import (
	"strings"

	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
)

// Selector maps a closed bar to the sample fed into an indicator. Selectors are pure.
type Selector[T any] func(bar types.Bar) T

// Name of a built-in decimal selector.
type Name string

const (
	NameOpen    Name = "open"
	NameHigh    Name = "high"
	NameLow     Name = "low"
	NameClose   Name = "close"
	NameVolume  Name = "volume"
	NameTypical Name = "typical"
	NameMedian  Name = "median"
	NameOHLC4   Name = "ohlc4"
)

// Names lists the built-in decimal selectors.
func Names() []Name {
	return []Name{NameOpen, NameHigh, NameLow, NameClose, NameVolume, NameTypical, NameMedian, NameOHLC4}
}

func Open(bar types.Bar) decimal.Decimal   { return bar.Open }
func High(bar types.Bar) decimal.Decimal   { return bar.High }
func Low(bar types.Bar) decimal.Decimal    { return bar.Low }
func Close(bar types.Bar) decimal.Decimal  { return bar.Close }
func Volume(bar types.Bar) decimal.Decimal { return bar.Volume }

// Typical selects (high + low + close) / 3.
func Typical(bar types.Bar) decimal.Decimal { return bar.Typical() }

// Median selects (high + low) / 2.
func Median(bar types.Bar) decimal.Decimal { return bar.Median() }

// OHLC4 selects the mean of open, high, low and close.
func OHLC4(bar types.Bar) decimal.Decimal { return bar.OHLC4() }

// Identity passes the whole bar, for indicators that need more than one field.
func Identity(bar types.Bar) types.Bar { return bar }

// ByName resolves a built-in decimal selector. An empty name means close.
func ByName(name string) (Selector[decimal.Decimal], error) {
	switch Name(strings.ToLower(strings.TrimSpace(name))) {
	case "", NameClose:
		return Close, nil
	case NameOpen:
		return Open, nil
	case NameHigh:
		return High, nil
	case NameLow:
		return Low, nil
	case NameVolume:
		return Volume, nil
	case NameTypical:
		return Typical, nil
	case NameMedian:
		return Median, nil
	case NameOHLC4:
		return OHLC4, nil
	default:
		return nil, errors.Newf(errors.ErrCodeInvalidSelector, "unknown selector %q", name)
	}
}

// Default returns the selector used when a registration names none: the close
// price for decimal indicators and the whole bar for bar indicators. Other sample
// types have no default.
func Default[T any]() (Selector[T], error) {
	var zero T

	switch any(zero).(type) {
	case decimal.Decimal:
		return any(Selector[decimal.Decimal](Close)).(Selector[T]), nil
	case types.Bar:
		return any(Selector[types.Bar](Identity)).(Selector[T]), nil
	default:
		return nil, errors.Newf(errors.ErrCodeMissingParameter, "no default selector for sample type %T", zero)
	}
}
