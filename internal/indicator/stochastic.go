package indicator

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/shopspring/decimal"
)

// Stochastic is the slow stochastic oscillator over whole bars.
//
// The fast %K compares the close with the high/low range of the last period bars.
// Value is the slow %K, an SMA of fast %K over kPeriod; D is an SMA of the slow %K
// over dPeriod. A flat range yields a fast %K of zero.
type Stochastic struct {
	period  int
	kPeriod int
	dPeriod int
	highs   []decimal.Decimal
	lows    []decimal.Decimal
	fastK   decimal.Decimal
	slowK   *SMA
	d       *SMA
}

// NewStochastic creates a new Stochastic. All periods must be positive.
func NewStochastic(period, kPeriod, dPeriod int) (*Stochastic, error) {
	if period <= 0 || kPeriod <= 0 || dPeriod <= 0 {
		return nil, fmt.Errorf("periods must be positive integers, got %d/%d/%d", period, kPeriod, dPeriod)
	}

	slowK, _ := NewSMA(kPeriod)
	d, _ := NewSMA(dPeriod)

	return &Stochastic{
		period:  period,
		kPeriod: kPeriod,
		dPeriod: dPeriod,
		highs:   make([]decimal.Decimal, 0, period),
		lows:    make([]decimal.Decimal, 0, period),
		slowK:   slowK,
		d:       d,
	}, nil
}

// Name returns the name of the indicator.
func (s *Stochastic) Name() string {
	return fmt.Sprintf("STO(%d,%d,%d)", s.period, s.kPeriod, s.dPeriod)
}

// Update implements Indicator.
func (s *Stochastic) Update(t time.Time, bar types.Bar) {
	if len(s.highs) == s.period {
		s.highs = s.highs[1:]
		s.lows = s.lows[1:]
	}

	s.highs = append(s.highs, bar.High)
	s.lows = append(s.lows, bar.Low)

	if len(s.highs) < s.period {
		return
	}

	highest := decimal.Max(s.highs[0], s.highs[1:]...)
	lowest := decimal.Min(s.lows[0], s.lows[1:]...)

	s.fastK = decimal.Zero
	if rng := highest.Sub(lowest); !rng.IsZero() {
		s.fastK = bar.Close.Sub(lowest).Div(rng).Mul(decimal.NewFromInt(100))
	}

	s.slowK.Update(t, s.fastK)

	if s.slowK.IsReady() {
		s.d.Update(t, s.slowK.Value())
	}
}

// IsReady implements Indicator.
func (s *Stochastic) IsReady() bool {
	return s.d.IsReady()
}

// Value returns the slow %K.
func (s *Stochastic) Value() decimal.Decimal {
	return s.slowK.Value()
}

// FastK returns the raw %K of the latest bar.
func (s *Stochastic) FastK() decimal.Decimal {
	return s.fastK
}

// D returns the %D signal line.
func (s *Stochastic) D() decimal.Decimal {
	return s.d.Value()
}

// MinimumSamples implements Indicator.
func (s *Stochastic) MinimumSamples() int {
	return s.period + s.kPeriod + s.dPeriod - 2
}

// Reset implements Resetter.
func (s *Stochastic) Reset() {
	s.highs = s.highs[:0]
	s.lows = s.lows[:0]
	s.fastK = decimal.Zero
	s.slowK.Reset()
	s.d.Reset()
}
