package indicator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DEMA is the double exponential moving average: 2 * EMA(x) - EMA(EMA(x)).
// The outer EMA only starts once the inner one is ready.
type DEMA struct {
	period int
	inner  *EMA
	outer  *EMA
}

// NewDEMA creates a new DEMA. Period must be positive.
func NewDEMA(period int) (*DEMA, error) {
	inner, err := NewEMA(period)
	if err != nil {
		return nil, err
	}

	outer, _ := NewEMA(period)

	return &DEMA{period: period, inner: inner, outer: outer}, nil
}

// Name returns the name of the indicator.
func (d *DEMA) Name() string {
	return fmt.Sprintf("DEMA(%d)", d.period)
}

// Update implements Indicator.
func (d *DEMA) Update(t time.Time, value decimal.Decimal) {
	d.inner.Update(t, value)

	if d.inner.IsReady() {
		d.outer.Update(t, d.inner.Value())
	}
}

// IsReady implements Indicator.
func (d *DEMA) IsReady() bool {
	return d.outer.IsReady()
}

// Value implements Indicator. Before the outer EMA has any sample it is the inner EMA.
func (d *DEMA) Value() decimal.Decimal {
	if !d.inner.IsReady() {
		return d.inner.Value()
	}

	return d.inner.Value().Mul(decimal.NewFromInt(2)).Sub(d.outer.Value())
}

// MinimumSamples implements Indicator.
func (d *DEMA) MinimumSamples() int {
	return 2*d.period - 1
}

// Reset implements Resetter.
func (d *DEMA) Reset() {
	d.inner.Reset()
	d.outer.Reset()
}
