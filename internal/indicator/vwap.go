package indicator

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/shopspring/decimal"
)

// VWAP is a rolling volume weighted average of the typical price over the last
// period bars. It consumes whole bars rather than a single selected value.
type VWAP struct {
	period   int
	notional *window
	volume   *window
}

// NewVWAP creates a new VWAP. Period must be positive.
func NewVWAP(period int) (*VWAP, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be a positive integer, got %d", period)
	}

	return &VWAP{
		period:   period,
		notional: newWindow(period),
		volume:   newWindow(period),
	}, nil
}

// Name returns the name of the indicator.
func (v *VWAP) Name() string {
	return fmt.Sprintf("VWAP(%d)", v.period)
}

// Update implements Indicator.
func (v *VWAP) Update(_ time.Time, bar types.Bar) {
	v.notional.push(bar.Typical().Mul(bar.Volume))
	v.volume.push(bar.Volume)
}

// IsReady implements Indicator.
func (v *VWAP) IsReady() bool {
	return v.volume.full()
}

// Value returns the weighted price, or zero while no volume was traded.
func (v *VWAP) Value() decimal.Decimal {
	if v.volume.sum.IsZero() {
		return decimal.Zero
	}

	return v.notional.sum.Div(v.volume.sum)
}

// MinimumSamples implements Indicator.
func (v *VWAP) MinimumSamples() int {
	return v.period
}

// Reset implements Resetter.
func (v *VWAP) Reset() {
	v.notional.reset()
	v.volume.reset()
}
