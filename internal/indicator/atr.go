package indicator

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/shopspring/decimal"
)

// ATR is the average true range, smoothed with an EMA of the true range series.
// It consumes whole bars. The first bar has no previous close, so its true
// range is simply high - low.
type ATR struct {
	period    int
	ema       *EMA
	prevClose decimal.Decimal
	seen      bool
}

// NewATR creates a new ATR. Period must be positive.
func NewATR(period int) (*ATR, error) {
	ema, err := NewEMA(period)
	if err != nil {
		return nil, err
	}

	return &ATR{period: period, ema: ema}, nil
}

// Name returns the name of the indicator.
func (a *ATR) Name() string {
	return fmt.Sprintf("ATR(%d)", a.period)
}

// Update implements Indicator.
func (a *ATR) Update(t time.Time, bar types.Bar) {
	tr := bar.High.Sub(bar.Low)

	if a.seen {
		// TR = max(high - low, |high - prevClose|, |low - prevClose|)
		tr = decimal.Max(tr, bar.High.Sub(a.prevClose).Abs(), bar.Low.Sub(a.prevClose).Abs())
	}

	a.prevClose = bar.Close
	a.seen = true
	a.ema.Update(t, tr)
}

// IsReady implements Indicator.
func (a *ATR) IsReady() bool {
	return a.ema.IsReady()
}

// Value implements Indicator.
func (a *ATR) Value() decimal.Decimal {
	return a.ema.Value()
}

// MinimumSamples implements Indicator.
func (a *ATR) MinimumSamples() int {
	return a.period
}

// Reset implements Resetter.
func (a *ATR) Reset() {
	a.ema.Reset()
	a.prevClose = decimal.Zero
	a.seen = false
}
