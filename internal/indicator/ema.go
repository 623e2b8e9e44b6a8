package indicator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EMA is an exponential moving average seeded with the simple average of the
// first period samples. Alpha is 2 / (period + 1), matching pandas ewm(adjust=False).
type EMA struct {
	period  int
	alpha   decimal.Decimal
	seed    *window
	current decimal.Decimal
	ready   bool
}

// NewEMA creates a new EMA. Period must be positive.
func NewEMA(period int) (*EMA, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be a positive integer, got %d", period)
	}

	return &EMA{
		period:  period,
		alpha:   decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(period + 1))),
		seed:    newWindow(period),
		current: decimal.Zero,
	}, nil
}

// Name returns the name of the indicator.
func (e *EMA) Name() string {
	return fmt.Sprintf("EMA(%d)", e.period)
}

// Update implements Indicator.
func (e *EMA) Update(_ time.Time, value decimal.Decimal) {
	if !e.ready {
		e.seed.push(value)
		e.current = e.seed.mean()
		e.ready = e.seed.full()

		return
	}

	// EMA = price * alpha + EMA_prev * (1 - alpha)
	e.current = value.Mul(e.alpha).Add(e.current.Mul(decimal.NewFromInt(1).Sub(e.alpha)))
}

// IsReady implements Indicator.
func (e *EMA) IsReady() bool {
	return e.ready
}

// Value implements Indicator.
func (e *EMA) Value() decimal.Decimal {
	return e.current
}

// MinimumSamples implements Indicator.
func (e *EMA) MinimumSamples() int {
	return e.period
}

// Reset implements Resetter.
func (e *EMA) Reset() {
	e.seed.reset()
	e.current = decimal.Zero
	e.ready = false
}
