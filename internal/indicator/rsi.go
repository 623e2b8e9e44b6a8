package indicator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// RSI is the relative strength index with Wilder smoothing. The first average
// gain and loss are simple means over period changes, so period+1 samples are needed.
type RSI struct {
	period  int
	n       decimal.Decimal
	prev    decimal.Decimal
	samples int
	avgGain decimal.Decimal
	avgLoss decimal.Decimal
	sumGain decimal.Decimal
	sumLoss decimal.Decimal
	current decimal.Decimal
}

// NewRSI creates a new RSI. Period must be positive.
func NewRSI(period int) (*RSI, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be a positive integer, got %d", period)
	}

	r := &RSI{period: period, n: decimal.NewFromInt(int64(period))}
	r.Reset()

	return r, nil
}

// Name returns the name of the indicator.
func (r *RSI) Name() string {
	return fmt.Sprintf("RSI(%d)", r.period)
}

// Update implements Indicator.
func (r *RSI) Update(_ time.Time, value decimal.Decimal) {
	r.samples++

	if r.samples == 1 {
		r.prev = value

		return
	}

	change := value.Sub(r.prev)
	r.prev = value

	gain, loss := decimal.Zero, decimal.Zero
	if change.IsPositive() {
		gain = change
	} else {
		loss = change.Neg()
	}

	changes := r.samples - 1

	switch {
	case changes < r.period:
		r.sumGain = r.sumGain.Add(gain)
		r.sumLoss = r.sumLoss.Add(loss)

		return
	case changes == r.period:
		r.avgGain = r.sumGain.Add(gain).Div(r.n)
		r.avgLoss = r.sumLoss.Add(loss).Div(r.n)
	default:
		// Wilder's smoothing: avg = (avg * (n-1) + x) / n
		nMinusOne := r.n.Sub(decimal.NewFromInt(1))
		r.avgGain = r.avgGain.Mul(nMinusOne).Add(gain).Div(r.n)
		r.avgLoss = r.avgLoss.Mul(nMinusOne).Add(loss).Div(r.n)
	}

	if r.avgLoss.IsZero() {
		r.current = hundred

		return
	}

	rs := r.avgGain.Div(r.avgLoss)
	r.current = hundred.Sub(hundred.Div(decimal.NewFromInt(1).Add(rs)))
}

// IsReady implements Indicator.
func (r *RSI) IsReady() bool {
	return r.samples > r.period
}

// Value implements Indicator.
func (r *RSI) Value() decimal.Decimal {
	return r.current
}

// MinimumSamples implements Indicator.
func (r *RSI) MinimumSamples() int {
	return r.period + 1
}

// Reset implements Resetter.
func (r *RSI) Reset() {
	r.prev = decimal.Zero
	r.samples = 0
	r.avgGain = decimal.Zero
	r.avgLoss = decimal.Zero
	r.sumGain = decimal.Zero
	r.sumLoss = decimal.Zero
	r.current = decimal.Zero
}
