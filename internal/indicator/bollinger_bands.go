package indicator

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// BollingerBands tracks a simple moving average with bands placed stdDev
// population standard deviations above and below it. Value is the middle band.
type BollingerBands struct {
	period  int
	stdDev  decimal.Decimal
	samples *window
}

// NewBollingerBands creates new Bollinger Bands. Period and stdDev must be positive.
func NewBollingerBands(period int, stdDev float64) (*BollingerBands, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be a positive integer, got %d", period)
	}

	if stdDev <= 0 {
		return nil, fmt.Errorf("stdDev must be a positive number, got %f", stdDev)
	}

	return &BollingerBands{
		period:  period,
		stdDev:  decimal.NewFromFloat(stdDev),
		samples: newWindow(period),
	}, nil
}

// Name returns the name of the indicator.
func (bb *BollingerBands) Name() string {
	return fmt.Sprintf("BB(%d,%s)", bb.period, bb.stdDev.String())
}

// Update implements Indicator.
func (bb *BollingerBands) Update(_ time.Time, value decimal.Decimal) {
	bb.samples.push(value)
}

// IsReady implements Indicator.
func (bb *BollingerBands) IsReady() bool {
	return bb.samples.full()
}

// Value returns the middle band.
func (bb *BollingerBands) Value() decimal.Decimal {
	return bb.samples.mean()
}

// Upper returns the upper band.
func (bb *BollingerBands) Upper() decimal.Decimal {
	return bb.Value().Add(bb.width())
}

// Lower returns the lower band.
func (bb *BollingerBands) Lower() decimal.Decimal {
	return bb.Value().Sub(bb.width())
}

// MinimumSamples implements Indicator.
func (bb *BollingerBands) MinimumSamples() int {
	return bb.period
}

// Reset implements Resetter.
func (bb *BollingerBands) Reset() {
	bb.samples.reset()
}

func (bb *BollingerBands) width() decimal.Decimal {
	if bb.samples.count == 0 {
		return decimal.Zero
	}

	mean := bb.samples.mean()
	squaredDiffSum := decimal.Zero

	for i := 0; i < bb.samples.count; i++ {
		diff := bb.samples.buf[i].Sub(mean)
		squaredDiffSum = squaredDiffSum.Add(diff.Mul(diff))
	}

	variance, _ := squaredDiffSum.Div(decimal.NewFromInt(int64(bb.samples.count))).Float64()

	return decimal.NewFromFloat(math.Sqrt(variance)).Mul(bb.stdDev)
}
