package indicator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SMA is a simple moving average over the last period samples.
type SMA struct {
	period  int
	samples *window
	updated time.Time
}

// NewSMA creates a new SMA. Period must be positive.
func NewSMA(period int) (*SMA, error) {
	if period <= 0 {
		return nil, fmt.Errorf("period must be a positive integer, got %d", period)
	}

	return &SMA{
		period:  period,
		samples: newWindow(period),
	}, nil
}

// Name returns the name of the indicator.
func (s *SMA) Name() string {
	return fmt.Sprintf("SMA(%d)", s.period)
}

// Update implements Indicator.
func (s *SMA) Update(t time.Time, value decimal.Decimal) {
	s.samples.push(value)
	s.updated = t
}

// IsReady implements Indicator.
func (s *SMA) IsReady() bool {
	return s.samples.full()
}

// Value returns the mean of the samples seen so far, capped at the last period samples.
func (s *SMA) Value() decimal.Decimal {
	return s.samples.mean()
}

// MinimumSamples implements Indicator.
func (s *SMA) MinimumSamples() int {
	return s.period
}

// LastUpdate returns the timestamp of the most recent sample.
func (s *SMA) LastUpdate() time.Time {
	return s.updated
}

// Reset implements Resetter.
func (s *SMA) Reset() {
	s.samples.reset()
	s.updated = time.Time{}
}
