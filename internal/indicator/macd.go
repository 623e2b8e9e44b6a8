package indicator

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// MACD is the moving average convergence divergence. Value is the MACD line
// (fast EMA - slow EMA); Signal is an EMA of the MACD line and Histogram their difference.
type MACD struct {
	fastPeriod   int
	slowPeriod   int
	signalPeriod int
	fast         *EMA
	slow         *EMA
	signal       *EMA
	line         decimal.Decimal
}

// NewMACD creates a new MACD. The fast period must be shorter than the slow one.
func NewMACD(fastPeriod, slowPeriod, signalPeriod int) (*MACD, error) {
	if fastPeriod <= 0 || slowPeriod <= 0 || signalPeriod <= 0 {
		return nil, fmt.Errorf("periods must be positive integers, got %d/%d/%d", fastPeriod, slowPeriod, signalPeriod)
	}

	if fastPeriod >= slowPeriod {
		return nil, fmt.Errorf("fast period %d must be shorter than slow period %d", fastPeriod, slowPeriod)
	}

	fast, _ := NewEMA(fastPeriod)
	slow, _ := NewEMA(slowPeriod)
	signal, _ := NewEMA(signalPeriod)

	return &MACD{
		fastPeriod:   fastPeriod,
		slowPeriod:   slowPeriod,
		signalPeriod: signalPeriod,
		fast:         fast,
		slow:         slow,
		signal:       signal,
		line:         decimal.Zero,
	}, nil
}

// Name returns the name of the indicator.
func (m *MACD) Name() string {
	return fmt.Sprintf("MACD(%d,%d,%d)", m.fastPeriod, m.slowPeriod, m.signalPeriod)
}

// Update implements Indicator. The signal line only starts once the slow EMA is ready.
func (m *MACD) Update(t time.Time, value decimal.Decimal) {
	m.fast.Update(t, value)
	m.slow.Update(t, value)

	if !m.slow.IsReady() {
		return
	}

	m.line = m.fast.Value().Sub(m.slow.Value())
	m.signal.Update(t, m.line)
}

// IsReady implements Indicator.
func (m *MACD) IsReady() bool {
	return m.signal.IsReady()
}

// Value returns the MACD line.
func (m *MACD) Value() decimal.Decimal {
	return m.line
}

// Signal returns the signal line.
func (m *MACD) Signal() decimal.Decimal {
	return m.signal.Value()
}

// Histogram returns MACD line minus signal line.
func (m *MACD) Histogram() decimal.Decimal {
	return m.line.Sub(m.signal.Value())
}

// MinimumSamples implements Indicator.
func (m *MACD) MinimumSamples() int {
	return m.slowPeriod + m.signalPeriod - 1
}

// Reset implements Resetter.
func (m *MACD) Reset() {
	m.fast.Reset()
	m.slow.Reset()
	m.signal.Reset()
	m.line = decimal.Zero
}
