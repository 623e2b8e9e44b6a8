package types

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	two   = decimal.NewFromInt(2)
	three = decimal.NewFromInt(3)
	four  = decimal.NewFromInt(4)
)

// Bar is a finalized open/high/low/close/volume summary of every sample that fell
// in the half-open period [Start, End).
type Bar struct {
	Instrument Instrument      `json:"instrument"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Open       decimal.Decimal `json:"open"`
	High       decimal.Decimal `json:"high"`
	Low        decimal.Decimal `json:"low"`
	Close      decimal.Decimal `json:"close"`
	Volume     decimal.Decimal `json:"volume"`
	// Count is the number of samples merged into the bar.
	Count int `json:"count"`
}

// Value returns the close price.
func (b Bar) Value() decimal.Decimal {
	return b.Close
}

// Typical returns (high + low + close) / 3.
func (b Bar) Typical() decimal.Decimal {
	return b.High.Add(b.Low).Add(b.Close).Div(three)
}

// Median returns (high + low) / 2.
func (b Bar) Median() decimal.Decimal {
	return b.High.Add(b.Low).Div(two)
}

// OHLC4 returns (open + high + low + close) / 4.
func (b Bar) OHLC4() decimal.Decimal {
	return b.Open.Add(b.High).Add(b.Low).Add(b.Close).Div(four)
}
