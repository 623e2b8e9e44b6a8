package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// MarketData is a single raw sample for an instrument: a trade, a quote mid or a
// source bar. Samples are immutable once produced.
type MarketData struct {
	Instrument Instrument      `json:"instrument"`
	Time       time.Time       `json:"time"`
	Open       decimal.Decimal `json:"open"`
	High       decimal.Decimal `json:"high"`
	Low        decimal.Decimal `json:"low"`
	Close      decimal.Decimal `json:"close"`
	Volume     decimal.Decimal `json:"volume"`
}

// NewTick creates a scalar sample where open, high, low and close are the traded price.
func NewTick(instrument Instrument, t time.Time, price, quantity decimal.Decimal) MarketData {
	return MarketData{
		Instrument: instrument,
		Time:       t,
		Open:       price,
		High:       price,
		Low:        price,
		Close:      price,
		Volume:     quantity,
	}
}

// Value returns the close price, the field an indicator consumes when no selector is given.
func (m MarketData) Value() decimal.Decimal {
	return m.Close
}
