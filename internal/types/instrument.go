package types

import "fmt"

// AssetClass identifies the kind of instrument being tracked.
type AssetClass string

const (
	AssetClassEquity AssetClass = "equity"
	AssetClassCrypto AssetClass = "crypto"
	AssetClassForex  AssetClass = "forex"
	AssetClassFuture AssetClass = "future"
	AssetClassOption AssetClass = "option"
)

// Instrument identifies a tradable instrument. It is an immutable value and is
// used directly as a map key, so two instruments are equal iff all fields are equal.
type Instrument struct {
	Exchange   string     `json:"exchange" yaml:"exchange"`
	Symbol     string     `json:"symbol" yaml:"symbol"`
	AssetClass AssetClass `json:"assetClass" yaml:"assetClass"`
}

// NewInstrument creates an instrument.
func NewInstrument(exchange, symbol string, assetClass AssetClass) Instrument {
	return Instrument{
		Exchange:   exchange,
		Symbol:     symbol,
		AssetClass: assetClass,
	}
}

// String renders the instrument as SYMBOL.EXCHANGE, or just SYMBOL when no exchange is set.
func (i Instrument) String() string {
	if i.Exchange == "" {
		return i.Symbol
	}

	return fmt.Sprintf("%s.%s", i.Symbol, i.Exchange)
}

// IsZero reports whether the instrument has no symbol.
func (i Instrument) IsZero() bool {
	return i.Symbol == ""
}
