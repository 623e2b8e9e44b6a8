package stream

import (
	"encoding/json"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
)

// Message is one sample on the wire. A trade carries price and quantity:
//
//	{"exchange":"NYSE","symbol":"SPY","asset_class":"equity","time":"2024-01-10T14:30:00Z","price":"471.2","quantity":"100"}
//
// A source bar carries open, high, low, close and volume instead.
type Message struct {
	Exchange   string           `json:"exchange"`
	Symbol     string           `json:"symbol"`
	AssetClass string           `json:"asset_class"`
	Time       time.Time        `json:"time"`
	Price      *decimal.Decimal `json:"price,omitempty"`
	Quantity   decimal.Decimal  `json:"quantity"`
	Open       decimal.Decimal  `json:"open"`
	High       decimal.Decimal  `json:"high"`
	Low        decimal.Decimal  `json:"low"`
	Close      decimal.Decimal  `json:"close"`
	Volume     decimal.Decimal  `json:"volume"`
}

// Decode parses a raw frame into a sample.
func Decode(raw []byte) (types.MarketData, error) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		return types.MarketData{}, errors.Wrap(errors.ErrCodeMarketDataParseFailed, "failed to decode stream message", err)
	}

	return msg.MarketData()
}

// MarketData converts the message into a sample.
func (m Message) MarketData() (types.MarketData, error) {
	if m.Symbol == "" {
		return types.MarketData{}, errors.New(errors.ErrCodeMarketDataParseFailed, "stream message without symbol")
	}

	if m.Time.IsZero() {
		return types.MarketData{}, errors.Newf(errors.ErrCodeMarketDataParseFailed, "stream message for %s without time", m.Symbol)
	}

	assetClass := types.AssetClass(m.AssetClass)
	if assetClass == "" {
		assetClass = types.AssetClassEquity
	}

	instrument := types.NewInstrument(m.Exchange, m.Symbol, assetClass)

	if m.Price != nil {
		return types.NewTick(instrument, m.Time.UTC(), *m.Price, m.Quantity), nil
	}

	if m.Close.IsZero() {
		return types.MarketData{}, errors.Newf(errors.ErrCodeMarketDataParseFailed, "stream message for %s has neither price nor close", m.Symbol)
	}

	return types.MarketData{
		Instrument: instrument,
		Time:       m.Time.UTC(),
		Open:       m.Open,
		High:       m.High,
		Low:        m.Low,
		Close:      m.Close,
		Volume:     m.Volume,
	}, nil
}
