package consolidator

import (
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/shopspring/decimal"
)

// PartialBar is the in-progress aggregation for the open period of a consolidator.
// It is owned by exactly one consolidator; Partial hands out copies only.
type PartialBar struct {
	Start  time.Time
	End    time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume decimal.Decimal
	Count  int
	// HasData is true once at least one sample was merged this period.
	HasData bool
}

func newPartialBar(start, end time.Time) *PartialBar {
	return &PartialBar{
		Start:  start,
		End:    end,
		Volume: decimal.Zero,
	}
}

// contains reports whether t falls in [Start, End).
func (p *PartialBar) contains(t time.Time) bool {
	return !t.Before(p.Start) && t.Before(p.End)
}

func (p *PartialBar) merge(sample types.MarketData) {
	if !p.HasData {
		p.Open = sample.Open
		p.High = sample.High
		p.Low = sample.Low
		p.Close = sample.Close
		p.Volume = sample.Volume
		p.Count = 1
		p.HasData = true

		return
	}

	if sample.High.GreaterThan(p.High) {
		p.High = sample.High
	}

	if sample.Low.LessThan(p.Low) {
		p.Low = sample.Low
	}

	p.Close = sample.Close
	p.Volume = p.Volume.Add(sample.Volume)
	p.Count++
}

func (p *PartialBar) finalize(instrument types.Instrument) types.Bar {
	return types.Bar{
		Instrument: instrument,
		Start:      p.Start,
		End:        p.End,
		Open:       p.Open,
		High:       p.High,
		Low:        p.Low,
		Close:      p.Close,
		Volume:     p.Volume,
		Count:      p.Count,
	}
}
