package history

import (
	"context"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
)

// MemorySource serves samples held in memory. It backs tests and CLI replays.
type MemorySource struct {
	mu      sync.RWMutex
	samples map[types.Instrument][]types.MarketData
}

// NewMemorySource creates an empty MemorySource.
func NewMemorySource() *MemorySource {
	return &MemorySource{
		samples: make(map[types.Instrument][]types.MarketData),
	}
}

// Add stores samples, keeping each instrument's series sorted by time.
func (m *MemorySource) Add(samples ...types.MarketData) {
	m.mu.Lock()
	defer m.mu.Unlock()

	touched := make(map[types.Instrument]struct{})

	for _, sample := range samples {
		m.samples[sample.Instrument] = append(m.samples[sample.Instrument], sample)
		touched[sample.Instrument] = struct{}{}
	}

	for instrument := range touched {
		slices.SortStableFunc(m.samples[instrument], func(a, b types.MarketData) int {
			return a.Time.Compare(b.Time)
		})
	}
}

// Len returns the number of samples stored for instrument.
func (m *MemorySource) Len(instrument types.Instrument) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.samples[instrument])
}

// Fetch implements Source.
func (m *MemorySource) Fetch(ctx context.Context, instrument types.Instrument, _ period.Key, from, to time.Time) iter.Seq2[types.MarketData, error] {
	m.mu.RLock()
	series := slices.Clone(m.samples[instrument])
	m.mu.RUnlock()

	return func(yield func(types.MarketData, error) bool) {
		for _, sample := range series {
			if err := ctx.Err(); err != nil {
				yield(types.MarketData{}, err)

				return
			}

			if sample.Time.Before(from) {
				continue
			}

			if !sample.Time.Before(to) {
				return
			}

			if !yield(sample, nil) {
				return
			}
		}
	}
}
