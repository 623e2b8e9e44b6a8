// Package sink persists closed bars emitted by live consolidators.
package sink

import (
	"github.com/rxtech-lab/argo-consolidator/internal/consolidator"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
)

// BarWriter defines the interface for writing closed bars to a destination.
type BarWriter interface {
	// Initialize sets up the writer, potentially creating tables or files.
	Initialize() error
	// Write persists a single closed bar of the given period.
	Write(bar types.Bar, key period.Key) error
	// Finalize completes the writing process (e.g., commits transactions, exports files).
	Finalize() (outputPath string, err error)
	// Close releases any resources held by the writer.
	Close() error
}

// Hook returns a registry create hook that subscribes w to every new consolidator.
// onError receives write failures, which are never returned to the feeding caller.
func Hook(w BarWriter, onError func(bar types.Bar, err error)) consolidator.CreateHook {
	return func(c *consolidator.Consolidator) {
		key := c.Key()

		c.Subscribe(func(bar types.Bar) {
			if err := w.Write(bar, key); err != nil && onError != nil {
				onError(bar, err)
			}
		})
	}
}
