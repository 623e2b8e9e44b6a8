// Package indicator defines the incremental indicator contract consumed by the
// pipeline, together with a small set of reference indicators and a catalog
// that builds them from configuration.
package indicator

import (
	"fmt"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/shopspring/decimal"
)

// Indicator is an incrementally updated calculation over samples of type T.
type Indicator[T any] interface {
	// Update feeds one sample stamped with the end time of the bar it came from.
	Update(t time.Time, sample T)
	// IsReady reports whether enough samples were seen for Value to be meaningful.
	IsReady() bool
	// Value returns the current output.
	Value() decimal.Decimal
	// MinimumSamples is the number of samples needed before IsReady turns true.
	MinimumSamples() int
}

// Named is implemented by indicators that can describe themselves, e.g. "SMA(20)".
type Named interface {
	Name() string
}

// Resetter is implemented by indicators that can clear their state.
type Resetter interface {
	Reset()
}

// FormatName builds the display name of a registered indicator, e.g. "SMA(3)_SPY_1d".
func FormatName(name string, instrument types.Instrument, key period.Key) string {
	return fmt.Sprintf("%s_%s_%s", name, instrument.Symbol, key)
}
