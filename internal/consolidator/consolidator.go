// Package consolidator buckets a raw sample stream into fixed-period bars and
// shares one consolidator per (instrument, period) through a Registry.
package consolidator

import (
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
)

// State of a consolidator.
type State int

const (
	// StateEmpty means no period is open.
	StateEmpty State = iota
	// StateAccumulating means a partial bar is open.
	StateAccumulating
)

func (s State) String() string {
	if s == StateAccumulating {
		return "accumulating"
	}

	return "empty"
}

// Handler receives every closed bar of a consolidator.
type Handler func(bar types.Bar)

// Consolidator aggregates samples of one instrument into bars of one period.
//
// Handlers are invoked synchronously, in subscription order, while the
// consolidator lock is held: every handler sees a bar before the next Update
// is processed. Handlers must not call back into the same consolidator.
type Consolidator struct {
	mu          sync.Mutex
	instrument  types.Instrument
	key         period.Key
	partial     *PartialBar
	closedUntil time.Time
	handlers    []Handler
	closed      int
}

// New creates a standalone consolidator. Live consolidators should come from
// Registry.GetOrCreate; New is for private replays that must not be shared.
func New(instrument types.Instrument, key period.Key) *Consolidator {
	return &Consolidator{
		instrument: instrument,
		key:        key,
	}
}

// Instrument returns the instrument this consolidator aggregates.
func (c *Consolidator) Instrument() types.Instrument {
	return c.instrument
}

// Key returns the period of the bars this consolidator emits.
func (c *Consolidator) Key() period.Key {
	return c.key
}

// Subscribe registers a handler for closed bars and returns the number of handlers.
func (c *Consolidator) Subscribe(handler Handler) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.handlers = append(c.handlers, handler)

	return len(c.handlers)
}

// Subscribers returns the number of registered handlers.
func (c *Consolidator) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.handlers)
}

// State returns whether a period is currently open.
func (c *Consolidator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.partial == nil {
		return StateEmpty
	}

	return StateAccumulating
}

// Partial returns a copy of the open bar, if any.
func (c *Consolidator) Partial() optional.Option[PartialBar] {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.partial == nil {
		return optional.None[PartialBar]()
	}

	return optional.Some(*c.partial)
}

// ClosedBars returns how many bars this consolidator has emitted.
func (c *Consolidator) ClosedBars() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.closed
}

// Update merges a sample into the open period. A sample at or after the end of
// the open period closes it first; periods skipped by a gap emit nothing.
// A sample earlier than the open period, or inside an already closed period,
// is rejected with a *errors.LateDataError and leaves the state unchanged.
func (c *Consolidator) Update(sample types.MarketData) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if sample.Instrument != c.instrument {
		return errors.Newf(errors.ErrCodeInvalidParameter,
			"sample for %s fed to consolidator of %s", sample.Instrument, c.instrument)
	}

	if c.partial != nil && sample.Time.Before(c.partial.Start) {
		return errors.NewLateDataError(c.instrument.String(), c.key.String(), sample.Time, c.partial.Start)
	}

	if c.partial == nil && sample.Time.Before(c.closedUntil) {
		return errors.NewLateDataError(c.instrument.String(), c.key.String(), sample.Time, c.closedUntil)
	}

	if c.partial != nil && !c.partial.contains(sample.Time) {
		c.emit()
	}

	if c.partial == nil {
		c.partial = newPartialBar(c.key.Bounds(sample.Time))
	}

	c.partial.merge(sample)

	return nil
}

// Scan closes the open period if now is at or past its end, emitting the bar.
// It reports whether a bar was closed.
func (c *Consolidator) Scan(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.partial == nil || now.Before(c.partial.End) {
		return false
	}

	c.emit()

	return true
}

// emit finalizes the open bar and notifies every handler. Caller holds c.mu.
func (c *Consolidator) emit() {
	bar := c.partial.finalize(c.instrument)
	c.partial = nil
	c.closedUntil = bar.End
	c.closed++

	for _, handler := range c.handlers {
		handler(bar)
	}
}
