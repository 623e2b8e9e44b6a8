// Package binding connects an indicator to a shared consolidator through a selector.
package binding

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-consolidator/internal/consolidator"
	"github.com/rxtech-lab/argo-consolidator/internal/indicator"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/selector"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/internal/warmup"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
)

// Info describes a binding without its type parameter.
type Info struct {
	ID         uuid.UUID
	Name       string
	Instrument types.Instrument
	Period     period.Key
	Ready      bool
	Attached   bool
}

// Binding feeds bars from one consolidator into one indicator.
//
// The binding owns the indicator. The consolidator is shared with other bindings
// and is only referenced.
type Binding[T any] struct {
	id           uuid.UUID
	name         string
	indicator    indicator.Indicator[T]
	consolidator *consolidator.Consolidator
	selector     selector.Selector[T]

	mu        sync.Mutex
	watermark time.Time
	applied   int
	attached  bool
	warmed    bool
	report    warmup.Report
}

// New creates an unattached binding.
func New[T any](name string, ind indicator.Indicator[T], c *consolidator.Consolidator, sel selector.Selector[T]) *Binding[T] {
	return &Binding[T]{
		id:           uuid.New(),
		name:         name,
		indicator:    ind,
		consolidator: c,
		selector:     sel,
	}
}

func (b *Binding[T]) ID() uuid.UUID {
	return b.id
}

func (b *Binding[T]) Name() string {
	return b.name
}

func (b *Binding[T]) Indicator() indicator.Indicator[T] {
	return b.indicator
}

func (b *Binding[T]) Consolidator() *consolidator.Consolidator {
	return b.consolidator
}

// Apply selects a value from bar and updates the indicator with it, stamped at the
// bar end. Bars ending at or before the watermark were already applied and are skipped.
func (b *Binding[T]) Apply(bar types.Bar) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.apply(bar)
}

func (b *Binding[T]) apply(bar types.Bar) {
	if !b.watermark.IsZero() && !bar.End.After(b.watermark) {
		return
	}

	b.indicator.Update(bar.End, b.selector(bar))
	b.watermark = bar.End
	b.applied++
}

// Applied returns the number of bars the indicator received.
func (b *Binding[T]) Applied() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.applied
}

// Watermark returns the end of the newest applied bar.
func (b *Binding[T]) Watermark() time.Time {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.watermark
}

// Rebind points an unattached binding at c, which must have the same instrument and period.
func (b *Binding[T]) Rebind(c *consolidator.Consolidator) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return errors.Newf(errors.ErrCodeBindingAttached, "binding %s is attached", b.name)
	}

	if c.Instrument() != b.consolidator.Instrument() || c.Key() != b.consolidator.Key() {
		return errors.Newf(errors.ErrCodeInvalidParameter, "binding %s cannot move from %s/%s to %s/%s",
			b.name, b.consolidator.Instrument(), b.consolidator.Key(), c.Instrument(), c.Key())
	}

	b.consolidator = c

	return nil
}

// Attach subscribes the binding to its consolidator. Calling it again is a no-op.
func (b *Binding[T]) Attach() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return false
	}

	b.consolidator.Subscribe(b.Apply)
	b.attached = true

	return true
}

// Attached reports whether Attach was called.
func (b *Binding[T]) Attached() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.attached
}

// WarmUp replays history into the indicator through coordinator. It runs at most
// once: later calls return the first report. It may follow Attach only while no
// live bar has reached the indicator; the replayed bars move the watermark, so a
// live bar for a period already replayed is skipped when it closes.
func (b *Binding[T]) WarmUp(ctx context.Context, coordinator *warmup.Coordinator, now time.Time) (warmup.Report, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.warmed {
		return b.report, nil
	}

	if b.attached && b.applied > 0 {
		return warmup.Report{}, errors.Newf(errors.ErrCodeBindingAttached, "binding %s already applied %d live bars", b.name, b.applied)
	}

	report, err := coordinator.Run(ctx, warmup.Request{
		Instrument: b.consolidator.Instrument(),
		Key:        b.consolidator.Key(),
		Periods:    b.indicator.MinimumSamples(),
		Now:        now,
	}, b.apply)
	if err != nil {
		return report, err
	}

	b.warmed = true
	b.report = report

	return report, nil
}

// WarmedUp reports whether WarmUp completed.
func (b *Binding[T]) WarmedUp() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.warmed
}

// Report returns the warm-up report, zero when no warm-up ran.
func (b *Binding[T]) Report() warmup.Report {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.report
}

// Info returns a snapshot of the binding.
func (b *Binding[T]) Info() Info {
	b.mu.Lock()
	defer b.mu.Unlock()

	return Info{
		ID:         b.id,
		Name:       b.name,
		Instrument: b.consolidator.Instrument(),
		Period:     b.consolidator.Key(),
		Ready:      b.indicator.IsReady(),
		Attached:   b.attached,
	}
}
