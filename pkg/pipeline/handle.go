package pipeline

import (
	"context"

	"github.com/google/uuid"
	"github.com/rxtech-lab/argo-consolidator/internal/binding"
	"github.com/rxtech-lab/argo-consolidator/internal/consolidator"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/internal/warmup"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/shopspring/decimal"
)

// Handle is the caller's view of one registration. I keeps the concrete
// indicator type so composite outputs such as MACD's signal line stay reachable.
type Handle[T any, I any] struct {
	binding   *binding.Binding[T]
	indicator I
	pipeline  *Pipeline
}

func (h *Handle[T, I]) ID() uuid.UUID {
	return h.binding.ID()
}

func (h *Handle[T, I]) Name() string {
	return h.binding.Name()
}

func (h *Handle[T, I]) Instrument() types.Instrument {
	return h.binding.Consolidator().Instrument()
}

func (h *Handle[T, I]) Period() period.Key {
	return h.binding.Consolidator().Key()
}

// Indicator returns the registered indicator.
func (h *Handle[T, I]) Indicator() I {
	return h.indicator
}

// Consolidator returns the shared consolidator feeding this registration.
func (h *Handle[T, I]) Consolidator() *consolidator.Consolidator {
	return h.binding.Consolidator()
}

func (h *Handle[T, I]) IsReady() bool {
	return h.binding.Indicator().IsReady()
}

func (h *Handle[T, I]) Value() decimal.Decimal {
	return h.binding.Indicator().Value()
}

// Feed updates only this registration's consolidator. Other registrations
// sharing it see the resulting bars too.
func (h *Handle[T, I]) Feed(sample types.MarketData) error {
	err := h.binding.Consolidator().Update(sample)
	if errors.IsLateDataError(err) {
		h.pipeline.metrics.LateSample(sample.Instrument.Symbol, h.Period().String())
	}

	return err
}

// WarmUp runs the warm-up if Register skipped it. It fails with
// ErrCodeBindingAttached once a live bar reached the indicator. A completed
// warm-up is never repeated: its report is returned.
func (h *Handle[T, I]) WarmUp(ctx context.Context) (warmup.Report, error) {
	if h.binding.WarmedUp() {
		return h.binding.Report(), nil
	}

	if h.pipeline.coordinator == nil {
		return warmup.Report{}, errors.Newf(errors.ErrCodeMissingParameter, "warm-up of %s requires a history source", h.Name())
	}

	return h.binding.WarmUp(ctx, h.pipeline.coordinator, h.pipeline.clock())
}

// Report returns the warm-up report, zero when no warm-up ran.
func (h *Handle[T, I]) Report() warmup.Report {
	return h.binding.Report()
}

// Info returns a snapshot of the registration.
func (h *Handle[T, I]) Info() binding.Info {
	return h.binding.Info()
}
