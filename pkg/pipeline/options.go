package pipeline

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-consolidator/internal/consolidator"
	"github.com/rxtech-lab/argo-consolidator/internal/history"
	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/metrics"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/selector"
	"github.com/rxtech-lab/argo-consolidator/internal/sink"
	"github.com/rxtech-lab/argo-consolidator/internal/warmup"
)

// Option configures a Pipeline.
type Option func(*Pipeline)

func WithLogger(log *logger.Logger) Option {
	return func(p *Pipeline) {
		p.logger = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// WithRegistry shares an existing consolidator registry.
func WithRegistry(registry *consolidator.Registry) Option {
	return func(p *Pipeline) {
		p.registry = registry
	}
}

// WithCoordinator sets the warm-up coordinator. It takes precedence over WithHistory.
func WithCoordinator(coordinator *warmup.Coordinator) Option {
	return func(p *Pipeline) {
		p.coordinator = coordinator
	}
}

// WithHistory builds a warm-up coordinator over source that shares the
// pipeline logger, metrics and clock.
func WithHistory(source history.Source, opts ...warmup.Option) Option {
	return func(p *Pipeline) {
		p.history = source
		p.warmupOpts = opts
	}
}

// WithSink persists every bar closed by a live consolidator.
func WithSink(w sink.BarWriter) Option {
	return func(p *Pipeline) {
		p.sink = w
	}
}

// WithDefaultPeriod sets the period used by registrations that do not name one.
func WithDefaultPeriod(key period.Key) Option {
	return func(p *Pipeline) {
		p.defaultPeriod = optional.Some(key)
	}
}

// WithWarmUpByDefault sets the warm-up flag used by registrations that do not set one.
func WithWarmUpByDefault(enabled bool) Option {
	return func(p *Pipeline) {
		p.warmUpByDefault = enabled
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(p *Pipeline) {
		p.clock = clock
	}
}

// Options are the per-registration settings of Register.
type Options[T any] struct {
	// Period of the bars fed to the indicator; the pipeline default when none.
	Period optional.Option[period.Key]
	// Selector extracts the indicator input from a bar; selector.Default[T] when none.
	Selector optional.Option[selector.Selector[T]]
	// WarmUp overrides the pipeline default.
	WarmUp optional.Option[bool]
	// Name overrides the generated display name.
	Name string
}
