// Package pipeline registers incremental indicators against shared, deduplicated
// bar consolidators, warms them up from history and routes live samples to them.
//
// A typical use:
//
//	p := pipeline.New(
//		pipeline.WithHistory(source),
//		pipeline.WithDefaultPeriod(period.MustParse("1d")),
//		pipeline.WithWarmUpByDefault(true),
//	)
//	sma, _ := indicator.NewSMA(20)
//	handle, err := pipeline.Register(ctx, p, spy, sma, pipeline.Options[decimal.Decimal]{})
//	...
//	err = p.Feed(sample)
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-consolidator/internal/binding"
	"github.com/rxtech-lab/argo-consolidator/internal/consolidator"
	"github.com/rxtech-lab/argo-consolidator/internal/history"
	"github.com/rxtech-lab/argo-consolidator/internal/indicator"
	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/metrics"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/selector"
	"github.com/rxtech-lab/argo-consolidator/internal/sink"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/internal/warmup"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Pipeline owns the consolidator registry and every registration made through it.
type Pipeline struct {
	registry        *consolidator.Registry
	coordinator     *warmup.Coordinator
	history         history.Source
	warmupOpts      []warmup.Option
	sink            sink.BarWriter
	logger          *logger.Logger
	metrics         *metrics.Metrics
	defaultPeriod   optional.Option[period.Key]
	warmUpByDefault bool
	clock           func() time.Time

	mu       sync.RWMutex
	bindings []registered
}

// registered is the untyped view of a binding kept by the pipeline.
type registered interface {
	Info() binding.Info
}

// New creates a Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		logger: logger.NewNopLogger(),
		clock:  time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.registry == nil {
		p.registry = consolidator.NewRegistry(p.logger)
	}

	if p.coordinator == nil && p.history != nil {
		base := []warmup.Option{
			warmup.WithLogger(p.logger.Named("warmup")),
			warmup.WithMetrics(p.metrics),
			warmup.WithClock(p.clock),
		}
		p.coordinator = warmup.NewCoordinator(p.history, append(base, p.warmupOpts...)...)
	}

	if p.metrics != nil {
		p.registry.OnCreate(p.instrument)
	}

	if p.sink != nil {
		p.registry.OnCreate(sink.Hook(p.sink, func(bar types.Bar, err error) {
			p.logger.Error("Failed to persist closed bar",
				zap.String("instrument", bar.Instrument.String()),
				zap.Time("start", bar.Start),
				zap.Error(err),
			)
		}))
	}

	return p
}

// instrument counts consolidators and the bars they close.
func (p *Pipeline) instrument(c *consolidator.Consolidator) {
	symbol, key := c.Instrument().Symbol, c.Key().String()

	p.metrics.ConsolidatorCreated()
	c.Subscribe(func(types.Bar) {
		p.metrics.BarClosed(symbol, key)
	})
}

// Registry returns the shared consolidator registry.
func (p *Pipeline) Registry() *consolidator.Registry {
	return p.registry
}

// Register binds ind to the shared consolidator of instrument and the resolved
// period, warming it up first when enabled.
//
// When the registry has no consolidator for the pair yet, warm-up runs against a
// staged one and the shared consolidator is created only after it succeeds. On
// failure nothing is attached or registered and the error is returned.
func Register[T any, I indicator.Indicator[T]](ctx context.Context, p *Pipeline, instrument types.Instrument, ind I, opts Options[T]) (*Handle[T, I], error) {
	if instrument.IsZero() {
		return nil, errors.New(errors.ErrCodeInvalidParameter, "instrument is required")
	}

	key, err := p.resolvePeriod(opts.Period)
	if err != nil {
		return nil, err
	}

	sel, err := resolveSelector(opts.Selector)
	if err != nil {
		return nil, err
	}

	name := opts.Name
	if name == "" {
		name = displayName(ind, instrument, key)
	}

	warm := opts.WarmUp.TakeOr(p.warmUpByDefault)
	if warm && p.coordinator == nil {
		return nil, errors.Newf(errors.ErrCodeMissingParameter, "warm-up of %s requires a history source", name)
	}

	c, shared := p.registry.Get(instrument, key)
	if !shared {
		c = consolidator.New(instrument, key)
	}

	b := binding.New[T](name, ind, c, sel)

	if warm {
		if _, err := b.WarmUp(ctx, p.coordinator, p.clock()); err != nil {
			return nil, err
		}
	}

	if !shared {
		c, _ = p.registry.GetOrCreate(instrument, key)
		if err := b.Rebind(c); err != nil {
			return nil, err
		}
	}

	b.Attach()

	p.mu.Lock()
	p.bindings = append(p.bindings, b)
	p.mu.Unlock()

	p.metrics.BindingAttached()
	p.logger.Info("Registered indicator",
		zap.String("name", name),
		zap.String("binding", b.ID().String()),
		zap.String("instrument", instrument.String()),
		zap.String("period", key.String()),
		zap.Bool("ready", ind.IsReady()),
	)

	return &Handle[T, I]{binding: b, indicator: ind, pipeline: p}, nil
}

func (p *Pipeline) resolvePeriod(requested optional.Option[period.Key]) (period.Key, error) {
	key, err := requested.Or(p.defaultPeriod).Take()
	if err != nil {
		return period.Key{}, errors.New(errors.ErrCodeMissingParameter, "no period given and the pipeline has no default period")
	}

	if key.IsZero() {
		return period.Key{}, errors.New(errors.ErrCodeInvalidPeriod, "period must be positive")
	}

	return key, nil
}

func resolveSelector[T any](requested optional.Option[selector.Selector[T]]) (selector.Selector[T], error) {
	if sel, err := requested.Take(); err == nil && sel != nil {
		return sel, nil
	}

	return selector.Default[T]()
}

// displayName builds names such as "SMA(20)_SPY_1d".
func displayName(ind any, instrument types.Instrument, key period.Key) string {
	kind := "Indicator"
	if named, ok := ind.(indicator.Named); ok {
		kind = named.Name()
	}

	return indicator.FormatName(kind, instrument, key)
}

// Feed routes a sample to every consolidator of its instrument in registration
// order. Samples of instruments without registrations are ignored.
//
// Every consolidator is updated even when one rejects the sample; the
// rejections are combined into the returned error.
func (p *Pipeline) Feed(sample types.MarketData) error {
	p.metrics.SampleFed(sample.Instrument.Symbol)

	var errs error

	for _, c := range p.registry.ForInstrument(sample.Instrument) {
		if err := c.Update(sample); err != nil {
			if errors.IsLateDataError(err) {
				p.metrics.LateSample(sample.Instrument.Symbol, c.Key().String())
			}

			errs = multierr.Append(errs, err)
		}
	}

	return errs
}

// Scan closes every open bar whose period ended at or before now and returns
// how many bars were closed.
func (p *Pipeline) Scan(now time.Time) int {
	closed := 0

	for _, instrument := range p.registry.Instruments() {
		for _, c := range p.registry.ForInstrument(instrument) {
			if c.Scan(now) {
				closed++
			}
		}
	}

	return closed
}

// Bindings returns a snapshot of every registration in registration order.
func (p *Pipeline) Bindings() []binding.Info {
	p.mu.RLock()
	defer p.mu.RUnlock()

	infos := make([]binding.Info, 0, len(p.bindings))
	for _, b := range p.bindings {
		infos = append(infos, b.Info())
	}

	return infos
}
