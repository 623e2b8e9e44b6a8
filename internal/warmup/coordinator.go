// Package warmup replays historical data into a freshly registered indicator so
// it is ready before the first live sample.
package warmup

import (
	"context"
	"time"

	"github.com/rxtech-lab/argo-consolidator/internal/consolidator"
	"github.com/rxtech-lab/argo-consolidator/internal/history"
	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/metrics"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"go.uber.org/zap"
)

// Request describes one warm-up.
type Request struct {
	Instrument types.Instrument
	Key        period.Key
	// Periods is the number of completed bars the indicator needs,
	// normally its MinimumSamples.
	Periods int
	// Now overrides the coordinator clock when set.
	Now time.Time
}

// Report summarizes a finished warm-up.
type Report struct {
	// Requested is Periods plus the coordinator padding.
	Requested int
	// Samples is the number of historical samples consolidated.
	Samples int
	// Bars is the number of completed bars replayed.
	Bars int
	From time.Time
	To   time.Time
	// LastBarEnd is the end of the newest replayed bar, zero when none was replayed.
	LastBarEnd time.Time
	// Shortfall is set when history held fewer bars than requested.
	Shortfall *errors.InsufficientDataError
}

// Complete reports whether history covered every requested bar.
func (r Report) Complete() bool {
	return r.Shortfall == nil
}

// Coordinator fetches history, consolidates it with a private consolidator and
// replays the completed bars to the caller.
type Coordinator struct {
	source  history.Source
	planner LookbackPlanner
	padding int
	clock   func() time.Time
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithPlanner replaces the default LinearLookback.
func WithPlanner(planner LookbackPlanner) Option {
	return func(c *Coordinator) {
		c.planner = planner
	}
}

// WithPadding requests extra bars on top of the indicator minimum.
func WithPadding(bars int) Option {
	return func(c *Coordinator) {
		c.padding = max(bars, 0)
	}
}

// WithClock replaces time.Now.
func WithClock(clock func() time.Time) Option {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

func WithLogger(log *logger.Logger) Option {
	return func(c *Coordinator) {
		c.logger = log
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Coordinator) {
		c.metrics = m
	}
}

// NewCoordinator creates a Coordinator reading from source.
func NewCoordinator(source history.Source, opts ...Option) *Coordinator {
	c := &Coordinator{
		source:  source,
		planner: LinearLookback{},
		clock:   time.Now,
		logger:  logger.NewNopLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Run performs the warm-up. Only periods that completed before now are used, so
// history never overlaps the period live data is filling.
//
// The whole history is consolidated before apply is called: on error apply is
// never invoked. A shortfall is reported, not returned as an error.
func (c *Coordinator) Run(ctx context.Context, req Request, apply func(types.Bar)) (Report, error) {
	started := time.Now()

	report, bars, err := c.collect(ctx, req)
	if err != nil {
		c.metrics.WarmUp(metrics.WarmUpFailed, 0, time.Since(started).Seconds())
		c.logger.Error("Warm-up failed",
			zap.String("instrument", req.Instrument.String()),
			zap.String("period", req.Key.String()),
			zap.Error(err),
		)

		return report, err
	}

	for _, bar := range bars {
		apply(bar)
	}

	result := metrics.WarmUpOK
	if !report.Complete() {
		result = metrics.WarmUpInsufficient

		c.logger.Warn("Insufficient history for warm-up",
			zap.String("instrument", req.Instrument.String()),
			zap.String("period", req.Key.String()),
			zap.Int("requested", report.Requested),
			zap.Int("bars", report.Bars),
		)
	}

	c.metrics.WarmUp(result, report.Bars, time.Since(started).Seconds())
	c.logger.Debug("Warm-up finished",
		zap.String("instrument", req.Instrument.String()),
		zap.String("period", req.Key.String()),
		zap.Int("samples", report.Samples),
		zap.Int("bars", report.Bars),
		zap.Time("from", report.From),
		zap.Time("to", report.To),
	)

	return report, nil
}

func (c *Coordinator) collect(ctx context.Context, req Request) (Report, []types.Bar, error) {
	if req.Key.IsZero() {
		return Report{}, nil, errors.New(errors.ErrCodeInvalidPeriod, "warm-up requires a period")
	}

	now := req.Now
	if now.IsZero() {
		now = c.clock()
	}

	report := Report{
		Requested: req.Periods + c.padding,
		To:        req.Key.Floor(now),
	}
	report.From = c.planner.From(req.Instrument, req.Key, report.To, report.Requested)

	if report.Requested <= 0 {
		return report, nil, nil
	}

	var bars []types.Bar

	replay := consolidator.New(req.Instrument, req.Key)
	replay.Subscribe(func(bar types.Bar) {
		bars = append(bars, bar)
	})

	var last time.Time

	for sample, err := range c.source.Fetch(ctx, req.Instrument, req.Key, report.From, report.To) {
		if err != nil {
			return report, nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to fetch history for %s", req.Instrument)
		}

		if sample.Instrument != req.Instrument || sample.Time.Before(report.From) || !sample.Time.Before(report.To) {
			continue
		}

		if sample.Time.Before(last) {
			return report, nil, errors.Newf(errors.ErrCodeHistoricalDataFailed,
				"history for %s is out of order: %s after %s", req.Instrument, sample.Time, last)
		}

		last = sample.Time

		if err := replay.Update(sample); err != nil {
			return report, nil, errors.Wrapf(errors.ErrCodeHistoricalDataFailed, err, "failed to consolidate history for %s", req.Instrument)
		}

		report.Samples++
	}

	replay.Scan(report.To)

	// history may hold more bars than needed; the newest ones matter
	if len(bars) > report.Requested {
		bars = bars[len(bars)-report.Requested:]
	}

	report.Bars = len(bars)
	if report.Bars > 0 {
		report.LastBarEnd = bars[report.Bars-1].End
	}

	if report.Bars < report.Requested {
		report.Shortfall = errors.NewInsufficientDataErrorf(report.Requested, report.Bars, req.Instrument.Symbol,
			"insufficient history for %s/%s: requested %d bars, got %d", req.Instrument, req.Key, report.Requested, report.Bars)
	}

	return report, bars, nil
}
