package main

import (
	"context"
	"io"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/moznion/go-optional"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rxtech-lab/argo-consolidator/internal/binding"
	"github.com/rxtech-lab/argo-consolidator/internal/config"
	"github.com/rxtech-lab/argo-consolidator/internal/history"
	"github.com/rxtech-lab/argo-consolidator/internal/indicator"
	"github.com/rxtech-lab/argo-consolidator/internal/logger"
	"github.com/rxtech-lab/argo-consolidator/internal/metrics"
	"github.com/rxtech-lab/argo-consolidator/internal/period"
	"github.com/rxtech-lab/argo-consolidator/internal/selector"
	"github.com/rxtech-lab/argo-consolidator/internal/sink"
	"github.com/rxtech-lab/argo-consolidator/internal/stream"
	"github.com/rxtech-lab/argo-consolidator/internal/types"
	"github.com/rxtech-lab/argo-consolidator/internal/warmup"
	"github.com/rxtech-lab/argo-consolidator/pkg/errors"
	"github.com/rxtech-lab/argo-consolidator/pkg/pipeline"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// endOfTime bounds live replays that read a file to its end.
var endOfTime = time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC)

// registration is the untyped view of a pipeline handle.
type registration interface {
	Info() binding.Info
	Value() decimal.Decimal
}

// runner owns everything built from one config.
type runner struct {
	cfg           *config.Config
	now           time.Time
	pipeline      *pipeline.Pipeline
	registrations []registration
	source        history.Source
	sink          *sink.DuckDBSink
	gatherer      *prometheus.Registry
	logger        *logger.Logger
	progress      io.Writer
}

func runAction(ctx context.Context, cmd *cli.Command) error {
	level := zapcore.InfoLevel
	if cmd.Bool("debug") {
		level = zapcore.DebugLevel
	}

	log, err := logger.NewLoggerWithLevel(level)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}

	now := cfg.Now.TakeOr(time.Now()).UTC()
	if cmd.IsSet("now") {
		now = cmd.Timestamp("now").UTC()
	}

	r, err := newRunner(ctx, cfg, log, now)
	if err != nil {
		return err
	}
	defer r.Close()

	if cfg.Metrics.Addr != "" {
		stop := r.serveMetrics(cfg.Metrics.Addr)
		defer stop()
	}

	if live := cmd.String("live"); live != "" {
		if err := r.replay(ctx, live, cmd.Bool("flush")); err != nil {
			return err
		}
	}

	if url := cmd.String("stream"); url != "" {
		if err := r.stream(ctx, url, cmd.Duration("scan-interval")); err != nil {
			return err
		}
	}

	r.summarize()

	return r.finish()
}

// newRunner builds the pipeline and registers every configured indicator.
func newRunner(ctx context.Context, cfg *config.Config, log *logger.Logger, now time.Time) (*runner, error) {
	r := &runner{
		cfg:      cfg,
		now:      now,
		gatherer: prometheus.NewRegistry(),
		logger:   log,
		progress: os.Stderr,
	}

	m := metrics.NewMetrics(r.gatherer)

	source, err := history.NewSource(cfg.HistorySource(), log.Named("history"))
	if err != nil {
		return nil, err
	}
	r.source = source

	warmupOpts := []warmup.Option{warmup.WithPadding(cfg.Padding)}
	if cfg.History.Calendar != "" {
		planner, err := warmup.NewCalendarLookback(cfg.History.Calendar)
		if err != nil {
			r.Close()

			return nil, err
		}

		warmupOpts = append(warmupOpts, warmup.WithPlanner(planner))
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(log.Named("pipeline")),
		pipeline.WithMetrics(m),
		pipeline.WithHistory(source, warmupOpts...),
		pipeline.WithDefaultPeriod(cfg.DefaultKey()),
		pipeline.WithWarmUpByDefault(cfg.WarmUp),
		pipeline.WithClock(func() time.Time { return now }),
	}

	if cfg.Sink.Enabled {
		r.sink = sink.NewDuckDBSink(cfg.Sink.Path, log.Named("sink"), m)
		if err := r.sink.Initialize(); err != nil {
			r.sink = nil
			r.Close()

			return nil, err
		}

		opts = append(opts, pipeline.WithSink(r.sink))
	}

	r.pipeline = pipeline.New(opts...)

	catalog := indicator.NewDefaultCatalog()
	for i, reg := range cfg.Registrations {
		if err := r.register(ctx, catalog, reg); err != nil {
			r.Close()

			return nil, errors.Wrapf(errors.GetCode(err), err, "registration %d (%s %s)", i, reg.Indicator, reg.Symbol)
		}
	}

	return r, nil
}

// register creates the registration's indicator from the catalog and registers it
// with the sample type the indicator consumes.
func (r *runner) register(ctx context.Context, catalog indicator.Catalog, reg config.Registration) error {
	kind := types.IndicatorType(reg.Indicator)

	var key optional.Option[period.Key]
	if raw, err := reg.Period.Take(); err == nil {
		parsed, err := period.Parse(raw)
		if err != nil {
			return err
		}

		key = optional.Some(parsed)
	}

	if catalog.IsBarKind(kind) {
		if reg.Selector != "" {
			return errors.Newf(errors.ErrCodeInvalidSelector, "%s consumes whole bars and takes no selector", kind)
		}

		ind, err := catalog.CreateBar(kind, reg.Params)
		if err != nil {
			return err
		}

		handle, err := pipeline.Register(ctx, r.pipeline, reg.Instrument(), ind, pipeline.Options[types.Bar]{
			Period: key,
			WarmUp: reg.WarmUp,
			Name:   reg.Name,
		})
		if err != nil {
			return err
		}

		r.registrations = append(r.registrations, handle)

		return nil
	}

	ind, err := catalog.Create(kind, reg.Params)
	if err != nil {
		return err
	}

	opts := pipeline.Options[decimal.Decimal]{
		Period: key,
		WarmUp: reg.WarmUp,
		Name:   reg.Name,
	}

	if reg.Selector != "" {
		sel, err := selector.ByName(reg.Selector)
		if err != nil {
			return err
		}

		opts.Selector = optional.Some(sel)
	}

	handle, err := pipeline.Register(ctx, r.pipeline, reg.Instrument(), ind, opts)
	if err != nil {
		return err
	}

	r.registrations = append(r.registrations, handle)

	return nil
}

// replay feeds the samples of path to the pipeline as live data, in time order.
// Each instrument is read from the start of its earliest open period, so the
// periods warm-up left open are filled completely.
func (r *runner) replay(ctx context.Context, path string, flush bool) error {
	live, err := history.NewDuckDBSource(path, r.logger.Named("live"))
	if err != nil {
		return err
	}
	defer live.Close()

	registry := r.pipeline.Registry()

	var samples []types.MarketData

	for _, instrument := range registry.Instruments() {
		from := r.now
		for _, c := range registry.ForInstrument(instrument) {
			if start := c.Key().Floor(r.now); start.Before(from) {
				from = start
			}
		}

		for sample, err := range live.Fetch(ctx, instrument, period.Key{}, from, endOfTime) {
			if err != nil {
				return err
			}

			samples = append(samples, sample)
		}
	}

	slices.SortStableFunc(samples, func(a, b types.MarketData) int {
		return a.Time.Compare(b.Time)
	})

	bar := progressbar.NewOptions(len(samples),
		progressbar.OptionSetDescription("Replaying live samples"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWriter(r.progress),
	)

	late := 0

	for _, sample := range samples {
		if err := r.pipeline.Feed(sample); err != nil {
			if !errors.IsLateDataError(err) {
				return err
			}

			late++
		}

		_ = bar.Add(1)
	}

	_ = bar.Finish()

	closed := 0
	if flush {
		closed = r.pipeline.Scan(endOfTime)
	}

	r.logger.Info("Live replay finished",
		zap.Int("samples", len(samples)),
		zap.Int("late", late),
		zap.Int("flushed", closed),
	)

	return nil
}

// stream feeds the pipeline from a live WebSocket feed until interrupted.
// Open bars are closed on the wall clock every interval so quiet instruments
// still emit their bars.
func (r *runner) stream(ctx context.Context, url string, interval time.Duration) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ing, err := stream.NewIngest(stream.Config{URL: url}, r.pipeline, r.logger.Named("stream"))
	if err != nil {
		return err
	}

	if interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case now := <-ticker.C:
					r.pipeline.Scan(now.UTC())
				}
			}
		}()
	}

	r.logger.Info("Streaming live samples", zap.String("url", url))

	if err := ing.Run(ctx); err != nil {
		return err
	}

	r.logger.Info("Stream stopped",
		zap.Int64("received", ing.Received()),
		zap.Int64("rejected", ing.Rejected()),
	)

	return nil
}

// summarize logs the state of every registration.
func (r *runner) summarize() {
	for _, reg := range r.registrations {
		info := reg.Info()

		r.logger.Info("Indicator",
			zap.String("name", info.Name),
			zap.String("instrument", info.Instrument.String()),
			zap.String("period", info.Period.String()),
			zap.Bool("ready", info.Ready),
			zap.String("value", reg.Value().String()),
		)
	}
}

// finish commits the sink and exports the closed bars.
func (r *runner) finish() error {
	if r.sink == nil {
		return nil
	}

	path, err := r.sink.Finalize()
	if err != nil {
		return err
	}

	r.logger.Info("Closed bars persisted", zap.Int("bars", r.sink.Written()), zap.String("path", path))

	return nil
}

// serveMetrics exposes the run's metrics until the returned stop function is called.
func (r *runner) serveMetrics(addr string) func() {
	router := mux.NewRouter()
	router.Handle("/metrics", metrics.Handler(r.gatherer)).Methods(http.MethodGet)

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			r.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	r.logger.Info("Serving metrics", zap.String("addr", addr))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		_ = server.Shutdown(ctx)
	}
}

// Close releases the history source and the sink.
func (r *runner) Close() error {
	var err error

	if closer, ok := r.source.(io.Closer); ok {
		err = multierr.Append(err, closer.Close())
	}

	if r.sink != nil {
		err = multierr.Append(err, r.sink.Close())
	}

	return err
}
