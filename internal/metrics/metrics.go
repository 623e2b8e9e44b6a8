// Package metrics exposes Prometheus instrumentation for the consolidation pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the pipeline. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	SamplesTotal     *prometheus.CounterVec // labels: symbol
	LateSamplesTotal *prometheus.CounterVec // labels: symbol, period
	BarsClosedTotal  *prometheus.CounterVec // labels: symbol, period
	Consolidators    prometheus.Gauge

	// Warm-up metrics
	WarmUpsTotal       *prometheus.CounterVec // labels: result=ok|insufficient|failed
	WarmUpBarsTotal    prometheus.Counter
	WarmUpDuration     prometheus.Histogram
	BindingsTotal      prometheus.Counter
	BarsPersistedTotal prometheus.Counter
	SinkFailuresTotal  prometheus.Counter
}

// NewMetrics creates the metrics and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them through promhttp.Handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		SamplesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consolidator_samples_total",
			Help: "Total raw samples fed into the pipeline",
		}, []string{"symbol"}),
		LateSamplesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consolidator_late_samples_total",
			Help: "Samples rejected because their period already closed",
		}, []string{"symbol", "period"}),
		BarsClosedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consolidator_bars_closed_total",
			Help: "Total bars emitted by live consolidators",
		}, []string{"symbol", "period"}),
		Consolidators: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "consolidator_live_consolidators",
			Help: "Number of shared consolidators in the registry",
		}),
		WarmUpsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "consolidator_warmups_total",
			Help: "Warm-up runs by result",
		}, []string{"result"}),
		WarmUpBarsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "consolidator_warmup_bars_total",
			Help: "Historical bars replayed into indicators",
		}),
		WarmUpDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "consolidator_warmup_duration_seconds",
			Help:    "Time spent fetching and replaying history",
			Buckets: prometheus.DefBuckets,
		}),
		BindingsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "consolidator_bindings_total",
			Help: "Indicator registrations attached to live data",
		}),
		BarsPersistedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "consolidator_bars_persisted_total",
			Help: "Closed bars written to the bar sink",
		}),
		SinkFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "consolidator_sink_failures_total",
			Help: "Closed bars the bar sink failed to write",
		}),
	}

	reg.MustRegister(
		m.SamplesTotal,
		m.LateSamplesTotal,
		m.BarsClosedTotal,
		m.Consolidators,
		m.WarmUpsTotal,
		m.WarmUpBarsTotal,
		m.WarmUpDuration,
		m.BindingsTotal,
		m.BarsPersistedTotal,
		m.SinkFailuresTotal,
	)

	return m
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Warm-up results.
const (
	WarmUpOK           = "ok"
	WarmUpInsufficient = "insufficient"
	WarmUpFailed       = "failed"
)

func (m *Metrics) SampleFed(symbol string) {
	if m == nil {
		return
	}

	m.SamplesTotal.WithLabelValues(symbol).Inc()
}

func (m *Metrics) LateSample(symbol, period string) {
	if m == nil {
		return
	}

	m.LateSamplesTotal.WithLabelValues(symbol, period).Inc()
}

func (m *Metrics) BarClosed(symbol, period string) {
	if m == nil {
		return
	}

	m.BarsClosedTotal.WithLabelValues(symbol, period).Inc()
}

func (m *Metrics) ConsolidatorCreated() {
	if m == nil {
		return
	}

	m.Consolidators.Inc()
}

// WarmUp records one warm-up run.
func (m *Metrics) WarmUp(result string, bars int, seconds float64) {
	if m == nil {
		return
	}

	m.WarmUpsTotal.WithLabelValues(result).Inc()
	m.WarmUpBarsTotal.Add(float64(bars))
	m.WarmUpDuration.Observe(seconds)
}

func (m *Metrics) BindingAttached() {
	if m == nil {
		return
	}

	m.BindingsTotal.Inc()
}

// BarPersisted records a sink write attempt.
func (m *Metrics) BarPersisted(ok bool) {
	if m == nil {
		return
	}

	if ok {
		m.BarsPersistedTotal.Inc()

		return
	}

	m.SinkFailuresTotal.Inc()
}
