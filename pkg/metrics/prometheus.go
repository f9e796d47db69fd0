// Package metrics exposes Prometheus instrumentation for optimization runs and forecast loading.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder records forecastfolio metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry       *prometheus.Registry
	runsTotal      *prometheus.CounterVec
	excludedAssets *prometheus.CounterVec
	solveDuration  prometheus.Histogram
	loadDuration   *prometheus.HistogramVec
	lastSharpe     prometheus.Gauge
}

// New creates a Recorder backed by its own registry, so several recorders can coexist in tests.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecastfolio_optimization_runs_total",
				Help: "Total number of optimization runs by outcome",
			},
			[]string{"outcome"},
		),
		excludedAssets: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecastfolio_excluded_assets_total",
				Help: "Assets excluded from a run because their forecast could not be estimated",
			},
			[]string{"reason"},
		),
		solveDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "forecastfolio_solve_duration_seconds",
				Help:    "Duration of the constrained Sharpe maximization",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
		),
		loadDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecastfolio_forecast_load_duration_seconds",
				Help:    "Duration of forecast series loads by source",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		lastSharpe: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "forecastfolio_last_optimized_sharpe",
				Help: "Sharpe ratio of the most recent optimized portfolio",
			},
		),
	}
}

// RecordRun records the outcome of an optimization run (ok, degenerate, failed, invalid).
func (r *Recorder) RecordRun(outcome string) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(outcome).Inc()
}

// RecordExcluded records an asset dropped from a run.
func (r *Recorder) RecordExcluded(reason string) {
	if r == nil {
		return
	}
	r.excludedAssets.WithLabelValues(reason).Inc()
}

// RecordSolve records the solver wall-clock time in seconds.
func (r *Recorder) RecordSolve(seconds float64) {
	if r == nil {
		return
	}
	r.solveDuration.Observe(seconds)
}

// RecordLoad records the time spent loading one series from a source.
func (r *Recorder) RecordLoad(source string, seconds float64) {
	if r == nil {
		return
	}
	r.loadDuration.WithLabelValues(source).Observe(seconds)
}

// RecordSharpe stores the Sharpe ratio of the latest optimized portfolio.
func (r *Recorder) RecordSharpe(sharpe float64) {
	if r == nil {
		return
	}
	r.lastSharpe.Set(sharpe)
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
