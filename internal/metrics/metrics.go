package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the process counters on a private registry. A nil *Metrics is
// valid and records nothing, so components can take it optionally.
type Metrics struct {
	registry *prometheus.Registry

	casesSaved     *prometheus.CounterVec
	storeErrors    *prometheus.CounterVec
	storeDuration  *prometheus.HistogramVec
	intakeRecords  *prometheus.CounterVec
	viewRecomputes prometheus.Counter
	viewSize       prometheus.Gauge
	busPublished   *prometheus.CounterVec
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		casesSaved: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issues_cases_saved_total",
				Help: "Cases written to the store by operation",
			},
			[]string{"op"},
		),
		storeErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issues_store_errors_total",
				Help: "Failed store operations",
			},
			[]string{"op"},
		),
		storeDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "issues_store_operation_seconds",
				Help:    "Store operation latency",
				Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, 1},
			},
			[]string{"op"},
		),
		intakeRecords: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issues_intake_records_total",
				Help: "Intake records processed by result",
			},
			[]string{"result"},
		),
		viewRecomputes: f.NewCounter(
			prometheus.CounterOpts{
				Name: "issues_view_recomputes_total",
				Help: "Case list view recomputations",
			},
		),
		viewSize: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "issues_view_size",
				Help: "Number of cases in the displayed list",
			},
		),
		busPublished: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "issues_bus_published_total",
				Help: "Case change notifications published by action",
			},
			[]string{"action"},
		),
	}
}

// Registry exposes the underlying registry (tests, custom exporters).
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) CaseSaved(op string) {
	if m == nil {
		return
	}
	m.casesSaved.WithLabelValues(op).Inc()
}

// ObserveStore records the latency of a store call and counts it as an error
// when err is non-nil.
func (m *Metrics) ObserveStore(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.storeDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		m.storeErrors.WithLabelValues(op).Inc()
	}
}

func (m *Metrics) IntakeRecord(result string) {
	if m == nil {
		return
	}
	m.intakeRecords.WithLabelValues(result).Inc()
}

// ViewRecomputed satisfies caselist.Observer.
func (m *Metrics) ViewRecomputed(size int) {
	if m == nil {
		return
	}
	m.viewRecomputes.Inc()
	m.viewSize.Set(float64(size))
}

func (m *Metrics) Published(action string) {
	if m == nil {
		return
	}
	m.busPublished.WithLabelValues(action).Inc()
}
