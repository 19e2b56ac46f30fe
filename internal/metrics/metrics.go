package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the pipeline collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	runs       *prometheus.CounterVec
	published  *prometheus.CounterVec
	rows       *prometheus.GaugeVec
	publishDur *prometheus.HistogramVec
	queryDur   *prometheus.HistogramVec
	refreshes  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_pipeline_runs_total",
			Help: "Pipeline runs by final status.",
		}, []string{"status"}),
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_reports_published_total",
			Help: "Artifacts written to the blob store.",
		}, []string{"report"}),
		rows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "analytics_report_rows",
			Help: "Row count of the latest published artifact.",
		}, []string{"report"}),
		publishDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analytics_publish_duration_seconds",
			Help:    "Time spent serializing and writing one artifact.",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"report"}),
		queryDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "analytics_query_duration_seconds",
			Help:    "Time spent executing one report query.",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"report"}),
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_dashboard_refresh_total",
			Help: "Dashboard update requests by status.",
		}, []string{"status"}),
	}

	m.registry.MustRegister(m.runs, m.published, m.rows, m.publishDur, m.queryDur, m.refreshes)
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) RecordRun(status string) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordQuery(report string, seconds float64) {
	if m == nil {
		return
	}
	m.queryDur.WithLabelValues(report).Observe(seconds)
}

func (m *Metrics) RecordPublish(report string, rows int, seconds float64) {
	if m == nil {
		return
	}
	m.published.WithLabelValues(report).Inc()
	m.rows.WithLabelValues(report).Set(float64(rows))
	m.publishDur.WithLabelValues(report).Observe(seconds)
}

func (m *Metrics) RecordRefresh(status string) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(status).Inc()
}
