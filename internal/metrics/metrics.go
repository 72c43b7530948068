// Package metrics holds the Prometheus collectors exported at /metrics.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "questionflow"

// Metrics owns a private registry and the service collectors
type Metrics struct {
	registry *prometheus.Registry

	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	editorSessions  *prometheus.CounterVec
	commits         *prometheus.CounterVec
	reconciliations *prometheus.CounterVec
	diagnostics     *prometheus.CounterVec
	conflicts       prometheus.Counter
	wsConnections   prometheus.Gauge
}

// New registers every collector on a fresh registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route template and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route template.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		editorSessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_sessions_total",
			Help:      "Editor session lifecycle events.",
		}, []string{"event"}),
		commits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_commits_total",
			Help:      "Editor commits by outcome.",
		}, []string{"result"}),
		reconciliations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "option_reconciliations_total",
			Help:      "Option reconciliations by the representation that was used.",
		}, []string{"source", "ambiguous"}),
		diagnostics: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "editor_diagnostics_total",
			Help:      "Integration diagnostics reported by editor sessions.",
		}, []string{"code", "severity"}),
		conflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "questionnaire_version_conflicts_total",
			Help:      "Optimistic concurrency conflicts on questionnaire writes.",
		}),
		wsConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ws_connections",
			Help:      "Open WebSocket change-feed connections.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.editorSessions,
		m.commits,
		m.reconciliations,
		m.diagnostics,
		m.conflicts,
		m.wsConnections,
	)
	return m
}

// Registry exposes the registry for tests and extra collectors
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SessionEvent counts opened, committed, cancelled and deleted sessions
func (m *Metrics) SessionEvent(event string) {
	if m == nil {
		return
	}
	m.editorSessions.WithLabelValues(event).Inc()
}

// CommitResult counts commit outcomes (ok, invalid, conflict, error)
func (m *Metrics) CommitResult(result string) {
	if m == nil {
		return
	}
	m.commits.WithLabelValues(result).Inc()
}

// Reconciled counts which option representation seeded a draft
func (m *Metrics) Reconciled(source string, ambiguous bool) {
	if m == nil {
		return
	}
	m.reconciliations.WithLabelValues(source, strconv.FormatBool(ambiguous)).Inc()
}

// Diagnostic counts an editor diagnostic
func (m *Metrics) Diagnostic(code, severity string) {
	if m == nil {
		return
	}
	m.diagnostics.WithLabelValues(code, severity).Inc()
}

// VersionConflict counts a lost optimistic write
func (m *Metrics) VersionConflict() {
	if m == nil {
		return
	}
	m.conflicts.Inc()
}

// WSConnected adjusts the open connection gauge by delta
func (m *Metrics) WSConnected(delta int) {
	if m == nil {
		return
	}
	m.wsConnections.Add(float64(delta))
}
