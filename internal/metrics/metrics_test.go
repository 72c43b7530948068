package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.SessionEvent("opened")
	m.SessionEvent("opened")
	m.CommitResult("ok")
	m.Reconciled("legacy", false)
	m.Diagnostic("MISSING_CALLBACK", "error")
	m.VersionConflict()
	m.WSConnected(1)
	m.WSConnected(1)
	m.WSConnected(-1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.editorSessions.WithLabelValues("opened")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.commits.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reconciliations.WithLabelValues("legacy", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.diagnostics.WithLabelValues("MISSING_CALLBACK", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.conflicts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.wsConnections))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.SessionEvent("opened")
		m.CommitResult("ok")
		m.ObserveRequest("GET", "/health", 200, time.Millisecond)
		m.WSConnected(1)
	})
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveRequest("GET", "/v1/questionnaires", 200, 5*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `questionflow_http_requests_total{method="GET",route="/v1/questionnaires",status="200"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
