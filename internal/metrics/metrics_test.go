// ABOUTME: Tests for the Prometheus collectors.
// ABOUTME: Uses testutil to read counter values back.
package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordWrite(t *testing.T) {
	m := New()
	m.RecordWrite("diet", "insert")
	m.RecordWrite("diet", "insert")
	m.RecordWrite("workout_goal", "upsert")

	if got := testutil.ToFloat64(m.recordWrites.WithLabelValues("diet", "insert")); got != 2 {
		t.Errorf("diet inserts = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.recordWrites.WithLabelValues("workout_goal", "upsert")); got != 1 {
		t.Errorf("goal upserts = %v, want 1", got)
	}
}

func TestInFlight(t *testing.T) {
	m := New()
	done := m.InFlight()
	if got := testutil.ToFloat64(m.httpInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	done()
	if got := testutil.ToFloat64(m.httpInFlight); got != 0 {
		t.Errorf("in flight after done = %v, want 0", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordWrite("diet", "insert")
	m.RecordDegraded("find_many")
	m.SessionIssued()
	m.ObserveHTTP("GET", "/home", 200, time.Millisecond)
	m.InFlight()()
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveHTTP("GET", "/home", http.StatusOK, 10*time.Millisecond)
	m.RecordDegraded("find_many")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body := rec.Body.String()
	for _, want := range []string{
		`fitlog_http_requests_total{method="GET",path="/home",status="200"} 1`,
		`fitlog_store_degraded_calls_total{op="find_many"} 1`,
		"fitlog_http_request_duration_seconds_bucket",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q", want)
		}
	}
}
