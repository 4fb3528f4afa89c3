package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ReportDetected()
	m.ParseResult("ok")
	m.RetryScheduled()
	m.RetryExhausted()
	m.RecordDispatched(time.Millisecond)
	m.WaiterRegistered()
	m.WaiterCompleted()
	m.WaiterCancelled()
	if m.Registry() != nil {
		t.Error("nil Metrics should have nil registry")
	}
	if m.Handler() == nil {
		t.Error("nil Metrics should still return a handler")
	}
}

func TestWaiterGauge(t *testing.T) {
	m := New()
	m.WaiterRegistered()
	m.WaiterRegistered()
	m.WaiterRegistered()
	m.WaiterCompleted()
	m.WaiterCancelled()

	if got := testutil.ToFloat64(m.waitersActive); got != 1 {
		t.Errorf("waiters active = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.waitersRegistered); got != 3 {
		t.Errorf("waiters registered = %v, want 3", got)
	}
}

func TestParseResults(t *testing.T) {
	m := New()
	m.ParseResult("ok")
	m.ParseResult("incomplete")
	m.ParseResult("incomplete")

	if got := testutil.ToFloat64(m.parseResults.WithLabelValues("incomplete")); got != 2 {
		t.Errorf("incomplete = %v, want 2", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.ReportDetected()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	if !strings.Contains(rec.Body.String(), "crashlog_reports_detected_total 1") {
		t.Errorf("metrics output missing counter:\n%s", rec.Body.String())
	}
}

func TestWriteText(t *testing.T) {
	m := New()
	m.ReportDetected()
	m.ParseResult("malformed")

	var buf strings.Builder
	if err := m.WriteText(&buf); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"crashlog_reports_detected_total 1",
		`crashlog_parse_results_total{result="malformed"} 1`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	var nilMetrics *Metrics
	if err := nilMetrics.WriteText(&buf); err != nil {
		t.Errorf("nil WriteText() error = %v", err)
	}
}
