// Package metrics exposes Prometheus collectors for the crash log pipeline.
// Every method is safe on a nil *Metrics so components can run without it.
package metrics

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/common/expfmt"
)

type Metrics struct {
	registry *prometheus.Registry

	reportsDetected   prometheus.Counter
	parseResults      *prometheus.CounterVec
	retriesScheduled  prometheus.Counter
	retriesExhausted  prometheus.Counter
	recordsDispatched prometheus.Counter
	waitersRegistered prometheus.Counter
	waitersCompleted  prometheus.Counter
	waitersCancelled  prometheus.Counter
	waitersActive     prometheus.Gauge
	dispatchDuration  prometheus.Histogram
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		reportsDetected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crashlog_reports_detected_total",
			Help: "Crash report files detected by the directory watcher",
		}),
		parseResults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crashlog_parse_results_total",
				Help: "Crash report parse attempts by result",
			},
			[]string{"result"}, // ok, incomplete, malformed, unreadable
		),
		retriesScheduled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crashlog_retries_scheduled_total",
			Help: "Incomplete reports queued for another parse attempt",
		}),
		retriesExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crashlog_retries_exhausted_total",
			Help: "Incomplete reports dropped after the last attempt",
		}),
		recordsDispatched: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crashlog_records_dispatched_total",
			Help: "Parsed crash records offered to waiters",
		}),
		waitersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crashlog_waiters_registered_total",
			Help: "Waiters registered",
		}),
		waitersCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crashlog_waiters_completed_total",
			Help: "Waiters completed with a matching record",
		}),
		waitersCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crashlog_waiters_cancelled_total",
			Help: "Waiters cancelled before completion",
		}),
		waitersActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "crashlog_waiters_active",
			Help: "Waiters currently pending",
		}),
		dispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crashlog_dispatch_duration_seconds",
			Help:    "Time spent matching one record against active waiters",
			Buckets: prometheus.ExponentialBuckets(0.00001, 10, 6),
		}),
	}

	m.registry.MustRegister(
		m.reportsDetected,
		m.parseResults,
		m.retriesScheduled,
		m.retriesExhausted,
		m.recordsDispatched,
		m.waitersRegistered,
		m.waitersCompleted,
		m.waitersCancelled,
		m.waitersActive,
		m.dispatchDuration,
	)
	return m
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteText writes the current values in Prometheus text format
func (m *Metrics) WriteText(w io.Writer) error {
	if m == nil {
		return nil
	}
	families, err := m.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	encoder := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := encoder.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

func (m *Metrics) ReportDetected() {
	if m == nil {
		return
	}
	m.reportsDetected.Inc()
}

func (m *Metrics) ParseResult(result string) {
	if m == nil {
		return
	}
	m.parseResults.WithLabelValues(result).Inc()
}

func (m *Metrics) RetryScheduled() {
	if m == nil {
		return
	}
	m.retriesScheduled.Inc()
}

func (m *Metrics) RetryExhausted() {
	if m == nil {
		return
	}
	m.retriesExhausted.Inc()
}

func (m *Metrics) RecordDispatched(duration time.Duration) {
	if m == nil {
		return
	}
	m.recordsDispatched.Inc()
	m.dispatchDuration.Observe(duration.Seconds())
}

func (m *Metrics) WaiterRegistered() {
	if m == nil {
		return
	}
	m.waitersRegistered.Inc()
	m.waitersActive.Inc()
}

func (m *Metrics) WaiterCompleted() {
	if m == nil {
		return
	}
	m.waitersCompleted.Inc()
	m.waitersActive.Dec()
}

func (m *Metrics) WaiterCancelled() {
	if m == nil {
		return
	}
	m.waitersCancelled.Inc()
	m.waitersActive.Dec()
}
