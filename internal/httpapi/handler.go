// Package httpapi exposes the notifier over HTTP: a health probe, the
// Prometheus endpoint and a long-poll for the next matching crash.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/logger"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/metrics"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/notifier"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/registry"
)

const (
	defaultWaitTimeout = 30 * time.Second
	maxWaitTimeout     = 5 * time.Minute
)

// Source is the part of the notifier the HTTP layer needs
type Source interface {
	NextCrashLog(p crashlog.Predicate) *registry.Waiter
	State() notifier.State
	Pending() int
}

// Handler serves the crash notification API
type Handler struct {
	source  Source
	metrics *metrics.Metrics
	logger  logger.Logger
}

// NewHandler creates a handler. m may be nil, in which case /metrics is not served.
func NewHandler(src Source, m *metrics.Metrics, log logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{source: src, metrics: m, logger: log}
}

// NewRouter returns a router with every route registered
func NewRouter(h *Handler) *mux.Router {
	r := mux.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/crashes/next", h.NextCrash).Methods(http.MethodGet)
	if h.metrics != nil {
		r.Handle("/metrics", h.metrics.Handler()).Methods(http.MethodGet)
	}
}

// Health reports the listening state and the number of pending waiters
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:         "ok",
		State:          h.source.State().String(),
		PendingWaiters: h.source.Pending(),
	})
}

// NextCrash blocks until a crash matching the query arrives or the timeout
// passes. Filters: process, pid, ppid, signal, exception. No filter means
// the next crash of any process.
func (h *Handler) NextCrash(w http.ResponseWriter, r *http.Request) {
	pred, err := predicateFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	timeout, err := timeoutFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	waiter := h.source.NextCrashLog(pred)
	h.logger.Debug(ctx, "HTTP waiter %s registered for %s (timeout %s)", waiter.ID(), pred, timeout)

	rec, err := waiter.Wait(ctx)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, NewRecordResponse(rec))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, fmt.Sprintf("no matching crash within %s", timeout))
	case errors.Is(err, context.Canceled):
		// Client went away; nobody to answer.
	default:
		writeError(w, http.StatusServiceUnavailable, err.Error())
	}
}

func predicateFromQuery(r *http.Request) (crashlog.Predicate, error) {
	q := r.URL.Query()
	var preds []crashlog.Predicate

	if v := strings.TrimSpace(q.Get("process")); v != "" {
		preds = append(preds, crashlog.ProcessName(v))
	}
	if v := q.Get("pid"); v != "" {
		pid, err := strconv.Atoi(v)
		if err != nil || pid <= 0 {
			return nil, fmt.Errorf("invalid pid %q", v)
		}
		preds = append(preds, crashlog.PID(pid))
	}
	if v := q.Get("ppid"); v != "" {
		ppid, err := strconv.Atoi(v)
		if err != nil || ppid <= 0 {
			return nil, fmt.Errorf("invalid ppid %q", v)
		}
		preds = append(preds, crashlog.ParentPID(ppid))
	}
	if v := strings.TrimSpace(q.Get("signal")); v != "" {
		preds = append(preds, crashlog.Signal(v))
	}
	if v := strings.TrimSpace(q.Get("exception")); v != "" {
		preds = append(preds, crashlog.ExceptionType(v))
	}

	if len(preds) == 1 {
		return preds[0], nil
	}
	return crashlog.All(preds...), nil
}

func timeoutFromQuery(r *http.Request) (time.Duration, error) {
	v := r.URL.Query().Get("timeout")
	if v == "" {
		return defaultWaitTimeout, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid timeout %q", v)
	}
	if d > maxWaitTimeout {
		d = maxWaitTimeout
	}
	return d, nil
}
