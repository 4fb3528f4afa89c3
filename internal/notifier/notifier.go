// Package notifier delivers newly written crash reports to callers waiting
// for a crash that matches a predicate.
//
// A Notifier is Idle until StartListening installs the directory watch and
// Watching afterwards; Watching only ends with Close. Files already present
// when watching starts are historical and are not delivered unless the
// watcher is configured to replay them. NextCrashLog starts listening on its
// own if needed, so callers do not have to order the two calls.
package notifier

import (
	"context"
	"errors"
	"sync"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/config"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/logger"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/metrics"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/parser"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/registry"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/retry"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/watcher"
)

// ErrClosed is returned by StartListening after Close.
var ErrClosed = errors.New("notifier closed")

// State is the listening state of a Notifier
type State int

const (
	Idle State = iota
	Watching
)

func (s State) String() string {
	if s == Watching {
		return "watching"
	}
	return "idle"
}

type Notifier struct {
	cfg      *config.Config
	parser   parser.Parser
	logger   logger.Logger
	metrics  *metrics.Metrics
	registry registry.Registry
	watcher  watcher.Watcher
	retries  retry.Queue

	baseCtx    context.Context
	baseCancel context.CancelFunc

	mu     sync.Mutex
	state  State
	closed bool
}

// StartListening installs the directory watch and wires reports into the
// waiter registry. It is a no-op while already watching. A
// *watcher.WatchSetupError leaves the Notifier idle.
func (n *Notifier) StartListening() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}
	if n.state == Watching {
		return nil
	}

	if err := n.watcher.Start(n.baseCtx); err != nil {
		return err
	}
	n.retries.Start(n.baseCtx)
	n.state = Watching
	return nil
}

// NextCrashLog returns a waiter that completes with the next crash record
// matching p. It never fails: if listening cannot start, the failure is
// logged and the waiter stays pending until cancelled.
func (n *Notifier) NextCrashLog(p crashlog.Predicate) *registry.Waiter {
	w := n.registry.Register(p)
	if n.State() == Idle {
		if err := n.StartListening(); err != nil {
			n.logger.Warn(n.baseCtx, "Crash log listening not started for waiter %s: %v", w.ID(), err)
		}
	}
	return w
}

// Ingest parses the report at path right away and dispatches it to the
// current waiters. An incomplete report is not queued for retry, but a retry
// already pending for path is kept.
func (n *Notifier) Ingest(ctx context.Context, path string) (crashlog.Record, bool) {
	return n.process(ctx, path, 0, false)
}

func (n *Notifier) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Pending reports how many waiters are still active.
func (n *Notifier) Pending() int {
	return n.registry.Len()
}

// Close stops watching and retrying. Pending waiters stay pending.
func (n *Notifier) Close() error {
	n.mu.Lock()
	if n.closed {
		n.mu.Unlock()
		return nil
	}
	n.closed = true
	n.mu.Unlock()

	n.baseCancel()
	err := n.watcher.Stop()
	n.retries.Stop()
	return err
}

func (n *Notifier) handleEvent(ctx context.Context, event watcher.Event) {
	n.process(ctx, event.Path, 0, true)
}

func (n *Notifier) handleRetry(ctx context.Context, item retry.Item) {
	n.process(ctx, item.Path, item.Attempt, true)
}

// process parses one report and dispatches it. Incomplete reports go back
// on the retry queue when retryIncomplete is set; anything else that fails
// is dropped with a diagnostic.
func (n *Notifier) process(ctx context.Context, path string, attempt int, retryIncomplete bool) (crashlog.Record, bool) {
	rec, err := n.parser.Parse(ctx, path)
	if err == nil {
		n.retries.Forget(path)
		n.metrics.ParseResult("ok")
		completed := n.registry.Dispatch(rec)
		n.logger.Info(ctx, "Crash report %s: %s[%d] %s %s, notified %d waiter(s)",
			path, rec.ProcessName, rec.PID, rec.ExceptionType, rec.Signal, len(completed))
		return rec, true
	}

	reason := parser.ReasonOf(err)
	if reason == 0 {
		reason = parser.Malformed
	}
	n.metrics.ParseResult(reason.String())

	if reason == parser.Incomplete {
		if !retryIncomplete {
			// A retry the watcher already queued for path stays in place.
			n.logger.Info(ctx, "Report %s is still being written: %v", path, err)
			return crashlog.Record{}, false
		}
		if next, ok := n.retries.Schedule(path); ok {
			n.metrics.RetryScheduled()
			n.logger.Debug(ctx, "Report %s incomplete, retry %d scheduled", path, next)
			return crashlog.Record{}, false
		}
		n.metrics.RetryExhausted()
		n.logger.Warn(ctx, "Dropping incomplete report %s after %d attempt(s): %v", path, attempt+1, err)
		return crashlog.Record{}, false
	}

	n.retries.Forget(path)
	n.logger.Warn(ctx, "Dropping %s report %s: %v", reason, path, err)
	return crashlog.Record{}, false
}
