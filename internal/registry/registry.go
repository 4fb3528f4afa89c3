package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
)

var matchNothing = crashlog.Func("nil predicate", func(crashlog.Record) bool { return false })

func (r *implRegistry) Register(p crashlog.Predicate) *Waiter {
	if p == nil {
		p = matchNothing
	}
	w := &Waiter{
		id:           uuid.NewString(),
		predicate:    p,
		key:          p.String(),
		registeredAt: r.now(),
		reg:          r,
		done:         make(chan struct{}),
	}

	r.mu.Lock()
	r.waiters = append(r.waiters, w)
	r.mu.Unlock()

	r.metrics.WaiterRegistered()
	r.logger.Debug(context.Background(), "Waiter %s registered for %s", w.id, w.key)
	return w
}

func (r *implRegistry) Cancel(w *Waiter) bool {
	if w == nil || w.reg != r {
		return false
	}

	r.mu.Lock()
	if w.state != Pending {
		r.mu.Unlock()
		return false
	}
	for i, active := range r.waiters {
		if active == w {
			r.waiters = append(r.waiters[:i], r.waiters[i+1:]...)
			break
		}
	}
	w.state = Cancelled
	close(w.done)
	r.mu.Unlock()

	r.metrics.WaiterCancelled()
	r.logger.Debug(context.Background(), "Waiter %s cancelled", w.id)
	return true
}

func (r *implRegistry) Dispatch(rec crashlog.Record) []*Waiter {
	start := time.Now()

	r.mu.Lock()
	var completed []*Waiter
	var panics []string
	matched := make(map[string]struct{})
	kept := make([]*Waiter, 0, len(r.waiters))
	for _, w := range r.waiters {
		if _, taken := matched[w.key]; taken {
			kept = append(kept, w)
			continue
		}
		ok, panicked := match(w, rec)
		if panicked != "" {
			panics = append(panics, panicked)
		}
		if !ok {
			kept = append(kept, w)
			continue
		}
		matched[w.key] = struct{}{}
		w.state = Completed
		w.record = rec
		close(w.done)
		completed = append(completed, w)
	}
	r.waiters = kept
	r.mu.Unlock()

	for _, msg := range panics {
		r.logger.Warn(context.Background(), "%s", msg)
	}
	for _, w := range completed {
		r.metrics.WaiterCompleted()
		r.logger.Debug(context.Background(), "Waiter %s completed with %s", w.id, rec)
	}
	r.metrics.RecordDispatched(time.Since(start))
	return completed
}

func (r *implRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.waiters)
}

// match evaluates the waiter's predicate. A panicking predicate counts as no
// match; panicked describes the panic so it can be logged outside the lock.
func match(w *Waiter, rec crashlog.Record) (ok bool, panicked string) {
	defer func() {
		if p := recover(); p != nil {
			ok = false
			panicked = fmt.Sprintf("Predicate %s panicked on %s: %v", w.key, rec.ReportPath, p)
		}
	}()
	return w.predicate.Match(rec), ""
}
