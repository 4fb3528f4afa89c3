package retry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/logger"
)

type entry struct {
	path     string
	attempts int
	backoff  *backoff.ExponentialBackOff
	due      time.Time
	pending  bool
}

type implQueue struct {
	cfg     Config
	clock   Clock
	handler Handler
	logger  logger.Logger

	mu      sync.Mutex
	entries map[string]*entry
	wake    chan struct{}
	cancel  context.CancelFunc
	done    chan struct{}
}

func (q *implQueue) newBackOff() *backoff.ExponentialBackOff {
	b := &backoff.ExponentialBackOff{
		InitialInterval:     q.cfg.InitialDelay,
		RandomizationFactor: 0,
		Multiplier:          q.cfg.Multiplier,
		MaxInterval:         q.cfg.MaxDelay,
		MaxElapsedTime:      0,
		Stop:                backoff.Stop,
		Clock:               q.clock,
	}
	b.Reset()
	return b
}

// Start runs the worker until ctx ends or Stop is called
func (q *implQueue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.done != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	q.cancel = cancel
	q.done = make(chan struct{})
	go q.run(ctx, q.done)
}

// Stop halts the worker and waits for it; safe to call repeatedly
func (q *implQueue) Stop() {
	q.mu.Lock()
	cancel, done := q.cancel, q.done
	q.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
}

func (q *implQueue) Schedule(path string) (int, bool) {
	q.mu.Lock()
	e, ok := q.entries[path]
	if !ok {
		if len(q.entries) >= q.cfg.MaxPending {
			q.mu.Unlock()
			q.logger.Warn(context.Background(), "Retry queue full (%d), dropping %s", q.cfg.MaxPending, path)
			return 0, false
		}
		e = &entry{path: path, backoff: q.newBackOff()}
		q.entries[path] = e
	}
	if e.pending {
		attempts := e.attempts
		q.mu.Unlock()
		return attempts, true
	}
	if e.attempts >= q.cfg.MaxAttempts {
		delete(q.entries, path)
		attempts := e.attempts
		q.mu.Unlock()
		return attempts, false
	}

	e.attempts++
	e.due = q.clock.Now().Add(e.backoff.NextBackOff())
	e.pending = true
	attempts := e.attempts
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return attempts, true
}

func (q *implQueue) Forget(path string) {
	q.mu.Lock()
	delete(q.entries, path)
	q.mu.Unlock()
}

func (q *implQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	n := 0
	for _, e := range q.entries {
		if e.pending {
			n++
		}
	}
	return n
}

func (q *implQueue) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	for {
		ready, next, hasNext := q.collectDue()
		for _, item := range ready {
			if ctx.Err() != nil {
				return
			}
			q.handler(ctx, item)
		}
		if len(ready) > 0 {
			continue
		}

		var timer <-chan time.Time
		if hasNext {
			timer = q.clock.After(next.Sub(q.clock.Now()))
		}

		select {
		case <-ctx.Done():
			return
		case <-q.wake:
		case <-timer:
		}
	}
}

// collectDue pops every due entry, oldest first, and reports the next deadline.
func (q *implQueue) collectDue() ([]Item, time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.clock.Now()
	var due []*entry
	var next time.Time
	hasNext := false
	for _, e := range q.entries {
		if !e.pending {
			continue
		}
		if !e.due.After(now) {
			e.pending = false
			due = append(due, e)
			continue
		}
		if !hasNext || e.due.Before(next) {
			next = e.due
			hasNext = true
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].path < due[j].path
		}
		return due[i].due.Before(due[j].due)
	})
	items := make([]Item, 0, len(due))
	for _, e := range due {
		items = append(items, Item{Path: e.path, Attempt: e.attempts})
	}
	return items, next, hasNext
}
