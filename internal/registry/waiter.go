package registry

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
)

// ErrCancelled is returned by Wait for a waiter that was cancelled.
var ErrCancelled = errors.New("waiter cancelled")

// State is the lifecycle position of a Waiter
type State int

const (
	Pending State = iota
	Completed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Completed:
		return "completed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Waiter is a pending request for the next record matching a predicate.
// It resolves at most once, either with a record or by cancellation.
type Waiter struct {
	id           string
	predicate    crashlog.Predicate
	key          string
	registeredAt time.Time
	reg          *implRegistry
	done         chan struct{}

	// guarded by reg.mu
	state  State
	record crashlog.Record
}

func (w *Waiter) ID() string                    { return w.id }
func (w *Waiter) Predicate() crashlog.Predicate { return w.predicate }
func (w *Waiter) RegisteredAt() time.Time       { return w.registeredAt }

// Done is closed once the waiter completes or is cancelled.
func (w *Waiter) Done() <-chan struct{} {
	return w.done
}

// Result returns the delivered record and the current state.
func (w *Waiter) Result() (crashlog.Record, State) {
	w.reg.mu.Lock()
	defer w.reg.mu.Unlock()
	return w.record, w.state
}

// Cancel removes the waiter from its registry.
func (w *Waiter) Cancel() bool {
	return w.reg.Cancel(w)
}

// Wait blocks until the waiter resolves or ctx ends. When ctx ends first the
// waiter is cancelled, unless a record won the race, in which case that
// record is returned.
func (w *Waiter) Wait(ctx context.Context) (crashlog.Record, error) {
	select {
	case <-w.done:
	case <-ctx.Done():
		if w.Cancel() {
			return crashlog.Record{}, ctx.Err()
		}
	}

	rec, state := w.Result()
	if state == Completed {
		return rec, nil
	}
	return crashlog.Record{}, ErrCancelled
}
