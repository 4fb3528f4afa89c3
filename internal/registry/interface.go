package registry

import (
	"github.com/nguyentantai21042004/crashlog-notifier/internal/crashlog"
)

// Registry holds the active waiters and matches records against them.
// Register, Cancel and Dispatch are serialized on one lock.
type Registry interface {
	// Register adds a waiter for the next record matching p.
	Register(p crashlog.Predicate) *Waiter
	// Cancel removes a pending waiter. It returns false if w already
	// completed or was cancelled.
	Cancel(w *Waiter) bool
	// Dispatch offers rec to the active waiters in registration order and
	// returns the waiters it completed. Among waiters with identical
	// predicates only the earliest registered is completed.
	Dispatch(rec crashlog.Record) []*Waiter
	// Len reports the number of pending waiters.
	Len() int
}
