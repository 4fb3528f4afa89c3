package retry

import (
	"context"
	"time"
)

// Config bounds how often and how late a path is retried
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	MaxPending   int
}

// Item is one due retry
type Item struct {
	Path    string
	Attempt int
}

// Handler receives due items on the queue's worker goroutine
type Handler func(ctx context.Context, item Item)

// Queue schedules delayed re-processing of paths with a bounded attempt count
type Queue interface {
	Start(ctx context.Context)
	Stop()
	// Schedule queues path for another attempt. ok is false when attempts are
	// exhausted or the queue is full; the path is no longer tracked then.
	Schedule(path string) (attempt int, ok bool)
	// Forget drops all tracking for path.
	Forget(path string)
	// Len reports how many paths are waiting to fire.
	Len() int
}
