package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/metrics"
)

// Watcher defines the interface for crash report directory monitoring
type Watcher interface {
	// Start installs the OS watch on every directory and begins emitting
	// events. It returns a *WatchSetupError on failure and is a no-op while
	// already active.
	Start(ctx context.Context) error
	// Stop releases the watch handle; safe to call multiple times.
	Stop() error
	Active() bool
	// Seen reports how many distinct report files have been recorded.
	Seen() int
}

// Event announces a report file that is ready to be parsed
type Event struct {
	Path       string
	Stable     bool // size stayed unchanged across the settle checks
	DetectedAt time.Time
}

// EventHandler is called for each settled report, one call at a time
type EventHandler func(ctx context.Context, event Event)

// Options controls settling and filtering. Zero values take defaults.
type Options struct {
	SettleInterval time.Duration
	StableChecks   int
	MaxSettleWait  time.Duration
	Extensions     []string
	// ReplayExisting emits files already present at Start. By default they
	// are recorded as seen and never emitted.
	ReplayExisting bool
	MaxConcurrent  int
	Metrics        *metrics.Metrics
}

// WatchSetupError means a directory could not be observed
type WatchSetupError struct {
	Dir string
	Err error
}

func (e *WatchSetupError) Error() string {
	if e.Dir == "" {
		return fmt.Sprintf("watch setup: %v", e.Err)
	}
	return fmt.Sprintf("watch setup %s: %v", e.Dir, e.Err)
}

func (e *WatchSetupError) Unwrap() error {
	return e.Err
}
