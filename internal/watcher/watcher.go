package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/logger"
)

type implWatcher struct {
	dirs       []string
	handler    EventHandler
	logger     logger.Logger
	opts       Options
	extensions map[string]struct{}
	slots      *settleSlots

	mu       sync.Mutex
	active   bool
	watcher  *fsnotify.Watcher
	seen     map[string]struct{}
	cancel   context.CancelFunc
	out      chan Event
	wg       sync.WaitGroup
	settleWG sync.WaitGroup
}

// Start begins monitoring the report directories for new crash reports
func (w *implWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.active {
		return nil
	}
	if len(w.dirs) == 0 {
		return &WatchSetupError{Err: errors.New("no report directories configured")}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return &WatchSetupError{Err: fmt.Errorf("create watcher: %w", err)}
	}
	for _, dir := range w.dirs {
		if err := addDir(fw, dir); err != nil {
			fw.Close()
			return &WatchSetupError{Dir: dir, Err: err}
		}
	}

	// Snapshot after the watch is installed so nothing slips between the two.
	var replay []string
	for _, dir := range w.dirs {
		existing, err := w.existingReports(dir)
		if err != nil {
			fw.Close()
			return &WatchSetupError{Dir: dir, Err: fmt.Errorf("list directory: %w", err)}
		}
		for _, path := range existing {
			if _, ok := w.seen[path]; ok {
				continue
			}
			w.seen[path] = struct{}{}
			if w.opts.ReplayExisting {
				replay = append(replay, path)
			}
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	w.watcher = fw
	w.cancel = cancel
	w.out = make(chan Event, eventBuffer)
	w.active = true

	w.wg.Add(2)
	go w.loop(ctx, fw)
	go w.emit(ctx, w.out)

	w.logger.Info(ctx, "Crash report watcher started (settle %s x%d). Monitoring: %s",
		w.opts.SettleInterval, w.opts.StableChecks, strings.Join(w.dirs, ", "))
	if len(replay) > 0 {
		w.logger.Info(ctx, "Replaying %d existing report(s)", len(replay))
	}
	for _, path := range replay {
		w.opts.Metrics.ReportDetected()
		w.startSettle(ctx, path, time.Now())
	}
	return nil
}

// Stop closes the file watcher and waits for in-flight settle checks
func (w *implWatcher) Stop() error {
	w.mu.Lock()
	if !w.active {
		w.mu.Unlock()
		return nil
	}
	w.active = false
	w.cancel()
	fw := w.watcher
	w.watcher = nil
	w.mu.Unlock()

	err := fw.Close()
	w.wg.Wait()
	w.settleWG.Wait()
	return err
}

func (w *implWatcher) Active() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.active
}

func (w *implWatcher) Seen() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

func addDir(fw *fsnotify.Watcher, dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory")
	}
	return fw.Add(dir)
}

func (w *implWatcher) existingReports(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if w.isReportFile(path) {
			paths = append(paths, path)
		}
	}
	sort.Strings(paths)
	return paths, nil
}

func (w *implWatcher) loop(ctx context.Context, fw *fsnotify.Watcher) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-fw.Events:
			if !ok {
				return
			}
			// Reports are created in place or renamed in (which fsnotify
			// reports as Create); Write covers creates we raced past.
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if !w.isReportFile(event.Name) {
				w.logger.Debug(ctx, "Ignoring non-report file: %s", event.Name)
				continue
			}
			if !w.markSeen(event.Name) {
				continue
			}
			w.logger.Debug(ctx, "New crash report detected: %s", event.Name)
			w.opts.Metrics.ReportDetected()
			w.startSettle(ctx, event.Name, time.Now())

		case err, ok := <-fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "Watcher error: %v", err)
		}
	}
}

// markSeen records path and reports whether it was new
func (w *implWatcher) markSeen(path string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.seen[path]; ok {
		return false
	}
	w.seen[path] = struct{}{}
	return true
}

func (w *implWatcher) startSettle(ctx context.Context, path string, detectedAt time.Time) {
	w.settleWG.Add(1)
	go func() {
		defer w.settleWG.Done()

		if w.slots.full() {
			w.logger.Debug(ctx, "Report %s queued, %d report(s) already settling", path, w.slots.inUse())
		}
		if err := w.slots.take(ctx); err != nil {
			return
		}
		defer w.slots.give()

		stable, ok := w.waitStable(ctx, path)
		if !ok {
			return
		}
		if !stable {
			w.logger.Warn(ctx, "Report %s still changing after %s, emitting anyway", path, w.opts.MaxSettleWait)
		}

		select {
		case w.out <- Event{Path: path, Stable: stable, DetectedAt: detectedAt}:
		case <-ctx.Done():
		}
	}()
}

// waitStable polls the file size until it stops changing. ok is false when
// the file went away or the watcher is shutting down.
func (w *implWatcher) waitStable(ctx context.Context, path string) (stable bool, ok bool) {
	ticker := time.NewTicker(w.opts.SettleInterval)
	defer ticker.Stop()

	deadline := time.Now().Add(w.opts.MaxSettleWait)
	lastSize := int64(-1)
	unchanged := 0

	for {
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				w.logger.Debug(ctx, "Report vanished before settling: %s", path)
			} else {
				w.logger.Warn(ctx, "Failed to stat report %s: %v", path, err)
			}
			return false, false
		}
		if info.IsDir() {
			return false, false
		}

		size := info.Size()
		if size > 0 && size == lastSize {
			unchanged++
			if unchanged >= w.opts.StableChecks {
				return true, true
			}
		} else {
			unchanged = 0
		}
		lastSize = size

		if time.Now().After(deadline) {
			return false, true
		}

		select {
		case <-ctx.Done():
			return false, false
		case <-ticker.C:
		}
	}
}

// emit hands settled events to the handler one at a time, in settle order
func (w *implWatcher) emit(ctx context.Context, out <-chan Event) {
	defer w.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case event := <-out:
			w.handler(ctx, event)
		}
	}
}

// isReportFile checks if the file has a supported crash report extension
func (w *implWatcher) isReportFile(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return false
	}
	_, ok := w.extensions[strings.ToLower(filepath.Ext(base))]
	return ok
}
