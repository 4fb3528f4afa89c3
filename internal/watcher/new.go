package watcher

import (
	"strings"
	"time"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/logger"
)

const (
	defaultSettleInterval = 250 * time.Millisecond
	defaultStableChecks   = 2
	defaultMaxSettleWait  = 10 * time.Second
	defaultMaxConcurrent  = 4
	eventBuffer           = 64
)

// New creates a Watcher over dirs. Nothing is observed until Start.
func New(dirs []string, handler EventHandler, log logger.Logger, opts Options) Watcher {
	if opts.SettleInterval <= 0 {
		opts.SettleInterval = defaultSettleInterval
	}
	if opts.StableChecks <= 0 {
		opts.StableChecks = defaultStableChecks
	}
	if opts.MaxSettleWait <= 0 {
		opts.MaxSettleWait = defaultMaxSettleWait
	}
	if len(opts.Extensions) == 0 {
		opts.Extensions = []string{".ips", ".crash"}
	}
	// Default to 4 concurrent settle checks if not specified
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = defaultMaxConcurrent
	}
	if log == nil {
		log = logger.Nop()
	}

	extensions := make(map[string]struct{}, len(opts.Extensions))
	for _, ext := range opts.Extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extensions[ext] = struct{}{}
	}

	return &implWatcher{
		dirs:       append([]string(nil), dirs...),
		handler:    handler,
		logger:     log,
		opts:       opts,
		extensions: extensions,
		seen:       make(map[string]struct{}),
		slots:      newSettleSlots(opts.MaxConcurrent),
	}
}
