package notifier

import (
	"context"
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

// Options wires a Notifier. Every field is optional.
type Options struct {
	Config  *config.Config
	Parser  parser.Parser
	Logger  logger.Logger
	Metrics *metrics.Metrics
	// Clock drives the incomplete-report retry queue.
	Clock retry.Clock
}

// New creates an idle Notifier. Nothing is watched until StartListening.
func New(opts Options) *Notifier {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	p := opts.Parser
	if p == nil {
		p = parser.New()
	}

	ctx, cancel := context.WithCancel(context.Background())
	n := &Notifier{
		cfg:        cfg,
		parser:     p,
		logger:     log,
		metrics:    opts.Metrics,
		registry:   registry.New(log, opts.Metrics),
		baseCtx:    ctx,
		baseCancel: cancel,
	}

	n.watcher = watcher.New(cfg.Paths.ReportDirs, n.handleEvent, log, watcher.Options{
		SettleInterval: cfg.Watcher.SettleInterval,
		StableChecks:   cfg.Watcher.StableChecks,
		MaxSettleWait:  cfg.Watcher.MaxSettleWait,
		Extensions:     cfg.Watcher.Extensions,
		ReplayExisting: cfg.Watcher.ReplayExisting,
		MaxConcurrent:  cfg.Watcher.MaxConcurrent,
		Metrics:        opts.Metrics,
	})
	n.retries = retry.New(retry.Config{
		MaxAttempts:  cfg.Retry.MaxAttempts,
		InitialDelay: cfg.Retry.InitialDelay,
		MaxDelay:     cfg.Retry.MaxDelay,
		Multiplier:   cfg.Retry.Multiplier,
		MaxPending:   cfg.Retry.MaxPending,
	}, opts.Clock, n.handleRetry, log)

	return n
}

var (
	defaultOnce     sync.Once
	defaultNotifier *Notifier
)

// Default returns the process-wide Notifier, built on first use from
// config.Default. Use it to keep one active watcher per process.
func Default() *Notifier {
	defaultOnce.Do(func() {
		cfg := config.Default()
		defaultNotifier = New(Options{
			Config: cfg,
			Logger: logger.New(cfg.Logging.Level),
		})
	})
	return defaultNotifier
}

// StartListening starts the process-wide Notifier.
func StartListening() error {
	return Default().StartListening()
}

// NextCrashLog registers a waiter on the process-wide Notifier.
func NextCrashLog(p crashlog.Predicate) *registry.Waiter {
	return Default().NextCrashLog(p)
}
