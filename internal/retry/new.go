package retry

import (
	"time"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/logger"
)

// DefaultConfig mirrors the config package defaults
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  5,
		InitialDelay: 500 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2,
		MaxPending:   256,
	}
}

// New creates a Queue. A nil clock means the real clock.
func New(cfg Config, clock Clock, handler Handler, log logger.Logger) Queue {
	def := DefaultConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = def.InitialDelay
	}
	if cfg.MaxDelay < cfg.InitialDelay {
		cfg.MaxDelay = cfg.InitialDelay
	}
	if cfg.Multiplier < 1 {
		cfg.Multiplier = def.Multiplier
	}
	if cfg.MaxPending <= 0 {
		cfg.MaxPending = def.MaxPending
	}
	if clock == nil {
		clock = RealClock()
	}
	if log == nil {
		log = logger.Nop()
	}

	return &implQueue{
		cfg:     cfg,
		clock:   clock,
		handler: handler,
		logger:  log,
		entries: make(map[string]*entry),
		wake:    make(chan struct{}, 1),
	}
}
