package registry

import (
	"sync"
	"time"

	"github.com/nguyentantai21042004/crashlog-notifier/internal/logger"
	"github.com/nguyentantai21042004/crashlog-notifier/internal/metrics"
)

type implRegistry struct {
	logger  logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.Mutex
	waiters []*Waiter
}

// New creates an empty Registry. Both log and m may be nil.
func New(log logger.Logger, m *metrics.Metrics) Registry {
	if log == nil {
		log = logger.Nop()
	}
	return &implRegistry{
		logger:  log,
		metrics: m,
		now:     time.Now,
	}
}
