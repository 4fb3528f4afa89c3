package watcher

import "context"

// settleSlots caps how many report files are polled for size stability at
// the same time. A report waiting for a slot is not yet being polled, so its
// settle interval starts only once it holds one.
type settleSlots struct {
	ch chan struct{}
}

func newSettleSlots(n int) *settleSlots {
	return &settleSlots{ch: make(chan struct{}, n)}
}

// take blocks until a slot is free; it fails only when ctx ends
func (s *settleSlots) take(ctx context.Context) error {
	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *settleSlots) give() {
	<-s.ch
}

// inUse reports how many reports are settling right now
func (s *settleSlots) inUse() int {
	return len(s.ch)
}

func (s *settleSlots) full() bool {
	return len(s.ch) == cap(s.ch)
}
