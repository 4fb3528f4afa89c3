package watcher

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSettleSlotsBlockWhenFull(t *testing.T) {
	s := newSettleSlots(2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := s.take(ctx); err != nil {
			t.Fatalf("take() #%d error = %v", i, err)
		}
	}
	if !s.full() || s.inUse() != 2 {
		t.Fatalf("full() = %v, inUse() = %d; want true, 2", s.full(), s.inUse())
	}

	timeout, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if err := s.take(timeout); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("take() on full slots error = %v, want DeadlineExceeded", err)
	}

	s.give()
	if s.full() || s.inUse() != 1 {
		t.Errorf("after give: full() = %v, inUse() = %d", s.full(), s.inUse())
	}
	if err := s.take(ctx); err != nil {
		t.Errorf("take() after give error = %v", err)
	}
}
