package retry

import (
	"context"
	"testing"
	"time"
)

func newTestQueue(t *testing.T, cfg Config) (Queue, *FakeClock, <-chan Item) {
	t.Helper()
	clock := NewFakeClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	items := make(chan Item, 16)
	q := New(cfg, clock, func(ctx context.Context, item Item) {
		items <- item
	}, nil)
	q.Start(context.Background())
	t.Cleanup(q.Stop)
	return q, clock, items
}

func expectItem(t *testing.T, items <-chan Item) Item {
	t.Helper()
	select {
	case item := <-items:
		return item
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for retry item")
		return Item{}
	}
}

func expectNoItem(t *testing.T, items <-chan Item) {
	t.Helper()
	select {
	case item := <-items:
		t.Fatalf("unexpected retry item %+v", item)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestQueueFiresAfterDelay(t *testing.T) {
	q, clock, items := newTestQueue(t, Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
	})

	attempt, ok := q.Schedule("a.ips")
	if !ok || attempt != 1 {
		t.Fatalf("Schedule() = %d, %v; want 1, true", attempt, ok)
	}
	if q.Len() != 1 {
		t.Errorf("Len() = %d, want 1", q.Len())
	}

	clock.BlockUntil(1)
	expectNoItem(t, items)

	clock.Advance(100 * time.Millisecond)
	item := expectItem(t, items)
	if item.Path != "a.ips" || item.Attempt != 1 {
		t.Errorf("item = %+v", item)
	}
}

func TestQueueBackoffGrows(t *testing.T) {
	q, clock, items := newTestQueue(t, Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2,
	})

	q.Schedule("a.ips")
	clock.BlockUntil(1)
	clock.Advance(100 * time.Millisecond)
	expectItem(t, items)

	attempt, ok := q.Schedule("a.ips")
	if !ok || attempt != 2 {
		t.Fatalf("Schedule() = %d, %v; want 2, true", attempt, ok)
	}
	clock.BlockUntil(1)
	clock.Advance(100 * time.Millisecond)
	expectNoItem(t, items)

	clock.Advance(100 * time.Millisecond)
	item := expectItem(t, items)
	if item.Attempt != 2 {
		t.Errorf("Attempt = %d, want 2", item.Attempt)
	}
}

func TestQueueExhaustsAttempts(t *testing.T) {
	q, clock, items := newTestQueue(t, Config{
		MaxAttempts:  1,
		InitialDelay: 10 * time.Millisecond,
	})

	if _, ok := q.Schedule("a.ips"); !ok {
		t.Fatal("first Schedule() should succeed")
	}
	clock.BlockUntil(1)
	clock.Advance(10 * time.Millisecond)
	expectItem(t, items)

	if attempt, ok := q.Schedule("a.ips"); ok {
		t.Fatalf("Schedule() after exhaustion = %d, true", attempt)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestQueueScheduleWhilePending(t *testing.T) {
	q, _, _ := newTestQueue(t, Config{MaxAttempts: 3, InitialDelay: time.Second})

	q.Schedule("a.ips")
	attempt, ok := q.Schedule("a.ips")
	if !ok || attempt != 1 {
		t.Errorf("Schedule() while pending = %d, %v; want 1, true", attempt, ok)
	}
}

func TestQueueBounded(t *testing.T) {
	q, _, _ := newTestQueue(t, Config{MaxAttempts: 3, InitialDelay: time.Second, MaxPending: 1})

	if _, ok := q.Schedule("a.ips"); !ok {
		t.Fatal("Schedule(a) should succeed")
	}
	if _, ok := q.Schedule("b.ips"); ok {
		t.Fatal("Schedule(b) should fail when the queue is full")
	}

	q.Forget("a.ips")
	if _, ok := q.Schedule("b.ips"); !ok {
		t.Fatal("Schedule(b) should succeed after Forget(a)")
	}
}

func TestQueueStopIdempotent(t *testing.T) {
	q := New(Config{}, nil, func(context.Context, Item) {}, nil)
	q.Stop()
	q.Start(context.Background())
	q.Stop()
	q.Stop()
}

func TestFakeClockAfter(t *testing.T) {
	clock := NewFakeClock(time.Unix(0, 0))
	ch := clock.After(time.Second)
	clock.Advance(500 * time.Millisecond)
	select {
	case <-ch:
		t.Fatal("timer fired early")
	default:
	}
	clock.Advance(500 * time.Millisecond)
	select {
	case <-ch:
	default:
		t.Fatal("timer did not fire")
	}
	if clock.Waiters() != 0 {
		t.Errorf("Waiters() = %d, want 0", clock.Waiters())
	}
}
