package trigger

import (
	"context"
	"testing"
	"time"
)

func TestChannel_WaitTimesOutWithoutSignal(t *testing.T) {
	c := New(4)
	reason, err := c.Wait(context.Background(), 10*time.Millisecond)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != TimedOut {
		t.Fatalf("got %v, want TimedOut", reason)
	}
}

func TestChannel_SignalWakesWaiter(t *testing.T) {
	c := New(4)
	c.Signal()
	reason, err := c.Wait(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reason != Triggered {
		t.Fatalf("got %v, want Triggered", reason)
	}
}

func TestChannel_ExtraSignalsCollapse(t *testing.T) {
	c := New(2)
	c.Signal()
	c.Signal()
	c.Signal()
	c.Signal()

	// Only up to the buffer's capacity worth of tokens should be
	// deliverable; further waits time out rather than blocking forever.
	woken := 0
	for i := 0; i < 4; i++ {
		reason, err := c.Wait(context.Background(), 10*time.Millisecond)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reason == Triggered {
			woken++
		}
	}
	if woken < 1 || woken > 2 {
		t.Fatalf("got %d triggered wakes, want between 1 and capacity(2)", woken)
	}
}

func TestChannel_ExactlyOneWaiterPerToken(t *testing.T) {
	c := New(4)
	c.Signal()

	results := make(chan WakeReason, 2)
	go func() {
		r, _ := c.Wait(context.Background(), 200*time.Millisecond)
		results <- r
	}()
	go func() {
		r, _ := c.Wait(context.Background(), 200*time.Millisecond)
		results <- r
	}()

	r1 := <-results
	r2 := <-results

	triggeredCount := 0
	if r1 == Triggered {
		triggeredCount++
	}
	if r2 == Triggered {
		triggeredCount++
	}
	if triggeredCount != 1 {
		t.Fatalf("expected exactly one waiter to be triggered, got %d", triggeredCount)
	}
}

func TestChannel_WaitHonorsContextCancellation(t *testing.T) {
	c := New(1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Wait(ctx, time.Second)
	if err == nil {
		t.Fatalf("expected context error")
	}
}
