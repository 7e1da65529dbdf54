package worker

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/mentionharness/harness/internal/hctx"
	"github.com/mentionharness/harness/internal/model"
	"github.com/mentionharness/harness/internal/trigger"
)

type fakeStore struct {
	mu        sync.Mutex
	pending   []model.Event
	completed []int64
	claimErr  error
}

func (f *fakeStore) Claim(ctx context.Context, maxAttempts int, lease time.Duration) (model.Event, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.claimErr != nil {
		return model.Event{}, false, f.claimErr
	}
	if len(f.pending) == 0 {
		return model.Event{}, false, nil
	}
	ev := f.pending[0]
	f.pending = f.pending[1:]
	return ev, true, nil
}

func (f *fakeStore) Complete(ctx context.Context, id int64, processed bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, id)
	return nil
}

type countingProcessor struct {
	mu      sync.Mutex
	seen    []int64
	failIDs map[int64]bool
}

func (p *countingProcessor) Process(ctx context.Context, hc hctx.Context, ev model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seen = append(p.seen, ev.ID)
	if p.failIDs[ev.ID] {
		return errors.New("boom")
	}
	return nil
}

func TestDrainBatch_ProcessesUntilEmpty(t *testing.T) {
	store := &fakeStore{pending: []model.Event{
		{ID: 1, Payload: json.RawMessage(`{}`)},
		{ID: 2, Payload: json.RawMessage(`{}`)},
		{ID: 3, Payload: json.RawMessage(`{}`)},
	}}
	proc := &countingProcessor{}
	w := New(0, store, proc, hctx.Context{}, trigger.New(1), DefaultConfig(), rand.New(rand.NewSource(1)), nil)

	w.drainBatch(context.Background(), trigger.Triggered)

	if len(proc.seen) != 3 {
		t.Fatalf("expected 3 events processed, got %d", len(proc.seen))
	}
	if len(store.completed) != 3 {
		t.Fatalf("expected 3 completions, got %d", len(store.completed))
	}
}

func TestDrainBatch_StopsOnProcessingFailure(t *testing.T) {
	store := &fakeStore{pending: []model.Event{
		{ID: 1, Payload: json.RawMessage(`{}`)},
		{ID: 2, Payload: json.RawMessage(`{}`)},
	}}
	proc := &countingProcessor{failIDs: map[int64]bool{1: true}}
	w := New(0, store, proc, hctx.Context{}, trigger.New(1), DefaultConfig(), rand.New(rand.NewSource(1)), nil)

	w.drainBatch(context.Background(), trigger.Triggered)

	if len(proc.seen) != 1 {
		t.Fatalf("expected batch to stop after first failure, processed %d", len(proc.seen))
	}
	if len(store.completed) != 0 {
		t.Fatalf("expected no completions after a failed event, got %d", len(store.completed))
	}
}

func TestDrainBatch_StopsOnClaimError(t *testing.T) {
	store := &fakeStore{claimErr: errors.New("db unavailable")}
	proc := &countingProcessor{}
	w := New(0, store, proc, hctx.Context{}, trigger.New(1), DefaultConfig(), rand.New(rand.NewSource(1)), nil)

	w.drainBatch(context.Background(), trigger.TimedOut)

	if len(proc.seen) != 0 {
		t.Fatalf("expected no events processed after a claim error, got %d", len(proc.seen))
	}
}

func TestDrainBatch_RespectsBatchCap(t *testing.T) {
	pending := make([]model.Event, 0, 30)
	for i := int64(1); i <= 30; i++ {
		pending = append(pending, model.Event{ID: i, Payload: json.RawMessage(`{}`)})
	}
	store := &fakeStore{pending: pending}
	proc := &countingProcessor{}
	cfg := DefaultConfig()
	cfg.BatchCap = 5
	w := New(0, store, proc, hctx.Context{}, trigger.New(1), cfg, rand.New(rand.NewSource(1)), nil)

	w.drainBatch(context.Background(), trigger.Triggered)

	if len(proc.seen) != 5 {
		t.Fatalf("expected batch cap of 5 to be respected, processed %d", len(proc.seen))
	}
}

func TestPollTimeout_StaysWithinJitterBounds(t *testing.T) {
	cfg := Config{PollInterval: 60 * time.Second, JitterMin: -15 * time.Second, JitterMax: 15 * time.Second}
	w := New(0, &fakeStore{}, &countingProcessor{}, hctx.Context{}, trigger.New(1), cfg, rand.New(rand.NewSource(42)), nil)

	for i := 0; i < 100; i++ {
		d := w.pollTimeout()
		if d < 45*time.Second || d > 75*time.Second {
			t.Fatalf("pollTimeout %s outside expected [45s,75s] range", d)
		}
	}
}

func TestRun_StopsOnContextCancel(t *testing.T) {
	store := &fakeStore{}
	proc := &countingProcessor{}
	cfg := DefaultConfig()
	cfg.PollInterval = time.Hour
	cfg.JitterMin = 0
	cfg.JitterMax = 0
	w := New(0, store, proc, hctx.Context{}, trigger.New(1), cfg, rand.New(rand.NewSource(1)), nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, 0) }()

	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatalf("expected Run to return an error on cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
}
