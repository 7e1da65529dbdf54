package harness

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/mentionharness/harness/internal/hctx"
	"github.com/mentionharness/harness/internal/model"
)

type fakeStore struct {
	sweepCalls int
}

func (f *fakeStore) Claim(ctx context.Context, maxAttempts int, lease time.Duration) (model.Event, bool, error) {
	return model.Event{}, false, nil
}

func (f *fakeStore) Complete(ctx context.Context, id int64, processed bool) error { return nil }

func (f *fakeStore) Enqueue(ctx context.Context, kind string, occurredAt time.Time, payload json.RawMessage) error {
	return nil
}

func (f *fakeStore) DB() *sql.DB { return nil }

func (f *fakeStore) Sweep(ctx context.Context, maxAttempts int, maxAge time.Duration) (int64, error) {
	f.sweepCalls++
	return 0, nil
}

type fakeChat struct{}

func (fakeChat) PostReply(ctx context.Context, channel, threadTS, text string) error   { return nil }
func (fakeChat) AddReaction(ctx context.Context, channel, ts, emoji string) error      { return nil }
func (fakeChat) RemoveReaction(ctx context.Context, channel, ts, emoji string) error   { return nil }

type noopProcessor struct{}

func (noopProcessor) Process(ctx context.Context, hc hctx.Context, ev model.Event) error {
	return nil
}

func TestRun_StopsCleanlyOnContextCancel(t *testing.T) {
	store := &fakeStore{}
	cfg := DefaultConfig()
	cfg.Workers = 3
	cfg.SweepEvery = 10 * time.Millisecond

	h := New(store, fakeChat{}, noopProcessor{}, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected Run to return an error after cancellation")
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}

	if store.sweepCalls == 0 {
		t.Fatal("expected the sweeper to have run at least once")
	}
}

func TestIngress_SharesTriggerWithWorkers(t *testing.T) {
	store := &fakeStore{}
	h := New(store, fakeChat{}, noopProcessor{}, DefaultConfig(), nil)

	adapter := h.Ingress()
	if adapter.Trigger != h.trigger {
		t.Fatal("expected ingress adapter to share the harness's trigger channel")
	}
}
