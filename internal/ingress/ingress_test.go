package ingress

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/mentionharness/harness/internal/trigger"
)

type fakeStore struct {
	enqueued []json.RawMessage
	err      error
}

func (f *fakeStore) Enqueue(ctx context.Context, kind string, occurredAt time.Time, payload json.RawMessage) error {
	if f.err != nil {
		return f.err
	}
	f.enqueued = append(f.enqueued, payload)
	return nil
}

func TestHandleMention_EnqueuesAcksAndSignals(t *testing.T) {
	store := &fakeStore{}
	tr := trigger.New(1)
	a := New(store, tr, nil)

	acked := false
	raw := json.RawMessage(`{"user":"U1"}`)
	if err := a.HandleMention(context.Background(), "app_mention", time.Now(), raw, func() { acked = true }); err != nil {
		t.Fatalf("HandleMention: %v", err)
	}

	if len(store.enqueued) != 1 {
		t.Fatalf("expected 1 enqueue, got %d", len(store.enqueued))
	}
	if !acked {
		t.Fatal("expected ack to be called")
	}

	reason, err := tr.Wait(context.Background(), time.Millisecond)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if reason != trigger.Triggered {
		t.Fatalf("expected a signal to have been delivered, got %s", reason)
	}
}

func TestHandleMention_StoreErrorSkipsAckAndSignal(t *testing.T) {
	store := &fakeStore{err: errors.New("db unavailable")}
	tr := trigger.New(1)
	a := New(store, tr, nil)

	acked := false
	err := a.HandleMention(context.Background(), "app_mention", time.Now(), json.RawMessage(`{}`), func() { acked = true })
	if err == nil {
		t.Fatal("expected an error from a failing store")
	}
	if acked {
		t.Fatal("expected ack not to be called after a storage failure")
	}

	reason, waitErr := tr.Wait(context.Background(), time.Millisecond)
	if waitErr != nil {
		t.Fatalf("Wait: %v", waitErr)
	}
	if reason != trigger.TimedOut {
		t.Fatal("expected no signal to have been delivered after a storage failure")
	}
}

func TestHandleMention_NilAckIsSafe(t *testing.T) {
	store := &fakeStore{}
	tr := trigger.New(1)
	a := New(store, tr, nil)

	if err := a.HandleMention(context.Background(), "app_mention", time.Now(), json.RawMessage(`{}`), nil); err != nil {
		t.Fatalf("HandleMention with nil ack: %v", err)
	}
}
