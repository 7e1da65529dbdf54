// Package ingress bridges inbound chat-platform mentions into the
// durable queue: enqueue, acknowledge, then signal the worker cohort.
package ingress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/mentionharness/harness/internal/observability/jsonlog"
	"github.com/mentionharness/harness/internal/trigger"
)

// Store is the subset of the queue store ingress needs.
type Store interface {
	Enqueue(ctx context.Context, kind string, occurredAt time.Time, payload json.RawMessage) error
}

// Adapter turns one raw mention payload into a durable, worker-visible
// row. It does not decode platform-specific event shapes itself; callers
// supply the kind, occurred-at timestamp, and raw payload already
// extracted from whatever transport delivered them.
type Adapter struct {
	Store   Store
	Trigger *trigger.Channel
	Log     *jsonlog.Logger
}

func New(store Store, tr *trigger.Channel, logger *jsonlog.Logger) *Adapter {
	if logger == nil {
		logger = jsonlog.New(io.Discard)
	}
	return &Adapter{Store: store, Trigger: tr, Log: logger}
}

// HandleMention enqueues raw under kind, invokes ack, and signals the
// worker cohort, in that order. ack is called only after a successful
// enqueue so a storage failure causes the platform to redeliver the
// mention rather than silently dropping it.
func (a *Adapter) HandleMention(ctx context.Context, kind string, occurredAt time.Time, raw json.RawMessage, ack func()) error {
	if err := a.Store.Enqueue(ctx, kind, occurredAt, raw); err != nil {
		a.Log.Error("enqueue mention failed", map[string]any{"kind": kind, "err": err.Error()})
		return fmt.Errorf("enqueue mention: %w", err)
	}
	if ack != nil {
		ack()
	}
	a.Trigger.Signal()
	a.Log.Info("mention enqueued", map[string]any{"kind": kind})
	return nil
}
