// Package worker runs the poll/claim/process loop: each Worker waits on a
// trigger or a jittered timeout, then drains a bounded batch of due
// events before going back to waiting.
package worker

import (
	"context"
	"io"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mentionharness/harness/internal/hctx"
	"github.com/mentionharness/harness/internal/model"
	"github.com/mentionharness/harness/internal/observability"
	"github.com/mentionharness/harness/internal/observability/jsonlog"
	"github.com/mentionharness/harness/internal/processor"
	"github.com/mentionharness/harness/internal/trigger"
)

// Store is the subset of the queue store a worker needs.
type Store interface {
	Claim(ctx context.Context, maxAttempts int, lease time.Duration) (model.Event, bool, error)
	Complete(ctx context.Context, id int64, processed bool) error
}

// Config tunes one worker's poll cadence and batch shape.
type Config struct {
	PollInterval time.Duration // base wait between wake-ups when untriggered
	JitterMin    time.Duration // added to PollInterval, may be negative
	JitterMax    time.Duration
	MaxAttempts  int
	Lease        time.Duration // how long a claim stays invisible to others
	BatchCap     int           // max events drained per wake-up
}

func DefaultConfig() Config {
	return Config{
		PollInterval: 60 * time.Second,
		JitterMin:    -15 * time.Second,
		JitterMax:    15 * time.Second,
		MaxAttempts:  3,
		Lease:        10 * time.Minute,
		BatchCap:     20,
	}
}

// Worker claims and processes events for one identity in the cohort.
type Worker struct {
	ID      int
	store   Store
	proc    processor.Processor
	hc      hctx.Context
	trigger *trigger.Channel
	cfg     Config
	rng     *rand.Rand
	log     *jsonlog.Logger
}

func New(id int, store Store, proc processor.Processor, hc hctx.Context, tr *trigger.Channel, cfg Config, rng *rand.Rand, logger *jsonlog.Logger) *Worker {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if logger == nil {
		logger = jsonlog.New(io.Discard)
	}
	return &Worker{ID: id, store: store, proc: proc, hc: hc, trigger: tr, cfg: cfg, rng: rng, log: logger}
}

// Run blocks until ctx is canceled. stagger delays the first wait, letting
// callers desynchronize a worker cohort's poll cycles at startup.
func (w *Worker) Run(ctx context.Context, stagger time.Duration) error {
	if stagger > 0 {
		w.log.Info("worker initial stagger", map[string]any{"worker_id": w.ID, "stagger": stagger.String()})
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(stagger):
		}
	}

	w.log.Info("worker starting", map[string]any{"worker_id": w.ID})
	for {
		reason, err := w.trigger.Wait(ctx, w.pollTimeout())
		if err != nil {
			return err
		}
		runCtx, span := observability.StartSpan(ctx, "worker_run",
			attribute.Int("worker.id", w.ID),
			attribute.String("worker.wake_reason", reason.String()),
		)
		w.drainBatch(runCtx, reason)
		span.End()
	}
}

// pollTimeout applies jitter to the base poll interval so a cohort of
// workers does not all wake up on the same tick.
func (w *Worker) pollTimeout() time.Duration {
	spread := w.cfg.JitterMax - w.cfg.JitterMin
	jitter := w.cfg.JitterMin
	if spread > 0 {
		jitter += time.Duration(w.rng.Int63n(int64(spread)))
	}
	d := w.cfg.PollInterval + jitter
	if d < 0 {
		d = 0
	}
	return d
}

// drainBatch claims and processes up to BatchCap events, stopping early
// on the first claim error or processing failure so the worker backs off
// rather than spinning against a queue it cannot currently make progress
// against.
func (w *Worker) drainBatch(ctx context.Context, reason trigger.WakeReason) {
	ctx, span := observability.StartSpan(ctx, "process_events", attribute.Int("worker.id", w.ID))
	defer span.End()

	for i := 0; i < w.cfg.BatchCap; i++ {
		ev, ok, err := w.claim(ctx)
		if err != nil {
			w.log.Error("claim failed", map[string]any{"worker_id": w.ID, "err": err.Error()})
			observability.Default.IncCounter("harness_claim_errors_total", nil, 1)
			return
		}
		if !ok {
			return
		}
		observability.Default.IncCounter("harness_claims_total", map[string]string{"reason": reason.String()}, 1)
		if !w.processOne(ctx, ev) {
			return
		}
	}
}

// claim wraps a single Store.Claim call in its own span, mirroring the
// per-operation span boundary the poll/claim/process loop is grounded on.
func (w *Worker) claim(ctx context.Context) (model.Event, bool, error) {
	ctx, span := observability.StartSpan(ctx, "claim_event")
	defer span.End()
	return w.store.Claim(ctx, w.cfg.MaxAttempts, w.cfg.Lease)
}

// processOne runs the processor against ev and reports success. A
// processing error leaves the row in the active table for the lease to
// expire and another worker to retry; success archives it.
func (w *Worker) processOne(ctx context.Context, ev model.Event) bool {
	ctx, span := observability.StartSpan(ctx, "process_event",
		attribute.Int64("event.id", ev.ID),
		attribute.String("event.kind", ev.Kind),
	)
	defer span.End()

	if err := w.proc.Process(ctx, w.hc, ev); err != nil {
		w.log.Error("event processing failed", map[string]any{"worker_id": w.ID, "event_id": ev.ID, "err": err.Error()})
		observability.Default.IncCounter("harness_process_failures_total", map[string]string{"kind": ev.Kind}, 1)
		return false
	}
	if err := w.complete(ctx, ev.ID); err != nil {
		w.log.Error("event completion failed", map[string]any{"worker_id": w.ID, "event_id": ev.ID, "err": err.Error()})
		return false
	}
	observability.Default.IncCounter("harness_events_completed_total", map[string]string{"kind": ev.Kind}, 1)
	return true
}

// complete wraps a single Store.Complete call in its own span.
func (w *Worker) complete(ctx context.Context, id int64) error {
	ctx, span := observability.StartSpan(ctx, "delete_event", attribute.Int64("event.id", id))
	defer span.End()
	return w.store.Complete(ctx, id, true)
}
