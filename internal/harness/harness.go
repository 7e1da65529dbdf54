// Package harness wires the queue store, the worker cohort, and a periodic
// sweeper into one structured-concurrency scope: if any child fails the
// whole scope shuts down and Run reports that error. The ingress listener
// does not run inside this scope; Ingress only builds the adapter that a
// separately run listener feeds.
package harness

import (
	"context"
	"database/sql"
	"io"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mentionharness/harness/internal/chatplatform"
	"github.com/mentionharness/harness/internal/hctx"
	"github.com/mentionharness/harness/internal/ingress"
	"github.com/mentionharness/harness/internal/observability"
	"github.com/mentionharness/harness/internal/observability/jsonlog"
	"github.com/mentionharness/harness/internal/processor"
	"github.com/mentionharness/harness/internal/trigger"
	"github.com/mentionharness/harness/internal/worker"
)

// Store is the full queue-store surface the harness needs across its
// children.
type Store interface {
	worker.Store
	ingress.Store
	DB() *sql.DB
	Sweep(ctx context.Context, maxAttempts int, maxAge time.Duration) (int64, error)
}

// Config configures the worker cohort and sweep cadence. Worker-level
// tuning lives in worker.Config; Config adds the cohort size and the
// sweep interval on top.
type Config struct {
	Workers      int
	Worker       worker.Config
	SweepEvery   time.Duration
	MaxEventAge  time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:     5,
		Worker:      worker.DefaultConfig(),
		SweepEvery:  5 * time.Minute,
		MaxEventAge: time.Hour,
	}
}

// Harness owns the shared trigger channel, the worker cohort, and the
// sweeper, and runs the workers and the sweeper as siblings under one
// cancellable scope. It builds the ingress adapter but does not run any
// ingress listener.
type Harness struct {
	store   Store
	chat    chatplatform.Client
	proc    processor.Processor
	cfg     Config
	trigger *trigger.Channel
	log     *jsonlog.Logger
}

func New(store Store, chat chatplatform.Client, proc processor.Processor, cfg Config, logger *jsonlog.Logger) *Harness {
	if logger == nil {
		logger = jsonlog.New(io.Discard)
	}
	return &Harness{
		store:   store,
		chat:    chat,
		proc:    proc,
		cfg:     cfg,
		trigger: trigger.New(cfg.Workers),
		log:     logger,
	}
}

// Ingress builds the ingress adapter callers use to feed mentions into
// the harness's queue, sharing its trigger channel with the workers.
func (h *Harness) Ingress() *ingress.Adapter {
	return ingress.New(h.store, h.trigger, h.log)
}

// Run starts the worker cohort and blocks until ctx is canceled or a
// child returns an error, at which point every other child is canceled
// too and that first error is returned. This mirrors an
// errgroup.Group's fail-fast/cancel-siblings contract, the Go analogue of
// a structured-concurrency task group.
func (h *Harness) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	spawn := func(fn func(context.Context) error) {
		g.Go(func() error { return fn(ctx) })
	}

	hc := hctx.Context{Chat: h.chat, DB: h.store.DB(), Spawn: spawn}

	stagger := h.workerStaggers()
	for i := 0; i < h.cfg.Workers; i++ {
		w := worker.New(i, h.store, h.proc, hc, h.trigger, h.cfg.Worker, rand.New(rand.NewSource(int64(i)+1)), h.log)
		delay := stagger[i]
		g.Go(func() error { return w.Run(ctx, delay) })
	}

	g.Go(func() error { return h.runSweeper(ctx) })

	return g.Wait()
}

// workerStaggers assigns worker 0 no delay and gives every other worker a
// uniformly random delay in [0, base poll interval), so a freshly started
// cohort doesn't wake in lockstep.
func (h *Harness) workerStaggers() []time.Duration {
	delays := make([]time.Duration, h.cfg.Workers)
	if h.cfg.Workers <= 1 || h.cfg.Worker.PollInterval <= 0 {
		return delays
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	for i := 1; i < h.cfg.Workers; i++ {
		delays[i] = time.Duration(rng.Int63n(int64(h.cfg.Worker.PollInterval)))
	}
	return delays
}

// runSweeper periodically archives exhausted and aged-out rows as a
// backstop for crashed claimants; ordinary retries never need it, since
// visible_at expiry alone makes a row claimable again.
func (h *Harness) runSweeper(ctx context.Context) error {
	ticker := time.NewTicker(h.cfg.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n, err := h.sweep(ctx)
			if err != nil {
				h.log.Error("sweep failed", map[string]any{"err": err.Error()})
				continue
			}
			if n > 0 {
				h.log.Info("swept expired events", map[string]any{"count": n})
				observability.Default.IncCounter("harness_swept_events_total", nil, float64(n))
			}
		}
	}
}

// sweep wraps a single Store.Sweep call in its own span.
func (h *Harness) sweep(ctx context.Context) (int64, error) {
	ctx, span := observability.StartSpan(ctx, "delete_expired_events")
	defer span.End()
	return h.store.Sweep(ctx, h.cfg.Worker.MaxAttempts, h.cfg.MaxEventAge)
}
