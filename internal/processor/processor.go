// Package processor defines the callback contract the harness invokes for
// each claimed event.
package processor

import (
	"context"

	"github.com/mentionharness/harness/internal/hctx"
	"github.com/mentionharness/harness/internal/model"
)

// Processor handles one claimed event. Returning an error leaves the
// event in the active queue for another worker to retry once its lease
// expires; returning nil marks it complete.
type Processor interface {
	Process(ctx context.Context, hc hctx.Context, ev model.Event) error
}

// Func adapts a plain function to Processor.
type Func func(ctx context.Context, hc hctx.Context, ev model.Event) error

func (f Func) Process(ctx context.Context, hc hctx.Context, ev model.Event) error {
	return f(ctx, hc, ev)
}
