// Package hctx holds the shared context handed to every event processor,
// kept in its own leaf package so processor, worker, and harness can each
// depend on it without an import cycle between them.
package hctx

import (
	"context"
	"database/sql"

	"github.com/mentionharness/harness/internal/chatplatform"
)

// Context bundles the resources a processor needs beyond the event
// itself: a client for talking back to the chat platform, the raw
// database handle for any side-effect storage of its own, and Spawn for
// fire-and-forget work that should still be tracked by the harness's
// structured-concurrency scope rather than leaking an untracked
// goroutine.
type Context struct {
	Chat  chatplatform.Client
	DB    *sql.DB
	Spawn func(func(context.Context) error)
}
