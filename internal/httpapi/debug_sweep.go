package httpapi

import (
	"context"
	"net/http"
	"time"
)

// Sweeper is the subset of the queue store the debug sweep endpoint
// needs.
type Sweeper interface {
	Sweep(ctx context.Context, maxAttempts int, maxAge time.Duration) (int64, error)
}

// DebugSweepHandler manually triggers a sweep, useful for operability and
// for integration tests that don't want to wait out the harness's normal
// sweep interval.
func DebugSweepHandler(store Sweeper, maxAttempts int, maxAge time.Duration) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := store.Sweep(r.Context(), maxAttempts, maxAge)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, map[string]int64{"swept": n})
	}
}
