package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/mentionharness/harness/internal/model"
)

// HistoryReader is the subset of the queue store the debug history
// endpoint needs.
type HistoryReader interface {
	History(ctx context.Context, limit int) ([]model.HistoryEvent, error)
}

// DebugHistoryHandler exposes the most recently archived rows for
// operational inspection. limit is read from the "limit" query
// parameter, defaulting to whatever the store itself defaults to.
func DebugHistoryHandler(store HistoryReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil {
				writeError(w, http.StatusBadRequest, "limit must be an integer")
				return
			}
			limit = n
		}

		events, err := store.History(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, events)
	}
}
