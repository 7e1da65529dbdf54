package postgres

import (
	"github.com/lib/pq"

	"github.com/mentionharness/harness/internal/model"
)

// scanner is satisfied by both *sql.Row and *sql.Rows, letting claim/scan
// helpers share one Scan call site regardless of whether the query returns
// one row or a set.
type scanner interface {
	Scan(dest ...any) error
}

// scanEvent reads one active-table row. claimed_at is a Postgres
// timestamptz[] column; database/sql has no native array support, so it is
// scanned through lib/pq's Array adapter, which is driver-agnostic (it
// round-trips the Postgres array text/binary format itself rather than
// relying on driver-specific type support) and works fine over the pgx
// stdlib driver used for the connection itself.
func scanEvent(row scanner) (model.Event, error) {
	var e model.Event
	var payload []byte
	if err := row.Scan(&e.ID, &e.OccurredAt, &e.Attempts, &e.VisibleAt, pq.Array(&e.ClaimedAt), &e.Kind, &payload); err != nil {
		return model.Event{}, err
	}
	e.Payload = payload
	e.OccurredAt = e.OccurredAt.UTC()
	e.VisibleAt = e.VisibleAt.UTC()
	for i := range e.ClaimedAt {
		e.ClaimedAt[i] = e.ClaimedAt[i].UTC()
	}
	return e, nil
}

// scanHistoryEvent reads one history-table row: the same columns as
// scanEvent plus processed and archived_at, in the archived-row column
// order.
func scanHistoryEvent(row scanner) (model.HistoryEvent, error) {
	var h model.HistoryEvent
	var payload []byte
	if err := row.Scan(&h.ID, &h.OccurredAt, &h.Attempts, &h.VisibleAt, pq.Array(&h.ClaimedAt), &h.Kind, &payload, &h.Processed, &h.ArchivedAt); err != nil {
		return model.HistoryEvent{}, err
	}
	h.Payload = payload
	h.OccurredAt = h.OccurredAt.UTC()
	h.VisibleAt = h.VisibleAt.UTC()
	h.ArchivedAt = h.ArchivedAt.UTC()
	for i := range h.ClaimedAt {
		h.ClaimedAt[i] = h.ClaimedAt[i].UTC()
	}
	return h, nil
}
