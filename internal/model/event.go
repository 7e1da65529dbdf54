// Package model holds the durable record types shared by the queue store,
// the worker loop, and the ingress adapter.
package model

import (
	"encoding/json"
	"time"
)

// Event is one row of the active work queue: a mention awaiting or
// currently undergoing processing.
type Event struct {
	ID         int64
	OccurredAt time.Time
	Attempts   int
	VisibleAt  time.Time
	ClaimedAt  []time.Time
	Kind       string
	Payload    json.RawMessage
}

// HistoryEvent is an archived Event, moved out of the active queue either
// because it completed successfully or because it exhausted its attempts
// or aged out.
type HistoryEvent struct {
	Event
	Processed  bool
	ArchivedAt time.Time
}
