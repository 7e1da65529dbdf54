package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mentionharness/harness/internal/model"
)

// Enqueue inserts a new active row: attempts=0, visible_at=now(),
// claimed_at empty. Failures are storage errors; the caller (the ingress
// adapter) treats them as fatal for this mention and does not acknowledge
// the platform.
func (s *Store) Enqueue(ctx context.Context, kind string, occurredAt time.Time, payload json.RawMessage) error {
	const q = `
INSERT INTO active (occurred_at, attempts, visible_at, claimed_at, kind, payload)
VALUES ($1, 0, now(), '{}', $2, $3)
`
	if _, err := s.db.ExecContext(ctx, q, occurredAt.UTC(), kind, []byte(payload)); err != nil {
		return fmt.Errorf("%w: enqueue: %v", model.ErrUnavailable, err)
	}
	return nil
}
