package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/mentionharness/harness/internal/model"
)

// Sweep archives rows that have either exhausted their attempt budget or
// sat past maxAge since they last became visible, regardless of current
// visibility state. It is the backstop for rows a crashed worker leaves
// claimed forever with no further claimant able to make progress on
// them, and for rows that simply failed maxAttempts times in a row. The
// age predicate compares against visible_at rather than occurred_at:
// occurred_at is the immutable platform event time, while visible_at
// advances with every claim's lease, so a row under active retry is not
// swept before its attempt budget runs out. Swept rows land in history
// with processed=false. Returns the number of rows archived.
func (s *Store) Sweep(ctx context.Context, maxAttempts int, maxAge time.Duration) (int64, error) {
	const q = `
WITH doomed AS (
    DELETE FROM active
    WHERE attempts >= $1 OR visible_at <= now() - $2::interval
    RETURNING id, occurred_at, attempts, visible_at, claimed_at, kind, payload
)
INSERT INTO history (id, occurred_at, attempts, visible_at, claimed_at, kind, payload, processed, archived_at)
SELECT id, occurred_at, attempts, visible_at, claimed_at, kind, payload, false, now()
FROM doomed
`
	res, err := s.db.ExecContext(ctx, q, maxAttempts, leaseInterval(maxAge))
	if err != nil {
		return 0, fmt.Errorf("%w: sweep: %v", model.ErrUnavailable, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: sweep rows affected: %v", model.ErrUnavailable, err)
	}
	return n, nil
}
