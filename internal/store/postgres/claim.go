package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mentionharness/harness/internal/model"
)

// Claim atomically selects one eligible row (attempts < maxAttempts AND
// visible_at <= now()), randomized among eligible rows to avoid a poisoned
// head-of-line row starving the queue, locks it with FOR UPDATE SKIP
// LOCKED so concurrent claimants never contend on the same candidate, and
// in the same statement bumps attempts, extends visible_at by lease, and
// appends the claim timestamp. The claim timestamp and lease base use
// clock_timestamp() rather than now(): now() is frozen at transaction
// start, so concurrent claimants in separate transactions would otherwise
// record identical claimed_at values. Returns (event, false, nil) if no
// row is currently eligible.
func (s *Store) Claim(ctx context.Context, maxAttempts int, lease time.Duration) (model.Event, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Event{}, false, fmt.Errorf("%w: begin claim tx: %v", model.ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	const q = `
WITH candidate AS (
    SELECT id FROM active
    WHERE attempts < $1 AND visible_at <= now()
    ORDER BY random()
    FOR UPDATE SKIP LOCKED
    LIMIT 1
)
UPDATE active a
SET attempts   = a.attempts + 1,
    visible_at = clock_timestamp() + $2::interval,
    claimed_at = array_append(a.claimed_at, clock_timestamp())
FROM candidate c
WHERE a.id = c.id
RETURNING a.id, a.occurred_at, a.attempts, a.visible_at, a.claimed_at, a.kind, a.payload
`
	row := tx.QueryRowContext(ctx, q, maxAttempts, leaseInterval(lease))
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, false, tx.Commit()
	}
	if err != nil {
		return model.Event{}, false, fmt.Errorf("%w: claim: %v", model.ErrUnavailable, err)
	}
	if err := tx.Commit(); err != nil {
		return model.Event{}, false, fmt.Errorf("%w: commit claim: %v", model.ErrUnavailable, err)
	}
	return ev, true, nil
}

// leaseInterval renders a duration as a Postgres interval literal
// (fractional seconds), the text form the $N::interval cast expects.
func leaseInterval(d time.Duration) string {
	return fmt.Sprintf("%.6f seconds", d.Seconds())
}
