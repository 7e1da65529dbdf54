package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/mentionharness/harness/internal/model"
)

// Complete atomically moves a claimed row from active to history, marking
// whether the worker actually processed it (true) or gave up on it for
// some other reason (false, e.g. a poison payload the caller chose not to
// retry). The move is one transaction so a row is never visible in neither
// table nor both.
func (s *Store) Complete(ctx context.Context, id int64, processed bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin complete tx: %v", model.ErrUnavailable, err)
	}
	defer func() { _ = tx.Rollback() }()

	const del = `
DELETE FROM active
WHERE id = $1
RETURNING id, occurred_at, attempts, visible_at, claimed_at, kind, payload
`
	row := tx.QueryRowContext(ctx, del, id)
	ev, err := scanEvent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: complete %d: already gone", model.ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("%w: complete %d: %v", model.ErrUnavailable, id, err)
	}

	archived := model.HistoryEvent{Event: ev, Processed: processed}

	const ins = `
INSERT INTO history (id, occurred_at, attempts, visible_at, claimed_at, kind, payload, processed, archived_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
`
	if _, err := tx.ExecContext(ctx, ins,
		archived.ID, archived.OccurredAt, archived.Attempts, archived.VisibleAt,
		pq.Array(archived.ClaimedAt), archived.Kind, []byte(archived.Payload), archived.Processed,
	); err != nil {
		return fmt.Errorf("%w: archive %d: %v", model.ErrUnavailable, id, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit complete %d: %v", model.ErrUnavailable, id, err)
	}
	return nil
}
