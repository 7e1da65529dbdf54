package postgres

import (
	"context"
	"fmt"

	"github.com/mentionharness/harness/internal/model"
)

// History returns the most recently archived rows, newest first, for
// operational inspection of what the queue has already finished with.
func (s *Store) History(ctx context.Context, limit int) ([]model.HistoryEvent, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `
SELECT id, occurred_at, attempts, visible_at, claimed_at, kind, payload, processed, archived_at
FROM history
ORDER BY archived_at DESC
LIMIT $1
`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: history: %v", model.ErrUnavailable, err)
	}
	defer rows.Close()

	var out []model.HistoryEvent
	for rows.Next() {
		h, err := scanHistoryEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan history row: %v", model.ErrUnavailable, err)
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: history rows: %v", model.ErrUnavailable, err)
	}
	return out, nil
}
