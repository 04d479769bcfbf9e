package archive

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// #region log-event
func logEvent(ctx context.Context, tx *sql.Tx, ev Event) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO archive_log (snapshot_id, action, detail, created_at) VALUES (?, ?, ?, ?)`,
		ev.SnapshotID, ev.Action, nullIfEmpty(ev.Detail), ev.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("log %s: %w", ev.Action, err)
	}
	return nil
}

// #endregion log-event

// #region history
// History returns the log rows for a snapshot, oldest first.
func (s *Store) History(ctx context.Context, id string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot_id, action, detail, created_at
		 FROM archive_log WHERE snapshot_id = ? ORDER BY id`, id,
	)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", id, err)
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var ev Event
		var detail sql.NullString
		var createdStr string
		if err := rows.Scan(&ev.SnapshotID, &ev.Action, &detail, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		if detail.Valid {
			ev.Detail = detail.String
		}
		ev.CreatedAt, _ = time.Parse(timeLayout, createdStr)
		events = append(events, ev)
	}
	return events, rows.Err()
}

// #endregion history

// #region helpers
func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// #endregion helpers
