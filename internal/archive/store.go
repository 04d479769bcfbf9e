package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/srl-toolkit/internal/distribution"
	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS snapshots (
	snapshot_id     TEXT PRIMARY KEY,
	label           TEXT NOT NULL DEFAULT '',
	format_version  INTEGER NOT NULL,
	variable_count  INTEGER NOT NULL,
	payload         BLOB NOT NULL,
	created_at      TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS archive_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	snapshot_id  TEXT NOT NULL,
	action       TEXT NOT NULL,
	detail       TEXT,
	created_at   TEXT NOT NULL
);
`

// created_at columns hold UTC times in a fixed-width layout so that text
// order matches time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// #endregion schema

// #region store-struct
// Store keeps encoded distribution snapshots in SQLite.
type Store struct {
	db     *sql.DB
	logger *zap.Logger
	now    func() time.Time
}

// #endregion store-struct

// #region constructor
// NewStore opens a SQLite database and runs migrations. A nil logger
// disables logging.
func NewStore(dbPath string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// #endregion constructor

// #region close
// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion close

// #region put
// Put archives d under a fresh snapshot id.
func (s *Store) Put(ctx context.Context, label string, d *distribution.Distribution) (Snapshot, error) {
	snap := Snapshot{
		ID:            uuid.New().String(),
		Label:         label,
		FormatVersion: distribution.FormatVersion,
		Variables:     d.NumVariables(),
		CreatedAt:     s.now().UTC(),
		Distribution:  d,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (snapshot_id, label, format_version, variable_count, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.Label, snap.FormatVersion, snap.Variables, d.Encode(),
		snap.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Snapshot{}, fmt.Errorf("insert snapshot: %w", err)
	}
	if err := logEvent(ctx, tx, Event{SnapshotID: snap.ID, Action: "put", Detail: label, CreatedAt: snap.CreatedAt}); err != nil {
		return Snapshot{}, err
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("snapshot archived",
		zap.String("snapshot_id", snap.ID),
		zap.String("label", label),
		zap.Int("variables", snap.Variables),
	)
	return snap, nil
}

// #endregion put

// #region get
// Get loads and decodes a snapshot.
func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	var (
		snap       Snapshot
		payload    []byte
		createdStr string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT snapshot_id, label, format_version, variable_count, payload, created_at
		 FROM snapshots WHERE snapshot_id = ?`, id,
	).Scan(&snap.ID, &snap.Label, &snap.FormatVersion, &snap.Variables, &payload, &createdStr)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, ErrSnapshotNotFound)
	}
	if err != nil {
		return Snapshot{}, fmt.Errorf("get snapshot %s: %w", id, err)
	}

	snap.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	snap.Distribution, err = distribution.Decode(payload)
	if err != nil {
		return Snapshot{}, fmt.Errorf("decode snapshot %s: %w", id, err)
	}
	return snap, nil
}

// #endregion get

// #region list
// List returns the most recent snapshots without their payloads.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT snapshot_id, label, format_version, variable_count, created_at
		 FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var createdStr string
		if err := rows.Scan(&snap.ID, &snap.Label, &snap.FormatVersion, &snap.Variables, &createdStr); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		snap.CreatedAt, _ = time.Parse(timeLayout, createdStr)
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// #endregion list

// #region delete
// Delete removes a snapshot. Its log rows are kept.
func (s *Store) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM snapshots WHERE snapshot_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete snapshot %s: %w", id, ErrSnapshotNotFound)
	}
	if err := logEvent(ctx, tx, Event{SnapshotID: id, Action: "delete", CreatedAt: s.now().UTC()}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.logger.Debug("snapshot deleted", zap.String("snapshot_id", id))
	return nil
}

// #endregion delete
