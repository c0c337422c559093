package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cubicool/cubicle/internal/world"
)

// ErrSnapshotNotFound is returned when the named snapshot slot is empty.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// AutosaveSlot is the slot name used for periodic automatic saves.
const AutosaveSlot = "autosave"

// snapshotDDL is the schema for the snapshot database, applied via CREATE
// TABLE IF NOT EXISTS so the file can be initialized on first open.
const snapshotDDL = `
CREATE TABLE IF NOT EXISTS snapshots (
    name TEXT PRIMARY KEY,
    payload_json TEXT NOT NULL,
    saved_at INTEGER NOT NULL
);
`

// SnapshotInfo describes a saved slot without its payload.
type SnapshotInfo struct {
	Name    string
	SavedAt time.Time
	Size    int
}

// SnapshotStore persists full world snapshots into named slots. Payloads
// are stored as one JSON document per slot; a save replaces the previous
// contents of the slot atomically.
type SnapshotStore struct {
	db *sql.DB
}

// NewSnapshotStore wraps an existing database connection and applies the
// schema.
func NewSnapshotStore(db *sql.DB) (*SnapshotStore, error) {
	if _, err := db.Exec(snapshotDDL); err != nil {
		return nil, fmt.Errorf("apply snapshot schema: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

// OpenSnapshotStore opens the snapshot database at the given path and
// initializes the schema.
func OpenSnapshotStore(dbPath string) (*SnapshotStore, error) {
	db, err := OpenSQLite(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}

	store, err := NewSnapshotStore(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// Close releases the underlying database connection.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// Save writes the snapshot into the named slot, replacing any previous
// contents.
func (s *SnapshotStore) Save(ctx context.Context, name string,
	snap world.Snapshot) error {

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO snapshots (name, payload_json, saved_at)
		VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			payload_json = excluded.payload_json,
			saved_at = excluded.saved_at`,
		name, string(payload), time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot %q: %w", name, err)
	}

	log.DebugS(ctx, "Saved snapshot",
		"slot", name,
		"bytes", len(payload))

	return nil
}

// Load reads the snapshot stored in the named slot.
func (s *SnapshotStore) Load(ctx context.Context,
	name string) (world.Snapshot, error) {

	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload_json FROM snapshots WHERE name = ?`,
		name,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return world.Snapshot{}, fmt.Errorf("%w: %s",
			ErrSnapshotNotFound, name)
	}
	if err != nil {
		return world.Snapshot{}, fmt.Errorf("load snapshot %q: %w",
			name, err)
	}

	var snap world.Snapshot
	if err := json.Unmarshal([]byte(payload), &snap); err != nil {
		return world.Snapshot{}, fmt.Errorf("decode snapshot %q: %w",
			name, err)
	}

	return snap, nil
}

// List returns metadata for every saved slot, most recent first.
func (s *SnapshotStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, saved_at, length(payload_json)
		FROM snapshots ORDER BY saved_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	defer rows.Close()

	var infos []SnapshotInfo
	for rows.Next() {
		var (
			info    SnapshotInfo
			savedAt int64
		)
		if err := rows.Scan(
			&info.Name, &savedAt, &info.Size,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}
		info.SavedAt = time.Unix(savedAt, 0).UTC()

		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}

	return infos, nil
}

// Delete removes the named slot. Deleting a missing slot is an error so
// callers can distinguish a typo from a successful removal.
func (s *SnapshotStore) Delete(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM snapshots WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete snapshot %q: %w", name, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}

	return nil
}
