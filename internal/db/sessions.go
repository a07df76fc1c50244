package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"xqbook/navigator/internal/session"
)

// SaveSession stores a session snapshot under name, replacing any earlier one.
func (d *DB) SaveSession(ctx context.Context, name string, snap session.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding session %q: %w", name, err)
	}
	_, err = d.conn.ExecContext(ctx,
		`INSERT OR REPLACE INTO sessions (name, state, updated_at) VALUES (?, ?, ?)`,
		name, string(raw), time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("saving session %q: %w", name, err)
	}
	return nil
}

// LoadSession returns the snapshot saved under name, or ErrNoSavedSession.
func (d *DB) LoadSession(ctx context.Context, name string) (session.Snapshot, error) {
	var (
		snap session.Snapshot
		raw  string
	)
	err := d.conn.QueryRowContext(ctx, `SELECT state FROM sessions WHERE name = ?`, name).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return snap, fmt.Errorf("session %q: %w", name, ErrNoSavedSession)
	}
	if err != nil {
		return snap, fmt.Errorf("loading session %q: %w", name, err)
	}
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return snap, fmt.Errorf("decoding session %q: %w", name, err)
	}
	return snap, nil
}

// DeleteSession removes a saved session. Deleting a missing one is not an error.
func (d *DB) DeleteSession(ctx context.Context, name string) error {
	if _, err := d.conn.ExecContext(ctx, `DELETE FROM sessions WHERE name = ?`, name); err != nil {
		return fmt.Errorf("deleting session %q: %w", name, err)
	}
	return nil
}
