package db

import (
	"context"
	"fmt"
)

const schemaVersion = 1

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS nodes (
	id          INTEGER PRIMARY KEY,
	state       TEXT NOT NULL UNIQUE,
	turn        INTEGER NOT NULL,
	score       INTEGER,
	comment     TEXT NOT NULL DEFAULT '',
	last_move   INTEGER NOT NULL DEFAULT 0,
	red_flag    INTEGER NOT NULL DEFAULT 0,
	black_flag  INTEGER NOT NULL DEFAULT 0,
	path_groups TEXT NOT NULL DEFAULT '[]',
	practice    INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS edges (
	id        INTEGER PRIMARY KEY,
	source_id INTEGER NOT NULL REFERENCES nodes(id),
	target_id INTEGER REFERENCES nodes(id),
	comment   TEXT NOT NULL DEFAULT '',
	defect    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_edges_source ON edges(source_id);

CREATE TABLE IF NOT EXISTS games (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL DEFAULT '',
	start_node     INTEGER NOT NULL DEFAULT 0,
	red_player     TEXT NOT NULL DEFAULT '',
	black_player   TEXT NOT NULL DEFAULT '',
	red_is_user    INTEGER NOT NULL DEFAULT 0,
	black_is_user  INTEGER NOT NULL DEFAULT 0,
	date           TEXT NOT NULL DEFAULT '',
	event          TEXT NOT NULL DEFAULT '',
	result         INTEGER NOT NULL DEFAULT 4,
	fully_recorded INTEGER NOT NULL DEFAULT 0
);

-- edge ids are not foreign keys: a game may outlive an edge and skips it on lookup
CREATE TABLE IF NOT EXISTS game_edges (
	game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	seq     INTEGER NOT NULL,
	edge_id INTEGER NOT NULL,
	PRIMARY KEY (game_id, seq)
);

CREATE TABLE IF NOT EXISTS books (
	id   TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS book_games (
	book_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	seq     INTEGER NOT NULL,
	game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
	PRIMARY KEY (book_id, seq)
);

-- containment may cycle
CREATE TABLE IF NOT EXISTS book_children (
	book_id  TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	seq      INTEGER NOT NULL,
	child_id TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
	PRIMARY KEY (book_id, seq)
);

CREATE TABLE IF NOT EXISTS bookmarks (
	path TEXT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS node_stats (
	side       INTEGER NOT NULL,
	node_id    INTEGER NOT NULL,
	red_win    INTEGER NOT NULL DEFAULT 0,
	black_win  INTEGER NOT NULL DEFAULT 0,
	draw       INTEGER NOT NULL DEFAULT 0,
	unfinished INTEGER NOT NULL DEFAULT 0,
	unknown    INTEGER NOT NULL DEFAULT 0,
	PRIMARY KEY (side, node_id)
);

CREATE TABLE IF NOT EXISTS reviews (
	node_id INTEGER PRIMARY KEY,
	record  BLOB NOT NULL
);

CREATE TABLE IF NOT EXISTS sessions (
	name       TEXT PRIMARY KEY,
	state      TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);
`

func (d *DB) migrate(ctx context.Context) error {
	if _, err := d.conn.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	if _, err := d.conn.ExecContext(ctx,
		`INSERT OR IGNORE INTO meta (key, value) VALUES ('schema_version', ?)`, schemaVersion); err != nil {
		return fmt.Errorf("recording schema version: %w", err)
	}
	return nil
}
