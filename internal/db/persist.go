package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	"xqbook/navigator/internal/store"
)

// dataTables lists the tables Save replaces, children before parents.
var dataTables = []string{
	"book_children", "book_games", "books",
	"game_edges", "games",
	"bookmarks", "node_stats", "reviews",
	"edges", "nodes",
}

// StoredVersion returns the data version of the last save, 0 when nothing was saved.
func (d *DB) StoredVersion(ctx context.Context) (int64, error) {
	return storedVersion(ctx, d.conn)
}

func storedVersion(ctx context.Context, q queryer) (int64, error) {
	var raw string
	err := q.QueryRowContext(ctx, `SELECT value FROM meta WHERE key = 'data_version'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading data version: %w", err)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing data version %q: %w", raw, err)
	}
	return v, nil
}

// Save replaces every data table with data in one transaction. data.Version must
// be greater than the stored version unless the database has never been saved to.
func (d *DB) Save(ctx context.Context, data *store.Data) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer tx.Rollback()

	stored, err := storedVersion(ctx, tx)
	if err != nil {
		return err
	}
	if stored > 0 && data.Version <= stored {
		return fmt.Errorf("saving version %d over %d: %w", data.Version, stored, ErrStaleVersion)
	}

	for _, table := range dataTables {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}
	if err := saveNodes(ctx, tx, data.Nodes); err != nil {
		return err
	}
	if err := saveEdges(ctx, tx, data.Edges); err != nil {
		return err
	}
	if err := saveGames(ctx, tx, data.Games); err != nil {
		return err
	}
	if err := saveBooks(ctx, tx, data.Books, data.Games); err != nil {
		return err
	}
	if err := saveBookmarks(ctx, tx, data.Bookmarks); err != nil {
		return err
	}
	if err := saveStats(ctx, tx, store.Red, data.RedStats); err != nil {
		return err
	}
	if err := saveStats(ctx, tx, store.Black, data.BlackStats); err != nil {
		return err
	}
	if err := saveReviews(ctx, tx, data.Reviews); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO meta (key, value) VALUES ('data_version', ?)`,
		strconv.FormatInt(data.Version, 10)); err != nil {
		return fmt.Errorf("writing data version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	return nil
}

// Load reads every data table.
func (d *DB) Load(ctx context.Context) (*store.Data, error) {
	var (
		data = &store.Data{}
		err  error
	)
	if data.Version, err = storedVersion(ctx, d.conn); err != nil {
		return nil, err
	}
	if data.Nodes, err = loadNodes(ctx, d.conn); err != nil {
		return nil, fmt.Errorf("loading nodes: %w", err)
	}
	if data.Edges, err = loadEdges(ctx, d.conn); err != nil {
		return nil, fmt.Errorf("loading edges: %w", err)
	}
	if data.Games, err = loadGames(ctx, d.conn); err != nil {
		return nil, err
	}
	if data.Books, err = loadBooks(ctx, d.conn); err != nil {
		return nil, err
	}
	if data.Bookmarks, err = loadBookmarks(ctx, d.conn); err != nil {
		return nil, fmt.Errorf("loading bookmarks: %w", err)
	}
	if data.RedStats, data.BlackStats, err = loadStats(ctx, d.conn); err != nil {
		return nil, fmt.Errorf("loading stats: %w", err)
	}
	if data.Reviews, err = loadReviews(ctx, d.conn); err != nil {
		return nil, fmt.Errorf("loading reviews: %w", err)
	}
	return data, nil
}

// LoadStore loads the database into a new store. Restore rebuilds the indices.
func (d *DB) LoadStore(ctx context.Context, opts ...store.Option) (*store.Store, error) {
	data, err := d.Load(ctx)
	if err != nil {
		return nil, err
	}
	st := store.New(opts...)
	st.Restore(data)
	return st, nil
}

// SaveStore saves st when it is dirty and marks it clean. It reports whether
// anything was written.
func (d *DB) SaveStore(ctx context.Context, st *store.Store) (bool, error) {
	st.Sync()
	if !st.Dirty() {
		return false, nil
	}
	if err := d.Save(ctx, st.Snapshot()); err != nil {
		return false, err
	}
	st.MarkClean()
	return true, nil
}
