package db

import (
	"context"
	"fmt"

	"xqbook/navigator/internal/store"
)

func loadBookmarks(ctx context.Context, q queryer) ([]store.Bookmark, error) {
	return collect(ctx, q, func(s scanner) (store.Bookmark, error) {
		var (
			b   store.Bookmark
			raw string
		)
		if err := s.Scan(&raw, &b.Name); err != nil {
			return b, err
		}
		path, err := decodePath(raw)
		b.Path = path
		return b, err
	}, `SELECT path, name FROM bookmarks ORDER BY name, path`)
}

func saveBookmarks(ctx context.Context, q queryer, marks []store.Bookmark) error {
	for _, b := range marks {
		if _, err := q.ExecContext(ctx,
			`INSERT OR REPLACE INTO bookmarks (path, name) VALUES (?, ?)`, encodePath(b.Path), b.Name); err != nil {
			return fmt.Errorf("inserting bookmark %q: %w", b.Name, err)
		}
	}
	return nil
}

type statRow struct {
	side   store.Side
	node   store.NodeID
	counts store.ResultCounts
}

func loadStats(ctx context.Context, q queryer) (red, black map[store.NodeID]store.ResultCounts, err error) {
	rows, err := collect(ctx, q, func(s scanner) (statRow, error) {
		var r statRow
		err := s.Scan(&r.side, &r.node,
			&r.counts.RedWin, &r.counts.BlackWin, &r.counts.Draw, &r.counts.Unfinished, &r.counts.Unknown)
		return r, err
	}, `SELECT side, node_id, red_win, black_win, draw, unfinished, unknown FROM node_stats`)
	if err != nil {
		return nil, nil, err
	}
	red = make(map[store.NodeID]store.ResultCounts)
	black = make(map[store.NodeID]store.ResultCounts)
	for _, r := range rows {
		if r.side == store.Black {
			black[r.node] = r.counts
		} else {
			red[r.node] = r.counts
		}
	}
	return red, black, nil
}

func saveStats(ctx context.Context, q queryer, side store.Side, stats map[store.NodeID]store.ResultCounts) error {
	for id, c := range stats {
		_, err := q.ExecContext(ctx, `
			INSERT INTO node_stats (side, node_id, red_win, black_win, draw, unfinished, unknown)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			int(side), id, c.RedWin, c.BlackWin, c.Draw, c.Unfinished, c.Unknown,
		)
		if err != nil {
			return fmt.Errorf("inserting %s stats for node %d: %w", side, id, err)
		}
	}
	return nil
}

type reviewRow struct {
	node   store.NodeID
	record []byte
}

func loadReviews(ctx context.Context, q queryer) (map[store.NodeID][]byte, error) {
	rows, err := collect(ctx, q, func(s scanner) (reviewRow, error) {
		var r reviewRow
		err := s.Scan(&r.node, &r.record)
		return r, err
	}, `SELECT node_id, record FROM reviews`)
	if err != nil {
		return nil, err
	}
	out := make(map[store.NodeID][]byte, len(rows))
	for _, r := range rows {
		out[r.node] = r.record
	}
	return out, nil
}

func saveReviews(ctx context.Context, q queryer, reviews map[store.NodeID][]byte) error {
	for id, rec := range reviews {
		if _, err := q.ExecContext(ctx, `INSERT INTO reviews (node_id, record) VALUES (?, ?)`, id, rec); err != nil {
			return fmt.Errorf("inserting review for node %d: %w", id, err)
		}
	}
	return nil
}
