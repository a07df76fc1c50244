package db

import (
	"context"
	"encoding/json"
	"fmt"

	"xqbook/navigator/internal/store"
)

// scanNode scans a row into a Node. The row must have all 10 columns in standard order.
func scanNode(s scanner) (store.Node, error) {
	var (
		n      store.Node
		score  *int64
		groups string
	)
	err := s.Scan(
		&n.ID, &n.State, &n.Turn, &score, &n.Comment,
		&n.LastMove, &n.RedFlag, &n.BlackFlag, &groups, &n.Practice,
	)
	if err != nil {
		return n, err
	}
	if score != nil {
		v := int(*score)
		n.Score = &v
	}
	if groups != "" && groups != "[]" {
		if err := json.Unmarshal([]byte(groups), &n.PathGroups); err != nil {
			return n, fmt.Errorf("node %d path groups: %w", n.ID, err)
		}
	}
	return n, nil
}

func loadNodes(ctx context.Context, q queryer) ([]store.Node, error) {
	return collect(ctx, q, scanNode, `
		SELECT id, state, turn, score, comment,
		       last_move, red_flag, black_flag, path_groups, practice
		FROM nodes ORDER BY id
	`)
}

func saveNodes(ctx context.Context, q queryer, nodes []store.Node) error {
	for _, n := range nodes {
		groups := "[]"
		if len(n.PathGroups) > 0 {
			raw, err := json.Marshal(n.PathGroups)
			if err != nil {
				return fmt.Errorf("encoding node %d path groups: %w", n.ID, err)
			}
			groups = string(raw)
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO nodes (id, state, turn, score, comment,
			                   last_move, red_flag, black_flag, path_groups, practice)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.State, int(n.Turn), n.Score, n.Comment,
			n.LastMove, boolInt(n.RedFlag), boolInt(n.BlackFlag), groups, n.Practice,
		)
		if err != nil {
			return fmt.Errorf("inserting node %d: %w", n.ID, err)
		}
	}
	return nil
}

// CountNodes returns the number of stored positions.
func (d *DB) CountNodes(ctx context.Context) (int, error) {
	var n int
	err := d.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM nodes`).Scan(&n)
	return n, err
}
