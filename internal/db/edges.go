package db

import (
	"context"
	"database/sql"
	"fmt"

	"xqbook/navigator/internal/store"
)

// scanEdge scans a row into an Edge. The row must have all 5 columns in standard order.
// A NULL target is a removed edge.
func scanEdge(s scanner) (store.Edge, error) {
	var (
		e      store.Edge
		target sql.NullInt64
	)
	if err := s.Scan(&e.ID, &e.Source, &target, &e.Comment, &e.Defect); err != nil {
		return e, err
	}
	if target.Valid {
		t := store.NodeID(target.Int64)
		e.Target = &t
	}
	return e, nil
}

func loadEdges(ctx context.Context, q queryer) ([]store.Edge, error) {
	return collect(ctx, q, scanEdge, `
		SELECT id, source_id, target_id, comment, defect
		FROM edges ORDER BY id
	`)
}

func saveEdges(ctx context.Context, q queryer, edges []store.Edge) error {
	for _, e := range edges {
		var target any
		if e.Target != nil {
			target = int64(*e.Target)
		}
		_, err := q.ExecContext(ctx,
			`INSERT INTO edges (id, source_id, target_id, comment, defect) VALUES (?, ?, ?, ?, ?)`,
			e.ID, e.Source, target, e.Comment, e.Defect,
		)
		if err != nil {
			return fmt.Errorf("inserting edge %d: %w", e.ID, err)
		}
	}
	return nil
}

// OutgoingEdgeIDs returns the ids of live edges leaving a node, straight from the
// edge table.
func (d *DB) OutgoingEdgeIDs(ctx context.Context, source store.NodeID) ([]store.EdgeID, error) {
	return collect(ctx, d.conn, func(s scanner) (store.EdgeID, error) {
		var id store.EdgeID
		err := s.Scan(&id)
		return id, err
	}, `SELECT id FROM edges WHERE source_id = ? AND target_id IS NOT NULL ORDER BY id`, source)
}
