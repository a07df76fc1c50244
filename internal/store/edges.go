package store

import (
	"fmt"
	"maps"
	"slices"
)

// Edge returns the edge for id, including removed edges.
func (s *Store) Edge(id EdgeID) (*Edge, bool) {
	e, ok := s.edges[id]
	return e, ok
}

// EdgeCount is the number of edges in the table, removed ones included.
func (s *Store) EdgeCount() int { return len(s.edges) }

// EdgeIDs returns every edge id, removed ones included, ascending.
func (s *Store) EdgeIDs() []EdgeID {
	return slices.Sorted(maps.Keys(s.edges))
}

// EdgeBetween returns the live edge from source to target, if any.
func (s *Store) EdgeBetween(source, target NodeID) (*Edge, bool) {
	id, ok := s.byPair[edgeKey{source, target}]
	if !ok {
		return nil, false
	}
	return s.edges[id], true
}

// GetOrCreateEdge returns the live edge from source to target, creating it if needed.
func (s *Store) GetOrCreateEdge(source, target NodeID) (EdgeID, error) {
	if source == target {
		return 0, fmt.Errorf("edge %d->%d: %w", source, target, ErrSelfLoop)
	}
	if id, ok := s.byPair[edgeKey{source, target}]; ok {
		return id, nil
	}
	if _, ok := s.nodes[source]; !ok {
		return 0, fmt.Errorf("edge source %d: %w", source, ErrNodeNotFound)
	}
	if _, ok := s.nodes[target]; !ok {
		return 0, fmt.Errorf("edge target %d: %w", target, ErrNodeNotFound)
	}
	id := s.nextEdge
	s.nextEdge++
	t := target
	e := &Edge{ID: id, Source: source, Target: &t}
	s.edges[id] = e
	s.linkEdge(e)
	s.logger.Debug("edge created", "edge", id, "source", source, "target", target)
	s.touch()
	return id, nil
}

// EdgesFrom returns the node's live outgoing edges, unfiltered.
func (s *Store) EdgesFrom(id NodeID) []*Edge {
	n, ok := s.nodes[id]
	if !ok {
		return nil
	}
	out := make([]*Edge, 0, len(n.moves))
	for _, eid := range n.moves {
		out = append(out, s.edges[eid])
	}
	return out
}

// IncomingEdges scans the edge table for live edges into id, ordered by edge id.
func (s *Store) IncomingEdges(id NodeID) []*Edge {
	var in []*Edge
	for _, e := range s.edges {
		if e.Target != nil && *e.Target == id {
			in = append(in, e)
		}
	}
	slices.SortFunc(in, func(a, b *Edge) int { return int(a.ID - b.ID) })
	return in
}

// RemoveEdge soft-deletes an edge by clearing its target. Games that reference it
// keep the id and skip it on lookup.
func (s *Store) RemoveEdge(id EdgeID) error {
	e, ok := s.edges[id]
	if !ok || e.Removed() {
		return fmt.Errorf("remove edge %d: %w", id, ErrEdgeNotFound)
	}
	s.unlinkEdge(e)
	e.Target = nil
	if n, ok := s.nodes[e.Source]; ok && n.LastMove == id {
		n.LastMove = 0
	}
	s.logger.Debug("edge removed", "edge", id, "source", e.Source)
	s.touch()
	return nil
}

// SetEdgeComment replaces the edge's comment text.
func (s *Store) SetEdgeComment(id EdgeID, comment string) bool {
	e, ok := s.edges[id]
	if !ok {
		return false
	}
	e.Comment = comment
	s.touch()
	return true
}

// SetEdgeDefect records why a move is considered a mistake. Empty clears it.
func (s *Store) SetEdgeDefect(id EdgeID, reason string) bool {
	e, ok := s.edges[id]
	if !ok {
		return false
	}
	e.Defect = reason
	s.touch()
	return true
}

// linkEdge and unlinkEdge are the only places that patch the reverse index and
// the per-node outgoing caches outside RebuildIndices.
func (s *Store) linkEdge(e *Edge) {
	if e.Target == nil {
		return
	}
	s.byPair[edgeKey{e.Source, *e.Target}] = e.ID
	if n, ok := s.nodes[e.Source]; ok {
		n.moves = append(n.moves, e.ID)
	}
}

func (s *Store) unlinkEdge(e *Edge) {
	if e.Target == nil {
		return
	}
	key := edgeKey{e.Source, *e.Target}
	if s.byPair[key] == e.ID {
		delete(s.byPair, key)
	}
	if n, ok := s.nodes[e.Source]; ok {
		n.moves = slices.DeleteFunc(n.moves, func(id EdgeID) bool { return id == e.ID })
	}
}
