package store

import (
	"maps"
	"slices"
)

// Data is the serialisable form of the store: primary tables only. Outgoing-edge
// caches, the state and pair indices and per-game lookup caches are rebuilt on Restore.
type Data struct {
	Version    int64                   `json:"version"`
	Nodes      []Node                  `json:"nodes"`
	Edges      []Edge                  `json:"edges"`
	Games      []Game                  `json:"games"`
	Books      []Book                  `json:"books"`
	Bookmarks  []Bookmark              `json:"bookmarks"`
	RedStats   map[NodeID]ResultCounts `json:"red_stats"`
	BlackStats map[NodeID]ResultCounts `json:"black_stats"`
	Reviews    map[NodeID][]byte       `json:"reviews"`
}

// Snapshot copies the primary tables. Pending version marks are applied first so
// the copied version matches the data.
func (s *Store) Snapshot() *Data {
	s.ver.sync()
	d := &Data{
		Version:    s.ver.version.Load(),
		RedStats:   make(map[NodeID]ResultCounts, len(s.stats[Red])),
		BlackStats: make(map[NodeID]ResultCounts, len(s.stats[Black])),
		Reviews:    make(map[NodeID][]byte, len(s.reviews)),
	}
	for _, id := range s.NodeIDs() {
		d.Nodes = append(d.Nodes, s.nodes[id].clone())
	}
	for _, id := range slices.Sorted(maps.Keys(s.edges)) {
		d.Edges = append(d.Edges, s.edges[id].clone())
	}
	for _, g := range s.Games() {
		d.Games = append(d.Games, g.clone())
	}
	for _, b := range s.Books() {
		d.Books = append(d.Books, b.clone())
	}
	for _, b := range s.Bookmarks() {
		d.Bookmarks = append(d.Bookmarks, Bookmark{Path: slices.Clone(b.Path), Name: b.Name})
	}
	for id, c := range s.stats[Red] {
		d.RedStats[id] = *c
	}
	for id, c := range s.stats[Black] {
		d.BlackStats[id] = *c
	}
	for id, r := range s.reviews {
		d.Reviews[id] = slices.Clone(r)
	}
	return d
}

// Restore replaces every table with d, adopts d's version and rebuilds the indices.
// The store is clean afterwards unless the rebuild had to repair inconsistent edges.
func (s *Store) Restore(d *Data) {
	s.nodes = make(map[NodeID]*Node, len(d.Nodes))
	for i := range d.Nodes {
		n := d.Nodes[i].clone()
		s.nodes[n.ID] = &n
	}
	s.edges = make(map[EdgeID]*Edge, len(d.Edges))
	for i := range d.Edges {
		e := d.Edges[i].clone()
		s.edges[e.ID] = &e
	}
	s.games = make(map[GameID]*Game, len(d.Games))
	for i := range d.Games {
		g := d.Games[i].clone()
		s.games[g.ID] = &g
	}
	s.books = make(map[BookID]*Book, len(d.Books))
	for i := range d.Books {
		b := d.Books[i].clone()
		s.books[b.ID] = &b
	}
	s.bookmarks = make(map[string]*Bookmark, len(d.Bookmarks))
	for _, b := range d.Bookmarks {
		if len(b.Path) == 0 {
			continue
		}
		s.bookmarks[pathKey(b.Path)] = &Bookmark{Path: slices.Clone(b.Path), Name: b.Name}
	}
	s.stats = [2]map[NodeID]*ResultCounts{make(map[NodeID]*ResultCounts), make(map[NodeID]*ResultCounts)}
	for id, c := range d.RedStats {
		s.stats[Red][id] = &c
	}
	for id, c := range d.BlackStats {
		s.stats[Black][id] = &c
	}
	s.reviews = make(map[NodeID][]byte, len(d.Reviews))
	for id, r := range d.Reviews {
		s.reviews[id] = slices.Clone(r)
	}

	s.ver.sync()
	s.ver.version.Store(d.Version)
	s.ver.dirty.Store(false)

	s.RebuildIndices()
}

// RebuildIndices recomputes the state index, the (source, target) index, every
// node's outgoing-edge cache and the id allocators from the primary tables in one
// pass, and sorts each node's path groups. Live edges with a missing endpoint, or duplicating an earlier live edge for
// the same pair, are soft-deleted.
func (s *Store) RebuildIndices() {
	s.byState = make(map[string]NodeID, len(s.nodes))
	s.byPair = make(map[edgeKey]EdgeID, len(s.edges))
	s.nextNode, s.nextEdge = 1, 1

	for id, n := range s.nodes {
		n.moves = n.moves[:0]
		// Group lookups binary-search.
		slices.Sort(n.PathGroups)
		n.PathGroups = slices.Compact(n.PathGroups)
		s.byState[n.State] = id
		if id >= s.nextNode {
			s.nextNode = id + 1
		}
	}

	repaired := 0
	for _, id := range slices.Sorted(maps.Keys(s.edges)) {
		e := s.edges[id]
		if id >= s.nextEdge {
			s.nextEdge = id + 1
		}
		if e.Target == nil {
			continue
		}
		_, srcOK := s.nodes[e.Source]
		_, tgtOK := s.nodes[*e.Target]
		_, dup := s.byPair[edgeKey{e.Source, *e.Target}]
		if !srcOK || !tgtOK || dup || e.Source == *e.Target {
			s.logger.Warn("dropping inconsistent edge", "edge", id, "source", e.Source, "target", *e.Target, "duplicate", dup)
			e.Target = nil
			repaired++
			continue
		}
		s.linkEdge(e)
	}

	for _, n := range s.nodes {
		if n.LastMove == 0 {
			continue
		}
		if e, ok := s.edges[n.LastMove]; !ok || e.Removed() || e.Source != n.ID {
			n.LastMove = 0
		}
	}
	for _, g := range s.games {
		g.invalidate()
	}

	s.gen++
	s.logger.Debug("indices rebuilt", "nodes", len(s.nodes), "edges", len(s.edges), "repaired", repaired)
	if repaired > 0 {
		s.ver.mark()
	}
}
