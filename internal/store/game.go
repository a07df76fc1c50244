package store

import "slices"

// EdgeResolver looks up edges for game membership queries. *Store implements it.
type EdgeResolver interface {
	Edge(id EdgeID) (*Edge, bool)
	Generation() uint64
}

// Game is a named path through the graph: an optional start node plus an ordered
// edge list where each edge starts where the previous one ended.
type Game struct {
	ID            GameID   `json:"id"`
	Name          string   `json:"name"`
	Start         NodeID   `json:"start,omitempty"`
	Edges         []EdgeID `json:"edges"`
	RedPlayer     string   `json:"red_player,omitempty"`
	BlackPlayer   string   `json:"black_player,omitempty"`
	RedIsUser     bool     `json:"red_is_user,omitempty"`
	BlackIsUser   bool     `json:"black_is_user,omitempty"`
	Date          string   `json:"date,omitempty"`
	Event         string   `json:"event,omitempty"`
	Result        Result   `json:"result"`
	FullyRecorded bool     `json:"fully_recorded,omitempty"`

	// lookup caches; never serialised
	edgeSet map[EdgeID]struct{}
	nodeSet map[NodeID]struct{}
	nodeGen uint64
}

// ContainsEdge reports whether the edge is part of the game.
func (g *Game) ContainsEdge(id EdgeID) bool {
	if g.edgeSet == nil {
		g.edgeSet = make(map[EdgeID]struct{}, len(g.Edges))
		for _, e := range g.Edges {
			g.edgeSet[e] = struct{}{}
		}
	}
	_, ok := g.edgeSet[id]
	return ok
}

// ContainsNode reports whether the node is the start node or an endpoint of any
// of the game's live edges. Missing edge ids are skipped.
func (g *Game) ContainsNode(r EdgeResolver, id NodeID) bool {
	if g.nodeSet == nil || g.nodeGen != r.Generation() {
		g.nodeSet = make(map[NodeID]struct{}, len(g.Edges)+1)
		for _, n := range g.NodeIDs(r) {
			g.nodeSet[n] = struct{}{}
		}
		g.nodeGen = r.Generation()
	}
	_, ok := g.nodeSet[id]
	return ok
}

// NodeIDs returns the game's positions in path order without repeats.
func (g *Game) NodeIDs(r EdgeResolver) []NodeID {
	var ids []NodeID
	seen := make(map[NodeID]bool, len(g.Edges)+1)
	add := func(id NodeID) {
		if id != 0 && !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	add(g.Start)
	for _, eid := range g.Edges {
		e, ok := r.Edge(eid)
		if !ok {
			continue
		}
		add(e.Source)
		add(e.To())
	}
	return ids
}

// LastNode is the node the game currently ends at: the target of its last live
// edge, or the start node for an empty game.
func (g *Game) LastNode(r EdgeResolver) NodeID {
	for i := len(g.Edges) - 1; i >= 0; i-- {
		if e, ok := r.Edge(g.Edges[i]); ok && !e.Removed() {
			return e.To()
		}
	}
	return g.Start
}

// CanAppend reports whether more moves may be recorded into the game.
func (g *Game) CanAppend() bool { return !g.FullyRecorded }

func (g *Game) invalidate() {
	g.edgeSet = nil
	g.nodeSet = nil
}

func (g *Game) clone() Game {
	c := *g
	c.Edges = slices.Clone(g.Edges)
	c.invalidate()
	c.nodeGen = 0
	return c
}
