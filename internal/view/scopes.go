package view

import (
	"xqbook/navigator/internal/store"
)

// Full accepts every node, edge and game.
func Full(st *store.Store) *View {
	return New(st, nil, nil, nil)
}

// ByOpening accepts nodes in the side's effective opening set. The predicate reads
// the node on every call, so flag changes show up immediately.
func ByOpening(st *store.Store, side store.Side) *View {
	return New(st, openingPredicate(side), nil, nil)
}

func openingPredicate(side store.Side) NodePredicate {
	return func(n *store.Node) bool { return n.InOpening(side) }
}

// ByGameStats accepts nodes with at least one recorded outcome for the side.
func ByGameStats(st *store.Store, side store.Side) *View {
	return New(st, statsPredicate(st, side), nil, nil)
}

func statsPredicate(st *store.Store, side store.Side) NodePredicate {
	return func(n *store.Node) bool { return st.HasStats(side, n.ID) }
}

// ByPath accepts exactly the given node ids.
func ByPath(st *store.Store, ids []store.NodeID) *View {
	return New(st, setPredicate(ids), nil, nil)
}

func setPredicate(ids []store.NodeID) NodePredicate {
	set := make(map[store.NodeID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return func(n *store.Node) bool {
		_, ok := set[n.ID]
		return ok
	}
}

// ByGame scopes to one game's own nodes, edges and id. Membership is read from the
// game on every call, so moves appended later are visible at once. A missing game
// makes everything invisible.
func ByGame(st *store.Store, id store.GameID) *View {
	node, edge, game := gamePredicates(st, id)
	v := New(st, node, edge, game)
	v.scopes = []store.GameID{id}
	return v
}

func gamePredicates(st *store.Store, id store.GameID) (NodePredicate, EdgePredicate, GamePredicate) {
	node := func(n *store.Node) bool {
		g, ok := st.Game(id)
		return ok && g.ContainsNode(st, n.ID)
	}
	edge := func(e store.EdgeID) bool {
		g, ok := st.Game(id)
		return ok && g.ContainsEdge(e)
	}
	game := func(g store.GameID) bool { return g == id }
	return node, edge, game
}

// bookScope is the union of every node, edge and game reachable from a book
// through its descendant games. It is rebuilt when the store generation moves.
type bookScope struct {
	st    *store.Store
	book  store.BookID
	gen   uint64
	built bool
	nodes map[store.NodeID]struct{}
	edges map[store.EdgeID]struct{}
	games map[store.GameID]struct{}
}

func (b *bookScope) refresh() {
	if b.built && b.gen == b.st.Generation() {
		return
	}
	b.nodes = make(map[store.NodeID]struct{})
	b.edges = make(map[store.EdgeID]struct{})
	b.games = make(map[store.GameID]struct{})
	for _, gid := range b.st.DescendantGames(b.book) {
		g, ok := b.st.Game(gid)
		if !ok {
			continue
		}
		b.games[gid] = struct{}{}
		for _, e := range g.Edges {
			b.edges[e] = struct{}{}
		}
		for _, n := range g.NodeIDs(b.st) {
			b.nodes[n] = struct{}{}
		}
	}
	b.gen = b.st.Generation()
	b.built = true
}

func (b *bookScope) predicates() (NodePredicate, EdgePredicate, GamePredicate) {
	node := func(n *store.Node) bool {
		b.refresh()
		_, ok := b.nodes[n.ID]
		return ok
	}
	edge := func(id store.EdgeID) bool {
		b.refresh()
		_, ok := b.edges[id]
		return ok
	}
	game := func(id store.GameID) bool {
		b.refresh()
		_, ok := b.games[id]
		return ok
	}
	return node, edge, game
}

// ByBook scopes to everything reachable through the book's descendant games.
// Cyclic book containment is walked once per book.
func ByBook(st *store.Store, id store.BookID) *View {
	scope := &bookScope{st: st, book: id}
	node, edge, game := scope.predicates()
	return New(st, node, edge, game)
}

// Within narrows base to a fixed node set, keeping its edge and game predicates.
func Within(base *View, ids map[store.NodeID]struct{}) *View {
	inner := base.node
	node := func(n *store.Node) bool {
		if _, ok := ids[n.ID]; !ok {
			return false
		}
		return inner(n)
	}
	v := New(base.st, node, base.edge, base.game)
	v.scopes = base.scopes
	return v
}

// And intersects views over the same store. With no views it returns nil.
func And(views ...*View) *View {
	if len(views) == 0 {
		return nil
	}
	var (
		nodes  []NodePredicate
		edges  []EdgePredicate
		games  []GamePredicate
		scopes []store.GameID
	)
	for _, v := range views {
		nodes = append(nodes, v.node)
		if v.edge != nil {
			edges = append(edges, v.edge)
		}
		if v.game != nil {
			games = append(games, v.game)
		}
		scopes = append(scopes, v.scopes...)
	}
	out := New(views[0].st, andNodes(nodes), andEdges(edges), andGames(games))
	out.scopes = scopes
	return out
}

func andNodes(ps []NodePredicate) NodePredicate {
	if len(ps) == 0 {
		return nil
	}
	if len(ps) == 1 {
		return ps[0]
	}
	return func(n *store.Node) bool {
		for _, p := range ps {
			if !p(n) {
				return false
			}
		}
		return true
	}
}

func andEdges(ps []EdgePredicate) EdgePredicate {
	if len(ps) == 0 {
		return nil
	}
	if len(ps) == 1 {
		return ps[0]
	}
	return func(id store.EdgeID) bool {
		for _, p := range ps {
			if !p(id) {
				return false
			}
		}
		return true
	}
}

func andGames(ps []GamePredicate) GamePredicate {
	if len(ps) == 0 {
		return nil
	}
	if len(ps) == 1 {
		return ps[0]
	}
	return func(id store.GameID) bool {
		for _, p := range ps {
			if !p(id) {
				return false
			}
		}
		return true
	}
}
