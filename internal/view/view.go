// Package view provides scoped, read-time projections over a shared store.
//
// A View is a store reference plus predicates. It never copies graph data, so a
// write through any view (or the store) is visible to every other view at once.
//
// Visibility rules:
//   - a node is visible iff the node predicate accepts it;
//   - an edge is visible iff it is live, its target is visible and the edge
//     predicate (when present) accepts its id. Source visibility is the caller's
//     job: EdgesFrom never looks at the source node's predicate;
//   - a game is visible iff there is no game predicate or it accepts the id.
//
// Writes pass straight through to the store without filtering. Filtering is a
// display rule, not access control.
package view

import (
	"slices"

	"xqbook/navigator/internal/store"
)

// NodePredicate decides node visibility.
type NodePredicate func(n *store.Node) bool

// EdgePredicate decides edge visibility by id.
type EdgePredicate func(id store.EdgeID) bool

// GamePredicate decides game visibility by id.
type GamePredicate func(id store.GameID) bool

// View is a filtered projection of a store.
type View struct {
	st   *store.Store
	node NodePredicate
	edge EdgePredicate
	game GamePredicate

	// games the view is confined to the own scope of.
	scopes []store.GameID
}

// New builds a view. A nil node predicate accepts every node; nil edge and game
// predicates impose no extra restriction.
func New(st *store.Store, node NodePredicate, edge EdgePredicate, game GamePredicate) *View {
	if node == nil {
		node = acceptNode
	}
	return &View{st: st, node: node, edge: edge, game: game}
}

func acceptNode(*store.Node) bool { return true }

// Store returns the underlying arena.
func (v *View) Store() *store.Store { return v.st }

// NodePredicate returns the view's node predicate.
func (v *View) NodePredicate() NodePredicate { return v.node }

// EdgePredicate returns the view's edge predicate, or nil.
func (v *View) EdgePredicate() EdgePredicate { return v.edge }

// GamePredicate returns the view's game predicate, or nil.
func (v *View) GamePredicate() GamePredicate { return v.game }

// InGameScope reports whether the view is confined to the game's own nodes, edges
// and id, possibly narrowed further by other filters.
func (v *View) InGameScope(id store.GameID) bool { return slices.Contains(v.scopes, id) }

// HasNode reports whether the node exists and is visible.
func (v *View) HasNode(id store.NodeID) bool {
	n, ok := v.st.Node(id)
	return ok && v.node(n)
}

// Node returns a visible node.
func (v *View) Node(id store.NodeID) (*store.Node, bool) {
	n, ok := v.st.Node(id)
	if !ok || !v.node(n) {
		return nil, false
	}
	return n, true
}

// NodeForState returns the id of a visible node with the given state.
func (v *View) NodeForState(state string) (store.NodeID, bool) {
	id, ok := v.st.NodeForState(state)
	if !ok || !v.HasNode(id) {
		return 0, false
	}
	return id, true
}

// NodeIDs returns all visible node ids, ascending.
func (v *View) NodeIDs() []store.NodeID {
	var ids []store.NodeID
	for _, id := range v.st.NodeIDs() {
		if v.HasNode(id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (v *View) edgeVisible(e *store.Edge) bool {
	if e == nil || e.Removed() {
		return false
	}
	if !v.HasNode(*e.Target) {
		return false
	}
	return v.edge == nil || v.edge(e.ID)
}

// HasEdge reports whether the edge is visible.
func (v *View) HasEdge(id store.EdgeID) bool {
	e, ok := v.st.Edge(id)
	return ok && v.edgeVisible(e)
}

// Edge returns a visible edge.
func (v *View) Edge(id store.EdgeID) (*store.Edge, bool) {
	e, ok := v.st.Edge(id)
	if !ok || !v.edgeVisible(e) {
		return nil, false
	}
	return e, true
}

// EdgesFrom returns the visible edges leaving id, in the node's move order. The
// source's own visibility is not checked.
func (v *View) EdgesFrom(id store.NodeID) []*store.Edge {
	var out []*store.Edge
	for _, e := range v.st.EdgesFrom(id) {
		if v.edgeVisible(e) {
			out = append(out, e)
		}
	}
	return out
}

// EdgeBetween returns the visible edge from source to target.
func (v *View) EdgeBetween(source, target store.NodeID) (*store.Edge, bool) {
	e, ok := v.st.EdgeBetween(source, target)
	if !ok || !v.edgeVisible(e) {
		return nil, false
	}
	return e, true
}

// LastMove returns the target of the node's last-move pointer when that edge is visible.
func (v *View) LastMove(id store.NodeID) (store.NodeID, bool) {
	n, ok := v.st.Node(id)
	if !ok || n.LastMove == 0 {
		return 0, false
	}
	e, ok := v.Edge(n.LastMove)
	if !ok {
		return 0, false
	}
	return e.To(), true
}

// HasGame reports whether the game exists and is visible.
func (v *View) HasGame(id store.GameID) bool {
	if _, ok := v.st.Game(id); !ok {
		return false
	}
	return v.game == nil || v.game(id)
}

// Game returns a visible game.
func (v *View) Game(id store.GameID) (*store.Game, bool) {
	if !v.HasGame(id) {
		return nil, false
	}
	return v.st.Game(id)
}

// Games returns the visible games ordered by name.
func (v *View) Games() []*store.Game {
	var out []*store.Game
	for _, g := range v.st.Games() {
		if v.game == nil || v.game(g.ID) {
			out = append(out, g)
		}
	}
	return out
}

// Books returns every book when the view has no game predicate, otherwise only
// books holding at least one visible game directly or through descendants.
func (v *View) Books() []*store.Book {
	all := v.st.Books()
	if v.game == nil {
		return all
	}
	var out []*store.Book
	for _, b := range all {
		for _, g := range v.st.DescendantGames(b.ID) {
			if v.game(g) {
				out = append(out, b)
				break
			}
		}
	}
	return out
}

// Stats returns the side's counts for a visible node.
func (v *View) Stats(side store.Side, id store.NodeID) (store.ResultCounts, bool) {
	if !v.HasNode(id) {
		return store.ResultCounts{}, false
	}
	return v.st.Stats(side, id), true
}

// Bookmarks returns the bookmarks whose entire path is visible.
func (v *View) Bookmarks() []*store.Bookmark {
	var out []*store.Bookmark
	for _, b := range v.st.Bookmarks() {
		if v.pathVisible(b.Path) {
			out = append(out, b)
		}
	}
	return out
}

func (v *View) pathVisible(path []store.NodeID) bool {
	for i, id := range path {
		if !v.HasNode(id) {
			return false
		}
		if i > 0 {
			if _, ok := v.EdgeBetween(path[i-1], id); !ok {
				return false
			}
		}
	}
	return true
}

// PathVisible reports whether every node and every consecutive edge of path is visible.
func (v *View) PathVisible(path []store.NodeID) bool { return v.pathVisible(path) }

// HasReview reports whether a visible node has a scheduling record.
func (v *View) HasReview(id store.NodeID) bool {
	return v.HasNode(id) && v.st.HasReview(id)
}

// Review returns the scheduling record of a visible node.
func (v *View) Review(id store.NodeID) ([]byte, bool) {
	if !v.HasNode(id) {
		return nil, false
	}
	return v.st.Review(id)
}
