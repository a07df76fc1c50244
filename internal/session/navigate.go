package session

import (
	"slices"

	"xqbook/navigator/internal/paths"
	"xqbook/navigator/internal/store"
)

// Forward moves the cursor one step along the path.
func (s *Session) Forward() bool {
	if s.cursor >= len(s.path)-1 {
		return false
	}
	s.cursor++
	return true
}

// Back moves the cursor one step toward the root.
func (s *Session) Back() bool {
	if s.cursor == 0 {
		return false
	}
	s.cursor--
	return true
}

// Seek puts the cursor on step.
func (s *Session) Seek(step int) bool {
	if step < 0 || step >= len(s.path) {
		return false
	}
	s.cursor = step
	return true
}

// ToStart moves the cursor to the root.
func (s *Session) ToStart() { s.cursor = 0 }

// ToEnd moves the cursor to the last node of the path.
func (s *Session) ToEnd() { s.cursor = len(s.path) - 1 }

// Play moves from the current node to target along a visible edge. If target is
// already the next node the cursor just advances; otherwise the path after the
// cursor is replaced and auto-extended. The move is remembered as the current
// node's last move.
func (s *Session) Play(target store.NodeID) bool {
	v := s.View()
	from := s.Current()
	e, ok := v.EdgeBetween(from, target)
	if !ok {
		return false
	}
	if s.cursor+1 < len(s.path) && s.path[s.cursor+1] == target {
		s.cursor++
		s.remember(from, e.ID)
		return true
	}
	if s.frozen(s.cursor+1) || slices.Contains(s.path[:s.cursor+1], target) {
		return false
	}
	s.remember(from, e.ID)
	next := s.extend(slices.Clone(s.path[:s.cursor+1]), []store.NodeID{target})
	s.replace(next, s.cursor+1)
	return true
}

// remember records the last move from a node when it changed.
func (s *Session) remember(from store.NodeID, edge store.EdgeID) {
	if n, ok := s.st.Node(from); ok && n.LastMove != edge {
		s.eff.SetLastMove(from, edge)
	}
}

// PlayState plays the move to the visible node holding state.
func (s *Session) PlayState(state string) bool {
	id, ok := s.View().NodeForState(state)
	if !ok {
		return false
	}
	return s.Play(id)
}

// AddMove records a move from the current node to state, creating the node and
// edge as needed, and moves onto it when the result is visible. When the session
// has a declared game that is visible and ends at the current node, the move is
// appended to it; fully recorded games only accept it from their own scope. The returned id is 0 when the move was refused
// before anything was written.
func (s *Session) AddMove(state string) (store.NodeID, bool) {
	if s.frozen(s.cursor + 1) {
		return 0, false
	}
	from := s.Current()
	if id, ok := s.st.NodeForState(state); ok && slices.Contains(s.path[:s.cursor+1], id) {
		return 0, false
	}

	v := s.View()
	var (
		target store.NodeID
		moved  bool
		err    error
	)
	s.st.Batch(func() {
		target = v.GetOrCreateNode(state)
		var edge store.EdgeID
		edge, err = v.GetOrCreateEdge(from, target)
		if err != nil {
			return
		}
		s.appendToGame(from, edge)
		moved = s.Play(target)
	})
	if err != nil {
		s.logger.Debug("add move failed", "from", from, "state", state, "err", err)
		return target, false
	}
	return target, moved
}

// appendToGame records edge into the declared game. A fully recorded game only
// grows when the session's base view is the game's own scope.
func (s *Session) appendToGame(from store.NodeID, edge store.EdgeID) {
	if s.game == "" {
		return
	}
	g, ok := s.base.Game(s.game)
	if !ok || g.ContainsEdge(edge) {
		return
	}
	inScope := s.base.InGameScope(s.game)
	if !g.CanAppend() && !inScope {
		return
	}
	if end := g.LastNode(s.st); end != 0 && end != from {
		return
	}
	appendEdge := s.base.AppendGameEdge
	if inScope {
		appendEdge = s.base.AppendGameEdgeInScope
	}
	if err := appendEdge(s.game, edge); err != nil {
		s.logger.Debug("game append skipped", "game", s.game, "edge", edge, "err", err)
	}
}

// Truncate drops every node after step. Steps inside the locked prefix other than
// the lock node itself, and steps outside the path, are refused.
func (s *Session) Truncate(step int) bool {
	if s.lock >= 0 && step < s.lock {
		return false
	}
	p, ok := paths.Truncate(s.path, step)
	if !ok {
		return false
	}
	if len(p) == len(s.path) {
		return true
	}
	s.replace(p, min(s.cursor, step))
	s.enum = nil
	return true
}

// History returns the paths discarded by truncation and path replacement, oldest first.
func (s *Session) History() [][]store.NodeID { return s.hist.Entries() }

// Recall restores history entry i. The entry must start at the root, keep the
// locked prefix and be fully visible.
func (s *Session) Recall(i int) bool {
	p, ok := s.hist.At(i)
	if !ok || p[0] != s.Root() {
		return false
	}
	if s.lock >= 0 && (len(p) <= s.lock || !slices.Equal(p[:s.lock+1], s.path[:s.lock+1])) {
		return false
	}
	if !s.View().PathVisible(p) {
		return false
	}
	s.replace(p, len(p)-1)
	return true
}

// Refresh cuts the path at the first node or move the effective view no longer
// shows, then auto-extends. The root and the locked prefix are never cut.
func (s *Session) Refresh() {
	v := s.View()
	keep := len(s.path)
	for i := 1; i < len(s.path); i++ {
		if s.frozen(i) {
			continue
		}
		if !v.HasNode(s.path[i]) {
			keep = i
			break
		}
		if _, ok := v.EdgeBetween(s.path[i-1], s.path[i]); !ok {
			keep = i
			break
		}
	}
	p := s.extend(slices.Clone(s.path[:keep]), nil)
	if !slices.Equal(p, s.path) {
		s.replace(p, s.cursor)
	}
}

// NextVariant replaces the node under the cursor with the next sibling move from
// the previous node, ordered by edge id, and auto-extends from there.
func (s *Session) NextVariant() bool {
	if s.cursor == 0 || s.frozen(s.cursor) {
		return false
	}
	v := s.View()
	parent := s.path[s.cursor-1]
	taken, ok := v.EdgeBetween(parent, s.path[s.cursor])
	if !ok {
		return false
	}
	var siblings []*store.Edge
	for _, e := range v.EdgesFrom(parent) {
		if !slices.Contains(s.path[:s.cursor], e.To()) {
			siblings = append(siblings, e)
		}
	}
	i := paths.NextVariant(siblings, taken.ID, nil)
	if i < 0 || siblings[i].ID == taken.ID {
		return false
	}
	s.Seek(s.cursor - 1)
	return s.Play(siblings[i].To())
}

// AddBookmark names the path up to the cursor.
func (s *Session) AddBookmark(name string) {
	s.eff.SetBookmark(slices.Clone(s.path[:s.cursor+1]), name)
}
