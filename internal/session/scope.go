package session

import (
	"slices"

	"xqbook/navigator/internal/paths"
	"xqbook/navigator/internal/store"
)

// Lock freezes path[:step+1] and restricts the effective view to the frozen prefix
// plus everything reachable from path[step]. Any active horizon is kept.
func (s *Session) Lock(step int) bool {
	if step < 0 || step >= len(s.path) {
		return false
	}
	s.lock = step
	s.invalidateScope()
	s.logger.Debug("session locked", "step", step, "node", s.path[step])
	s.Refresh()
	return true
}

// Unlock removes the lock and the horizon.
func (s *Session) Unlock() {
	if s.lock < 0 && s.horizon < 0 {
		return
	}
	s.lock = -1
	s.horizon = -1
	s.invalidateScope()
	s.Refresh()
}

// SetHorizon limits exploration to n moves past the lock node. It needs an active
// lock and a non-negative n.
func (s *Session) SetHorizon(n int) bool {
	if s.lock < 0 || n < 0 {
		return false
	}
	s.horizon = n
	s.invalidateScope()
	s.Refresh()
	return true
}

// ClearHorizon lifts the horizon, leaving the lock in place.
func (s *Session) ClearHorizon() {
	if s.horizon < 0 {
		return
	}
	s.horizon = -1
	s.invalidateScope()
	s.Refresh()
}

// Locked returns the lock step.
func (s *Session) Locked() (int, bool) { return s.lock, s.lock >= 0 }

// Horizon returns the horizon.
func (s *Session) Horizon() (int, bool) { return s.horizon, s.horizon >= 0 }

// Reachable reports whether id is visible in the effective view.
func (s *Session) Reachable(id store.NodeID) bool { return s.View().HasNode(id) }

// prefix is the part of the path enumeration starts from: up to the lock, or the
// root alone when unlocked.
func (s *Session) prefix() []store.NodeID {
	if s.lock < 0 {
		return s.path[:1]
	}
	return s.path[:s.lock+1]
}

// Enumeration returns every terminal line below the lock node (or the root) with
// per-node line counts. The result is cached until the lock, horizon or store
// structure changes.
func (s *Session) Enumeration() *paths.Enumeration {
	v := s.View()
	gen := s.st.Generation()
	if s.enum != nil && s.enumGen == gen {
		return s.enum
	}
	s.enum = paths.Enumerate(v, s.prefix(), s.horizon)
	s.enumGen = gen
	s.logger.Debug("lines enumerated", "start", s.enum.Start, "lines", len(s.enum.Leaves))
	return s.enum
}

// PathCount is the number of terminal lines through id.
func (s *Session) PathCount(id store.NodeID) int { return s.Enumeration().Count(id) }

// Share is PathCount(id) as a fraction of all enumerated lines.
func (s *Session) Share(id store.NodeID) float64 { return s.Enumeration().Share(id) }

// RandomLine replaces everything past the lock node (or the root) with a random
// line, weighting each branch by the square root of its line count. The cursor is
// left on the first new move.
func (s *Session) RandomLine() bool {
	e := s.Enumeration()
	prefix := slices.Clone(s.prefix())
	line := paths.RandomLine(s.View(), prefix, e, s.rng)
	if len(line) == len(prefix) {
		return false
	}
	s.replace(line, len(prefix))
	return true
}

// Snapshot is the persisted part of a session.
type Snapshot struct {
	Root    store.NodeID   `json:"root"`
	Path    []store.NodeID `json:"path"`
	Cursor  int            `json:"cursor"`
	Lock    int            `json:"lock"`
	Horizon int            `json:"horizon"`
	Game    store.GameID   `json:"game,omitempty"`
}

// State captures the session for persistence.
func (s *Session) State() Snapshot {
	return Snapshot{
		Root:    s.Root(),
		Path:    slices.Clone(s.path),
		Cursor:  s.cursor,
		Lock:    s.lock,
		Horizon: s.horizon,
		Game:    s.game,
	}
}

// Apply restores a snapshot taken from a session with the same root. A snapshot
// whose path is no longer visible is cut back by Refresh. It returns false, leaving
// the session unchanged, when the root differs or the snapshot is malformed.
func (s *Session) Apply(snap Snapshot) bool {
	if len(snap.Path) == 0 || snap.Path[0] != s.Root() || snap.Root != s.Root() {
		return false
	}
	if snap.Lock >= len(snap.Path) || (snap.Horizon >= 0 && snap.Lock < 0) {
		return false
	}
	seen := make(map[store.NodeID]bool, len(snap.Path))
	for _, id := range snap.Path {
		if seen[id] {
			return false
		}
		seen[id] = true
	}
	s.path = slices.Clone(snap.Path)
	s.cursor = min(max(snap.Cursor, 0), len(s.path)-1)
	s.lock = max(snap.Lock, -1)
	s.horizon = max(snap.Horizon, -1)
	if snap.Game != "" {
		s.game = snap.Game
	}
	s.invalidateScope()
	s.Refresh()
	return true
}
