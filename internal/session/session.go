// Package session walks one current path through a scoped view.
//
// A Session holds a non-empty path whose first node never changes, a cursor into
// it, an optional lock index (path[:lock+1] is frozen) and an optional horizon
// bounding exploration below the lock. When a lock is active the effective view
// is the base view narrowed to the locked prefix plus every node reachable from
// the lock node within the horizon.
//
// Navigation outside the effective view is refused by returning false and leaving
// the session untouched; nothing here returns an error for a scope violation.
package session

import (
	"errors"
	"io"
	"log/slog"
	"math/rand/v2"
	"slices"

	"xqbook/navigator/internal/paths"
	"xqbook/navigator/internal/store"
	"xqbook/navigator/internal/view"
)

// ErrRootNotVisible is returned by New when the root node is outside the view.
var ErrRootNotVisible = errors.New("root node not visible")

// Session is a cursor over a path in a view. It is not safe for concurrent use.
type Session struct {
	base *view.View
	eff  *view.View
	st   *store.Store

	path   []store.NodeID
	cursor int

	lock    int
	horizon int

	// scope cache: effective view valid for scopeGen
	scopeGen   uint64
	scopeValid bool

	enum    *paths.Enumeration
	enumGen uint64

	hist *paths.History

	game       store.GameID
	autoExtend bool
	rng        *rand.Rand
	logger     *slog.Logger
}

// Option configures a Session.
type Option func(*Session)

// WithGame declares the game this session records into. AddMove only appends to
// it while the game is visible and the cursor sits at its end.
func WithGame(id store.GameID) Option {
	return func(s *Session) { s.game = id }
}

// WithAutoExtend controls whether the path is auto-extended after edits.
// It is on by default.
func WithAutoExtend(on bool) Option {
	return func(s *Session) { s.autoExtend = on }
}

// WithRand sets the random source used by RandomLine.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		if r != nil {
			s.rng = r
		}
	}
}

// WithLogger sets the logger for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHistoryCap bounds the truncation history.
func WithHistoryCap(n int) Option {
	return func(s *Session) { s.hist = paths.NewHistory(n) }
}

// New starts a session at root over base. The path is auto-extended from the root
// unless auto-extension is disabled.
func New(base *view.View, root store.NodeID, opts ...Option) (*Session, error) {
	if !base.HasNode(root) {
		return nil, ErrRootNotVisible
	}
	s := &Session{
		base:       base,
		eff:        base,
		st:         base.Store(),
		path:       []store.NodeID{root},
		lock:       -1,
		horizon:    -1,
		hist:       paths.NewHistory(paths.DefaultHistoryCap),
		autoExtend: true,
		rng:        rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.path = s.extend(s.path, nil)
	return s, nil
}

// Path returns a copy of the current path.
func (s *Session) Path() []store.NodeID { return slices.Clone(s.path) }

// Cursor is the index of the current node in the path.
func (s *Session) Cursor() int { return s.cursor }

// Current is the node under the cursor.
func (s *Session) Current() store.NodeID { return s.path[s.cursor] }

// Root is the first node of the path.
func (s *Session) Root() store.NodeID { return s.path[0] }

// Base is the view the session was created over.
func (s *Session) Base() *view.View { return s.base }

// Game is the declared game scope, empty when none.
func (s *Session) Game() store.GameID { return s.game }

// View is the effective view: the base view narrowed by the lock and horizon.
func (s *Session) View() *view.View {
	s.refreshScope()
	return s.eff
}

// refreshScope recomputes the effective view when the lock point, horizon or the
// store structure changed since it was last built.
func (s *Session) refreshScope() {
	gen := s.st.Generation()
	if s.scopeValid && s.scopeGen == gen {
		return
	}
	s.scopeGen = gen
	s.scopeValid = true
	if s.lock < 0 {
		s.eff = s.base
		return
	}
	reach := paths.Reachable(s.base, s.path[s.lock], s.horizon)
	ids := make(map[store.NodeID]struct{}, len(reach)+s.lock)
	for id := range reach {
		ids[id] = struct{}{}
	}
	for _, id := range s.path[:s.lock+1] {
		ids[id] = struct{}{}
	}
	s.eff = view.Within(s.base, ids)
	s.logger.Debug("session scope rebuilt", "lock", s.lock, "horizon", s.horizon, "reachable", len(reach))
}

func (s *Session) invalidateScope() {
	s.scopeValid = false
	s.enum = nil
}

// extend auto-extends p through the effective view when enabled, otherwise only
// consumes forced.
func (s *Session) extend(p []store.NodeID, forced []store.NodeID) []store.NodeID {
	return paths.Extend(s.View(), p, forced, s.autoExtend)
}

// frozen reports whether path[i] lies in the locked prefix.
func (s *Session) frozen(i int) bool { return s.lock >= 0 && i <= s.lock }

// replace swaps in a new path, pushing the old one onto the history when any of
// it is discarded.
func (s *Session) replace(p []store.NodeID, cursor int) {
	if !paths.IsPrefix(s.path, p) {
		s.hist.Push(s.path)
	}
	s.path = p
	s.cursor = min(max(cursor, 0), len(p)-1)
}
