// Package store is the shared, mutable position graph: nodes keyed by board state,
// moves between them, games as paths through the graph, books as containers of
// games, plus bookmarks, per-node statistics and review records.
//
// The store is arena-style. Tables are keyed by id and views hold only a
// reference plus predicates, so every view observes writes immediately.
//
// The store is not safe for concurrent mutation. One interactive session owns it
// at a time. The only goroutine involved is the version consumer (see MarkDirty).
//
// Secondary indices (state -> node, (source, target) -> edge, each node's outgoing
// edge list) are derived data. RebuildIndices recomputes them from the primary
// tables and must be called after any bulk load.
package store

import (
	"io"
	"log/slog"
	"slices"
	"strings"
)

// TurnFunc derives the side to move from a state string.
type TurnFunc func(state string) Side

// DefaultTurn reads a FEN-style state: the second whitespace-separated field is
// the side to move, "b" meaning black. Anything else is red to move.
func DefaultTurn(state string) Side { return fieldTurn(state, 1) }

// FieldTurn returns a TurnFunc reading the side to move from the given zero-based
// whitespace field.
func FieldTurn(field int) TurnFunc {
	return func(state string) Side { return fieldTurn(state, field) }
}

func fieldTurn(state string, field int) Side {
	fields := strings.Fields(state)
	if field >= 0 && len(fields) > field && strings.EqualFold(fields[field], "b") {
		return Black
	}
	return Red
}

type edgeKey struct {
	source, target NodeID
}

// Store owns all graph tables.
type Store struct {
	nodes     map[NodeID]*Node
	edges     map[EdgeID]*Edge
	games     map[GameID]*Game
	books     map[BookID]*Book
	bookmarks map[string]*Bookmark
	stats     [2]map[NodeID]*ResultCounts
	reviews   map[NodeID][]byte

	byState map[string]NodeID
	byPair  map[edgeKey]EdgeID

	nextNode NodeID
	nextEdge EdgeID

	turn   TurnFunc
	logger *slog.Logger

	gen          uint64
	batchDepth   int
	batchTouched bool
	ver          *versioner
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for debug output.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTurnFunc overrides how the side to move is derived from a state string.
func WithTurnFunc(f TurnFunc) Option {
	return func(s *Store) {
		if f != nil {
			s.turn = f
		}
	}
}

// New creates an empty store. Call Close when done to stop the version consumer.
func New(opts ...Option) *Store {
	s := &Store{
		nodes:     make(map[NodeID]*Node),
		edges:     make(map[EdgeID]*Edge),
		games:     make(map[GameID]*Game),
		books:     make(map[BookID]*Book),
		bookmarks: make(map[string]*Bookmark),
		stats:     [2]map[NodeID]*ResultCounts{make(map[NodeID]*ResultCounts), make(map[NodeID]*ResultCounts)},
		reviews:   make(map[NodeID][]byte),
		byState:   make(map[string]NodeID),
		byPair:    make(map[edgeKey]EdgeID),
		nextNode:  1,
		nextEdge:  1,
		turn:      DefaultTurn,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		ver:       newVersioner(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close stops the version consumer. Pending marks are dropped.
func (s *Store) Close() {
	s.ver.close()
}

// NodeForState returns the id of the node with the given state, if known.
func (s *Store) NodeForState(state string) (NodeID, bool) {
	id, ok := s.byState[state]
	return id, ok
}

// GetOrCreateNode returns the node for state, allocating the next id if the state is new.
func (s *Store) GetOrCreateNode(state string) NodeID {
	if id, ok := s.byState[state]; ok {
		return id
	}
	id := s.nextNode
	s.nextNode++
	s.nodes[id] = &Node{ID: id, State: state, Turn: s.turn(state)}
	s.byState[state] = id
	s.logger.Debug("node created", "node", id, "state", state)
	s.touch()
	return id
}

// Node returns the live node for id.
func (s *Store) Node(id NodeID) (*Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// NodeCount is the number of nodes in the store.
func (s *Store) NodeCount() int { return len(s.nodes) }

// NodeIDs returns every node id in ascending order.
func (s *Store) NodeIDs() []NodeID {
	ids := make([]NodeID, 0, len(s.nodes))
	for id := range s.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (s *Store) updateNode(id NodeID, fn func(n *Node)) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	fn(n)
	s.touch()
	return true
}

// SetScore sets the node's evaluation.
func (s *Store) SetScore(id NodeID, score int) bool {
	return s.updateNode(id, func(n *Node) { n.Score = &score })
}

// ClearScore removes the node's evaluation.
func (s *Store) ClearScore(id NodeID) bool {
	return s.updateNode(id, func(n *Node) { n.Score = nil })
}

// SetComment replaces the node's comment.
func (s *Store) SetComment(id NodeID, comment string) bool {
	return s.updateNode(id, func(n *Node) { n.Comment = comment })
}

// SetOpeningFlag sets the explicit opening override for a side. The side to move
// is a member regardless, so clearing that side's flag changes nothing visible.
func (s *Store) SetOpeningFlag(id NodeID, side Side, on bool) bool {
	return s.updateNode(id, func(n *Node) {
		if side == Red {
			n.RedFlag = on
		} else {
			n.BlackFlag = on
		}
	})
}

// SetLastMove records the move most recently taken from a node. The edge must be a
// live edge leaving that node; edge 0 clears the pointer.
func (s *Store) SetLastMove(id NodeID, edge EdgeID) bool {
	if edge != 0 {
		e, ok := s.edges[edge]
		if !ok || e.Removed() || e.Source != id {
			return false
		}
	}
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	if n.LastMove == edge {
		return true
	}
	n.LastMove = edge
	s.touch()
	return true
}

// AddPathGroup tags the node with a named group.
func (s *Store) AddPathGroup(id NodeID, group string) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	i, found := slices.BinarySearch(n.PathGroups, group)
	if found {
		return true
	}
	n.PathGroups = slices.Insert(n.PathGroups, i, group)
	s.touch()
	return true
}

// RemovePathGroup removes a group tag from the node.
func (s *Store) RemovePathGroup(id NodeID, group string) bool {
	n, ok := s.nodes[id]
	if !ok {
		return false
	}
	i, found := slices.BinarySearch(n.PathGroups, group)
	if !found {
		return true
	}
	n.PathGroups = slices.Delete(n.PathGroups, i, i+1)
	s.touch()
	return true
}

// IncrementPractice bumps the node's practice counter and returns the new value.
func (s *Store) IncrementPractice(id NodeID) int {
	n, ok := s.nodes[id]
	if !ok {
		return 0
	}
	n.Practice++
	s.touch()
	return n.Practice
}
