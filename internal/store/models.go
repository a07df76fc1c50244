package store

import (
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"
)

// NodeID identifies a position. Valid ids start at 1.
type NodeID int

// EdgeID identifies a move. Valid ids start at 1.
type EdgeID int

// GameID is a globally unique game identifier.
type GameID string

// BookID is a globally unique book identifier.
type BookID string

// NewGameID returns a fresh random game id.
func NewGameID() GameID { return GameID(uuid.NewString()) }

// NewBookID returns a fresh random book id.
func NewBookID() BookID { return BookID(uuid.NewString()) }

// Side is one of the two players.
type Side int

const (
	Red Side = iota
	Black
)

func (s Side) String() string {
	if s == Black {
		return "black"
	}
	return "red"
}

// Other returns the opposing side.
func (s Side) Other() Side {
	if s == Black {
		return Red
	}
	return Black
}

// ParseSide accepts "red"/"r" and "black"/"b", case-insensitive.
func ParseSide(s string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red", "r", "w", "white":
		return Red, nil
	case "black", "b":
		return Black, nil
	}
	return Red, fmt.Errorf("unknown side %q", s)
}

// Result is the outcome of a game.
type Result int

const (
	RedWin Result = iota
	BlackWin
	Draw
	Unfinished
	Unknown
)

var resultNames = [...]string{"red-win", "black-win", "draw", "unfinished", "unknown"}

func (r Result) String() string {
	if r < RedWin || r > Unknown {
		return "unknown"
	}
	return resultNames[r]
}

// ParseResult parses the String form of a result. PGN-style scores are also accepted.
func ParseResult(s string) (Result, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "red-win", "1-0":
		return RedWin, nil
	case "black-win", "0-1":
		return BlackWin, nil
	case "draw", "1/2-1/2":
		return Draw, nil
	case "unfinished", "*":
		return Unfinished, nil
	case "unknown", "":
		return Unknown, nil
	}
	return Unknown, fmt.Errorf("unknown result %q", s)
}

// ResultCounts tallies the outcomes of real games that passed through a node.
type ResultCounts struct {
	RedWin     int `json:"red_win"`
	BlackWin   int `json:"black_win"`
	Draw       int `json:"draw"`
	Unfinished int `json:"unfinished"`
	Unknown    int `json:"unknown"`
}

// Add counts one more game with the given result.
func (c *ResultCounts) Add(r Result) {
	switch r {
	case RedWin:
		c.RedWin++
	case BlackWin:
		c.BlackWin++
	case Draw:
		c.Draw++
	case Unfinished:
		c.Unfinished++
	default:
		c.Unknown++
	}
}

// Total is the number of games counted.
func (c ResultCounts) Total() int {
	return c.RedWin + c.BlackWin + c.Draw + c.Unfinished + c.Unknown
}

// Node is one board position. State is immutable once created.
// Nodes returned by the store are live arena entries; mutate them only through Store methods.
type Node struct {
	ID         NodeID   `json:"id"`
	State      string   `json:"state"`
	Turn       Side     `json:"turn"`
	Score      *int     `json:"score,omitempty"`
	Comment    string   `json:"comment,omitempty"`
	LastMove   EdgeID   `json:"last_move,omitempty"`
	RedFlag    bool     `json:"red_flag,omitempty"`
	BlackFlag  bool     `json:"black_flag,omitempty"`
	PathGroups []string `json:"path_groups,omitempty"`
	Practice   int      `json:"practice,omitempty"`

	// outgoing live edges, derived from the edge table by linkEdge/RebuildIndices
	moves []EdgeID
}

// InOpening reports effective opening membership for a side. The side to move is
// always a member of its own opening; the flag can only add the other positions.
func (n *Node) InOpening(side Side) bool {
	if n.Turn == side {
		return true
	}
	if side == Red {
		return n.RedFlag
	}
	return n.BlackFlag
}

// Moves returns the ids of the node's live outgoing edges in creation order.
func (n *Node) Moves() []EdgeID {
	return slices.Clone(n.moves)
}

// HasPathGroup reports whether the node is tagged with the named group.
func (n *Node) HasPathGroup(name string) bool {
	_, ok := slices.BinarySearch(n.PathGroups, name)
	return ok
}

func (n *Node) clone() Node {
	c := *n
	c.PathGroups = slices.Clone(n.PathGroups)
	c.moves = nil
	if n.Score != nil {
		v := *n.Score
		c.Score = &v
	}
	return c
}

// Edge is a move from Source to Target. A nil Target marks a removed edge.
type Edge struct {
	ID      EdgeID  `json:"id"`
	Source  NodeID  `json:"source"`
	Target  *NodeID `json:"target"`
	Comment string  `json:"comment,omitempty"`
	Defect  string  `json:"defect,omitempty"`
}

// Removed reports whether the edge has been soft-deleted.
func (e *Edge) Removed() bool { return e.Target == nil }

// To returns the target id, or 0 for a removed edge.
func (e *Edge) To() NodeID {
	if e.Target == nil {
		return 0
	}
	return *e.Target
}

// Equal compares endpoints only; comment and defect text do not affect identity.
func (e *Edge) Equal(o *Edge) bool {
	if e.Source != o.Source {
		return false
	}
	if e.Target == nil || o.Target == nil {
		return e.Target == nil && o.Target == nil
	}
	return *e.Target == *o.Target
}

func (e *Edge) clone() Edge {
	c := *e
	if e.Target != nil {
		t := *e.Target
		c.Target = &t
	}
	return c
}

// Book is a named container of games and child books. Containment may form cycles.
type Book struct {
	ID       BookID   `json:"id"`
	Name     string   `json:"name"`
	Games    []GameID `json:"games"`
	Children []BookID `json:"children"`
}

func (b *Book) clone() Book {
	c := *b
	c.Games = slices.Clone(b.Games)
	c.Children = slices.Clone(b.Children)
	return c
}

// Bookmark names a path through the graph. The full path is the key.
type Bookmark struct {
	Path []NodeID `json:"path"`
	Name string   `json:"name"`
}
