package view

import (
	"fmt"
	"strconv"
	"strings"

	"xqbook/navigator/internal/store"
)

// FilterKind names one of the predefined scopes.
type FilterKind int

const (
	FilterOpening FilterKind = iota
	FilterGameStats
	FilterPath
	FilterGame
	FilterBook
)

func (k FilterKind) String() string {
	switch k {
	case FilterOpening:
		return "opening"
	case FilterGameStats:
		return "stats"
	case FilterPath:
		return "path"
	case FilterGame:
		return "game"
	case FilterBook:
		return "book"
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

// Filter is one scope with its parameter. Only the field matching Kind is read.
type Filter struct {
	Kind  FilterKind
	Side  store.Side
	Game  store.GameID
	Book  store.BookID
	Nodes []store.NodeID
}

func (f Filter) predicates(st *store.Store) (NodePredicate, EdgePredicate, GamePredicate) {
	switch f.Kind {
	case FilterOpening:
		return openingPredicate(f.Side), nil, nil
	case FilterGameStats:
		return statsPredicate(st, f.Side), nil, nil
	case FilterPath:
		return setPredicate(f.Nodes), nil, nil
	case FilterGame:
		return gamePredicates(st, f.Game)
	case FilterBook:
		return (&bookScope{st: st, book: f.Book}).predicates()
	}
	return nil, nil, nil
}

// Combine builds one view whose node predicate is the AND of every filter's node
// predicate, checked in order and stopping at the first rejection. Edge and game
// predicates contributed by the filters are ANDed the same way. No filters gives
// the full view.
func Combine(st *store.Store, filters ...Filter) *View {
	if len(filters) == 0 {
		return Full(st)
	}
	var (
		nodes  []NodePredicate
		edges  []EdgePredicate
		games  []GamePredicate
		scopes []store.GameID
	)
	for _, f := range filters {
		if f.Kind == FilterGame {
			scopes = append(scopes, f.Game)
		}
		n, e, g := f.predicates(st)
		if n != nil {
			nodes = append(nodes, n)
		}
		if e != nil {
			edges = append(edges, e)
		}
		if g != nil {
			games = append(games, g)
		}
	}
	v := New(st, andNodes(nodes), andEdges(edges), andGames(games))
	v.scopes = scopes
	return v
}

// ParseFilter reads the command-line form of a filter: "opening:red",
// "stats:black", "game:<id>", "book:<id>" or "path:1,2,3".
func ParseFilter(s string) (Filter, error) {
	kind, arg, ok := strings.Cut(s, ":")
	if !ok || arg == "" {
		return Filter{}, fmt.Errorf("filter %q: want kind:value", s)
	}
	switch strings.ToLower(kind) {
	case "opening", "stats":
		side, err := store.ParseSide(arg)
		if err != nil {
			return Filter{}, fmt.Errorf("filter %q: %w", s, err)
		}
		k := FilterOpening
		if strings.EqualFold(kind, "stats") {
			k = FilterGameStats
		}
		return Filter{Kind: k, Side: side}, nil
	case "game":
		return Filter{Kind: FilterGame, Game: store.GameID(arg)}, nil
	case "book":
		return Filter{Kind: FilterBook, Book: store.BookID(arg)}, nil
	case "path":
		var ids []store.NodeID
		for _, part := range strings.Split(arg, ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil || n <= 0 {
				return Filter{}, fmt.Errorf("filter %q: bad node id %q", s, part)
			}
			ids = append(ids, store.NodeID(n))
		}
		return Filter{Kind: FilterPath, Nodes: ids}, nil
	}
	return Filter{}, fmt.Errorf("filter %q: unknown kind %q", s, kind)
}
