// Package paths holds the pure algorithms behind path navigation: auto-extension,
// truncation history, bounded reachability, exhaustive enumeration with
// downstream counts, weighted random lines and variant cycling.
//
// Nothing here writes to the store. Every function reads the graph through the
// Graph interface, which *view.View satisfies.
package paths

import (
	"slices"

	"xqbook/navigator/internal/store"
)

// Graph is the read surface the algorithms need.
type Graph interface {
	EdgesFrom(id store.NodeID) []*store.Edge
	EdgeBetween(source, target store.NodeID) (*store.Edge, bool)
	LastMove(id store.NodeID) (store.NodeID, bool)
}

// Extend grows path in two phases. First it consumes forced in order while each
// step names a visible edge from the current end and does not revisit a node on
// the path; the first failure abandons the rest of forced. Then, when auto is
// set, it keeps following the end node's last-move pointer, or failing that its
// first visible edge, until neither yields a node not already on the path.
//
// The returned slice is always a fresh copy and never contains a repeated node.
func Extend(g Graph, path []store.NodeID, forced []store.NodeID, auto bool) []store.NodeID {
	out := slices.Clone(path)
	if len(out) == 0 {
		return out
	}
	on := make(map[store.NodeID]bool, len(out))
	for _, id := range out {
		on[id] = true
	}
	push := func(id store.NodeID) {
		out = append(out, id)
		on[id] = true
	}

	for _, next := range forced {
		last := out[len(out)-1]
		if on[next] {
			break
		}
		if _, ok := g.EdgeBetween(last, next); !ok {
			break
		}
		push(next)
	}
	if !auto {
		return out
	}

	for {
		last := out[len(out)-1]
		if next, ok := g.LastMove(last); ok && !on[next] {
			push(next)
			continue
		}
		edges := g.EdgesFrom(last)
		if len(edges) == 0 {
			break
		}
		next := edges[0].To()
		if on[next] {
			break
		}
		push(next)
	}
	return out
}

// Truncate keeps path[:step+1]. A step outside the path is a no-op and returns the
// path unchanged with false.
func Truncate(path []store.NodeID, step int) ([]store.NodeID, bool) {
	if step < 0 || step >= len(path) {
		return path, false
	}
	return slices.Clone(path[:step+1]), true
}

// IsPrefix reports whether a is a prefix of b.
func IsPrefix(a, b []store.NodeID) bool {
	return len(a) <= len(b) && slices.Equal(a, b[:len(a)])
}
