package paths

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xqbook/navigator/internal/store"
)

// fakeGraph is an adjacency list with optional last-move pointers.
type fakeGraph struct {
	edges map[store.NodeID][]*store.Edge
	last  map[store.NodeID]store.NodeID
	next  store.EdgeID
}

func newFakeGraph(pairs ...[2]store.NodeID) *fakeGraph {
	g := &fakeGraph{
		edges: make(map[store.NodeID][]*store.Edge),
		last:  make(map[store.NodeID]store.NodeID),
		next:  1,
	}
	for _, p := range pairs {
		t := p[1]
		g.edges[p[0]] = append(g.edges[p[0]], &store.Edge{ID: g.next, Source: p[0], Target: &t})
		g.next++
	}
	return g
}

func (g *fakeGraph) EdgesFrom(id store.NodeID) []*store.Edge { return g.edges[id] }

func (g *fakeGraph) EdgeBetween(source, target store.NodeID) (*store.Edge, bool) {
	for _, e := range g.edges[source] {
		if e.To() == target {
			return e, true
		}
	}
	return nil, false
}

func (g *fakeGraph) LastMove(id store.NodeID) (store.NodeID, bool) {
	to, ok := g.last[id]
	if !ok {
		return 0, false
	}
	if _, ok := g.EdgeBetween(id, to); !ok {
		return 0, false
	}
	return to, true
}

func ids(n ...int) []store.NodeID {
	out := make([]store.NodeID, len(n))
	for i, v := range n {
		out[i] = store.NodeID(v)
	}
	return out
}

func assertNoRepeats(t *testing.T, path []store.NodeID) {
	t.Helper()
	seen := make(map[store.NodeID]bool)
	for _, id := range path {
		assert.False(t, seen[id], "node %d repeated in %v", id, path)
		seen[id] = true
	}
}

func TestExtend_Forced(t *testing.T) {
	g := newFakeGraph([2]store.NodeID{1, 2}, [2]store.NodeID{2, 3}, [2]store.NodeID{3, 4})

	assert.Equal(t, ids(1, 2, 3), Extend(g, ids(1), ids(2, 3), false))
	// 9 has no edge from 2: the rest of the forced list is dropped.
	assert.Equal(t, ids(1, 2), Extend(g, ids(1), ids(2, 9, 3), false))
}

func TestExtend_PrefersLastMove(t *testing.T) {
	g := newFakeGraph([2]store.NodeID{1, 2}, [2]store.NodeID{1, 3}, [2]store.NodeID{3, 4})
	assert.Equal(t, ids(1, 2), Extend(g, ids(1), nil, true))

	g.last[1] = 3
	assert.Equal(t, ids(1, 3, 4), Extend(g, ids(1), nil, true))
}

func TestExtend_NeverRevisits(t *testing.T) {
	// 1 -> 2 -> 3 -> 1 cycle with a side exit 3 -> 4.
	g := newFakeGraph(
		[2]store.NodeID{1, 2},
		[2]store.NodeID{2, 3},
		[2]store.NodeID{3, 1},
		[2]store.NodeID{3, 4},
	)
	got := Extend(g, ids(1), nil, true)
	assert.Equal(t, ids(1, 2, 3), got, "first edge of 3 is a revisit, so extension stops")
	assertNoRepeats(t, got)

	g.last[3] = 1
	got = Extend(g, ids(1), ids(2, 3, 1), true)
	assertNoRepeats(t, got)

	for i := 0; i < 5; i++ {
		got = Extend(g, got, nil, true)
		assertNoRepeats(t, got)
	}
}

func TestExtend_ReturnsCopy(t *testing.T) {
	g := newFakeGraph([2]store.NodeID{1, 2})
	in := make([]store.NodeID, 1, 4)
	in[0] = 1
	out := Extend(g, in, nil, true)
	out[0] = 99
	assert.Equal(t, store.NodeID(1), in[0])
}

func TestTruncate(t *testing.T) {
	p := ids(1, 2, 3, 4)

	got, ok := Truncate(p, 1)
	require.True(t, ok)
	assert.Equal(t, ids(1, 2), got)

	for _, step := range []int{-1, 4, 10} {
		got, ok = Truncate(p, step)
		assert.False(t, ok)
		assert.Equal(t, p, got)
	}
}

func TestHistory_CollapsesPrefixes(t *testing.T) {
	h := NewHistory(0)
	h.Push(ids(1, 2))
	h.Push(ids(1, 2, 3))
	assert.Equal(t, [][]store.NodeID{ids(1, 2, 3)}, h.Entries())

	h.Push(ids(1, 2))
	assert.Equal(t, 1, h.Len(), "a prefix of the newest entry adds nothing")

	h.Push(ids(1, 4))
	assert.Equal(t, 2, h.Len())

	e, ok := h.At(1)
	require.True(t, ok)
	assert.Equal(t, ids(1, 4), e)
	_, ok = h.At(2)
	assert.False(t, ok)
}

func TestHistory_Capacity(t *testing.T) {
	h := NewHistory(3)
	for i := 2; i <= 6; i++ {
		h.Push(ids(1, i))
	}
	assert.Equal(t, [][]store.NodeID{ids(1, 4), ids(1, 5), ids(1, 6)}, h.Entries())

	def := NewHistory(0)
	for i := 0; i < DefaultHistoryCap+10; i++ {
		def.Push(ids(0, i+1))
	}
	assert.Equal(t, DefaultHistoryCap, def.Len())
}

func TestReachable_Depth(t *testing.T) {
	g := newFakeGraph([2]store.NodeID{1, 2}, [2]store.NodeID{2, 3}, [2]store.NodeID{3, 1})

	assert.Equal(t, map[store.NodeID]int{1: 0, 2: 1}, Reachable(g, 1, 1))
	assert.Equal(t, map[store.NodeID]int{1: 0, 2: 1, 3: 2}, Reachable(g, 1, 2))
	assert.Equal(t, map[store.NodeID]int{1: 0, 2: 1, 3: 2}, Reachable(g, 1, -1))
	assert.Equal(t, map[store.NodeID]int{1: 0}, Reachable(g, 1, 0))
}

func TestEnumerate_Conservation(t *testing.T) {
	// 1 -> {2, 3}, 2 -> {4, 5}, 3 -> 5 (transposition), 5 -> 6.
	g := newFakeGraph(
		[2]store.NodeID{1, 2},
		[2]store.NodeID{1, 3},
		[2]store.NodeID{2, 4},
		[2]store.NodeID{2, 5},
		[2]store.NodeID{3, 5},
		[2]store.NodeID{5, 6},
	)
	e := Enumerate(g, ids(1), -1)

	assert.Equal(t, len(e.Leaves), e.Root())
	assert.Equal(t, 3, e.Root())
	assert.Equal(t, 2, e.Count(2))
	assert.Equal(t, 1, e.Count(3))
	assert.Equal(t, 1, e.Count(6))
	assert.ElementsMatch(t, [][]store.NodeID{ids(1, 2, 4), ids(1, 2, 5, 6), ids(1, 3, 5, 6)}, e.Leaves)
	assert.InDelta(t, 2.0/3.0, e.Share(2), 1e-9)
}

func TestEnumerate_KeepsPrefixAndRefusesRevisits(t *testing.T) {
	g := newFakeGraph(
		[2]store.NodeID{1, 2},
		[2]store.NodeID{2, 3},
		[2]store.NodeID{3, 1},
		[2]store.NodeID{3, 4},
	)
	e := Enumerate(g, ids(1, 2), -1)
	assert.Equal(t, store.NodeID(2), e.Start)
	assert.Equal(t, [][]store.NodeID{ids(1, 2, 3, 4)}, e.Leaves)
	assert.Equal(t, 1, e.Root())
}

func TestEnumerate_Horizon(t *testing.T) {
	g := newFakeGraph([2]store.NodeID{1, 2}, [2]store.NodeID{2, 3}, [2]store.NodeID{2, 4})

	e := Enumerate(g, ids(1), 1)
	assert.Equal(t, [][]store.NodeID{ids(1, 2)}, e.Leaves)
	assert.Equal(t, 0, e.Count(3))

	e = Enumerate(g, ids(1), 2)
	assert.Equal(t, 2, e.Root())
}

func TestEnumerate_EmptyPrefix(t *testing.T) {
	e := Enumerate(newFakeGraph(), nil, -1)
	assert.Empty(t, e.Leaves)
	assert.Equal(t, 0, e.Root())
	assert.Zero(t, e.Share(1))
}

func TestPick_SquareRootWeights(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	children := ids(10, 20, 30)
	counts := map[store.NodeID]int{10: 1, 20: 9}

	hits := make(map[int]int)
	const draws = 20000
	for i := 0; i < draws; i++ {
		hits[Pick(rng, children, counts)]++
	}
	assert.Zero(t, hits[2], "zero-count children are never picked")
	// sqrt weights 1:3, so about a quarter of draws go to the first child.
	assert.InDelta(t, 0.25, float64(hits[0])/draws, 0.02)

	assert.Equal(t, -1, Pick(rng, ids(1), nil))
	assert.Equal(t, -1, Pick(rng, nil, counts))
}

func TestRandomLine_EndsAtLeaf(t *testing.T) {
	g := newFakeGraph(
		[2]store.NodeID{1, 2},
		[2]store.NodeID{1, 3},
		[2]store.NodeID{2, 4},
		[2]store.NodeID{3, 5},
	)
	e := Enumerate(g, ids(1), -1)
	rng := rand.New(rand.NewPCG(7, 7))
	for i := 0; i < 20; i++ {
		line := RandomLine(g, ids(1), e, rng)
		assert.Contains(t, e.Leaves, line)
	}
}

func TestNextVariant(t *testing.T) {
	mk := func(id store.EdgeID) *store.Edge { return &store.Edge{ID: id} }
	siblings := []*store.Edge{mk(7), mk(3), mk(5)}

	// Sorted by id: 3, 5, 7.
	assert.Equal(t, 2, NextVariant(siblings, 5, nil))
	assert.Equal(t, store.EdgeID(7), siblings[2].ID)
	assert.Equal(t, 0, NextVariant(siblings, 7, nil))
	assert.Equal(t, -1, NextVariant(siblings, 4, nil))

	desc := func(a, b *store.Edge) int { return int(b.ID - a.ID) }
	assert.Equal(t, 1, NextVariant(siblings, 7, desc))
	assert.Equal(t, 0, NextVariant([]*store.Edge{mk(1)}, 1, nil))
}
