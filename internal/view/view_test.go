package view

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xqbook/navigator/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	t.Cleanup(s.Close)
	return s
}

// diamond builds nodes 1..5 with edges 1->2, 1->3, 2->4, 3->5.
func diamond(t *testing.T) *store.Store {
	t.Helper()
	s := newTestStore(t)
	for i := 1; i <= 5; i++ {
		side := "w"
		if i%2 == 0 {
			side = "b"
		}
		s.GetOrCreateNode(fmt.Sprintf("n%d %s", i, side))
	}
	for _, p := range [][2]store.NodeID{{1, 2}, {1, 3}, {2, 4}, {3, 5}} {
		_, err := s.GetOrCreateEdge(p[0], p[1])
		require.NoError(t, err)
	}
	return s
}

func targets(edges []*store.Edge) []store.NodeID {
	var out []store.NodeID
	for _, e := range edges {
		out = append(out, e.To())
	}
	return out
}

func TestEdgesFrom_HidesOutOfScopeTargets(t *testing.T) {
	s := diamond(t)
	v := ByPath(s, []store.NodeID{1, 2, 4})

	assert.Equal(t, []store.NodeID{2}, targets(v.EdgesFrom(1)))
	assert.Equal(t, []store.NodeID{4}, targets(v.EdgesFrom(2)))
	assert.False(t, v.HasNode(3))
	_, ok := v.EdgeBetween(1, 3)
	assert.False(t, ok)
}

func TestEdgesFrom_IgnoresSourceVisibility(t *testing.T) {
	s := diamond(t)
	v := ByPath(s, []store.NodeID{5})

	// Source 3 is hidden, target 5 is visible: the edge is still returned.
	assert.Equal(t, []store.NodeID{5}, targets(v.EdgesFrom(3)))
	assert.Empty(t, v.EdgesFrom(1))
}

func TestEdgesFrom_EdgePredicate(t *testing.T) {
	s := diamond(t)
	e13, _ := s.EdgeBetween(1, 3)
	v := New(s, nil, func(id store.EdgeID) bool { return id != e13.ID }, nil)

	assert.Equal(t, []store.NodeID{2}, targets(v.EdgesFrom(1)))
	assert.False(t, v.HasEdge(e13.ID))
}

func TestEdgesFrom_SkipsRemoved(t *testing.T) {
	s := diamond(t)
	e12, _ := s.EdgeBetween(1, 2)
	v := Full(s)
	require.NoError(t, v.RemoveEdge(e12.ID))

	assert.Equal(t, []store.NodeID{3}, targets(v.EdgesFrom(1)))
	_, ok := v.Edge(e12.ID)
	assert.False(t, ok)
}

func TestByOpening_SeesFlagChangesImmediately(t *testing.T) {
	s := diamond(t)
	red := ByOpening(s, store.Red)

	// Odd ids were created red to move.
	assert.Equal(t, []store.NodeID{1, 3, 5}, red.NodeIDs())

	red.SetOpeningFlag(2, store.Red, true)
	assert.True(t, red.HasNode(2))

	// The turn-derived side cannot be switched off.
	red.SetOpeningFlag(1, store.Red, false)
	assert.True(t, red.HasNode(1))
}

func TestByGameStats(t *testing.T) {
	s := diamond(t)
	v := ByGameStats(s, store.Black)
	assert.Empty(t, v.NodeIDs())

	v.RecordResult(store.Black, 4, store.Draw)
	assert.Equal(t, []store.NodeID{4}, v.NodeIDs())
	counts, ok := v.Stats(store.Black, 4)
	require.True(t, ok)
	assert.Equal(t, 1, counts.Draw)

	_, ok = v.Stats(store.Black, 1)
	assert.False(t, ok)
}

func TestByGame_IsLive(t *testing.T) {
	s := diamond(t)
	e12, _ := s.EdgeBetween(1, 2)
	e24, _ := s.EdgeBetween(2, 4)
	gid := s.AddGame(&store.Game{Name: "g", Start: 1, Edges: []store.EdgeID{e12.ID}})
	other := s.AddGame(&store.Game{Name: "other"})

	v := ByGame(s, gid)
	assert.Equal(t, []store.NodeID{1, 2}, v.NodeIDs())
	assert.Empty(t, v.EdgesFrom(2))
	assert.True(t, v.HasGame(gid))
	assert.False(t, v.HasGame(other))
	assert.Len(t, v.Games(), 1)

	require.NoError(t, v.AppendGameEdge(gid, e24.ID))
	assert.Equal(t, []store.NodeID{4}, targets(v.EdgesFrom(2)))
	assert.True(t, v.HasNode(4))
}

func TestInGameScope(t *testing.T) {
	s := diamond(t)
	gid := s.AddGame(&store.Game{Name: "g", Start: 1})

	assert.True(t, ByGame(s, gid).InGameScope(gid))
	assert.False(t, ByGame(s, gid).InGameScope("other"))
	assert.False(t, Full(s).InGameScope(gid))
	assert.False(t, ByBook(s, "b").InGameScope(gid))

	within := Within(ByGame(s, gid), map[store.NodeID]struct{}{1: {}})
	assert.True(t, within.InGameScope(gid), "narrowing keeps the game scope")
	assert.True(t, And(ByOpening(s, store.Red), ByGame(s, gid)).InGameScope(gid))
}

func TestByGame_EdgeMustBelongToGame(t *testing.T) {
	s := newTestStore(t)
	a := s.GetOrCreateNode("a w")
	b := s.GetOrCreateNode("b b")
	c := s.GetOrCreateNode("c w")
	ab, _ := s.GetOrCreateEdge(a, b)
	bc, _ := s.GetOrCreateEdge(b, c)
	_, err := s.GetOrCreateEdge(a, c)
	require.NoError(t, err)
	gid := s.AddGame(&store.Game{Name: "g", Start: a, Edges: []store.EdgeID{ab, bc}})

	v := ByGame(s, gid)
	// a->c joins two game nodes but is not a game move.
	assert.Equal(t, []store.NodeID{b}, targets(v.EdgesFrom(a)))
}

func TestByBook_CyclicContainment(t *testing.T) {
	s := diamond(t)
	e12, _ := s.EdgeBetween(1, 2)
	e35, _ := s.EdgeBetween(3, 5)
	g1 := s.AddGame(&store.Game{Name: "one", Start: 1, Edges: []store.EdgeID{e12.ID}})
	g2 := s.AddGame(&store.Game{Name: "two", Start: 3, Edges: []store.EdgeID{e35.ID}})

	a := s.AddBook(&store.Book{Name: "a"})
	b := s.AddBook(&store.Book{Name: "b"})
	require.NoError(t, s.AddGameToBook(a, g1))
	require.NoError(t, s.AddGameToBook(b, g2))
	require.NoError(t, s.AddChildBook(a, b))
	require.NoError(t, s.AddChildBook(b, a))

	v := ByBook(s, a)
	assert.Equal(t, []store.NodeID{1, 2, 3, 5}, v.NodeIDs())
	assert.True(t, v.HasGame(g1))
	assert.True(t, v.HasGame(g2))

	// The memo follows store writes.
	require.NoError(t, s.DeleteGame(g2))
	assert.Equal(t, []store.NodeID{1, 2}, v.NodeIDs())
}

func TestBooks_FilteredByVisibleGames(t *testing.T) {
	s := diamond(t)
	g1 := s.AddGame(&store.Game{Name: "one", Start: 1})
	g2 := s.AddGame(&store.Game{Name: "two", Start: 3})
	a := s.AddBook(&store.Book{Name: "a"})
	b := s.AddBook(&store.Book{Name: "b"})
	s.AddBook(&store.Book{Name: "empty"})
	require.NoError(t, s.AddGameToBook(a, g1))
	require.NoError(t, s.AddGameToBook(b, g2))

	assert.Len(t, Full(s).Books(), 3)

	books := ByGame(s, g2).Books()
	require.Len(t, books, 1)
	assert.Equal(t, b, books[0].ID)
}

func TestWithin(t *testing.T) {
	s := diamond(t)
	base := ByOpening(s, store.Red)
	v := Within(base, map[store.NodeID]struct{}{1: {}, 2: {}, 3: {}})

	// 2 passes the set but not the opening predicate.
	assert.Equal(t, []store.NodeID{1, 3}, v.NodeIDs())
}

func TestBookmarks_OnlyFullyVisiblePaths(t *testing.T) {
	s := diamond(t)
	s.SetBookmark([]store.NodeID{1, 2, 4}, "left")
	s.SetBookmark([]store.NodeID{1, 3, 5}, "right")

	marks := ByPath(s, []store.NodeID{1, 2, 4}).Bookmarks()
	require.Len(t, marks, 1)
	assert.Equal(t, "left", marks[0].Name)
}

func TestLastMove(t *testing.T) {
	s := diamond(t)
	e13, _ := s.EdgeBetween(1, 3)
	s.SetLastMove(1, e13.ID)

	to, ok := Full(s).LastMove(1)
	require.True(t, ok)
	assert.Equal(t, store.NodeID(3), to)

	_, ok = ByPath(s, []store.NodeID{1, 2}).LastMove(1)
	assert.False(t, ok)
}

func TestReviewPassThrough(t *testing.T) {
	s := diamond(t)
	v := ByPath(s, []store.NodeID{1})
	v.SetReview(1, []byte("due"))
	v.SetReview(2, []byte("hidden"))

	assert.True(t, v.HasReview(1))
	assert.False(t, v.HasReview(2), "writes are unfiltered, reads are not")
	assert.True(t, s.HasReview(2))

	v.RemoveReview(1)
	assert.False(t, v.HasReview(1))
}

func TestWritesBypassFilter(t *testing.T) {
	s := diamond(t)
	v := ByPath(s, []store.NodeID{1})
	id := v.GetOrCreateNode("fresh w")
	assert.False(t, v.HasNode(id))
	assert.True(t, Full(s).HasNode(id))
}
