package store

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	t.Cleanup(s.Close)
	return s
}

// buildChain creates states "p1 w", "p2 b", ... and the edges between consecutive ones.
func buildChain(t *testing.T, s *Store, n int) []NodeID {
	t.Helper()
	ids := make([]NodeID, n)
	for i := range ids {
		side := "w"
		if i%2 == 1 {
			side = "b"
		}
		ids[i] = s.GetOrCreateNode(fmt.Sprintf("p%d %s", i+1, side))
	}
	for i := 1; i < n; i++ {
		_, err := s.GetOrCreateEdge(ids[i-1], ids[i])
		require.NoError(t, err)
	}
	return ids
}

func mustEdge(t *testing.T, s *Store, src, tgt NodeID) EdgeID {
	t.Helper()
	id, err := s.GetOrCreateEdge(src, tgt)
	require.NoError(t, err)
	return id
}

func TestGetOrCreateNode_Idempotent(t *testing.T) {
	s := newTestStore(t)
	a := s.GetOrCreateNode("start w")
	b := s.GetOrCreateNode("start w")
	assert.Equal(t, a, b)
	assert.Equal(t, NodeID(1), a)
	assert.Equal(t, 1, s.NodeCount())

	c := s.GetOrCreateNode("next b")
	assert.Equal(t, NodeID(2), c)

	id, ok := s.NodeForState("next b")
	require.True(t, ok)
	assert.Equal(t, c, id)
}

func TestGetOrCreateNode_DerivesTurn(t *testing.T) {
	s := newTestStore(t)
	red, _ := s.Node(s.GetOrCreateNode("rnbakabnr/9 w - - 0 1"))
	black, _ := s.Node(s.GetOrCreateNode("rnbakabnr/9 b - - 0 1"))
	assert.Equal(t, Red, red.Turn)
	assert.Equal(t, Black, black.Turn)
}

func TestGetOrCreateEdge_Idempotent(t *testing.T) {
	s := newTestStore(t)
	a := s.GetOrCreateNode("a w")
	b := s.GetOrCreateNode("b b")

	e1 := mustEdge(t, s, a, b)
	e2 := mustEdge(t, s, a, b)
	assert.Equal(t, e1, e2)
	assert.Equal(t, 1, s.EdgeCount())

	n, _ := s.Node(a)
	assert.Equal(t, []EdgeID{e1}, n.Moves())
}

func TestGetOrCreateEdge_Errors(t *testing.T) {
	s := newTestStore(t)
	a := s.GetOrCreateNode("a w")

	_, err := s.GetOrCreateEdge(a, a)
	assert.True(t, errors.Is(err, ErrSelfLoop))

	_, err = s.GetOrCreateEdge(a, 99)
	assert.True(t, errors.Is(err, ErrNodeNotFound))

	_, err = s.GetOrCreateEdge(99, a)
	assert.True(t, errors.Is(err, ErrNodeNotFound))
}

func TestRemoveEdge_SoftDeletes(t *testing.T) {
	s := newTestStore(t)
	ids := buildChain(t, s, 2)
	e, ok := s.EdgeBetween(ids[0], ids[1])
	require.True(t, ok)
	require.True(t, s.SetLastMove(ids[0], e.ID))

	require.NoError(t, s.RemoveEdge(e.ID))

	assert.True(t, e.Removed())
	_, ok = s.EdgeBetween(ids[0], ids[1])
	assert.False(t, ok)
	assert.Empty(t, s.EdgesFrom(ids[0]))
	n, _ := s.Node(ids[0])
	assert.Equal(t, EdgeID(0), n.LastMove)

	err := s.RemoveEdge(e.ID)
	assert.True(t, errors.Is(err, ErrEdgeNotFound))

	// The pair can be connected again with a new edge.
	again := mustEdge(t, s, ids[0], ids[1])
	assert.NotEqual(t, e.ID, again)
}

func TestEdgeEqual_IgnoresText(t *testing.T) {
	one, two := NodeID(1), NodeID(2)
	a := &Edge{ID: 1, Source: 1, Target: &one, Comment: "x"}
	b := &Edge{ID: 7, Source: 1, Target: &one, Defect: "blunder"}
	c := &Edge{ID: 1, Source: 1, Target: &two}
	assert.True(t, a.Equal(b))
	assert.False(t, a.Equal(c))
}

func TestInOpening_AutoSideCannotBeCleared(t *testing.T) {
	s := newTestStore(t)
	id := s.GetOrCreateNode("x w")
	n, _ := s.Node(id)

	assert.True(t, n.InOpening(Red))
	assert.False(t, n.InOpening(Black))

	s.SetOpeningFlag(id, Red, false)
	assert.True(t, n.InOpening(Red))

	s.SetOpeningFlag(id, Black, true)
	assert.True(t, n.InOpening(Black))
}

func TestGameContainsNode(t *testing.T) {
	s := newTestStore(t)
	ids := buildChain(t, s, 3)
	e12, _ := s.EdgeBetween(ids[0], ids[1])

	g := &Game{Name: "g", Start: ids[0], Edges: []EdgeID{e12.ID}}
	gid := s.AddGame(g)
	require.NotEmpty(t, gid)

	assert.True(t, g.ContainsNode(s, ids[0]))
	assert.True(t, g.ContainsNode(s, ids[1]))
	assert.False(t, g.ContainsNode(s, ids[2]))
	assert.True(t, g.ContainsEdge(e12.ID))

	e23, _ := s.EdgeBetween(ids[1], ids[2])
	require.NoError(t, s.AppendGameEdge(gid, e23.ID))
	assert.True(t, g.ContainsNode(s, ids[2]))
	assert.True(t, g.ContainsEdge(e23.ID))
	assert.Equal(t, ids[2], g.LastNode(s))
}

func TestGameCaches_MatchRecomputation(t *testing.T) {
	s := newTestStore(t)
	ids := buildChain(t, s, 4)
	var edges []EdgeID
	for i := 1; i < len(ids); i++ {
		e, _ := s.EdgeBetween(ids[i-1], ids[i])
		edges = append(edges, e.ID)
	}
	g := &Game{Start: ids[0], Edges: edges}
	s.AddGame(g)

	for _, id := range ids {
		assert.True(t, g.ContainsNode(s, id))
	}
	// Removing the last edge drops its target from the game's node set.
	require.NoError(t, s.RemoveEdge(edges[2]))
	assert.False(t, g.ContainsNode(s, ids[3]))
	assert.Equal(t, slices.Clone(ids[:3]), g.NodeIDs(s))
}

func TestAppendGameEdge(t *testing.T) {
	s := newTestStore(t)
	ids := buildChain(t, s, 3)
	e12, _ := s.EdgeBetween(ids[0], ids[1])
	e23, _ := s.EdgeBetween(ids[1], ids[2])

	gid := s.AddGame(&Game{Name: "empty"})
	require.NoError(t, s.AppendGameEdge(gid, e12.ID))
	g, _ := s.Game(gid)
	assert.Equal(t, ids[0], g.Start)

	t.Run("discontinuous", func(t *testing.T) {
		err := s.AppendGameEdge(gid, e12.ID)
		assert.True(t, errors.Is(err, ErrDiscontinuousGame))
	})

	t.Run("fully recorded", func(t *testing.T) {
		g.FullyRecorded = true
		require.NoError(t, s.UpdateGame(g))
		err := s.AppendGameEdge(gid, e23.ID)
		assert.True(t, errors.Is(err, ErrGameFullyRecorded))
		assert.Len(t, g.Edges, 1)

		require.NoError(t, s.AppendGameEdgeInScope(gid, e23.ID))
		assert.Len(t, g.Edges, 2)
		assert.True(t, g.ContainsNode(s, ids[2]))
	})

	t.Run("unknown game", func(t *testing.T) {
		err := s.AppendGameEdge("nope", e23.ID)
		assert.True(t, errors.Is(err, ErrGameNotFound))
	})
}

func TestDeleteBook_CascadesThroughCycles(t *testing.T) {
	s := newTestStore(t)
	g1 := s.AddGame(&Game{Name: "g1"})
	g2 := s.AddGame(&Game{Name: "g2"})
	keep := s.AddGame(&Game{Name: "keep"})

	root := s.AddBook(&Book{Name: "root"})
	child := s.AddBook(&Book{Name: "child"})
	other := s.AddBook(&Book{Name: "other"})

	require.NoError(t, s.AddGameToBook(root, g1))
	require.NoError(t, s.AddGameToBook(child, g2))
	require.NoError(t, s.AddGameToBook(other, keep))
	require.NoError(t, s.AddChildBook(root, child))
	require.NoError(t, s.AddChildBook(child, root)) // cycle
	require.NoError(t, s.AddChildBook(other, child))

	assert.ElementsMatch(t, []GameID{g1, g2}, s.DescendantGames(root))

	require.NoError(t, s.DeleteBook(root))

	_, ok := s.Book(root)
	assert.False(t, ok)
	_, ok = s.Book(child)
	assert.False(t, ok)
	_, ok = s.Game(g1)
	assert.False(t, ok)
	_, ok = s.Game(g2)
	assert.False(t, ok)

	b, ok := s.Book(other)
	require.True(t, ok)
	assert.Empty(t, b.Children)
	assert.Equal(t, []GameID{keep}, b.Games)
}

func TestRootBooks_PromotesPureCycles(t *testing.T) {
	s := newTestStore(t)
	a := s.AddBook(&Book{ID: "a", Name: "A"})
	b := s.AddBook(&Book{ID: "b", Name: "B"})
	top := s.AddBook(&Book{ID: "t", Name: "Top"})
	require.NoError(t, s.AddChildBook(a, b))
	require.NoError(t, s.AddChildBook(b, a))

	var names []string
	for _, r := range s.RootBooks() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"Top", "A"}, names)
	assert.Equal(t, []BookID{top}, s.DescendantBooks(top))
}

func TestDeleteGame_StripsBookReferences(t *testing.T) {
	s := newTestStore(t)
	g := s.AddGame(&Game{Name: "g"})
	b := s.AddBook(&Book{Name: "b"})
	require.NoError(t, s.AddGameToBook(b, g))

	require.NoError(t, s.DeleteGame(g))
	book, _ := s.Book(b)
	assert.Empty(t, book.Games)
	assert.True(t, errors.Is(s.DeleteGame(g), ErrGameNotFound))
}

func TestBookmarks_KeyedByFullPath(t *testing.T) {
	s := newTestStore(t)
	s.SetBookmark([]NodeID{1, 2, 3}, "main")
	s.SetBookmark([]NodeID{1, 2}, "short")
	s.SetBookmark([]NodeID{1, 2, 3}, "renamed")

	all := s.Bookmarks()
	require.Len(t, all, 2)
	b, ok := s.Bookmark([]NodeID{1, 2, 3})
	require.True(t, ok)
	assert.Equal(t, "renamed", b.Name)

	assert.True(t, s.RemoveBookmark([]NodeID{1, 2}))
	assert.False(t, s.RemoveBookmark([]NodeID{1, 2}))
}

func TestRecordGame_Stats(t *testing.T) {
	s := newTestStore(t)
	ids := buildChain(t, s, 3)
	var edges []EdgeID
	for i := 1; i < 3; i++ {
		e, _ := s.EdgeBetween(ids[i-1], ids[i])
		edges = append(edges, e.ID)
	}
	gid := s.AddGame(&Game{Start: ids[0], Edges: edges, Result: BlackWin})
	require.NoError(t, s.RecordGame(gid, Red))

	for _, id := range ids {
		assert.Equal(t, 1, s.Stats(Red, id).BlackWin)
		assert.True(t, s.HasStats(Red, id))
		assert.False(t, s.HasStats(Black, id))
	}
}

func TestReviews_PassThrough(t *testing.T) {
	s := newTestStore(t)
	assert.False(t, s.HasReview(4))
	s.SetReview(4, []byte(`{"due":"2026-01-01"}`))
	assert.True(t, s.HasReview(4))
	r, _ := s.Review(4)
	assert.JSONEq(t, `{"due":"2026-01-01"}`, string(r))
	s.RemoveReview(4)
	assert.False(t, s.HasReview(4))
}

func TestPathGroups(t *testing.T) {
	s := newTestStore(t)
	id := s.GetOrCreateNode("x w")
	s.AddPathGroup(id, "main")
	s.AddPathGroup(id, "alt")
	s.AddPathGroup(id, "main")
	n, _ := s.Node(id)
	assert.Equal(t, []string{"alt", "main"}, n.PathGroups)
	assert.True(t, n.HasPathGroup("alt"))
	s.RemovePathGroup(id, "alt")
	assert.False(t, n.HasPathGroup("alt"))
}
