package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xqbook/navigator/internal/session"
	"xqbook/navigator/internal/store"
	"xqbook/navigator/internal/view"
)

func testStore(t *testing.T) (*store.Store, []store.NodeID) {
	t.Helper()
	st := store.New()
	t.Cleanup(st.Close)
	states := []string{"start w", "cannon b", "horse b", "cannon-horse w"}
	ids := make([]store.NodeID, len(states))
	for i, s := range states {
		ids[i] = st.GetOrCreateNode(s)
	}
	for _, e := range [][2]int{{0, 1}, {0, 2}, {1, 3}} {
		_, err := st.GetOrCreateEdge(ids[e[0]], ids[e[1]])
		require.NoError(t, err)
	}
	return st, ids
}

func TestResolveNode(t *testing.T) {
	st, ids := testStore(t)
	v := view.Full(st)

	tests := []struct {
		name    string
		ref     string
		want    store.NodeID
		wantErr string
	}{
		{"numeric id", "2", ids[1], ""},
		{"exact state", "horse b", ids[2], ""},
		{"unique substring", "cannon-", ids[3], ""},
		{"ambiguous substring", "cannon", 0, "ambiguous"},
		{"unknown", "elephant", 0, "not found"},
		{"numeric out of scope", "99", 0, "not found in scope"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveNode(v, tt.ref)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveNode_RespectsScope(t *testing.T) {
	st, ids := testStore(t)
	v := view.ByPath(st, []store.NodeID{ids[0], ids[1]})
	_, err := ResolveNode(v, "horse b")
	assert.Error(t, err)
}

func TestBuildView(t *testing.T) {
	st, ids := testStore(t)
	v, err := BuildView(st, []string{"path:1,2"})
	require.NoError(t, err)
	assert.Equal(t, []store.NodeID{ids[0], ids[1]}, v.NodeIDs())

	_, err = BuildView(st, []string{"nonsense"})
	assert.Error(t, err)
}

func TestFindOrCreateBook(t *testing.T) {
	st, _ := testStore(t)
	parent := st.AddBook(&store.Book{Name: "Repertoire"})

	id, err := findOrCreateBook(st, "Club", "Repertoire")
	require.NoError(t, err)
	p, _ := st.Book(parent)
	assert.Equal(t, []store.BookID{id}, p.Children)

	again, err := findOrCreateBook(st, "Club", "")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	byID, err := findOrCreateBook(st, string(id), "")
	require.NoError(t, err)
	assert.Equal(t, id, byID)

	_, err = findOrCreateBook(st, "Other", "missing")
	assert.ErrorIs(t, err, store.ErrBookNotFound)
}

func TestCollectBooks_Cycle(t *testing.T) {
	st, _ := testStore(t)
	a := st.AddBook(&store.Book{Name: "A"})
	b := st.AddBook(&store.Book{Name: "B"})
	require.NoError(t, st.AddChildBook(a, b))
	require.NoError(t, st.AddChildBook(b, a))

	// A pure cycle still yields a root to list from.
	roots := st.RootBooks()
	require.Len(t, roots, 1)
	assert.Contains(t, []store.BookID{a, b}, roots[0].ID)

	book, _ := st.Book(a)
	entries := collectBooks(st, book, 0, map[store.BookID]bool{}, nil)
	require.Len(t, entries, 3)
	assert.Equal(t, "A", entries[0].Name)
	assert.Equal(t, "B", entries[1].Name)
	assert.True(t, entries[2].Repeat)

	var buf bytes.Buffer
	printBooks(&buf, entries)
	assert.Contains(t, buf.String(), "(see above)")
}

func TestBuildLinesReport(t *testing.T) {
	st, ids := testStore(t)
	s, err := session.New(view.Full(st), ids[0], session.WithAutoExtend(false))
	require.NoError(t, err)

	r := buildLinesReport(s)
	assert.Equal(t, 2, r.Total)
	assert.Equal(t, -1, r.Lock)
	require.Len(t, r.Branches, 2)
	assert.InDelta(t, 0.5, r.Branches[0].Share, 1e-9)

	var buf bytes.Buffer
	printLines(&buf, r)
	assert.Contains(t, buf.String(), "2 lines")
}

func TestDescribe(t *testing.T) {
	st, ids := testStore(t)
	e, _ := st.EdgeBetween(ids[0], ids[1])
	st.SetLastMove(ids[0], e.ID)
	st.SetEdgeComment(e.ID, "main line")

	info := describe(view.Full(st), ids[0])
	require.Len(t, info.Moves, 2)
	assert.True(t, info.Moves[0].LastMove)
	assert.Equal(t, "main line", info.Moves[0].Comment)
	assert.True(t, info.InRedOpening)
	assert.Nil(t, info.RedStats)

	var buf bytes.Buffer
	printPosition(&buf, info)
	assert.Contains(t, buf.String(), "* ")
}

func TestTruncState(t *testing.T) {
	assert.Equal(t, "short", truncState("short", 10))
	assert.Equal(t, "abc...", truncState("abcdef", 3))
	// Never splits a multi-byte rune.
	assert.Equal(t, "a...", truncState("a車b", 2))
}

func TestPlural(t *testing.T) {
	assert.Equal(t, "1 game", plural(1, "game"))
	assert.Equal(t, "1,200 games", plural(1200, "game"))
}

func TestAddMove_RecordsIntoGame(t *testing.T) {
	st, ids := testStore(t)
	e, _ := st.EdgeBetween(ids[0], ids[1])
	gid := st.AddGame(&store.Game{Name: "club", Start: ids[0], Edges: []store.EdgeID{e.ID}})

	s, err := session.New(view.ByGame(st, gid), ids[0], session.WithGame(gid))
	require.NoError(t, err)
	s.ToEnd()
	require.NoError(t, addMove(s, "cannon-chariot w"))

	added, ok := st.NodeForState("cannon-chariot w")
	require.True(t, ok)
	assert.Equal(t, added, s.Current())
	g, _ := st.Game(gid)
	assert.Len(t, g.Edges, 2)
	assert.Equal(t, added, g.LastNode(st))

	// Back at the start the game does not end here, so the new move stays out of
	// the game and out of its scope.
	s.ToStart()
	err = addMove(s, "elephant b")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "outside the scope")
	assert.Len(t, g.Edges, 2)

	// Revisiting a position on the path is refused before anything is written.
	s.ToEnd()
	err = addMove(s, "start w")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot add")
}
