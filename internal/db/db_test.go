package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xqbook/navigator/internal/session"
	"xqbook/navigator/internal/store"
	"xqbook/navigator/internal/view"
)

// setupTestDB opens an in-memory database with the full schema.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s := store.New()
	t.Cleanup(s.Close)
	return s
}

// fixture builds a small book: a main line, a side line, a removed edge, a game
// filed under two cyclic books, stats, a bookmark and a review.
func fixture(t *testing.T) *store.Store {
	t.Helper()
	s := newTestStore(t)
	ids := make([]store.NodeID, 5)
	for i := range ids {
		side := "w"
		if i%2 == 1 {
			side = "b"
		}
		ids[i] = s.GetOrCreateNode(fmt.Sprintf("pos%d %s", i+1, side))
	}
	var line []store.EdgeID
	for i := 1; i < 4; i++ {
		e, err := s.GetOrCreateEdge(ids[i-1], ids[i])
		require.NoError(t, err)
		line = append(line, e)
	}
	side, err := s.GetOrCreateEdge(ids[0], ids[4])
	require.NoError(t, err)
	gone, err := s.GetOrCreateEdge(ids[4], ids[1])
	require.NoError(t, err)
	require.NoError(t, s.RemoveEdge(gone))

	s.SetLastMove(ids[0], side)
	s.SetScore(ids[1], -20)
	s.SetComment(ids[2], "main idea")
	s.SetEdgeComment(line[0], "best")
	s.SetEdgeDefect(side, "loses tempo")
	s.SetOpeningFlag(ids[1], store.Red, true)
	s.AddPathGroup(ids[3], "attack")
	s.IncrementPractice(ids[0])

	gid := s.AddGame(&store.Game{
		Name: "Game one", Start: ids[0], Edges: line,
		RedPlayer: "Hu", BlackPlayer: "Xu", RedIsUser: true,
		Date: "2024-01-02", Event: "League", Result: store.RedWin, FullyRecorded: true,
	})
	a := s.AddBook(&store.Book{Name: "A"})
	b := s.AddBook(&store.Book{Name: "B"})
	require.NoError(t, s.AddGameToBook(a, gid))
	require.NoError(t, s.AddChildBook(a, b))
	require.NoError(t, s.AddChildBook(b, a))
	require.NoError(t, s.RecordGame(gid, store.Red))

	s.SetBookmark([]store.NodeID{ids[0], ids[4]}, "side line")
	s.SetReview(ids[2], []byte{1, 2, 3})
	return s
}

func TestOpenDB_CreatesSchema(t *testing.T) {
	d := setupTestDB(t)
	n, err := d.CountNodes(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	v, err := d.StoredVersion(context.Background())
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	orig := fixture(t)

	wrote, err := d.SaveStore(ctx, orig)
	require.NoError(t, err)
	require.True(t, wrote)
	assert.False(t, orig.Dirty())

	got, err := d.LoadStore(ctx)
	require.NoError(t, err)
	t.Cleanup(got.Close)

	assert.Equal(t, orig.Snapshot(), got.Snapshot())
	assert.False(t, got.Dirty())

	// Outgoing-edge caches match a direct scan of the stored edge table.
	for _, id := range got.NodeIDs() {
		n, _ := got.Node(id)
		want, err := d.OutgoingEdgeIDs(ctx, id)
		require.NoError(t, err)
		assert.ElementsMatch(t, want, n.Moves(), "node %d", id)
	}

	e, ok := got.EdgeBetween(1, 5)
	require.True(t, ok)
	assert.Equal(t, "loses tempo", e.Defect)
	removed, _ := got.Edge(5)
	assert.True(t, removed.Removed())
}

func TestSaveLoad_ViewsWorkAfterLoad(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	orig := fixture(t)
	_, err := d.SaveStore(ctx, orig)
	require.NoError(t, err)

	got, err := d.LoadStore(ctx)
	require.NoError(t, err)
	t.Cleanup(got.Close)

	books := got.RootBooks()
	require.NotEmpty(t, books)
	v := view.ByBook(got, books[0].ID)
	assert.Equal(t, []store.NodeID{1, 2, 3, 4}, v.NodeIDs())
	assert.True(t, view.ByGameStats(got, store.Red).HasNode(4))
}

func TestSaveStore_SkipsWhenClean(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	s := fixture(t)
	_, err := d.SaveStore(ctx, s)
	require.NoError(t, err)

	wrote, err := d.SaveStore(ctx, s)
	require.NoError(t, err)
	assert.False(t, wrote)
}

func TestSave_RejectsStaleVersion(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)
	s := fixture(t)
	_, err := d.SaveStore(ctx, s)
	require.NoError(t, err)

	stale := s.Snapshot()
	err = d.Save(ctx, stale)
	assert.ErrorIs(t, err, ErrStaleVersion)

	s.GetOrCreateNode("later w")
	wrote, err := d.SaveStore(ctx, s)
	require.NoError(t, err)
	assert.True(t, wrote)

	v, err := d.StoredVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, s.Version(), v)
}

func TestSessions(t *testing.T) {
	ctx := context.Background()
	d := setupTestDB(t)

	_, err := d.LoadSession(ctx, "main")
	assert.ErrorIs(t, err, ErrNoSavedSession)

	snap := session.Snapshot{Root: 1, Path: []store.NodeID{1, 2, 3}, Cursor: 2, Lock: 0, Horizon: 2, Game: "g"}
	require.NoError(t, d.SaveSession(ctx, "main", snap))
	got, err := d.LoadSession(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, snap, got)

	snap.Cursor = 1
	require.NoError(t, d.SaveSession(ctx, "main", snap))
	got, err = d.LoadSession(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Cursor)

	require.NoError(t, d.DeleteSession(ctx, "main"))
	_, err = d.LoadSession(ctx, "main")
	assert.ErrorIs(t, err, ErrNoSavedSession)
}

func TestOpenDB_File(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "book.db")
	d, err := OpenDB(path)
	require.NoError(t, err)
	s := fixture(t)
	_, err = d.SaveStore(ctx, s)
	require.NoError(t, err)
	require.NoError(t, d.Close())

	d, err = OpenDB(path)
	require.NoError(t, err)
	defer d.Close()
	got, err := d.LoadStore(ctx)
	require.NoError(t, err)
	defer got.Close()
	assert.Equal(t, s.NodeCount(), got.NodeCount())
}

func TestBookmarkPathCodec(t *testing.T) {
	p := []store.NodeID{3, 14, 15}
	got, err := decodePath(encodePath(p))
	require.NoError(t, err)
	assert.Equal(t, p, got)

	_, err = decodePath("1,x")
	assert.Error(t, err)
}
