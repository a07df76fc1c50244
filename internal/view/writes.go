package view

import "xqbook/navigator/internal/store"

// The methods below write to the store directly. They do not consult the view's
// predicates; callers decide whether a write belongs to their scope.

// GetOrCreateNode returns the node for state, creating it if needed.
func (v *View) GetOrCreateNode(state string) store.NodeID {
	return v.st.GetOrCreateNode(state)
}

// GetOrCreateEdge returns the edge from source to target, creating it if needed.
func (v *View) GetOrCreateEdge(source, target store.NodeID) (store.EdgeID, error) {
	return v.st.GetOrCreateEdge(source, target)
}

// RemoveEdge soft-deletes an edge.
func (v *View) RemoveEdge(id store.EdgeID) error { return v.st.RemoveEdge(id) }

// SetLastMove records the move last taken from a node.
func (v *View) SetLastMove(id store.NodeID, edge store.EdgeID) bool {
	return v.st.SetLastMove(id, edge)
}

// SetOpeningFlag sets a node's explicit opening override.
func (v *View) SetOpeningFlag(id store.NodeID, side store.Side, on bool) bool {
	return v.st.SetOpeningFlag(id, side, on)
}

// IncrementPractice bumps a node's practice counter.
func (v *View) IncrementPractice(id store.NodeID) int { return v.st.IncrementPractice(id) }

// AddGame stores a new game.
func (v *View) AddGame(g *store.Game) store.GameID { return v.st.AddGame(g) }

// UpdateGame replaces a stored game.
func (v *View) UpdateGame(g *store.Game) error { return v.st.UpdateGame(g) }

// AppendGameEdge extends a game by one move.
func (v *View) AppendGameEdge(id store.GameID, edge store.EdgeID) error {
	return v.st.AppendGameEdge(id, edge)
}

// AppendGameEdgeInScope extends a game from inside its own scope, fully recorded
// or not.
func (v *View) AppendGameEdgeInScope(id store.GameID, edge store.EdgeID) error {
	return v.st.AppendGameEdgeInScope(id, edge)
}

// DeleteGame removes a game.
func (v *View) DeleteGame(id store.GameID) error { return v.st.DeleteGame(id) }

// AddBook stores a new book.
func (v *View) AddBook(b *store.Book) store.BookID { return v.st.AddBook(b) }

// UpdateBook replaces a stored book.
func (v *View) UpdateBook(b *store.Book) error { return v.st.UpdateBook(b) }

// DeleteBook removes a book with its descendants and their games.
func (v *View) DeleteBook(id store.BookID) error { return v.st.DeleteBook(id) }

// RecordResult counts a game outcome at a node.
func (v *View) RecordResult(side store.Side, id store.NodeID, r store.Result) {
	v.st.RecordResult(side, id, r)
}

// SetBookmark names a path.
func (v *View) SetBookmark(path []store.NodeID, name string) { v.st.SetBookmark(path, name) }

// SetReview replaces a node's scheduling record.
func (v *View) SetReview(id store.NodeID, record []byte) { v.st.SetReview(id, record) }

// RemoveReview drops a node's scheduling record.
func (v *View) RemoveReview(id store.NodeID) { v.st.RemoveReview(id) }
