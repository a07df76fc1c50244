package importer

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"xqbook/navigator/internal/store"
)

// Summary counts what an import did.
type Summary struct {
	Added      int
	Duplicates int
	Games      []store.GameID
}

// Splice adds rec to the graph as a new game filed under book and records its
// result in the side's statistics. When a game with the identical state sequence
// already sits in the book or its descendants, that game's id is returned with
// false and nothing is written.
func Splice(st *store.Store, book store.BookID, rec Record, side store.Side) (store.GameID, bool, error) {
	if len(rec.States) == 0 {
		return "", false, fmt.Errorf("record at line %d: %w", rec.Line, ErrEmptyRecord)
	}
	for i := 1; i < len(rec.States); i++ {
		if rec.States[i] == rec.States[i-1] {
			return "", false, fmt.Errorf("record at line %d, move %d: %w", rec.Line, i, store.ErrSelfLoop)
		}
	}
	if _, ok := st.Book(book); !ok {
		return "", false, fmt.Errorf("splice into book %s: %w", book, store.ErrBookNotFound)
	}
	if dup, ok := findDuplicate(st, book, rec.States); ok {
		return dup, false, nil
	}

	var (
		gid store.GameID
		err error
	)
	st.Batch(func() {
		ids := make([]store.NodeID, len(rec.States))
		for i, state := range rec.States {
			ids[i] = st.GetOrCreateNode(state)
		}
		var edges []store.EdgeID
		for i := 1; i < len(ids); i++ {
			e, eerr := st.GetOrCreateEdge(ids[i-1], ids[i])
			if eerr != nil {
				err = fmt.Errorf("record at line %d, move %d: %w", rec.Line, i, eerr)
				return
			}
			edges = append(edges, e)
		}
		gid = st.AddGame(&store.Game{
			Name:          rec.Name,
			Start:         ids[0],
			Edges:         edges,
			RedPlayer:     rec.Red,
			BlackPlayer:   rec.Black,
			RedIsUser:     side == store.Red,
			BlackIsUser:   side == store.Black,
			Date:          rec.Date,
			Event:         rec.Event,
			Result:        rec.Result,
			FullyRecorded: rec.Complete,
		})
		if err = st.AddGameToBook(book, gid); err != nil {
			return
		}
		err = st.RecordGame(gid, side)
	})
	if err != nil {
		return "", false, err
	}
	return gid, true, nil
}

// findDuplicate looks for a game under book whose positions are exactly states.
func findDuplicate(st *store.Store, book store.BookID, states []string) (store.GameID, bool) {
	for _, gid := range st.DescendantGames(book) {
		g, ok := st.Game(gid)
		if !ok {
			continue
		}
		if slices.Equal(gameStates(st, g), states) {
			return gid, true
		}
	}
	return "", false
}

func gameStates(st *store.Store, g *store.Game) []string {
	var out []string
	if n, ok := st.Node(g.Start); ok {
		out = append(out, n.State)
	}
	for _, eid := range g.Edges {
		e, ok := st.Edge(eid)
		if !ok || e.Removed() {
			continue
		}
		if len(out) == 0 {
			if n, ok := st.Node(e.Source); ok {
				out = append(out, n.State)
			}
		}
		if n, ok := st.Node(e.To()); ok {
			out = append(out, n.State)
		}
	}
	return out
}

// Import parses r and splices every record into book.
func Import(st *store.Store, book store.BookID, r io.Reader, side store.Side, logger *slog.Logger) (Summary, error) {
	var sum Summary
	records, err := Parse(r)
	if err != nil {
		return sum, err
	}
	for _, rec := range records {
		gid, added, err := Splice(st, book, rec, side)
		if err != nil {
			return sum, err
		}
		if !added {
			sum.Duplicates++
			logger.Debug("duplicate game skipped", "line", rec.Line, "name", rec.Name, "existing", gid)
			continue
		}
		sum.Added++
		sum.Games = append(sum.Games, gid)
	}
	return sum, nil
}
