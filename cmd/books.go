package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"xqbook/navigator/internal/store"
)

var booksJSON bool

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "List books as a tree with their game counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		d, err := OpenDatabase(ctx, false)
		if err != nil {
			return err
		}
		defer d.Close()
		st, err := LoadStore(ctx, d)
		if err != nil {
			return err
		}
		defer st.Close()

		roots := st.RootBooks()
		var entries []bookEntry
		seen := make(map[store.BookID]bool)
		for _, b := range roots {
			entries = collectBooks(st, b, 0, seen, entries)
		}

		if booksJSON {
			return writeJSON(cmd.OutOrStdout(), entries)
		}
		printBooks(cmd.OutOrStdout(), entries)
		return nil
	},
}

func init() {
	booksCmd.Flags().BoolVar(&booksJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(booksCmd)
}

type bookEntry struct {
	ID         store.BookID `json:"id"`
	Name       string       `json:"name"`
	Depth      int          `json:"depth"`
	Games      int          `json:"games"`
	TotalGames int          `json:"total_games"`
	Repeat     bool         `json:"repeat,omitempty"`
}

func collectBooks(st *store.Store, b *store.Book, depth int, seen map[store.BookID]bool, out []bookEntry) []bookEntry {
	e := bookEntry{
		ID:         b.ID,
		Name:       b.Name,
		Depth:      depth,
		Games:      len(b.Games),
		TotalGames: len(st.DescendantGames(b.ID)),
		Repeat:     seen[b.ID],
	}
	out = append(out, e)
	if e.Repeat {
		return out
	}
	seen[b.ID] = true
	for _, child := range b.Children {
		if c, ok := st.Book(child); ok {
			out = collectBooks(st, c, depth+1, seen, out)
		}
	}
	return out
}

func printBooks(w io.Writer, entries []bookEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No books.")
		return
	}
	for _, e := range entries {
		indent := strings.Repeat("  ", e.Depth)
		suffix := ""
		if e.Repeat {
			suffix = "  (see above)"
		}
		fmt.Fprintf(w, "  %s%s  %s, %s in total  [%s]%s\n",
			indent, e.Name, plural(e.Games, "game"), count(e.TotalGames), e.ID, suffix)
	}
}
