package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"xqbook/navigator/internal/importer"
	"xqbook/navigator/internal/store"
)

var (
	importBook   string
	importParent string
	importSide   string
	importJSON   bool
)

var importCmd = &cobra.Command{
	Use:   "import <file|->",
	Short: "Import recorded games into a book",
	Long: `Reads games in the text record format: optional "# key: value" headers
(name, red, black, date, event, result, complete), one board state per line,
records separated by "---". Games whose positions already appear in the book
are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		side, err := store.ParseSide(importSide)
		if err != nil {
			return err
		}

		var in io.Reader = cmd.InOrStdin()
		if args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		d, err := OpenDatabase(ctx, true)
		if err != nil {
			return err
		}
		defer d.Close()
		st, err := LoadStore(ctx, d)
		if err != nil {
			return err
		}
		defer st.Close()

		book, err := findOrCreateBook(st, importBook, importParent)
		if err != nil {
			return err
		}
		sum, err := importer.Import(st, book, in, side, cmdLogger(cmd))
		if err != nil {
			return fmt.Errorf("importing %s: %w", args[0], err)
		}
		if err := SaveStore(ctx, d, st); err != nil {
			return err
		}
		cmdLogger(cmd).Info("import finished", "book", book, "added", sum.Added, "duplicates", sum.Duplicates)

		if importJSON {
			return writeJSON(cmd.OutOrStdout(), struct {
				Book store.BookID `json:"book"`
				importer.Summary
			}{book, sum})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %s into %q (%s skipped), book now holds %s\n",
			plural(sum.Added, "game"), importBook, count(sum.Duplicates), plural(st.NodeCount(), "position"))
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importBook, "book", "Imported", "Book to file the games under, created when missing")
	importCmd.Flags().StringVar(&importParent, "parent", "", "Parent book for a newly created book")
	importCmd.Flags().StringVar(&importSide, "side", "red", "Side the user played: red or black")
	importCmd.Flags().BoolVar(&importJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(importCmd)
}

// findOrCreateBook returns the book with the given id or name, creating it under
// parent when none matches.
func findOrCreateBook(st *store.Store, name, parent string) (store.BookID, error) {
	if id, err := findBook(st, name); err == nil {
		return id, nil
	}
	var parentID store.BookID
	if parent != "" {
		p, err := findBook(st, parent)
		if err != nil {
			return "", err
		}
		parentID = p
	}
	id := st.AddBook(&store.Book{Name: name})
	if parentID != "" {
		if err := st.AddChildBook(parentID, id); err != nil {
			return "", err
		}
	}
	return id, nil
}

func findBook(st *store.Store, ref string) (store.BookID, error) {
	if b, ok := st.Book(store.BookID(ref)); ok {
		return b.ID, nil
	}
	for _, b := range st.Books() {
		if b.Name == ref {
			return b.ID, nil
		}
	}
	return "", fmt.Errorf("book %q: %w", ref, store.ErrBookNotFound)
}
