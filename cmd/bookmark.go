package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"xqbook/navigator/internal/store"
	"xqbook/navigator/internal/view"
)

var (
	bookmarkName    string
	bookmarkFilters []string
	bookmarkJSON    bool
)

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark",
	Short: "List, add or remove named paths",
}

var bookmarkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List bookmarks whose whole path is in scope",
	Args:  cobra.NoArgs,
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
		v, err := BuildView(st, bookmarkFilters)
		if err != nil {
			return err
		}

		marks := v.Bookmarks()
		if bookmarkJSON {
			return writeJSON(cmd.OutOrStdout(), marks)
		}
		w := cmd.OutOrStdout()
		if len(marks) == 0 {
			fmt.Fprintln(w, "No bookmarks in scope.")
			return nil
		}
		for _, b := range marks {
			fmt.Fprintf(w, "  %-24s %s\n", b.Name, formatPath(b.Path))
		}
		return nil
	},
}

var bookmarkAddCmd = &cobra.Command{
	Use:   "add <position>...",
	Short: "Name the path through the given positions",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editBookmark(cmd, args, func(v *view.View, path []store.NodeID) error {
			v.SetBookmark(path, bookmarkName)
			fmt.Fprintf(cmd.OutOrStdout(), "Bookmarked %s as %q\n", formatPath(path), bookmarkName)
			return nil
		})
	},
}

var bookmarkRemoveCmd = &cobra.Command{
	Use:   "rm <position>...",
	Short: "Remove the bookmark for exactly this path",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return editBookmark(cmd, args, func(v *view.View, path []store.NodeID) error {
			if !v.Store().RemoveBookmark(path) {
				return fmt.Errorf("no bookmark for %s", formatPath(path))
			}
			return nil
		})
	},
}

func init() {
	bookmarkCmd.PersistentFlags().StringArrayVar(&bookmarkFilters, "filter", nil, "Scope filter (opening:red, stats:black, game:<id>, book:<id>, path:1,2)")
	bookmarkListCmd.Flags().BoolVar(&bookmarkJSON, "json", false, "Output as JSON")
	bookmarkAddCmd.Flags().StringVar(&bookmarkName, "name", "", "Bookmark name")
	bookmarkAddCmd.MarkFlagRequired("name")
	bookmarkCmd.AddCommand(bookmarkListCmd, bookmarkAddCmd, bookmarkRemoveCmd)
	rootCmd.AddCommand(bookmarkCmd)
}

// editBookmark resolves args to a path of consecutive moves, runs fn and saves.
func editBookmark(cmd *cobra.Command, args []string, fn func(*view.View, []store.NodeID) error) error {
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
	v, err := BuildView(st, bookmarkFilters)
	if err != nil {
		return err
	}

	path := make([]store.NodeID, 0, len(args))
	for _, ref := range args {
		id, err := ResolveNode(v, ref)
		if err != nil {
			return err
		}
		path = append(path, id)
	}
	if !v.PathVisible(path) {
		return fmt.Errorf("%s is not a line of moves in scope", formatPath(path))
	}
	if err := fn(v, path); err != nil {
		return err
	}
	return SaveStore(ctx, d, st)
}
