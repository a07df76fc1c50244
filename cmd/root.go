package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"xqbook/navigator/internal/config"
	"xqbook/navigator/internal/ctxlog"
	"xqbook/navigator/internal/db"
	"xqbook/navigator/internal/store"
	"xqbook/navigator/internal/view"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "xqbook",
	Short:         "Browse and study an opening book of positions",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		level, err := ctxlog.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		logger := ctxlog.New(os.Stderr, level, cfg.Log.Format)
		cmd.SetContext(ctxlog.WithLogger(cmd.Context(), logger))
		return nil
	},
}

func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to .xqbook.db database")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to navigator.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// OpenDatabase discovers and opens the database. With create set, a missing
// database is created at the configured location instead.
func OpenDatabase(ctx context.Context, create bool) (*db.DB, error) {
	path, err := config.DiscoverDB(dbPath, cfg)
	if errors.Is(err, config.ErrNoDatabase) && create {
		path = config.CreatePath(dbPath, cfg)
		ctxlog.FromContext(ctx).Info("creating database", "path", path)
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return db.OpenDB(path)
}

// LoadStore reads the whole book into memory.
func LoadStore(ctx context.Context, d *db.DB) (*store.Store, error) {
	logger := ctxlog.FromContext(ctx)
	st, err := d.LoadStore(ctx, store.WithLogger(logger), store.WithTurnFunc(cfg.TurnFunc()))
	if err != nil {
		return nil, fmt.Errorf("loading book: %w", err)
	}
	logger.Debug("book loaded", "path", d.Path, "nodes", st.NodeCount(), "edges", st.EdgeCount())
	return st, nil
}

// SaveStore writes st back when it changed.
func SaveStore(ctx context.Context, d *db.DB, st *store.Store) error {
	wrote, err := d.SaveStore(ctx, st)
	if err != nil {
		return fmt.Errorf("saving book: %w", err)
	}
	if wrote {
		ctxlog.FromContext(ctx).Debug("book saved", "path", d.Path, "version", st.Version())
	}
	return nil
}

// BuildView combines the --filter flags into one view.
func BuildView(st *store.Store, filters []string) (*view.View, error) {
	parsed := make([]view.Filter, 0, len(filters))
	for _, f := range filters {
		pf, err := view.ParseFilter(f)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, pf)
	}
	return view.Combine(st, parsed...), nil
}

// ResolveNode finds a visible position by numeric id, exact state, or state substring.
func ResolveNode(v *view.View, reference string) (store.NodeID, error) {
	// 1. Numeric id
	if n, err := strconv.Atoi(reference); err == nil && n > 0 {
		if v.HasNode(store.NodeID(n)) {
			return store.NodeID(n), nil
		}
		return 0, fmt.Errorf("position %d not found in scope", n)
	}

	// 2. Exact state
	if id, ok := v.NodeForState(reference); ok {
		return id, nil
	}

	// 3. Substring search
	var matches []store.NodeID
	for _, id := range v.NodeIDs() {
		if n, ok := v.Node(id); ok && strings.Contains(n.State, reference) {
			matches = append(matches, id)
		}
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return 0, fmt.Errorf("position not found: %s", reference)
	}
	limit := min(len(matches), 10)
	lines := make([]string, limit)
	for i, id := range matches[:limit] {
		n, _ := v.Node(id)
		lines[i] = fmt.Sprintf("  %6d %s", id, truncState(n.State, 60))
	}
	return 0, fmt.Errorf("ambiguous reference '%s'. %d matches:\n%s\nUse a position id instead.",
		reference, len(matches), strings.Join(lines, "\n"))
}

func cmdLogger(cmd *cobra.Command) *slog.Logger { return ctxlog.FromContext(cmd.Context()) }
