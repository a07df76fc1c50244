package cmd

import (
	"errors"
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/spf13/cobra"

	"xqbook/navigator/internal/db"
	"xqbook/navigator/internal/session"
	"xqbook/navigator/internal/store"
)

var (
	linesFilters []string
	linesPlay    []string
	linesAdd     []string
	linesLock    int
	linesHorizon int
	linesRandom  bool
	linesSeed    uint64
	linesGame    string
	linesSave    string
	linesResume  string
	linesJSON    bool
)

var linesCmd = &cobra.Command{
	Use:   "lines <position>",
	Short: "Walk the book from a position: count lines, lock a prefix, pick a random line",
	Long: `Starts a navigation session at the given position and auto-extends it along
remembered moves. --play walks further, --add records a new move to a state
(appended to --game when the session is at that game's end), --lock freezes the path up to a step and
restricts the scope to what is reachable from it, --horizon bounds that scope in
moves, and --random replaces the unlocked tail with a line drawn in proportion to
the square root of its line count.`,
	Args: cobra.ExactArgs(1),
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

		v, err := BuildView(st, linesFilters)
		if err != nil {
			return err
		}
		root, err := ResolveNode(v, args[0])
		if err != nil {
			return err
		}

		opts := []session.Option{
			session.WithAutoExtend(cfg.Session.AutoExtend),
			session.WithLogger(cmdLogger(cmd)),
		}
		seed := linesSeed
		if seed == 0 {
			seed = cfg.Session.RandomSeed
		}
		if seed != 0 {
			opts = append(opts, session.WithRand(rand.New(rand.NewPCG(seed, seed))))
		}
		if linesGame != "" {
			opts = append(opts, session.WithGame(store.GameID(linesGame)))
		}
		s, err := session.New(v, root, opts...)
		if err != nil {
			return err
		}

		if linesResume != "" {
			snap, err := d.LoadSession(ctx, linesResume)
			switch {
			case errors.Is(err, db.ErrNoSavedSession):
				cmdLogger(cmd).Info("no saved session, starting fresh", "name", linesResume)
			case err != nil:
				return err
			case !s.Apply(snap):
				return fmt.Errorf("session %q does not start at position %d", linesResume, root)
			}
		}

		for _, ref := range linesPlay {
			if err := playRef(s, ref); err != nil {
				return err
			}
		}
		for _, state := range linesAdd {
			if err := addMove(s, state); err != nil {
				return err
			}
		}

		horizon := linesHorizon
		if !cmd.Flags().Changed("horizon") {
			horizon = cfg.Session.Horizon
		}
		if linesLock >= 0 {
			if !s.Lock(linesLock) {
				return fmt.Errorf("cannot lock step %d of a %d-step path", linesLock, len(s.Path()))
			}
			if horizon >= 0 && !s.SetHorizon(horizon) {
				return fmt.Errorf("cannot set horizon %d", horizon)
			}
		} else if cmd.Flags().Changed("horizon") {
			return fmt.Errorf("--horizon needs --lock")
		}

		if linesRandom && !s.RandomLine() {
			cmdLogger(cmd).Info("no line to pick below the lock point")
		}

		if linesSave != "" {
			if err := d.SaveSession(ctx, linesSave, s.State()); err != nil {
				return err
			}
		}
		// Played moves update last-move memory; added moves write nodes, edges and games.
		if err := SaveStore(ctx, d, st); err != nil {
			return err
		}

		report := buildLinesReport(s)
		if linesJSON {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		printLines(cmd.OutOrStdout(), report)
		return nil
	},
}

func init() {
	linesCmd.Flags().StringArrayVar(&linesFilters, "filter", nil, "Scope filter (opening:red, stats:black, game:<id>, book:<id>, path:1,2)")
	linesCmd.Flags().StringArrayVar(&linesPlay, "play", nil, "Play a move to this position from the cursor (repeatable)")
	linesCmd.Flags().IntVar(&linesLock, "lock", -1, "Lock the path up to this step")
	linesCmd.Flags().IntVar(&linesHorizon, "horizon", -1, "Limit the locked scope to this many moves")
	linesCmd.Flags().BoolVar(&linesRandom, "random", false, "Pick a random line below the lock point")
	linesCmd.Flags().Uint64Var(&linesSeed, "seed", 0, "Random seed (0 uses the config, then a random seed)")
	linesCmd.Flags().StringArrayVar(&linesAdd, "add", nil, "Record a move from the cursor to this state, creating it when new (repeatable)")
	linesCmd.Flags().StringVar(&linesGame, "game", "", "Record moves added with --add into this game")
	linesCmd.Flags().StringVar(&linesSave, "save", "", "Save the session under this name")
	linesCmd.Flags().StringVar(&linesResume, "resume", "", "Resume the session saved under this name")
	linesCmd.Flags().BoolVar(&linesJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(linesCmd)
}

func playRef(s *session.Session, ref string) error {
	v := s.View()
	id, err := ResolveNode(v, ref)
	if err != nil {
		return err
	}
	if !s.Play(id) {
		return fmt.Errorf("no move from %d to %d in scope", s.Current(), id)
	}
	return nil
}

func addMove(s *session.Session, state string) error {
	from := s.Current()
	id, ok := s.AddMove(state)
	switch {
	case ok:
		return nil
	case id == 0:
		return fmt.Errorf("cannot add a move from %d to %q here", from, state)
	default:
		return fmt.Errorf("move from %d to %d was stored but is outside the scope", from, id)
	}
}

type lineStep struct {
	ID    store.NodeID `json:"id"`
	State string       `json:"state"`
	Lines int          `json:"lines"`
}

type branch struct {
	ID    store.NodeID `json:"id"`
	State string       `json:"state"`
	Lines int          `json:"lines"`
	Share float64      `json:"share"`
}

type linesReport struct {
	Path     []lineStep `json:"path"`
	Cursor   int        `json:"cursor"`
	Lock     int        `json:"lock"`
	Horizon  int        `json:"horizon"`
	Total    int        `json:"total_lines"`
	Branches []branch   `json:"branches"`
}

func buildLinesReport(s *session.Session) linesReport {
	v := s.View()
	e := s.Enumeration()
	r := linesReport{Cursor: s.Cursor(), Total: e.Root()}
	r.Lock, _ = s.Locked()
	r.Horizon, _ = s.Horizon()
	for _, id := range s.Path() {
		step := lineStep{ID: id, Lines: e.Count(id)}
		if n, ok := v.Node(id); ok {
			step.State = n.State
		}
		r.Path = append(r.Path, step)
	}
	for _, edge := range v.EdgesFrom(s.Current()) {
		b := branch{ID: edge.To(), Lines: e.Count(edge.To()), Share: e.Share(edge.To())}
		if n, ok := v.Node(edge.To()); ok {
			b.State = n.State
		}
		r.Branches = append(r.Branches, b)
	}
	return r
}

func printLines(w io.Writer, r linesReport) {
	fmt.Fprintf(w, "\n  %s below the start point", plural(r.Total, "line"))
	if r.Lock >= 0 {
		fmt.Fprintf(w, " (locked at step %d", r.Lock)
		if r.Horizon >= 0 {
			fmt.Fprintf(w, ", horizon %d", r.Horizon)
		}
		fmt.Fprint(w, ")")
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  ────────────────────────────────────────")
	for i, step := range r.Path {
		marker := "  "
		switch {
		case i == r.Cursor:
			marker = "> "
		case i <= r.Lock:
			marker = "# "
		}
		fmt.Fprintf(w, "  %s%3d %6d  %-50s %s\n", marker, i, step.ID, truncState(step.State, 50), linesLabel(step.Lines))
	}
	if len(r.Branches) > 0 {
		fmt.Fprintln(w, "\n  Moves from the cursor:")
		for _, b := range r.Branches {
			fmt.Fprintf(w, "    %6d  [%s] %5.1f%%  %s\n", b.ID, bar(b.Share, 10), b.Share*100, truncState(b.State, 40))
		}
	}
	fmt.Fprintln(w)
}

func linesLabel(n int) string {
	if n == 0 {
		return ""
	}
	return plural(n, "line")
}
