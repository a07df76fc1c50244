package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"xqbook/navigator/internal/store"
	"xqbook/navigator/internal/view"
)

var (
	showFilters []string
	showJSON    bool
)

var showCmd = &cobra.Command{
	Use:   "show <position>",
	Short: "Show a position with its moves, annotations and game statistics",
	Args:  cobra.ExactArgs(1),
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

		v, err := BuildView(st, showFilters)
		if err != nil {
			return err
		}
		id, err := ResolveNode(v, args[0])
		if err != nil {
			return err
		}
		info := describe(v, id)
		if showJSON {
			return writeJSON(cmd.OutOrStdout(), info)
		}
		printPosition(cmd.OutOrStdout(), info)
		return nil
	},
}

func init() {
	showCmd.Flags().StringArrayVar(&showFilters, "filter", nil, "Scope filter (opening:red, stats:black, game:<id>, book:<id>, path:1,2)")
	showCmd.Flags().BoolVar(&showJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(showCmd)
}

type moveInfo struct {
	Edge     store.EdgeID `json:"edge"`
	Target   store.NodeID `json:"target"`
	State    string       `json:"state"`
	Comment  string       `json:"comment,omitempty"`
	Defect   string       `json:"defect,omitempty"`
	LastMove bool         `json:"last_move,omitempty"`
}

type positionInfo struct {
	*store.Node
	InRedOpening   bool                `json:"in_red_opening"`
	InBlackOpening bool                `json:"in_black_opening"`
	RedStats       *store.ResultCounts `json:"red_stats,omitempty"`
	BlackStats     *store.ResultCounts `json:"black_stats,omitempty"`
	Reviewed       bool                `json:"reviewed"`
	Moves          []moveInfo          `json:"moves"`
}

func describe(v *view.View, id store.NodeID) positionInfo {
	n, _ := v.Node(id)
	info := positionInfo{
		Node:           n,
		InRedOpening:   n.InOpening(store.Red),
		InBlackOpening: n.InOpening(store.Black),
		Reviewed:       v.HasReview(id),
	}
	for _, side := range []store.Side{store.Red, store.Black} {
		c, ok := v.Stats(side, id)
		if !ok || !v.Store().HasStats(side, id) {
			continue
		}
		if side == store.Red {
			info.RedStats = &c
		} else {
			info.BlackStats = &c
		}
	}
	last, hasLast := v.LastMove(id)
	for _, e := range v.EdgesFrom(id) {
		m := moveInfo{Edge: e.ID, Target: e.To(), Comment: e.Comment, Defect: e.Defect}
		if t, ok := v.Node(e.To()); ok {
			m.State = t.State
		}
		m.LastMove = hasLast && last == e.To()
		info.Moves = append(info.Moves, m)
	}
	return info
}

func printPosition(w io.Writer, p positionInfo) {
	fmt.Fprintf(w, "\n  Position %d  (%s to move)\n", p.ID, p.Turn)
	fmt.Fprintf(w, "  %s\n", p.State)
	fmt.Fprintln(w, "  ────────────────────────────────────────")
	if p.Score != nil {
		fmt.Fprintf(w, "  Score: %+d\n", *p.Score)
	}
	if p.Comment != "" {
		fmt.Fprintf(w, "  Comment: %s\n", p.Comment)
	}
	var openings []string
	if p.InRedOpening {
		openings = append(openings, "red")
	}
	if p.InBlackOpening {
		openings = append(openings, "black")
	}
	fmt.Fprintf(w, "  Openings: %s\n", strings.Join(openings, ", "))
	if len(p.PathGroups) > 0 {
		fmt.Fprintf(w, "  Groups: %s\n", strings.Join(p.PathGroups, ", "))
	}
	if p.Practice > 0 {
		fmt.Fprintf(w, "  Practised: %s\n", plural(p.Practice, "time"))
	}
	if p.Reviewed {
		fmt.Fprintln(w, "  Review: scheduled")
	}
	if p.RedStats != nil {
		fmt.Fprintf(w, "  As red:   %s\n", formatCounts(*p.RedStats))
	}
	if p.BlackStats != nil {
		fmt.Fprintf(w, "  As black: %s\n", formatCounts(*p.BlackStats))
	}

	if len(p.Moves) == 0 {
		fmt.Fprintln(w, "\n  No moves in scope.")
		fmt.Fprintln(w)
		return
	}
	fmt.Fprintf(w, "\n  %s:\n", plural(len(p.Moves), "move"))
	for _, m := range p.Moves {
		marker := " "
		if m.LastMove {
			marker = "*"
		}
		fmt.Fprintf(w, "   %s %6d  %s\n", marker, m.Target, truncState(m.State, 50))
		if m.Comment != "" {
			fmt.Fprintf(w, "             %s\n", m.Comment)
		}
		if m.Defect != "" {
			fmt.Fprintf(w, "             defect: %s\n", m.Defect)
		}
	}
	fmt.Fprintln(w)
}
