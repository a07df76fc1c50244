package cmd

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"xqbook/navigator/internal/graph"
)

var (
	analyzeJSON            bool
	analyzeFrom            string
	analyzeTopN            int
	analyzeBranchThreshold int
	analyzeFilters         []string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze book structure: topology, annotation gaps, bridges, coverage score",
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

		v, err := BuildView(st, analyzeFilters)
		if err != nil {
			return err
		}
		snap := graph.SnapshotFromView(v)
		if analyzeFrom != "" {
			root, err := ResolveNode(v, analyzeFrom)
			if err != nil {
				return err
			}
			snap = snap.FilterFrom(root)
		}

		report, err := graph.Analyze(ctx, snap, &graph.AnalyzerConfig{
			BranchThreshold: analyzeBranchThreshold,
			TopN:            analyzeTopN,
		})
		if err != nil {
			return fmt.Errorf("analyzing: %w", err)
		}

		if analyzeJSON {
			return writeJSON(cmd.OutOrStdout(), report)
		}
		printHumanReadable(cmd.OutOrStdout(), report, snap)
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Output as JSON")
	analyzeCmd.Flags().StringVar(&analyzeFrom, "from", "", "Scope analysis to positions reachable from this position")
	analyzeCmd.Flags().IntVar(&analyzeTopN, "top-n", 10, "Number of top items to show per section")
	analyzeCmd.Flags().IntVar(&analyzeBranchThreshold, "branch-threshold", 3, "Minimum replies to consider a position a branch point")
	analyzeCmd.Flags().StringArrayVar(&analyzeFilters, "filter", nil, "Scope filter (opening:red, stats:black, game:<id>, book:<id>, path:1,2)")
	rootCmd.AddCommand(analyzeCmd)
}

func printHumanReadable(w io.Writer, report *graph.AnalysisReport, snap *graph.Snapshot) {
	fmt.Fprintf(w, "\n  Book Coverage: %.0f%%  [%s]\n", report.CoverageScore*100, bar(report.CoverageScore, 20))
	fmt.Fprintf(w, "  breakdown: connectivity=%.2f components=%.2f evaluation=%.2f fragility=%.2f\n\n",
		report.CoverageBreakdown.Connectivity,
		report.CoverageBreakdown.Components,
		report.CoverageBreakdown.Evaluation,
		report.CoverageBreakdown.Fragility)

	// Topology
	t := report.Topology
	fmt.Fprintln(w, "  TOPOLOGY")
	fmt.Fprintln(w, "  ────────────────────────────────────────")
	fmt.Fprintf(w, "  Positions: %s  Moves: %s  Components: %d\n", count(t.TotalNodes), count(t.TotalEdges), t.NumComponents)
	fmt.Fprintf(w, "  Largest component: %s  Smallest: %s\n", count(t.LargestComponent), count(t.SmallestComponent))
	fmt.Fprintf(w, "  Start positions: %s  Line ends: %s\n", count(t.RootCount), count(t.LeafCount))

	if t.OrphanCount > 0 {
		fmt.Fprintf(w, "  Orphans: %s without moves\n", plural(t.OrphanCount, "position"))
		limit := min(len(t.OrphanIDs), 5)
		for _, id := range t.OrphanIDs[:limit] {
			state := "?"
			if node := snap.Nodes[id]; node != nil {
				state = truncState(node.State, 50)
			}
			fmt.Fprintf(w, "    - %d (%s)\n", id, state)
		}
		if t.OrphanCount > 5 {
			fmt.Fprintf(w, "    ... and %s more\n", count(t.OrphanCount-5))
		}
	}

	fmt.Fprintln(w, "\n  Replies per position:")
	for _, b := range t.BranchHistogram {
		if b.Count > 0 {
			barWidth := max(int(math.Log2(float64(b.Count)))+2, 1)
			fmt.Fprintf(w, "    %5s: %4d  %s\n", b.Label, b.Count, strings.Repeat("=", barWidth))
		}
	}

	if len(t.BranchPoints) > 0 {
		fmt.Fprintln(w, "\n  Branch points (replies > threshold):")
		for _, p := range t.BranchPoints {
			fmt.Fprintf(w, "    %d replies=%d  %s\n", p.ID, p.OutDegree, truncState(p.State, 40))
		}
	}
	if len(t.Transpositions) > 0 {
		fmt.Fprintln(w, "\n  Transpositions (reached by 2+ moves):")
		for _, p := range t.Transpositions {
			fmt.Fprintf(w, "    %d in=%d  %s\n", p.ID, p.InDegree, truncState(p.State, 40))
		}
	}

	// Annotation
	a := report.Annotation
	if a.UnscoredLeafCount > 0 || a.DefectCount > 0 {
		fmt.Fprintln(w, "\n  ANNOTATION")
		fmt.Fprintln(w, "  ────────────────────────────────────────")
		fmt.Fprintf(w, "  %s scored, %s never practised\n", plural(a.ScoredCount, "position"), count(a.UnpracticedCount))
		if a.UnscoredLeafCount > 0 {
			fmt.Fprintf(w, "  %s without a score:\n", plural(a.UnscoredLeafCount, "line end"))
			for _, l := range a.UnscoredLeaves[:min(len(a.UnscoredLeaves), 10)] {
				fmt.Fprintf(w, "    %d practised %dx  %s\n", l.ID, l.Practice, truncState(l.State, 40))
			}
		}
		if a.DefectCount > 0 {
			fmt.Fprintf(w, "  %s marked as defects:\n", plural(a.DefectCount, "move"))
			for _, m := range a.DefectMoves[:min(len(a.DefectMoves), 10)] {
				fmt.Fprintf(w, "    %d -> %d  %s\n", m.SourceID, m.TargetID, truncState(m.Defect, 40))
			}
		}
	}

	// Bridges
	br := report.Bridges
	if br.APCount > 0 || br.BridgeCount > 0 || len(br.FragileConnections) > 0 {
		fmt.Fprintln(w, "\n  STRUCTURAL FRAGILITY")
		fmt.Fprintln(w, "  ────────────────────────────────────────")
		if br.APCount > 0 {
			fmt.Fprintf(w, "  %s (removal disconnects the book):\n", plural(br.APCount, "articulation position"))
			for _, ap := range br.ArticulationPoints[:min(len(br.ArticulationPoints), 10)] {
				fmt.Fprintf(w, "    %d (degree ~%d)  %s\n", ap.ID, ap.ComponentsIfRemoved, truncState(ap.State, 40))
			}
		}
		if br.BridgeCount > 0 {
			fmt.Fprintf(w, "  %s (removal disconnects the book):\n", plural(br.BridgeCount, "bridge move"))
			for _, be := range br.BridgeEdges[:min(len(br.BridgeEdges), 10)] {
				fmt.Fprintf(w, "    %s -> %s\n", truncState(be.SourceState, 30), truncState(be.TargetState, 30))
			}
		}
		if len(br.FragileConnections) > 0 {
			fmt.Fprintf(w, "  %d fragile path-group connections (<=2 moves):\n", len(br.FragileConnections))
			for _, fc := range br.FragileConnections[:min(len(br.FragileConnections), 10)] {
				fmt.Fprintf(w, "    %s <-> %s (%s)\n", fc.RegionA, fc.RegionB, plural(fc.CrossEdges, "move"))
			}
		}
	}

	fmt.Fprintln(w)
}
