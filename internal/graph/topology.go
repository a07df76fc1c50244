package graph

import (
	"slices"
	"sort"

	"xqbook/navigator/internal/store"
)

// PositionDegree is a position with its move counts.
type PositionDegree struct {
	ID        store.NodeID `json:"id"`
	State     string       `json:"state"`
	InDegree  int          `json:"in_degree"`
	OutDegree int          `json:"out_degree"`
}

// DegreeBucket is one bucket in the branching histogram.
type DegreeBucket struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// TopologyReport contains topology analysis results.
type TopologyReport struct {
	TotalNodes        int              `json:"total_nodes"`
	TotalEdges        int              `json:"total_edges"`
	NumComponents     int              `json:"num_components"`
	LargestComponent  int              `json:"largest_component"`
	SmallestComponent int              `json:"smallest_component"`
	RootCount         int              `json:"root_count"`
	RootIDs           []store.NodeID   `json:"root_ids"`
	LeafCount         int              `json:"leaf_count"`
	LeafIDs           []store.NodeID   `json:"leaf_ids"`
	OrphanCount       int              `json:"orphan_count"`
	OrphanIDs         []store.NodeID   `json:"orphan_ids"`
	BranchHistogram   []DegreeBucket   `json:"branch_histogram"`
	BranchPoints      []PositionDegree `json:"branch_points"`
	Transpositions    []PositionDegree `json:"transpositions"`
}

// ComputeTopology analyzes the move graph: components, start positions, line ends,
// orphans, the out-degree distribution, branch points with more than
// branchThreshold replies and transpositions reached by two or more moves.
func ComputeTopology(snap *Snapshot, branchThreshold, topN int) *TopologyReport {
	totalNodes := len(snap.Nodes)
	totalEdges := len(snap.Edges)

	if totalNodes == 0 {
		return &TopologyReport{BranchHistogram: defaultHistogram()}
	}

	nodeIDs := snap.NodeIDs()
	uf := NewUnionFind(nodeIDs)
	for _, e := range snap.Edges {
		uf.Union(e.Source, e.Target)
	}

	components := uf.Components()
	largest, smallest := 0, totalNodes
	for _, c := range components {
		largest = max(largest, len(c))
		smallest = min(smallest, len(c))
	}

	var roots, leaves, orphans []store.NodeID
	buckets := [7]int{}
	var branches, transpositions []PositionDegree
	for _, id := range nodeIDs {
		in, out := len(snap.InAdj[id]), len(snap.OutAdj[id])
		switch {
		case in == 0 && out == 0:
			orphans = append(orphans, id)
		case in == 0:
			roots = append(roots, id)
		case out == 0:
			leaves = append(leaves, id)
		}
		buckets[degreeBucket(out)]++

		d := PositionDegree{ID: id, State: snap.Nodes[id].State, InDegree: in, OutDegree: out}
		if out > branchThreshold {
			branches = append(branches, d)
		}
		if in >= 2 {
			transpositions = append(transpositions, d)
		}
	}

	histogram := defaultHistogram()
	for i := range histogram {
		histogram[i].Count = buckets[i]
	}
	sort.SliceStable(branches, func(i, j int) bool { return branches[i].OutDegree > branches[j].OutDegree })
	sort.SliceStable(transpositions, func(i, j int) bool { return transpositions[i].InDegree > transpositions[j].InDegree })

	return &TopologyReport{
		TotalNodes:        totalNodes,
		TotalEdges:        totalEdges,
		NumComponents:     len(components),
		LargestComponent:  largest,
		SmallestComponent: smallest,
		RootCount:         len(roots),
		RootIDs:           truncate(roots, topN),
		LeafCount:         len(leaves),
		LeafIDs:           truncate(leaves, topN),
		OrphanCount:       len(orphans),
		OrphanIDs:         truncate(orphans, topN),
		BranchHistogram:   histogram,
		BranchPoints:      truncate(branches, topN),
		Transpositions:    truncate(transpositions, topN),
	}
}

func truncate[T any](s []T, n int) []T {
	if len(s) > n {
		return slices.Clip(s[:n])
	}
	return s
}

func defaultHistogram() []DegreeBucket {
	return []DegreeBucket{
		{Label: "0"}, {Label: "1"}, {Label: "2-3"},
		{Label: "4-7"}, {Label: "8-15"}, {Label: "16-31"}, {Label: "32+"},
	}
}

func degreeBucket(degree int) int {
	switch {
	case degree == 0:
		return 0
	case degree == 1:
		return 1
	case degree <= 3:
		return 2
	case degree <= 7:
		return 3
	case degree <= 15:
		return 4
	case degree <= 31:
		return 5
	default:
		return 6
	}
}
