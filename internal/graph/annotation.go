package graph

import (
	"sort"

	"xqbook/navigator/internal/store"
)

// UnscoredLeaf is a line end with no evaluation.
type UnscoredLeaf struct {
	ID       store.NodeID `json:"id"`
	State    string       `json:"state"`
	Practice int          `json:"practice"`
}

// DefectMove is a move marked as a known mistake.
type DefectMove struct {
	ID          store.EdgeID `json:"id"`
	SourceID    store.NodeID `json:"source_id"`
	TargetID    store.NodeID `json:"target_id"`
	SourceState string       `json:"source_state"`
	Defect      string       `json:"defect"`
}

// AnnotationReport lists where the book still needs work.
type AnnotationReport struct {
	UnscoredLeaves    []UnscoredLeaf `json:"unscored_leaves"`
	DefectMoves       []DefectMove   `json:"defect_moves"`
	ScoredCount       int            `json:"scored_count"`
	UnscoredLeafCount int            `json:"unscored_leaf_count"`
	DefectCount       int            `json:"defect_count"`
	UnpracticedCount  int            `json:"unpracticed_count"`
}

// ComputeAnnotation finds line ends without a score and moves flagged as defects.
// Unscored leaves are ordered by practice count, most practised first.
func ComputeAnnotation(snap *Snapshot, topN int) *AnnotationReport {
	r := &AnnotationReport{}

	var leaves []UnscoredLeaf
	for _, id := range snap.NodeIDs() {
		node := snap.Nodes[id]
		if node.Scored {
			r.ScoredCount++
		}
		if node.Practice == 0 {
			r.UnpracticedCount++
		}
		if len(snap.OutAdj[id]) > 0 || len(snap.InAdj[id]) == 0 || node.Scored {
			continue
		}
		leaves = append(leaves, UnscoredLeaf{ID: id, State: node.State, Practice: node.Practice})
	}
	sort.SliceStable(leaves, func(i, j int) bool { return leaves[i].Practice > leaves[j].Practice })

	var defects []DefectMove
	for _, e := range snap.Edges {
		if e.Defect == "" {
			continue
		}
		defects = append(defects, DefectMove{
			ID:          e.ID,
			SourceID:    e.Source,
			TargetID:    e.Target,
			SourceState: snap.Nodes[e.Source].State,
			Defect:      e.Defect,
		})
	}
	sort.Slice(defects, func(i, j int) bool { return defects[i].ID < defects[j].ID })

	r.UnscoredLeafCount = len(leaves)
	r.DefectCount = len(defects)
	r.UnscoredLeaves = truncate(leaves, topN)
	r.DefectMoves = truncate(defects, topN)
	return r
}
