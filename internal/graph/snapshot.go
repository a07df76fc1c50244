// Package graph computes structural reports over an immutable copy of the
// positions and moves visible through a view.
package graph

import (
	"slices"

	"xqbook/navigator/internal/store"
	"xqbook/navigator/internal/view"
)

// ungrouped is the region of positions without a path group.
const ungrouped = "ungrouped"

// NodeInfo is a lightweight node representation decoupled from the store.
type NodeInfo struct {
	ID       store.NodeID
	State    string
	Turn     store.Side
	Scored   bool
	Comment  string
	Practice int
	Group    string // first path group, "" when none
}

// EdgeInfo is a lightweight move representation.
type EdgeInfo struct {
	ID     store.EdgeID
	Source store.NodeID
	Target store.NodeID
	Defect string
}

// Snapshot holds a graph with precomputed adjacency lists and region map.
type Snapshot struct {
	Nodes   map[store.NodeID]*NodeInfo
	Edges   []EdgeInfo
	Adj     map[store.NodeID][]store.NodeID // undirected
	OutAdj  map[store.NodeID][]store.NodeID // directed: source -> targets
	InAdj   map[store.NodeID][]store.NodeID // directed: target -> sources
	Regions map[store.NodeID]string         // node -> path group
}

// NewSnapshot builds a Snapshot from raw nodes and edges. Edges with an endpoint
// outside nodes are dropped.
func NewSnapshot(nodes []*NodeInfo, edges []EdgeInfo) *Snapshot {
	nodeMap := make(map[store.NodeID]*NodeInfo, len(nodes))
	adj := make(map[store.NodeID][]store.NodeID)
	outAdj := make(map[store.NodeID][]store.NodeID)
	inAdj := make(map[store.NodeID][]store.NodeID)
	regions := make(map[store.NodeID]string, len(nodes))

	for _, n := range nodes {
		nodeMap[n.ID] = n
		adj[n.ID] = nil // ensure entry exists
		outAdj[n.ID] = nil
		inAdj[n.ID] = nil
		regions[n.ID] = n.Group
		if n.Group == "" {
			regions[n.ID] = ungrouped
		}
	}

	kept := make([]EdgeInfo, 0, len(edges))
	for _, e := range edges {
		if _, ok := nodeMap[e.Source]; !ok {
			continue
		}
		if _, ok := nodeMap[e.Target]; !ok {
			continue
		}
		kept = append(kept, e)
		adj[e.Source] = append(adj[e.Source], e.Target)
		adj[e.Target] = append(adj[e.Target], e.Source)
		outAdj[e.Source] = append(outAdj[e.Source], e.Target)
		inAdj[e.Target] = append(inAdj[e.Target], e.Source)
	}

	return &Snapshot{
		Nodes:   nodeMap,
		Edges:   kept,
		Adj:     adj,
		OutAdj:  outAdj,
		InAdj:   inAdj,
		Regions: regions,
	}
}

// SnapshotFromView copies the positions and moves visible through v.
func SnapshotFromView(v *view.View) *Snapshot {
	ids := v.NodeIDs()
	nodes := make([]*NodeInfo, 0, len(ids))
	var edges []EdgeInfo
	for _, id := range ids {
		n, ok := v.Node(id)
		if !ok {
			continue
		}
		info := &NodeInfo{
			ID:       n.ID,
			State:    n.State,
			Turn:     n.Turn,
			Scored:   n.Score != nil,
			Comment:  n.Comment,
			Practice: n.Practice,
		}
		if len(n.PathGroups) > 0 {
			info.Group = n.PathGroups[0]
		}
		nodes = append(nodes, info)
		for _, e := range v.EdgesFrom(id) {
			edges = append(edges, EdgeInfo{ID: e.ID, Source: e.Source, Target: e.To(), Defect: e.Defect})
		}
	}
	return NewSnapshot(nodes, edges)
}

// FilterFrom returns a new snapshot containing only positions reachable from root
// by following moves forward.
func (s *Snapshot) FilterFrom(root store.NodeID) *Snapshot {
	if _, ok := s.Nodes[root]; !ok {
		return NewSnapshot(nil, nil)
	}
	included := map[store.NodeID]bool{root: true}
	queue := []store.NodeID{root}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range s.OutAdj[cur] {
			if !included[next] {
				included[next] = true
				queue = append(queue, next)
			}
		}
	}

	var filteredNodes []*NodeInfo
	for id := range included {
		filteredNodes = append(filteredNodes, s.Nodes[id])
	}
	var filteredEdges []EdgeInfo
	for _, e := range s.Edges {
		if included[e.Source] && included[e.Target] {
			filteredEdges = append(filteredEdges, e)
		}
	}
	return NewSnapshot(filteredNodes, filteredEdges)
}

// NodeIDs returns a sorted list of all node IDs (for deterministic output).
func (s *Snapshot) NodeIDs() []store.NodeID {
	ids := make([]store.NodeID, 0, len(s.Nodes))
	for id := range s.Nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
