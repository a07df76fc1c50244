package graph

import (
	"sort"

	"xqbook/navigator/internal/store"
)

// ArticulationPoint is a position whose removal disconnects the graph.
type ArticulationPoint struct {
	ID                  store.NodeID `json:"id"`
	State               string       `json:"state"`
	ComponentsIfRemoved int          `json:"components_if_removed"`
}

// BridgeEdge is a move whose removal disconnects the graph.
type BridgeEdge struct {
	SourceID    store.NodeID `json:"source_id"`
	TargetID    store.NodeID `json:"target_id"`
	SourceState string       `json:"source_state"`
	TargetState string       `json:"target_state"`
}

// FragileConnection is a pair of path groups joined by very few moves.
type FragileConnection struct {
	RegionA    string `json:"region_a"`
	RegionB    string `json:"region_b"`
	CrossEdges int    `json:"cross_edges"`
}

// BridgeReport contains bridge analysis results.
type BridgeReport struct {
	ArticulationPoints []ArticulationPoint `json:"articulation_points"`
	BridgeEdges        []BridgeEdge        `json:"bridge_edges"`
	FragileConnections []FragileConnection `json:"fragile_connections"`
	APCount            int                 `json:"ap_count"`
	BridgeCount        int                 `json:"bridge_count"`
}

// ComputeBridges finds articulation positions, bridge moves and fragile
// connections between path groups, treating moves as undirected.
func ComputeBridges(snap *Snapshot) *BridgeReport {
	if len(snap.Nodes) == 0 {
		return &BridgeReport{}
	}

	nodeIDs := snap.NodeIDs()
	idToIdx := make(map[store.NodeID]int, len(nodeIDs))
	for i, id := range nodeIDs {
		idToIdx[id] = i
	}
	n := len(nodeIDs)

	// A move and its reverse collapse to one undirected edge.
	adjIdx := make([][]int, n)
	type edgePair struct{ u, v int }
	seen := make(map[edgePair]bool)
	for _, e := range snap.Edges {
		u, okU := idToIdx[e.Source]
		v, okV := idToIdx[e.Target]
		if !okU || !okV || u == v {
			continue
		}
		key := edgePair{min(u, v), max(u, v)}
		if !seen[key] {
			seen[key] = true
			adjIdx[u] = append(adjIdx[u], v)
			adjIdx[v] = append(adjIdx[v], u)
		}
	}

	disc := make([]int, n)
	low := make([]int, n)
	visited := make([]bool, n)
	isAP := make([]bool, n)
	var bridgePairs [][2]int
	counter := 1

	const noParent = -1

	// Iterative Tarjan for each connected component
	type frame struct {
		node, parent, ni int
	}

	for start := 0; start < n; start++ {
		if visited[start] {
			continue
		}
		visited[start] = true
		disc[start] = counter
		low[start] = counter
		counter++

		stack := []frame{{start, noParent, 0}}
		rootChildren := 0

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			node := top.node

			if top.ni < len(adjIdx[node]) {
				child := adjIdx[node][top.ni]
				top.ni++
				if child == top.parent {
					continue
				}
				if visited[child] {
					low[node] = min(low[node], disc[child])
					continue
				}
				visited[child] = true
				disc[child] = counter
				low[child] = counter
				counter++
				if node == start {
					rootChildren++
				}
				stack = append(stack, frame{child, node, 0})
				continue
			}

			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				continue
			}
			pn := stack[len(stack)-1].node
			low[pn] = min(low[pn], low[node])
			if low[node] > disc[pn] {
				bridgePairs = append(bridgePairs, [2]int{pn, node})
			}
			if pn != start && low[node] >= disc[pn] {
				isAP[pn] = true
			}
		}

		if rootChildren >= 2 {
			isAP[start] = true
		}
	}

	var aps []ArticulationPoint
	for i := 0; i < n; i++ {
		if isAP[i] {
			id := nodeIDs[i]
			aps = append(aps, ArticulationPoint{
				ID:                  id,
				State:               snap.Nodes[id].State,
				ComponentsIfRemoved: len(adjIdx[i]),
			})
		}
	}

	var bridges []BridgeEdge
	for _, pair := range bridgePairs {
		uid, vid := nodeIDs[pair[0]], nodeIDs[pair[1]]
		bridges = append(bridges, BridgeEdge{
			SourceID:    uid,
			TargetID:    vid,
			SourceState: snap.Nodes[uid].State,
			TargetState: snap.Nodes[vid].State,
		})
	}
	sort.Slice(bridges, func(i, j int) bool {
		if bridges[i].SourceID != bridges[j].SourceID {
			return bridges[i].SourceID < bridges[j].SourceID
		}
		return bridges[i].TargetID < bridges[j].TargetID
	})

	return &BridgeReport{
		ArticulationPoints: aps,
		BridgeEdges:        bridges,
		FragileConnections: fragileConnections(snap),
		APCount:            len(aps),
		BridgeCount:        len(bridges),
	}
}

// fragileConnections counts moves crossing between path groups and keeps the
// pairs joined by at most two.
func fragileConnections(snap *Snapshot) []FragileConnection {
	type regionPair struct{ a, b string }
	pairCounts := make(map[regionPair]int)
	for _, e := range snap.Edges {
		ra, rb := snap.Regions[e.Source], snap.Regions[e.Target]
		if ra == rb {
			continue
		}
		key := regionPair{ra, rb}
		if ra > rb {
			key = regionPair{rb, ra}
		}
		pairCounts[key]++
	}

	var fragile []FragileConnection
	for pair, count := range pairCounts {
		if count <= 2 {
			fragile = append(fragile, FragileConnection{RegionA: pair.a, RegionB: pair.b, CrossEdges: count})
		}
	}
	sort.Slice(fragile, func(i, j int) bool {
		if fragile[i].CrossEdges != fragile[j].CrossEdges {
			return fragile[i].CrossEdges < fragile[j].CrossEdges
		}
		if fragile[i].RegionA != fragile[j].RegionA {
			return fragile[i].RegionA < fragile[j].RegionA
		}
		return fragile[i].RegionB < fragile[j].RegionB
	})
	return fragile
}
