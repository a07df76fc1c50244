package graph

import "xqbook/navigator/internal/store"

// UnionFind implements union-find with path compression and union by rank.
type UnionFind struct {
	parent map[store.NodeID]store.NodeID
	rank   map[store.NodeID]int
	size   map[store.NodeID]int
}

// NewUnionFind creates a new UnionFind where each element is its own component.
func NewUnionFind(ids []store.NodeID) *UnionFind {
	uf := &UnionFind{
		parent: make(map[store.NodeID]store.NodeID, len(ids)),
		rank:   make(map[store.NodeID]int, len(ids)),
		size:   make(map[store.NodeID]int, len(ids)),
	}
	for _, id := range ids {
		uf.parent[id] = id
		uf.size[id] = 1
	}
	return uf
}

// Find returns the root of the component containing id, with path compression.
func (uf *UnionFind) Find(id store.NodeID) store.NodeID {
	parent, ok := uf.parent[id]
	if !ok {
		return id
	}
	if parent != id {
		root := uf.Find(parent)
		uf.parent[id] = root
		return root
	}
	return id
}

// Union merges the components containing a and b. Returns true if they were separate.
func (uf *UnionFind) Union(a, b store.NodeID) bool {
	rootA, rootB := uf.Find(a), uf.Find(b)
	if rootA == rootB {
		return false
	}
	if uf.rank[rootA] < uf.rank[rootB] {
		rootA, rootB = rootB, rootA
	}
	uf.parent[rootB] = rootA
	uf.size[rootA] += uf.size[rootB]
	if uf.rank[rootA] == uf.rank[rootB] {
		uf.rank[rootA]++
	}
	return true
}

// Size returns the number of elements in id's component.
func (uf *UnionFind) Size(id store.NodeID) int {
	return uf.size[uf.Find(id)]
}

// Components returns all connected components as slices of IDs.
func (uf *UnionFind) Components() [][]store.NodeID {
	groups := make(map[store.NodeID][]store.NodeID)
	for id := range uf.parent {
		root := uf.Find(id)
		groups[root] = append(groups[root], id)
	}
	result := make([][]store.NodeID, 0, len(groups))
	for _, members := range groups {
		result = append(result, members)
	}
	return result
}
