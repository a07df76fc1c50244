package paths

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"xqbook/navigator/internal/store"
)

// Reachable runs a breadth-first search from `from` over g's visible edges and
// returns every node found with its depth in edges. A negative maxDepth means
// unbounded.
func Reachable(g Graph, from store.NodeID, maxDepth int) map[store.NodeID]int {
	depth := map[store.NodeID]int{from: 0}
	queue := []store.NodeID{from}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		d := depth[id]
		if maxDepth >= 0 && d >= maxDepth {
			continue
		}
		for _, e := range g.EdgesFrom(id) {
			next := e.To()
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = d + 1
			queue = append(queue, next)
		}
	}
	return depth
}

// Enumeration is every terminal path below a start node together with the number
// of terminal paths passing through each visited node.
type Enumeration struct {
	Start  store.NodeID
	Leaves [][]store.NodeID
	Counts map[store.NodeID]int
}

// Root is the number of terminal paths from the start node.
func (e *Enumeration) Root() int { return e.Counts[e.Start] }

// Count is the number of terminal paths through id, 0 when id was never visited.
func (e *Enumeration) Count(id store.NodeID) int { return e.Counts[id] }

// Share is Count(id) as a fraction of Root.
func (e *Enumeration) Share(id store.NodeID) float64 {
	root := e.Root()
	if root == 0 {
		return 0
	}
	return float64(e.Count(id)) / float64(root)
}

// Enumerate walks depth-first from the last node of prefix. It never revisits a
// node already on the current branch (prefix included) and, when horizon is
// non-negative, never descends more than horizon edges below the start. A node
// with nowhere left to go is a leaf worth 1; an inner node is worth the sum of its
// children. Leaves are full paths, prefix included.
//
// A node reached along several branches keeps the count from its last visit; on
// acyclic input every visit yields the same value.
func Enumerate(g Graph, prefix []store.NodeID, horizon int) *Enumeration {
	e := &Enumeration{Counts: make(map[store.NodeID]int)}
	if len(prefix) == 0 {
		return e
	}
	e.Start = prefix[len(prefix)-1]

	branch := slices.Clone(prefix)
	on := make(map[store.NodeID]bool, len(prefix))
	for _, id := range prefix {
		on[id] = true
	}

	var walk func(id store.NodeID, depth int) int
	walk = func(id store.NodeID, depth int) int {
		total := 0
		if horizon < 0 || depth < horizon {
			for _, edge := range g.EdgesFrom(id) {
				next := edge.To()
				if on[next] {
					continue
				}
				on[next] = true
				branch = append(branch, next)
				total += walk(next, depth+1)
				branch = branch[:len(branch)-1]
				on[next] = false
			}
		}
		if total == 0 {
			e.Leaves = append(e.Leaves, slices.Clone(branch))
			total = 1
		}
		e.Counts[id] = total
		return total
	}
	walk(e.Start, 0)
	return e
}

// Pick chooses one of children with probability proportional to the square root
// of its downstream count. Children with no count are never chosen. The returned
// index is -1 when nothing can be chosen.
func Pick(rng *rand.Rand, children []store.NodeID, counts map[store.NodeID]int) int {
	weights := make([]float64, len(children))
	var sum float64
	for i, c := range children {
		if n := counts[c]; n > 0 {
			weights[i] = math.Sqrt(float64(n))
			sum += weights[i]
		}
	}
	if sum == 0 {
		return -1
	}
	r := rng.Float64() * sum
	last := -1
	for i, w := range weights {
		if w == 0 {
			continue
		}
		last = i
		if r < w {
			return i
		}
		r -= w
	}
	return last
}

// RandomLine extends prefix one weighted pick at a time using the counts in e,
// stopping when no unvisited child carries a count.
func RandomLine(g Graph, prefix []store.NodeID, e *Enumeration, rng *rand.Rand) []store.NodeID {
	line := slices.Clone(prefix)
	if len(line) == 0 {
		return line
	}
	on := make(map[store.NodeID]bool, len(line))
	for _, id := range line {
		on[id] = true
	}
	for {
		var children []store.NodeID
		for _, edge := range g.EdgesFrom(line[len(line)-1]) {
			if next := edge.To(); !on[next] {
				children = append(children, next)
			}
		}
		i := Pick(rng, children, e.Counts)
		if i < 0 {
			return line
		}
		line = append(line, children[i])
		on[children[i]] = true
	}
}

// NextVariant sorts siblings stably by compare (edge id when compare is nil),
// finds the edge taken and returns the index of the one after it, wrapping
// around. It returns -1 when taken is not among the siblings.
func NextVariant(siblings []*store.Edge, taken store.EdgeID, compare func(a, b *store.Edge) int) int {
	if compare == nil {
		compare = func(a, b *store.Edge) int { return cmp.Compare(a.ID, b.ID) }
	}
	slices.SortStableFunc(siblings, compare)
	i := slices.IndexFunc(siblings, func(e *store.Edge) bool { return e.ID == taken })
	if i < 0 {
		return -1
	}
	return (i + 1) % len(siblings)
}
