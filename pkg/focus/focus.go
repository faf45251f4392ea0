// Package focus resolves depth-bounded neighborhoods around a center node.
//
// Reachability ignores edge direction. An [Index] builds the undirected
// adjacency once per node/edge set and then answers any number of
// neighborhood and distance queries.
package focus

import (
	"slices"

	"github.com/matzehuels/graphilizer/pkg/graph"
)

// Depth bounds for focus mode.
const (
	MinDepth     = 1
	MaxDepth     = 5
	DefaultDepth = 2
)

// ClampDepth clamps a user-supplied focus depth into [MinDepth, MaxDepth].
func ClampDepth(d int) int {
	return min(max(d, MinDepth), MaxDepth)
}

// Set is a set of node IDs.
type Set map[string]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Len returns the number of IDs in the set.
func (s Set) Len() int { return len(s) }

// Sorted returns the IDs in lexical order.
func (s Set) Sorted() []string {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Index is the undirected adjacency of a node/edge set. Neighbor lists follow
// edge order, so traversal order is stable for identical input.
type Index struct {
	ids []string
	pos map[string]int
	adj [][]int
}

// NewIndex builds the adjacency for nodeIDs. Edges with an endpoint outside
// nodeIDs are ignored; self loops and parallel edges add no neighbors.
func NewIndex(nodeIDs []string, edges []graph.Edge) *Index {
	x := &Index{
		ids: slices.Clone(nodeIDs),
		pos: make(map[string]int, len(nodeIDs)),
		adj: make([][]int, len(nodeIDs)),
	}
	for i, id := range nodeIDs {
		x.pos[id] = i
	}
	for _, e := range edges {
		s, okS := x.pos[e.Source]
		t, okT := x.pos[e.Target]
		if !okS || !okT || s == t {
			continue
		}
		if !slices.Contains(x.adj[s], t) {
			x.adj[s] = append(x.adj[s], t)
			x.adj[t] = append(x.adj[t], s)
		}
	}
	return x
}

// Len returns the number of indexed nodes.
func (x *Index) Len() int { return len(x.ids) }

// Contains reports whether id is an indexed node.
func (x *Index) Contains(id string) bool {
	_, ok := x.pos[id]
	return ok
}

// Neighborhood returns every node within depth hops of center, center
// included. depth <= 0 yields just the center and depths above MaxDepth are
// clamped. An unknown center yields an empty set.
func (x *Index) Neighborhood(center string, depth int) Set {
	dist := x.Distances(center, depth)
	set := make(Set, len(dist))
	for id := range dist {
		set[id] = struct{}{}
	}
	return set
}

// Distances runs a ring-by-ring breadth-first search from center and returns
// the ring index of every node reached within depth hops. Bounds follow
// [Index.Neighborhood].
func (x *Index) Distances(center string, depth int) map[string]int {
	start, ok := x.pos[center]
	if !ok {
		return map[string]int{}
	}
	depth = min(depth, MaxDepth)

	dist := map[string]int{center: 0}
	seen := make([]bool, len(x.ids))
	seen[start] = true
	frontier := []int{start}
	for d := 1; d <= depth && len(frontier) > 0; d++ {
		var next []int
		for _, cur := range frontier {
			for _, nb := range x.adj[cur] {
				if seen[nb] {
					continue
				}
				seen[nb] = true
				dist[x.ids[nb]] = d
				next = append(next, nb)
			}
		}
		frontier = next
	}
	return dist
}

// Rings groups the nodes reached from center by distance. Ring d lists its
// nodes in index order.
func (x *Index) Rings(center string, depth int) [][]string {
	dist := x.Distances(center, depth)
	if len(dist) == 0 {
		return nil
	}
	deepest := 0
	for _, d := range dist {
		deepest = max(deepest, d)
	}
	rings := make([][]string, deepest+1)
	for _, id := range x.ids {
		if d, ok := dist[id]; ok {
			rings[d] = append(rings[d], id)
		}
	}
	return rings
}
