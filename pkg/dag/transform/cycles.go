package transform

import "github.com/matzehuels/graphilizer/pkg/dag"

// BreakCycles removes every back edge found by a depth-first search and
// returns the removed edges in insertion order.
//
// The search starts from nodes without incoming edges, in insertion order,
// then from any node still unvisited (nodes that only sit on cycles), again in
// insertion order. An edge into a node that is still on the DFS stack closes a
// cycle and is removed. Self loops are always removed. Parallel copies of a
// removed edge are removed together.
//
// The outcome depends only on insertion order, so identical input always
// breaks the same edges.
func BreakCycles(g *dag.DAG) []dag.Edge {
	const (
		white = iota
		gray
		black
	)

	n := g.NodeCount()
	color := make([]int, n)
	back := make(map[[2]int]struct{})

	var dfs func(i int)
	dfs = func(i int) {
		color[i] = gray
		for _, c := range g.ChildIndices(i) {
			switch color[c] {
			case white:
				dfs(c)
			case gray:
				back[[2]int{i, c}] = struct{}{}
			}
		}
		color[i] = black
	}

	for _, src := range g.Sources() {
		if i, _ := g.Index(src.ID); color[i] == white {
			dfs(i)
		}
	}
	for i := range n {
		if color[i] == white {
			dfs(i)
		}
	}
	if len(back) == 0 {
		return nil
	}

	var removed []dag.Edge
	for _, e := range g.Edges() {
		from, _ := g.Index(e.From)
		to, _ := g.Index(e.To)
		if _, ok := back[[2]int{from, to}]; ok {
			removed = append(removed, e)
		}
	}
	for _, e := range removed {
		g.RemoveEdge(e.From, e.To)
	}
	return removed
}
