package dag

import (
	"slices"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
)

// StronglyConnected returns the node IDs of every cycle in the graph: each
// strongly connected component with more than one node, plus single nodes
// that have a self loop.
//
// Components are listed by their earliest inserted member, and members keep
// insertion order, so the result is stable for identical input.
func StronglyConnected(d *DAG) [][]string {
	g := simple.NewDirectedGraph()
	for i := range d.nodes {
		g.AddNode(simple.Node(int64(i)))
	}

	selfLoop := make(map[int]bool)
	for from, targets := range d.out {
		for _, to := range targets {
			// simple.DirectedGraph rejects self edges
			if from == to {
				selfLoop[from] = true
				continue
			}
			g.SetEdge(g.NewEdge(simple.Node(int64(from)), simple.Node(int64(to))))
		}
	}

	var comps [][]int
	for _, scc := range topo.TarjanSCC(g) {
		if len(scc) == 1 && !selfLoop[int(scc[0].ID())] {
			continue
		}
		members := make([]int, len(scc))
		for k, n := range scc {
			members[k] = int(n.ID())
		}
		slices.Sort(members)
		comps = append(comps, members)
	}
	slices.SortFunc(comps, func(a, b []int) int { return a[0] - b[0] })

	out := make([][]string, len(comps))
	for k, c := range comps {
		out[k] = d.ids(c)
	}
	return out
}
