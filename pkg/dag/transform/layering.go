package transform

import "github.com/matzehuels/graphilizer/pkg/dag"

// AssignLayers ranks every node by the longest path from a source.
//
// Sources sit on row 0 and every other node sits one row below its deepest
// parent, so rank(child) >= rank(parent)+1 holds for every edge. Existing row
// assignments are overwritten.
//
// The traversal is Kahn's algorithm over arena indices. Nodes on a cycle never
// reach in-degree zero and stay on row 0; run [BreakCycles] first.
//
// Time complexity is O(V + E).
func AssignLayers(g *dag.DAG) {
	n := g.NodeCount()
	if n == 0 {
		return
	}

	inDegree := make([]int, n)
	rank := make([]int, n)
	queue := make([]int, 0, n)
	for i := range n {
		inDegree[i] = len(g.ParentIndices(i))
		if inDegree[i] == 0 {
			queue = append(queue, i)
		}
	}

	for len(queue) > 0 {
		curr := queue[0]
		queue = queue[1:]
		for _, c := range g.ChildIndices(curr) {
			rank[c] = max(rank[c], rank[curr]+1)
			inDegree[c]--
			if inDegree[c] == 0 {
				queue = append(queue, c)
			}
		}
	}

	rows := make(map[string]int, n)
	for i := range n {
		rows[g.At(i).ID] = rank[i]
	}
	g.SetRows(rows)
}
