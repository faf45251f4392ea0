package transform

import (
	"fmt"

	"github.com/matzehuels/graphilizer/pkg/dag"
)

// Subdivide replaces each edge spanning more than one row with a chain of
// [dag.NodeKindSubdivider] nodes, one per intermediate row:
//
//	Before: api (row 0) → db (row 3)
//	After:  api → api~db@1 → api~db@2 → db
//
// Afterwards every edge joins consecutive rows, which is what the crossing
// counter and the ordering sweeps expect. Subdividers record the edge source as
// MasterID and inherit its Cluster so they travel with the source's group.
//
// Virtual IDs have the form "from~to@row"; a numeric suffix is appended on
// collision. The edge metadata is kept on the last segment of the chain.
func Subdivide(g *dag.DAG) {
	gen := newIDGen(g.Nodes())

	var long []dag.Edge
	for _, e := range g.Edges() {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		if dst.Row > src.Row+1 {
			long = append(long, e)
		}
	}

	for _, e := range long {
		g.RemoveEdge(e.From, e.To)
	}

	for _, e := range long {
		src, _ := g.Node(e.From)
		dst, _ := g.Node(e.To)
		prev := src.ID
		for row := src.Row + 1; row < dst.Row; row++ {
			id := gen.next(e.From, e.To, row)
			mustAdd(g.AddNode(dag.Node{
				ID:       id,
				Row:      row,
				Cluster:  src.Cluster,
				Kind:     dag.NodeKindSubdivider,
				MasterID: src.ID,
			}))
			mustAdd(g.AddEdge(dag.Edge{From: prev, To: id}))
			prev = id
		}
		mustAdd(g.AddEdge(dag.Edge{From: prev, To: dst.ID, Meta: e.Meta}))
	}
}

// mustAdd panics on arena errors, which only occur if the ID generator or the
// edge list is corrupt.
func mustAdd(err error) {
	if err != nil {
		panic(err)
	}
}

type idGen struct {
	used map[string]struct{}
}

func newIDGen(nodes []*dag.Node) *idGen {
	used := make(map[string]struct{}, len(nodes)*2)
	for _, n := range nodes {
		used[n.ID] = struct{}{}
	}
	return &idGen{used: used}
}

func (gen *idGen) next(from, to string, row int) string {
	base := fmt.Sprintf("%s~%s@%d", from, to, row)
	id := base
	for i := 2; ; i++ {
		if _, taken := gen.used[id]; !taken {
			gen.used[id] = struct{}{}
			return id
		}
		id = fmt.Sprintf("%s#%d", base, i)
	}
}
