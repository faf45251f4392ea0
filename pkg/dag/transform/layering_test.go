package transform

import (
	"testing"

	"github.com/matzehuels/graphilizer/pkg/dag"
)

func rowOf(t *testing.T, g *dag.DAG, id string) int {
	t.Helper()
	n, ok := g.Node(id)
	if !ok {
		t.Fatalf("node %q missing", id)
	}
	return n.Row
}

func TestAssignLayers_Chain(t *testing.T) {
	g := build(t, []string{"a", "b", "c"}, [][2]string{{"a", "b"}, {"b", "c"}})

	AssignLayers(g)

	for id, want := range map[string]int{"a": 0, "b": 1, "c": 2} {
		if got := rowOf(t, g, id); got != want {
			t.Errorf("row(%s) = %d, want %d", id, got, want)
		}
	}
}

func TestAssignLayers_LongestPath(t *testing.T) {
	// a→d directly and through b→c: d must sit below c.
	g := build(t, []string{"a", "b", "c", "d"},
		[][2]string{{"a", "d"}, {"a", "b"}, {"b", "c"}, {"c", "d"}})

	AssignLayers(g)

	if got := rowOf(t, g, "d"); got != 3 {
		t.Errorf("row(d) = %d, want 3", got)
	}
	for _, e := range g.Edges() {
		if rowOf(t, g, e.To) < rowOf(t, g, e.From)+1 {
			t.Errorf("edge %s→%s violates rank order", e.From, e.To)
		}
	}
}

func TestAssignLayers_DisconnectedNodes(t *testing.T) {
	g := build(t, []string{"x", "y"}, nil)

	AssignLayers(g)

	if rowOf(t, g, "x") != 0 || rowOf(t, g, "y") != 0 {
		t.Error("isolated nodes should sit on row 0")
	}
	if got := len(g.NodesInRow(0)); got != 2 {
		t.Errorf("NodesInRow(0) = %d nodes, want 2", got)
	}
}

func TestAssignLayers_Empty(t *testing.T) {
	g := dag.New()
	AssignLayers(g)
	if g.RowCount() != 0 {
		t.Errorf("RowCount() = %d, want 0", g.RowCount())
	}
}
