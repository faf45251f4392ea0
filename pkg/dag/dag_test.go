package dag

import (
	"errors"
	"slices"
	"testing"
)

func TestAddNode_Errors(t *testing.T) {
	g := New()
	if err := g.AddNode(Node{}); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(empty) = %v, want ErrInvalidNodeID", err)
	}
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddNode(Node{ID: "a"}); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) = %v, want ErrDuplicateNodeID", err)
	}
}

func TestAddEdge_UnknownEndpoints(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	if err := g.AddEdge(Edge{From: "x", To: "a"}); !errors.Is(err, ErrUnknownSourceNode) {
		t.Errorf("AddEdge() = %v, want ErrUnknownSourceNode", err)
	}
	if err := g.AddEdge(Edge{From: "a", To: "x"}); !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("AddEdge() = %v, want ErrUnknownTargetNode", err)
	}
}

func TestRemoveEdge_RemovesParallelCopies(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	_ = g.AddEdge(Edge{From: "b", To: "a"})

	g.RemoveEdge("a", "b")

	if g.EdgeCount() != 1 {
		t.Errorf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if g.OutDegree("a") != 0 || g.InDegree("b") != 0 {
		t.Error("adjacency not updated")
	}
	g.RemoveEdge("a", "missing")
}

func TestNodes_InsertionOrder(t *testing.T) {
	g := New()
	ids := []string{"zeta", "alpha", "mid"}
	for _, id := range ids {
		_ = g.AddNode(Node{ID: id})
	}
	if got := NodeIDs(g.Nodes()); !slices.Equal(got, ids) {
		t.Errorf("Nodes() = %v, want %v", got, ids)
	}
	if got := NodeIDs(g.NodesInRow(0)); !slices.Equal(got, ids) {
		t.Errorf("NodesInRow(0) = %v, want %v", got, ids)
	}
}

func TestSetRows_RebuildsIndex(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	g.SetRows(map[string]int{"b": 2})

	if got := NodeIDs(g.NodesInRow(2)); !slices.Equal(got, []string{"b"}) {
		t.Errorf("NodesInRow(2) = %v, want [b]", got)
	}
	if got := g.RowIDs(); !slices.Equal(got, []int{0, 2}) {
		t.Errorf("RowIDs() = %v, want [0 2]", got)
	}
}

func TestValidate(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a", Row: 0})
	_ = g.AddNode(Node{ID: "b", Row: 2})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	if err := g.Validate(); !errors.Is(err, ErrNonConsecutiveRows) {
		t.Errorf("Validate() = %v, want ErrNonConsecutiveRows", err)
	}

	c := New()
	_ = c.AddNode(Node{ID: "a"})
	_ = c.AddEdge(Edge{From: "a", To: "a"})
	if err := c.Validate(); err == nil {
		t.Error("Validate() on self loop = nil, want error")
	}
}

func TestCountLayerCrossings(t *testing.T) {
	g := New()
	for _, id := range []string{"a", "b", "c", "x", "y", "z"} {
		_ = g.AddNode(Node{ID: id})
	}
	// a→z, b→y, c→x: every pair crosses.
	_ = g.AddEdge(Edge{From: "a", To: "z"})
	_ = g.AddEdge(Edge{From: "b", To: "y"})
	_ = g.AddEdge(Edge{From: "c", To: "x"})

	if got := CountLayerCrossings(g, []string{"a", "b", "c"}, []string{"x", "y", "z"}); got != 3 {
		t.Errorf("CountLayerCrossings() = %d, want 3", got)
	}
	if got := CountLayerCrossings(g, []string{"a", "b", "c"}, []string{"z", "y", "x"}); got != 0 {
		t.Errorf("CountLayerCrossings() = %d, want 0", got)
	}
}

func TestStronglyConnected_Acyclic(t *testing.T) {
	g := New()
	_ = g.AddNode(Node{ID: "a"})
	_ = g.AddNode(Node{ID: "b"})
	_ = g.AddEdge(Edge{From: "a", To: "b"})
	if got := StronglyConnected(g); len(got) != 0 {
		t.Errorf("StronglyConnected() = %v, want none", got)
	}
}
