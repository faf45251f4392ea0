package view

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/layout"
	"github.com/matzehuels/graphilizer/pkg/normalize"
	"github.com/matzehuels/graphilizer/pkg/observability"
	"github.com/matzehuels/graphilizer/pkg/timeline"
)

func ord(n int) *int { return &n }

// chain builds a-b-c-d with orders 1, 2, 3.
func chain(t *testing.T) *Coordinator {
	t.Helper()
	doc := &graph.Document{
		Nodes: []graph.DocNode{
			{ID: "a", Label: "Alpha", Type: "service"},
			{ID: "b", Label: "Bravo", Type: "service"},
			{ID: "c", Label: "Charlie", Type: "store"},
			{ID: "d", Label: "Delta", Type: "store"},
		},
		Edges: []graph.DocEdge{
			{Source: "a", Target: "b", Order: ord(1), Subtitle: "a calls b"},
			{Source: "b", Target: "c", Order: ord(2), Subtitle: "b writes c"},
			{Source: "c", Target: "d", Order: ord(3)},
			{Source: "a", Target: "ghost"},
		},
	}
	g, rep := normalize.Normalize(doc, normalize.Options{})
	return New(g, rep.Issues, Options{Timeline: timeline.Options{StepDuration: time.Second}})
}

func ids(nodes []graph.Node) map[string]bool {
	m := map[string]bool{}
	for _, n := range nodes {
		m[n.ID] = true
	}
	return m
}

func TestNew_FullGraph(t *testing.T) {
	c := chain(t)
	s := c.Snapshot()

	if len(s.Nodes) != 4 || len(s.Edges) != 3 {
		t.Fatalf("snapshot has %d nodes, %d edges, want 4 and 3", len(s.Nodes), len(s.Edges))
	}
	if s.Focus != nil {
		t.Error("Focus set without a selection")
	}
	if len(s.Issues) != 1 || s.Issues[0].Kind != normalize.IssueDanglingEdge {
		t.Errorf("Issues = %v, want one dangling edge", s.Issues)
	}
	if s.Revision != 1 {
		t.Errorf("Revision = %d, want 1", s.Revision)
	}
	for _, e := range s.Edges {
		if e.SourceHandle == "" || e.TargetHandle == "" {
			t.Errorf("edge %s has no anchors", e.ID)
		}
		if e.TimelineState != graph.TimelineNone {
			t.Errorf("edge %s classified before the timeline was engaged", e.ID)
		}
	}
	if s.MatchCount != 4 || s.TotalCount != 4 {
		t.Errorf("counts = %d/%d, want 4/4", s.MatchCount, s.TotalCount)
	}
}

func TestNew_Empty(t *testing.T) {
	s := New(nil, nil, Options{}).Snapshot()
	if len(s.Nodes) != 0 || len(s.Edges) != 0 || s.Timeline.Enabled {
		t.Errorf("empty snapshot = %+v", s)
	}
}

func TestSelectNode_Focus(t *testing.T) {
	c := chain(t)
	c.SetFocusDepth(1)
	s := c.SelectNode("b")

	got := ids(s.Nodes)
	if len(got) != 3 || !got["a"] || !got["b"] || !got["c"] {
		t.Fatalf("focus nodes = %v, want a, b, c", got)
	}
	if s.Focus == nil || s.Focus.Center != "b" || s.Focus.Depth != 1 {
		t.Errorf("Focus = %+v", s.Focus)
	}
	center, _ := s.Node("b")
	if p := center.Center(); math.Abs(p.X) > 1e-9 || math.Abs(p.Y) > 1e-9 {
		t.Errorf("center at %v, want origin", p)
	}
	for _, id := range []string{"a", "c"} {
		n, _ := s.Node(id)
		if d := n.Center().Dist(graph.Point{}); math.Abs(d-220) > 1e-6 {
			t.Errorf("%s at distance %v, want 220", id, d)
		}
	}
	if len(s.Edges) != 2 {
		t.Errorf("focus edges = %d, want 2", len(s.Edges))
	}
}

func TestSelectNode_Unknown(t *testing.T) {
	s := chain(t).SelectNode("nope")
	if len(s.Nodes) != 0 || len(s.Edges) != 0 {
		t.Errorf("unknown center yielded %d nodes", len(s.Nodes))
	}
	if s.Focus == nil || s.Timeline.Enabled {
		t.Errorf("snapshot = %+v, want empty focus with inert timeline", s)
	}
}

func TestSelectNode_SameCenterKeepsProgress(t *testing.T) {
	c := chain(t)
	c.SetFocusDepth(1)
	c.SelectNode("b")
	c.Reset()
	c.Play()
	before := c.Tick(300 * time.Millisecond)
	if before.Timeline.Progress == 0 {
		t.Fatalf("Progress = 0 after a partial tick")
	}

	after := c.SelectNode("b")
	if after.Timeline.Progress != before.Timeline.Progress {
		t.Errorf("Progress = %v, want %v", after.Timeline.Progress, before.Timeline.Progress)
	}
	if after.Revision != before.Revision {
		t.Errorf("Revision = %d, want %d", after.Revision, before.Revision)
	}
}

func TestSubgraph_HopsThroughGroups(t *testing.T) {
	doc := &graph.Document{
		Groups: []graph.DocGroup{{ID: "g"}},
		Nodes: []graph.DocNode{
			{ID: "x", Group: "g"},
			{ID: "y"},
			{ID: "z"},
		},
		Edges: []graph.DocEdge{
			{Source: "x", Target: "g"},
			{Source: "g", Target: "y"},
			{Source: "y", Target: "z"},
		},
	}
	g, _ := normalize.Normalize(doc, normalize.Options{})

	nodes, edges := Subgraph(g, "x", 2)
	got := ids(nodes)
	if len(got) != 2 || !got["x"] || !got["y"] {
		t.Errorf("Subgraph() nodes = %v, want x, y", got)
	}
	if len(edges) != 0 {
		t.Errorf("Subgraph() edges = %d, want 0", len(edges))
	}
	for _, n := range nodes {
		if n.Parent != "" {
			t.Errorf("%s Parent = %q, want none", n.ID, n.Parent)
		}
	}

	if nodes, _ := Subgraph(g, "g", 2); len(nodes) != 0 {
		t.Errorf("Subgraph() on a group center = %d nodes, want 0", len(nodes))
	}
}

func TestClearSelection(t *testing.T) {
	c := chain(t)
	c.SelectNode("a")
	s := c.SelectNode("")
	if s.Focus != nil || len(s.Nodes) != 4 {
		t.Errorf("SelectNode(\"\") kept focus: %+v", s.Focus)
	}
}

func TestSetFocusDepth_Clamps(t *testing.T) {
	c := chain(t)
	c.SetFocusDepth(0)
	if c.Depth() != 1 {
		t.Errorf("Depth() = %d, want 1", c.Depth())
	}
	c.SetFocusDepth(42)
	if c.Depth() != 5 {
		t.Errorf("Depth() = %d, want 5", c.Depth())
	}
}

func TestToggleType_DimsWithoutMoving(t *testing.T) {
	c := chain(t)
	before := c.Snapshot()
	after := c.ToggleType("store")

	for i, n := range after.Nodes {
		if n.Position != before.Nodes[i].Position {
			t.Errorf("%s moved from %v to %v", n.ID, before.Nodes[i].Position, n.Position)
		}
		want := n.Type == "store"
		if n.Dimmed != want {
			t.Errorf("%s Dimmed = %v, want %v", n.ID, n.Dimmed, want)
		}
	}
	for _, e := range after.Edges {
		want := e.Target != "b"
		if e.Dimmed != want {
			t.Errorf("edge %s Dimmed = %v, want %v", e.ID, e.Dimmed, want)
		}
	}
	if after.MatchCount != 2 {
		t.Errorf("MatchCount = %d, want 2", after.MatchCount)
	}
	for _, n := range before.Nodes {
		if n.Dimmed {
			t.Error("earlier snapshot was modified")
		}
	}
}

func TestTimeline_Seek(t *testing.T) {
	c := chain(t)
	s := c.Seek(2)

	want := map[string]graph.TimelineState{
		"a-b": graph.TimelinePast,
		"b-c": graph.TimelineActive,
		"c-d": graph.TimelineFuture,
	}
	for _, e := range s.Edges {
		if e.TimelineState != want[e.ID] {
			t.Errorf("%s = %s, want %s", e.ID, e.TimelineState, want[e.ID])
		}
	}
	for _, n := range s.Nodes {
		hl := n.ID == "b" || n.ID == "c"
		if n.Highlighted != hl {
			t.Errorf("%s Highlighted = %v, want %v", n.ID, n.Highlighted, hl)
		}
	}
	if s.Subtitle != "b writes c" {
		t.Errorf("Subtitle = %q", s.Subtitle)
	}
}

func TestTick_ReusesGeometry(t *testing.T) {
	c := chain(t)
	c.Reset()
	before := c.Play()
	mid := c.Tick(300 * time.Millisecond)

	if &mid.Nodes[0] != &before.Nodes[0] {
		t.Error("partial tick rebuilt the node slice")
	}
	if mid.Revision != before.Revision+1 || mid.Timeline.Progress == 0 {
		t.Errorf("mid-step snapshot = rev %d progress %v", mid.Revision, mid.Timeline.Progress)
	}

	next := c.Tick(700 * time.Millisecond)
	if next.Timeline.Step != 2 {
		t.Fatalf("Step = %d, want 2", next.Timeline.Step)
	}
	if e, _ := next.Edge("b-c"); e.TimelineState != graph.TimelineActive {
		t.Errorf("b-c = %s after advancing, want active", e.TimelineState)
	}
}

func TestSelectNode_RescopesTimeline(t *testing.T) {
	c := chain(t)
	c.SetFocusDepth(1)
	c.Seek(3)
	c.Play()

	s := c.SelectNode("a")
	if s.Timeline.Min != 1 || s.Timeline.Max != 1 || s.Timeline.Step != 1 {
		t.Errorf("focus timeline = %+v, want [1,1] at 1", s.Timeline)
	}
	if !s.Timeline.Playing {
		t.Error("selection stopped playback")
	}

	s = c.ClearSelection()
	if s.Timeline.Max != 3 {
		t.Errorf("Max = %d after leaving focus, want 3", s.Timeline.Max)
	}
}

func TestSearchAndConnections(t *testing.T) {
	c := chain(t)

	hits := c.Search("charl", 0)
	if len(hits) != 1 || hits[0].ID != "c" {
		t.Errorf("Search() = %+v", hits)
	}
	if hits := c.Search("", 0); len(hits) != 0 {
		t.Errorf("Search(\"\") = %+v", hits)
	}
	if hits := c.Search("a", 2); len(hits) != 2 {
		t.Errorf("len(Search(\"a\", 2)) = %d, want 2", len(hits))
	}

	conn := c.Connections("b")
	if len(conn.Incoming) != 1 || conn.Incoming[0].Peer != "a" || conn.Incoming[0].PeerLabel != "Alpha" {
		t.Errorf("Incoming = %+v", conn.Incoming)
	}
	if len(conn.Outgoing) != 1 || conn.Outgoing[0].Peer != "c" {
		t.Errorf("Outgoing = %+v", conn.Outgoing)
	}
}

func TestSetGraph(t *testing.T) {
	c := chain(t)
	c.SelectNode("d")

	g, _ := normalize.Normalize(&graph.Document{Nodes: []graph.DocNode{{ID: "x"}}}, normalize.Options{})
	s := c.SetGraph(g, nil)
	if s.Focus != nil {
		t.Error("selection kept although the center disappeared")
	}
	if len(s.Nodes) != 1 || s.Timeline.Enabled {
		t.Errorf("snapshot after SetGraph = %+v", s)
	}
}

func TestSetDirection(t *testing.T) {
	c := chain(t)
	tb := c.Snapshot()
	lr := c.SetDirection(graph.DirectionLR)

	if lr.Direction != graph.DirectionLR {
		t.Fatalf("Direction = %s", lr.Direction)
	}
	a0, _ := tb.Node("a")
	b0, _ := tb.Node("b")
	a1, _ := lr.Node("a")
	b1, _ := lr.Node("b")
	if !(b0.Position.Y > a0.Position.Y) || !(b1.Position.X > a1.Position.X) {
		t.Errorf("ranks do not follow direction: TB %v→%v, LR %v→%v", a0.Position, b0.Position, a1.Position, b1.Position)
	}
	if s := c.SetDirection("diagonal"); s.Direction != graph.DirectionLR {
		t.Errorf("unknown direction applied: %s", s.Direction)
	}
}

type memoHooks struct {
	observability.NoopViewHooks
	mu     sync.Mutex
	hits   map[string]int
	misses map[string]int
}

func (h *memoHooks) OnMemo(kind string, hit bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if hit {
		h.hits[kind]++
	} else {
		h.misses[kind]++
	}
}

func TestMemo_FiltersDoNotRelayout(t *testing.T) {
	h := &memoHooks{hits: map[string]int{}, misses: map[string]int{}}
	observability.SetViewHooks(h)
	t.Cleanup(observability.Reset)

	c := chain(t)
	c.ToggleType("store")
	c.ToggleType("store")
	c.SelectNode("b")
	c.ToggleLayer("x")
	c.ClearSelection()

	if h.misses["hierarchical"] != 1 || h.misses["focus"] != 1 {
		t.Errorf("misses = %v, want one layout of each kind", h.misses)
	}
	if h.hits["hierarchical"] != 3 || h.hits["focus"] != 1 {
		t.Errorf("hits = %v", h.hits)
	}
}

func TestNew_Primed(t *testing.T) {
	h := &memoHooks{hits: map[string]int{}, misses: map[string]int{}}
	observability.SetViewHooks(h)
	t.Cleanup(observability.Reset)

	g, _ := normalize.Normalize(&graph.Document{Nodes: []graph.DocNode{{ID: "a"}, {ID: "b"}}}, normalize.Options{})
	primed := layout.Hierarchical(g, layout.OptionsFromSettings(g.Settings))
	s := New(g, nil, Options{Primed: &primed}).Snapshot()

	if h.misses["hierarchical"] != 0 {
		t.Error("primed layout was recomputed")
	}
	a, _ := s.Node("a")
	if a.Position != primed.Nodes[0].Position {
		t.Errorf("a at %v, want primed %v", a.Position, primed.Nodes[0].Position)
	}
}
