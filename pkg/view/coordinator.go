package view

import (
	"slices"
	"time"

	lru "github.com/hashicorp/golang-lru"

	"github.com/matzehuels/graphilizer/pkg/cache"
	"github.com/matzehuels/graphilizer/pkg/filter"
	"github.com/matzehuels/graphilizer/pkg/focus"
	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/layout"
	"github.com/matzehuels/graphilizer/pkg/normalize"
	"github.com/matzehuels/graphilizer/pkg/observability"
	"github.com/matzehuels/graphilizer/pkg/timeline"
)

// DefaultMemoSize is the number of layouts kept in the memo.
const DefaultMemoSize = 64

// Options configures a Coordinator.
type Options struct {
	// Layout overrides the graph's settings where non-zero.
	Layout   layout.Options
	Radial   layout.RadialOptions
	Timeline timeline.Options
	// Depth is the initial focus depth (default focus.DefaultDepth).
	Depth int
	// MemoSize bounds the layout memo (default DefaultMemoSize).
	MemoSize int
	// Primed is a hierarchical layout of the initial graph computed with
	// the same options, for example one read from the layout cache. It is
	// stored in the memo before the first snapshot is derived.
	Primed *layout.Result
}

// Coordinator owns the inputs of one view and publishes its snapshots.
type Coordinator struct {
	opts Options

	g         *graph.Graph
	issues    []normalize.Issue
	graphHash string
	search    *filter.SearchIndex
	available filter.Tags

	direction graph.Direction
	center    string
	focused   bool
	depth     int
	filters   filter.State
	tl        timeline.State

	keyer cache.Keyer
	memo  *lru.Cache

	snap *Snapshot
	rev  uint64
}

type focusLayout struct {
	nodes []graph.Node
	edges []graph.Edge
}

// New creates a coordinator showing g. A nil g is an empty graph.
func New(g *graph.Graph, issues []normalize.Issue, opts Options) *Coordinator {
	if opts.MemoSize <= 0 {
		opts.MemoSize = DefaultMemoSize
	}
	if opts.Depth == 0 {
		opts.Depth = focus.DefaultDepth
	}
	memo, _ := lru.New(opts.MemoSize) // only fails for a non-positive size

	c := &Coordinator{
		opts:  opts,
		depth: focus.ClampDepth(opts.Depth),
		keyer: cache.NewDefaultKeyer(),
		memo:  memo,
	}
	c.load(g, issues)
	if opts.Primed != nil {
		c.memo.Add(c.layoutKey(c.layoutOptions()), *opts.Primed)
	}
	c.tl = timeline.New(c.scopeEdges(), opts.Timeline)
	c.publish("init")
	return c
}

// Snapshot returns the current snapshot.
func (c *Coordinator) Snapshot() *Snapshot { return c.snap }

// Graph returns the normalized graph being shown.
func (c *Coordinator) Graph() *graph.Graph { return c.g }

// Filters returns the current filter state.
func (c *Coordinator) Filters() filter.State { return c.filters }

// Timeline returns the current timeline state.
func (c *Coordinator) Timeline() timeline.State { return c.tl }

// Depth returns the focus depth used when a center is selected.
func (c *Coordinator) Depth() int { return c.depth }

// =============================================================================
// Structure
// =============================================================================

// SetGraph replaces the graph. The selection is kept when the center still
// exists; filter toggles are kept as they are.
func (c *Coordinator) SetGraph(g *graph.Graph, issues []normalize.Issue) *Snapshot {
	c.load(g, issues)
	if c.focused {
		if _, ok := c.g.Node(c.center); !ok {
			c.focused, c.center = false, ""
		}
	}
	c.tl = c.tl.Rescope(c.scopeEdges())
	return c.publish("set-graph")
}

// SetDirection changes the hierarchical flow and keeps it across SetGraph.
// Unknown directions are ignored.
func (c *Coordinator) SetDirection(d graph.Direction) *Snapshot {
	if dir, ok := graph.ParseDirection(string(d)); ok {
		c.direction = dir
		c.opts.Layout.Direction = dir
	}
	return c.publish("direction")
}

func (c *Coordinator) load(g *graph.Graph, issues []normalize.Issue) {
	if g == nil {
		g = &graph.Graph{}
	}
	c.g = g
	c.issues = slices.Clone(issues)
	c.graphHash = structureHash(g)
	c.search = filter.NewSearchIndex(g.Nodes, g.Edges)
	c.available = filter.Available(g)

	c.direction = c.opts.Layout.Direction
	if c.direction == "" {
		c.direction = g.Settings.Direction
	}
	if c.direction == "" {
		c.direction = graph.DirectionTB
	}
}

// =============================================================================
// Selection
// =============================================================================

// SelectNode enters focus mode around id. An empty id clears the selection.
// An unknown id yields an empty focus view. Playback keeps running; the
// timeline is rescoped to the focus edges. Selecting the current center
// again changes nothing.
func (c *Coordinator) SelectNode(id string) *Snapshot {
	if id == "" {
		return c.ClearSelection()
	}
	if c.focused && id == c.center {
		return c.snap
	}
	c.center, c.focused = id, true
	c.tl = c.tl.Rescope(c.scopeEdges())
	return c.publish("select")
}

// ClearSelection returns to the full graph.
func (c *Coordinator) ClearSelection() *Snapshot {
	c.center, c.focused = "", false
	c.tl = c.tl.Rescope(c.scopeEdges())
	return c.publish("clear-selection")
}

// SetFocusDepth sets the focus depth, clamped to [focus.MinDepth, focus.MaxDepth].
func (c *Coordinator) SetFocusDepth(n int) *Snapshot {
	c.depth = focus.ClampDepth(n)
	if c.focused {
		c.tl = c.tl.Rescope(c.scopeEdges())
	}
	return c.publish("depth")
}

// =============================================================================
// Filters & search
// =============================================================================

// ToggleType flips a node type filter.
func (c *Coordinator) ToggleType(tag string) *Snapshot {
	c.filters = c.filters.ToggleType(tag)
	return c.publish("toggle-type")
}

// ToggleGroup flips a group filter.
func (c *Coordinator) ToggleGroup(tag string) *Snapshot {
	c.filters = c.filters.ToggleGroup(tag)
	return c.publish("toggle-group")
}

// ToggleLayer flips a layer filter.
func (c *Coordinator) ToggleLayer(tag string) *Snapshot {
	c.filters = c.filters.ToggleLayer(tag)
	return c.publish("toggle-layer")
}

// Search returns up to limit items matching q over the whole graph, or
// filter.DefaultLimit when limit is not positive. It does not change the view.
func (c *Coordinator) Search(q string, limit int) []filter.Item {
	return c.search.Query(q, limit)
}

// Connections lists the edges entering and leaving id in the whole graph.
func (c *Coordinator) Connections(id string) Connections {
	labels := make(map[string]string, len(c.g.Nodes))
	for _, n := range c.g.Nodes {
		labels[n.ID] = n.Label
	}
	var out Connections
	for _, e := range c.g.Edges {
		if e.Target == id {
			out.Incoming = append(out.Incoming, Connection{EdgeID: e.ID, Label: e.Label, Peer: e.Source, PeerLabel: labels[e.Source]})
		}
		if e.Source == id {
			out.Outgoing = append(out.Outgoing, Connection{EdgeID: e.ID, Label: e.Label, Peer: e.Target, PeerLabel: labels[e.Target]})
		}
	}
	return out
}

// =============================================================================
// Timeline
// =============================================================================

// Play toggles playback.
func (c *Coordinator) Play() *Snapshot { return c.step("play", c.tl.Play()) }

// Pause stops playback.
func (c *Coordinator) Pause() *Snapshot { return c.step("pause", c.tl.Pause()) }

// Seek moves the timeline cursor to v, rounded and clamped.
func (c *Coordinator) Seek(v float64) *Snapshot { return c.step("seek", c.tl.Seek(v)) }

// Reset rewinds the timeline.
func (c *Coordinator) Reset() *Snapshot { return c.step("reset", c.tl.Reset()) }

// Tick advances playback by dt.
func (c *Coordinator) Tick(dt time.Duration) *Snapshot { return c.step("tick", c.tl.Tick(dt)) }

// step applies a timeline transition. When the classification cannot
// change, the previous geometry and flags are reused.
func (c *Coordinator) step(action string, next timeline.State) *Snapshot {
	prev := c.tl
	c.tl = next
	if next == prev {
		return c.snap
	}
	if next.Step == prev.Step && next.Engaged == prev.Engaged && next.Enabled == prev.Enabled {
		start := time.Now()
		s := *c.snap
		c.rev++
		s.Timeline, s.Revision = next, c.rev
		c.snap = &s
		observability.View().OnTransition(action, time.Since(start))
		return c.snap
	}
	return c.publish(action)
}

// =============================================================================
// Derivation
// =============================================================================

func (c *Coordinator) publish(action string) *Snapshot {
	start := time.Now()
	s := c.derive()
	c.rev++
	s.Revision = c.rev
	c.snap = s
	observability.View().OnTransition(action, time.Since(start))
	return s
}

// derive computes the snapshot from the current inputs.
func (c *Coordinator) derive() *Snapshot {
	s := &Snapshot{
		Direction: c.direction,
		Timeline:  c.tl,
		Available: c.available,
		Active:    c.filters.Active(c.available),
		Issues:    c.issues,
	}

	var nodes []graph.Node
	var edges []graph.Edge
	if c.focused {
		f := c.focusLayout()
		nodes, edges = slices.Clone(f.nodes), slices.Clone(f.edges)
		s.Focus = &Focus{Center: c.center, Depth: c.depth}
	} else {
		res := c.hierarchical()
		nodes = slices.Clone(res.Nodes)
		edges = layout.AssignAnchors(nodes, c.g.Edges)
		s.Cycles = res.Cycles
	}

	match := c.filters.Match(c.g)
	s.MatchCount, s.TotalCount = match.MatchCount(), match.TotalCount

	edges = c.tl.Annotate(edges)
	highlighted := c.tl.Highlighted(edges)
	for i := range nodes {
		nodes[i].Dimmed = !nodes[i].IsGroup && !match.NodeIDs.Has(nodes[i].ID)
		nodes[i].Highlighted = highlighted[nodes[i].ID]
	}
	for i := range edges {
		edges[i].Dimmed = !match.EdgeIDs.Has(edges[i].ID)
	}
	s.Subtitle = c.tl.ActiveSubtitle(edges)
	s.Nodes, s.Edges = nodes, edges
	return s
}

func (c *Coordinator) layoutOptions() layout.Options {
	o := layout.OptionsFromSettings(c.g.Settings)
	o.Direction = c.direction
	if c.opts.Layout.NodeSpacing > 0 {
		o.NodeSpacing = c.opts.Layout.NodeSpacing
	}
	if c.opts.Layout.RankSpacing > 0 {
		o.RankSpacing = c.opts.Layout.RankSpacing
	}
	o.GroupPadding = c.opts.Layout.GroupPadding
	o.Orderer = c.opts.Layout.Orderer
	return o.WithDefaults()
}

func (c *Coordinator) layoutKey(o layout.Options) string {
	return c.keyer.LayoutKey(c.graphHash, cache.LayoutKeyOpts{
		Direction:   string(o.Direction),
		NodeSpacing: o.NodeSpacing,
		RankSpacing: o.RankSpacing,
	})
}

func (c *Coordinator) hierarchical() layout.Result {
	o := c.layoutOptions()
	key := c.layoutKey(o)
	if v, ok := c.memo.Get(key); ok {
		observability.View().OnMemo("hierarchical", true)
		return v.(layout.Result)
	}
	observability.View().OnMemo("hierarchical", false)
	res := layout.Hierarchical(c.g, o)
	c.memo.Add(key, res)
	return res
}

func (c *Coordinator) focusLayout() focusLayout {
	key := c.keyer.FocusKey(c.graphHash, cache.FocusKeyOpts{
		Center:     c.center,
		Depth:      c.depth,
		RingRadius: c.opts.Radial.RingRadius,
	})
	if v, ok := c.memo.Get(key); ok {
		observability.View().OnMemo("focus", true)
		return v.(focusLayout)
	}
	observability.View().OnMemo("focus", false)

	nodes, edges := Subgraph(c.g, c.center, c.depth)
	nodes = layout.Radial(nodes, edges, c.center, c.opts.Radial)
	f := focusLayout{nodes: nodes, edges: layout.AssignAnchors(nodes, edges)}
	c.memo.Add(key, f)
	return f
}

// scopeEdges returns the edges of the current scope: the whole graph, or
// the focus subgraph.
func (c *Coordinator) scopeEdges() []graph.Edge {
	if !c.focused {
		return c.g.Edges
	}
	_, edges := Subgraph(c.g, c.center, c.depth)
	return edges
}

// Subgraph returns the non-group nodes within depth hops of center and the
// edges between them. Hops may pass through group nodes, but groups are left
// out of the result. Containment is dropped and positions are cleared, so the
// result is ready for a radial layout. An unknown or group center yields
// nothing.
func Subgraph(g *graph.Graph, center string, depth int) ([]graph.Node, []graph.Edge) {
	ids := make([]string, 0, len(g.Nodes))
	groups := make(map[string]bool)
	for _, n := range g.Nodes {
		ids = append(ids, n.ID)
		if n.IsGroup {
			groups[n.ID] = true
		}
	}
	if groups[center] {
		return nil, nil
	}
	in := focus.NewIndex(ids, g.Edges).Neighborhood(center, depth)

	kept := make(map[string]bool)
	var nodes []graph.Node
	for _, n := range g.Nodes {
		if n.IsGroup || !in.Has(n.ID) {
			continue
		}
		kept[n.ID] = true
		n.Parent = ""
		n.Position = graph.Point{}
		n.Pinned = false
		nodes = append(nodes, n)
	}
	var edges []graph.Edge
	for _, e := range g.Edges {
		if kept[e.Source] && kept[e.Target] {
			edges = append(edges, e)
		}
	}
	return nodes, edges
}

type structNode struct {
	ID      string      `json:"id"`
	Parent  string      `json:"parent,omitempty"`
	IsGroup bool        `json:"group,omitempty"`
	Pos     graph.Point `json:"pos"`
	Size    graph.Size  `json:"size"`
}

type structEdge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
}

// structureHash hashes what the layouts depend on. Labels, styles and
// metadata are left out.
func structureHash(g *graph.Graph) string {
	nodes := make([]structNode, len(g.Nodes))
	for i, n := range g.Nodes {
		nodes[i] = structNode{n.ID, n.Parent, n.IsGroup, n.Position, n.Size}
	}
	edges := make([]structEdge, len(g.Edges))
	for i, e := range g.Edges {
		edges[i] = structEdge{e.ID, e.Source, e.Target}
	}
	h, _ := cache.HashJSON(struct {
		Nodes []structNode `json:"nodes"`
		Edges []structEdge `json:"edges"`
	}{nodes, edges}) // plain strings and numbers always encode
	return h
}
