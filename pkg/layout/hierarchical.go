package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/graphilizer/pkg/dag"
	"github.com/matzehuels/graphilizer/pkg/dag/transform"
	"github.com/matzehuels/graphilizer/pkg/graph"
)

// Result is the outcome of a hierarchical layout.
type Result struct {
	// Nodes is the input node set, in input order, with positions and sizes
	// filled in.
	Nodes []graph.Node `json:"nodes"`
	// Ranks maps every ranked node to its layer.
	Ranks map[string]int `json:"ranks"`
	// Order maps every ranked node to its index inside its layer.
	Order map[string]int `json:"order"`
	// Crossings is the number of edge crossings of the chosen ordering.
	Crossings int `json:"crossings"`
	// BrokenEdges lists the IDs of edges ignored for ranking to break cycles.
	BrokenEdges []string `json:"brokenEdges,omitempty"`
	// Cycles lists the node IDs of every cycle in the input.
	Cycles [][]string `json:"cycles,omitempty"`
}

const metaEdgeID = "id"

// Hierarchical computes a layered layout of g.
//
// Regular nodes and empty groups are ranked by longest path after cycles are
// broken, ordered within each rank by the configured [ordering.Orderer] and
// packed along the cross axis. Nodes of the same group stay contiguous and
// are separated from their neighbors by GroupPadding; the group node itself
// becomes the padded bounding box of its children. Edges touching a group
// that contains nodes do not take part in ranking.
//
// The computed drawing is translated so its bounding box starts at the
// origin. A node whose input position is not the origin (Pinned) keeps it.
// Identical input always yields identical output.
func Hierarchical(g *graph.Graph, opts Options) Result {
	opts = opts.WithDefaults()
	res := Result{
		Nodes: []graph.Node{},
		Ranks: map[string]int{},
		Order: map[string]int{},
	}
	if g == nil || len(g.Nodes) == 0 {
		return res
	}

	nodes := slices.Clone(g.Nodes)
	containers := make(map[string]bool)
	for _, n := range nodes {
		if n.Parent != "" {
			containers[n.Parent] = true
		}
	}
	for i := range nodes {
		if !containers[nodes[i].ID] && nodes[i].Size == (graph.Size{}) {
			nodes[i].Size = graph.DefaultSize
		}
	}

	d := rankingGraph(g, nodes, containers)
	res.Cycles = dag.StronglyConnected(d)
	for _, e := range transform.BreakCycles(d) {
		if id, ok := e.Meta[metaEdgeID].(string); ok {
			res.BrokenEdges = append(res.BrokenEdges, id)
		}
	}
	transform.AssignLayers(d)
	for _, n := range d.Nodes() {
		res.Ranks[n.ID] = n.Row
	}
	transform.Subdivide(d)

	orders := opts.Orderer.OrderRows(d)
	res.Crossings = dag.CountCrossings(d, orders)

	index := g.NodeIndex()
	computed := place(d, orders, nodes, index, opts, res.Order)
	translate(nodes, computed, containers, opts.GroupPadding)
	fitGroups(nodes, containers, opts.GroupPadding)

	res.Nodes = nodes
	return res
}

func rankingGraph(g *graph.Graph, nodes []graph.Node, containers map[string]bool) *dag.DAG {
	d := dag.New()
	for _, n := range nodes {
		if containers[n.ID] {
			continue
		}
		// IDs are unique after normalization.
		_ = d.AddNode(dag.Node{ID: n.ID, Cluster: n.Parent})
	}
	for _, e := range g.Edges {
		if containers[e.Source] || containers[e.Target] {
			continue
		}
		// Edges with unknown endpoints are skipped by AddEdge.
		_ = d.AddEdge(dag.Edge{From: e.Source, To: e.Target, Meta: dag.Metadata{metaEdgeID: e.ID}})
	}
	return d
}

// place assigns positions to every ranked, unpinned node and records the
// in-rank order. It returns the indices of the nodes it positioned.
func place(d *dag.DAG, orders map[int][]string, nodes []graph.Node, index map[string]int,
	opts Options, order map[string]int) []int {
	dir := opts.Direction
	crossExt := func(n graph.Node) float64 {
		if dir.Horizontal() {
			return n.Size.Height
		}
		return n.Size.Width
	}
	rankExt := func(n graph.Node) float64 {
		if dir.Horizontal() {
			return n.Size.Width
		}
		return n.Size.Height
	}

	var computed []int
	rankStart := 0.0
	for _, r := range d.RowIDs() {
		var row []int
		for _, id := range orders[r] {
			if dn, ok := d.Node(id); ok && !dn.IsSubdivider() {
				row = append(row, index[id])
			}
		}

		band := 0.0
		for _, i := range row {
			band = max(band, rankExt(nodes[i]))
		}

		cursor := 0.0
		centers := make([]float64, len(row))
		for k, i := range row {
			if k > 0 {
				cursor += opts.NodeSpacing
				prev := nodes[row[k-1]].Parent
				if cur := nodes[i].Parent; cur != prev && (cur != "" || prev != "") {
					cursor += 2 * opts.GroupPadding
				}
			}
			ext := crossExt(nodes[i])
			centers[k] = cursor + ext/2
			cursor += ext
		}

		shift := -cursor / 2
		rk := rankStart + band/2
		for k, i := range row {
			order[nodes[i].ID] = k
			if nodes[i].Pinned {
				continue
			}
			c := axis(dir, centers[k]+shift, rk)
			nodes[i].Position = c.Sub(nodes[i].Size.Half())
			computed = append(computed, i)
		}
		rankStart += band + opts.RankSpacing
	}
	return computed
}

// axis maps cross/rank coordinates onto the drawing plane.
func axis(dir graph.Direction, cross, rank float64) graph.Point {
	if dir.Reversed() {
		rank = -rank
	}
	if dir.Horizontal() {
		return graph.Point{X: rank, Y: cross}
	}
	return graph.Point{X: cross, Y: rank}
}

type rect struct {
	minX, minY, maxX, maxY float64
}

func emptyRect() rect {
	return rect{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}
}

func (r rect) empty() bool { return r.minX > r.maxX }

func (r *rect) extend(n graph.Node) {
	r.minX = min(r.minX, n.Position.X)
	r.minY = min(r.minY, n.Position.Y)
	r.maxX = max(r.maxX, n.Position.X+n.Size.Width)
	r.maxY = max(r.maxY, n.Position.Y+n.Size.Height)
}

func (r rect) pad(p float64) rect {
	return rect{r.minX - p, r.minY - p, r.maxX + p, r.maxY + p}
}

// translate shifts computed nodes so the computed drawing, including the
// padded boxes of groups around computed children, starts at the origin.
func translate(nodes []graph.Node, computed []int, containers map[string]bool, pad float64) {
	if len(computed) == 0 {
		return
	}
	bounds := emptyRect()
	groupBoxes := make(map[string]rect)
	for _, i := range computed {
		bounds.extend(nodes[i])
		if p := nodes[i].Parent; containers[p] {
			box, ok := groupBoxes[p]
			if !ok {
				box = emptyRect()
			}
			box.extend(nodes[i])
			groupBoxes[p] = box
		}
	}
	for _, box := range groupBoxes {
		box = box.pad(pad)
		bounds.minX = min(bounds.minX, box.minX)
		bounds.minY = min(bounds.minY, box.minY)
	}
	offset := graph.Point{X: -bounds.minX, Y: -bounds.minY}
	for _, i := range computed {
		nodes[i].Position = nodes[i].Position.Add(offset)
	}
}

// fitGroups turns every group that contains nodes into the padded bounding
// box of its children. Pinned groups keep their position.
func fitGroups(nodes []graph.Node, containers map[string]bool, pad float64) {
	boxes := make(map[string]rect, len(containers))
	for _, n := range nodes {
		if !containers[n.Parent] {
			continue
		}
		box, ok := boxes[n.Parent]
		if !ok {
			box = emptyRect()
		}
		box.extend(n)
		boxes[n.Parent] = box
	}
	for i := range nodes {
		box, ok := boxes[nodes[i].ID]
		if !ok || box.empty() {
			continue
		}
		box = box.pad(pad)
		nodes[i].Size = graph.Size{Width: box.maxX - box.minX, Height: box.maxY - box.minY}
		if !nodes[i].Pinned {
			nodes[i].Position = graph.Point{X: box.minX, Y: box.minY}
		}
	}
}
