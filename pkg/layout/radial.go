package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/graphilizer/pkg/focus"
	"github.com/matzehuels/graphilizer/pkg/graph"
)

// Radial positions a focus subgraph on concentric rings around center.
//
// The center sits at the origin and ring d (the BFS distance from the center
// inside this subset) has radius d × RingRadius. A ring with n nodes spaces
// them 2π/n apart starting at angle 0; odd rings with more than one node are
// rotated by π/n so their spokes do not line up with the ring inside. Nodes
// the center cannot reach are placed on the ring after the deepest one.
//
// Returned positions are top-left corners; use [RadialCenter] for the point
// that lies on the ring. Containment is cleared, since focus mode shows a
// flat subgraph. The input slice is not modified.
func Radial(nodes []graph.Node, edges []graph.Edge, center string, opts RadialOptions) []graph.Node {
	opts = opts.withDefaults()
	out := slices.Clone(nodes)
	if len(out) == 0 {
		return out
	}

	ids := make([]string, len(out))
	for i := range out {
		ids[i] = out[i].ID
		out[i].Parent = ""
		if out[i].Size == (graph.Size{}) {
			out[i].Size = graph.DefaultSize
		}
	}

	dist := focus.NewIndex(ids, edges).Distances(center, focus.MaxDepth)
	deepest := 0
	for _, d := range dist {
		deepest = max(deepest, d)
	}

	rings := make(map[int][]int)
	for i, id := range ids {
		d, ok := dist[id]
		if !ok {
			d = deepest + 1
		}
		rings[d] = append(rings[d], i)
	}

	for d, members := range rings {
		n := len(members)
		offset := 0.0
		if d%2 == 1 && n > 1 {
			offset = math.Pi / float64(n)
		}
		r := float64(d) * opts.RingRadius
		for k, i := range members {
			angle := offset + 2*math.Pi*float64(k)/float64(n)
			c := graph.Point{X: r * math.Cos(angle), Y: r * math.Sin(angle)}
			if d == 0 {
				c = graph.Point{}
			}
			out[i].Position = c.Sub(out[i].Size.Half())
		}
	}
	return out
}

// RadialCenter returns the point of a radially placed node that lies on its
// ring: the center of its box.
func RadialCenter(n graph.Node) graph.Point { return n.Center() }
