package layout

import (
	"math"
	"slices"

	"github.com/matzehuels/graphilizer/pkg/graph"
)

// AssignAnchors picks, for every edge, the side of each endpoint that faces
// the other endpoint. When the horizontal distance between the box centers
// dominates, the edge leaves and enters through left/right sides, otherwise
// through top/bottom. Edges with an endpoint missing from nodes are returned
// unchanged. The input slice is not modified.
func AssignAnchors(nodes []graph.Node, edges []graph.Edge) []graph.Edge {
	centers := make(map[string]graph.Point, len(nodes))
	for _, n := range nodes {
		centers[n.ID] = n.Center()
	}

	out := slices.Clone(edges)
	for i := range out {
		s, okS := centers[out[i].Source]
		t, okT := centers[out[i].Target]
		if !okS || !okT {
			continue
		}
		out[i].SourceHandle, out[i].TargetHandle = anchors(t.Sub(s))
	}
	return out
}

func anchors(delta graph.Point) (source, target graph.Handle) {
	if math.Abs(delta.X) > math.Abs(delta.Y) {
		if delta.X > 0 {
			return graph.SourceRight, graph.TargetLeft
		}
		return graph.SourceLeft, graph.TargetRight
	}
	if delta.Y > 0 {
		return graph.SourceBottom, graph.TargetTop
	}
	return graph.SourceTop, graph.TargetBottom
}
