// Package ordering decides the left-to-right order of nodes inside each rank
// of a layered graph.
//
// The input is a [dag.DAG] whose edges join consecutive rows only (see
// transform.Subdivide). Orderers return, for every row, the node IDs in their
// final order. Nodes that share a Cluster are always kept contiguous so group
// boxes do not interleave.
package ordering

import (
	"cmp"
	"slices"

	"github.com/matzehuels/graphilizer/pkg/dag"
)

// Orderer computes a node order for every row of g.
type Orderer interface {
	OrderRows(g *dag.DAG) map[int][]string
}

// DefaultPasses is the number of sweeps Barycentric runs when Passes is zero.
const DefaultPasses = 24

// Barycentric orders rows with alternating barycenter sweeps.
//
// Even passes sweep downwards, placing each node at the mean position of its
// parents in the row above; odd passes sweep upwards using children. Nodes
// without neighbors in the reference row keep their current position as key.
// Ties keep the current relative order, which starts as insertion order, so
// the result is fully determined by the input. After every pass the total
// crossing count is measured and the best ordering seen is returned.
type Barycentric struct {
	Passes int
}

// OrderRows implements [Orderer].
func (b Barycentric) OrderRows(g *dag.DAG) map[int][]string {
	rows := g.RowIDs()
	if len(rows) == 0 {
		return map[int][]string{}
	}

	orders := make(map[int][]string, len(rows))
	for _, r := range rows {
		orders[r] = Cluster(g, dag.NodeIDs(g.NodesInRow(r)))
	}

	best := clone(orders)
	bestCrossings := dag.CountCrossings(g, orders)
	if bestCrossings == 0 {
		return best
	}

	passes := b.Passes
	if passes <= 0 {
		passes = DefaultPasses
	}
	for p := range passes {
		if p%2 == 0 {
			for i := 1; i < len(rows); i++ {
				orders[rows[i]] = sweep(g, orders[rows[i]], orders[rows[i-1]], true)
			}
		} else {
			for i := len(rows) - 2; i >= 0; i-- {
				orders[rows[i]] = sweep(g, orders[rows[i]], orders[rows[i+1]], false)
			}
		}
		if c := dag.CountCrossings(g, orders); c < bestCrossings {
			best, bestCrossings = clone(orders), c
			if c == 0 {
				break
			}
		}
	}
	return best
}

// sweep reorders row by the barycenters of each node's neighbors in ref.
// down selects parents (ref is the row above) rather than children.
func sweep(g *dag.DAG, row, ref []string, down bool) []string {
	refPos := dag.PosMap(ref)
	keys := make(map[string]float64, len(row))
	for i, id := range row {
		var neighbors []string
		if down {
			neighbors = g.Parents(id)
		} else {
			neighbors = g.Children(id)
		}
		sum, n := 0.0, 0
		for _, nb := range neighbors {
			if p, ok := refPos[nb]; ok {
				sum += float64(p)
				n++
			}
		}
		if n == 0 {
			keys[id] = float64(i)
		} else {
			keys[id] = sum / float64(n)
		}
	}
	return sortClustered(g, row, keys)
}

type unit struct {
	members []string
	key     float64
	first   int
}

// sortClustered sorts row by key while keeping each cluster contiguous.
// Clusters are ranked by the mean key of their members.
func sortClustered(g *dag.DAG, row []string, keys map[string]float64) []string {
	pos := dag.PosMap(row)
	units := groupUnits(g, row)
	for _, u := range units {
		slices.SortStableFunc(u.members, func(a, b string) int {
			return cmp.Or(cmp.Compare(keys[a], keys[b]), cmp.Compare(pos[a], pos[b]))
		})
		sum := 0.0
		for _, m := range u.members {
			sum += keys[m]
		}
		u.key = sum / float64(len(u.members))
	}
	slices.SortStableFunc(units, func(a, b *unit) int {
		return cmp.Or(cmp.Compare(a.key, b.key), cmp.Compare(a.first, b.first))
	})

	out := make([]string, 0, len(row))
	for _, u := range units {
		out = append(out, u.members...)
	}
	return out
}

// Cluster makes nodes of the same cluster contiguous, placing every cluster
// where its first member appears. Unclustered nodes keep their place.
func Cluster(g *dag.DAG, row []string) []string {
	out := make([]string, 0, len(row))
	for _, u := range groupUnits(g, row) {
		out = append(out, u.members...)
	}
	return out
}

func groupUnits(g *dag.DAG, row []string) []*unit {
	var units []*unit
	byCluster := make(map[string]*unit)
	for i, id := range row {
		var cluster string
		if n, ok := g.Node(id); ok {
			cluster = n.Cluster
		}
		if cluster == "" {
			units = append(units, &unit{members: []string{id}, first: i})
			continue
		}
		u, ok := byCluster[cluster]
		if !ok {
			u = &unit{first: i}
			byCluster[cluster] = u
			units = append(units, u)
		}
		u.members = append(u.members, id)
	}
	return units
}

func clone(orders map[int][]string) map[int][]string {
	out := make(map[int][]string, len(orders))
	for r, ids := range orders {
		out[r] = slices.Clone(ids)
	}
	return out
}
