// Package transform turns an arbitrary directed graph into the layered form
// the hierarchical layout works on.
//
// The steps run in this order:
//
//	removed := transform.BreakCycles(g) // acyclic, removed edges reported
//	transform.AssignLayers(g)           // longest-path ranks
//	transform.Subdivide(g)              // consecutive-row edges only
//
// After the three steps [dag.DAG.Validate] succeeds.
//
// # Cycle Breaking
//
// [BreakCycles] runs a white/gray/black depth-first search and drops every
// edge that closes a cycle. Traversal follows insertion order, so repeated
// runs on the same input break the same edges.
//
// # Layer Assignment
//
// [AssignLayers] places sources on row 0 and every other node one row below
// its deepest parent.
//
// # Edge Subdivision
//
// [Subdivide] inserts virtual nodes on long edges so the barycenter sweeps and
// the crossing counter only deal with adjacent rows. Virtual nodes are not
// part of the layout result; they only steer the ordering.
package transform
