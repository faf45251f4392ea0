// Package layout computes node geometry.
//
// # Hierarchical Layout
//
// [Hierarchical] draws the full graph as layers. It is a Sugiyama-style
// pipeline over the ranking graph of package dag:
//
//  1. cycles are broken (transform.BreakCycles) and reported
//  2. nodes are ranked by longest path (transform.AssignLayers)
//  3. long edges are split into virtual nodes (transform.Subdivide)
//  4. ranks are ordered to reduce crossings (ordering.Barycentric)
//  5. ranks are packed along the cross axis and mapped onto the direction
//
// Group nodes that contain other nodes become the padded bounding box of
// their children. Nodes with a pinned input position keep it.
//
// # Radial Layout
//
// [Radial] places a focus subgraph on concentric rings around a center. Ring
// membership is the undirected BFS distance inside the subgraph.
//
// # Anchors
//
// [AssignAnchors] chooses the connection side of every edge endpoint from the
// relative position of the two boxes. Run it after either layout.
//
// All functions are pure: inputs are never modified and equal inputs give
// equal outputs.
package layout
