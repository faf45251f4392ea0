// Package dag provides the ranking graph used by the hierarchical layout.
//
// # Overview
//
// Nodes live in an arena: each one is addressed by the index at which it was
// added, and adjacency lists store indices rather than pointers. Every query
// that returns several nodes returns them in insertion order, which is what
// keeps layouts deterministic for identical input.
//
// Each node carries a Row (its rank once layering has run). Edges may connect
// any two nodes while the graph is being built; [DAG.Validate] checks the
// final layered form, where every edge joins consecutive rows and no cycle
// remains.
//
// # Basic Usage
//
//	g := dag.New()
//	g.AddNode(dag.Node{ID: "api"})
//	g.AddNode(dag.Node{ID: "db"})
//	g.AddEdge(dag.Edge{From: "api", To: "db"})
//
// Query the graph with [DAG.Children], [DAG.Parents], [DAG.NodesInRow] and
// related methods. Index-based accessors ([DAG.Index], [DAG.At],
// [DAG.ChildIndices]) serve the inner loops of the layout code.
//
// # Node Kinds
//
//   - [NodeKindRegular]: vertices of the input graph
//   - [NodeKindSubdivider]: virtual nodes splitting an edge that spans
//     several rows, linked back to the edge source by [Node.MasterID]
//
// # Edge Crossings
//
// [CountCrossings] and [CountLayerCrossings] count inversions with a Fenwick
// tree in O(E log V), so the ordering heuristics can score many candidate
// orderings cheaply.
//
// # Cycles
//
// [StronglyConnected] reports the cycles of the input graph using gonum's
// Tarjan implementation. The layout reports them to callers; the transform
// package is what actually breaks them.
//
// # Concurrency
//
// DAG is not safe for concurrent use. Build and transform it from a single
// goroutine.
package dag
