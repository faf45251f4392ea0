// Package view composes the engine into one consistent, observable state.
//
// A [Coordinator] owns the inputs of a view: the normalized graph, the
// layout direction, the selected focus center and depth, the filter toggles
// and the timeline cursor. Every control method applies one transition and
// derives a complete new [Snapshot]:
//
//  1. hierarchical layout of the whole graph, or a radial layout of the
//     focus neighborhood when a center is selected
//  2. edge anchors for the positioned nodes
//  3. dimming from the filter match sets
//  4. timeline classification and highlighting within the current scope
//
// Snapshots are immutable once published, so a reader holding one never
// sees a half-applied change. Layouts are memoized in a bounded LRU keyed by
// the structural content hash of the graph, so toggling filters or scrubbing
// the timeline never lays anything out again.
//
// A Coordinator is not safe for concurrent use. The HTTP adapter guards each
// one with its own mutex.
package view
