// Package nodelink exports a view snapshot as a Graphviz diagram.
//
// [ToDOT] writes DOT source for a [view.Snapshot]. By default the engine's
// own coordinates are kept: nodes are pinned with pos="x,y!" and the graph
// asks for the neato engine, so the export looks like the interactive view.
// With Options.Relayout the positions are dropped and Graphviz's dot engine
// lays the graph out itself, with groups drawn as clusters.
//
// Dimmed entities are greyed out, highlighted nodes get a heavy border and
// timeline states change edge weight: active edges are bold, future edges
// dotted.
//
// [RenderSVG] renders DOT in-process with [github.com/goccy/go-graphviz];
// the parent render package converts SVG to PDF or PNG.
//
// [view.Snapshot]: github.com/matzehuels/graphilizer/pkg/view.Snapshot
package nodelink
