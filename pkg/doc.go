// Package pkg provides the core libraries for Graphilizer graph views.
//
// # Overview
//
// Graphilizer turns declarative graph documents into interactive views of a
// system's architecture: a hierarchical overview, a radial view around a
// focused node, filtered views and an ordered edge timeline. The pkg
// directory is organized into these areas:
//
//  1. [graph], [normalize] - Document formats and the canonical graph model
//  2. [dag], [layout] - Ranking graph, hierarchical and radial layout, edge anchors
//  3. [focus], [filter], [timeline] - Neighborhoods, visibility and playback
//  4. [view] - The coordinator that derives immutable snapshots from user actions
//  5. [pipeline], [cache], [render] - Orchestration, caching and export
//  6. [config], [session], [observability] - Settings, server sessions and hooks
//
// # Architecture
//
// The typical data flow:
//
//	JSON / YAML / TOML document
//	         ↓
//	    [normalize] package (defaults, styles, integrity report)
//	         ↓
//	    [layout] package (positions, edge anchors)
//	         ↓
//	    [view] package (focus + filters + timeline → snapshot)
//	         ↓
//	    SVG/PNG/PDF/DOT/JSON output
//
// # Quick Start
//
// Load a document and derive a focused view:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/graphilizer/pkg/pipeline"
//	)
//
//	opts := pipeline.Options{Path: "architecture.yaml", Center: "api", Depth: 2}
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), opts)
//	// res.Snapshot holds positioned nodes, edges with anchors and the
//	// timeline state for the focused view.
//
// For interactive use keep a [view.Coordinator] and feed it actions:
//
//	c := pipeline.BuildView(g, report, lay, opts)
//	snap := c.SelectNode("db")
//	snap = c.ToggleType("queue")
//	snap = c.Play()
//
// [graph]: github.com/matzehuels/graphilizer/pkg/graph
// [normalize]: github.com/matzehuels/graphilizer/pkg/normalize
// [dag]: github.com/matzehuels/graphilizer/pkg/dag
// [layout]: github.com/matzehuels/graphilizer/pkg/layout
// [focus]: github.com/matzehuels/graphilizer/pkg/focus
// [filter]: github.com/matzehuels/graphilizer/pkg/filter
// [timeline]: github.com/matzehuels/graphilizer/pkg/timeline
// [view]: github.com/matzehuels/graphilizer/pkg/view
// [view.Coordinator]: github.com/matzehuels/graphilizer/pkg/view#Coordinator
// [pipeline]: github.com/matzehuels/graphilizer/pkg/pipeline
// [cache]: github.com/matzehuels/graphilizer/pkg/cache
// [render]: github.com/matzehuels/graphilizer/pkg/render
// [config]: github.com/matzehuels/graphilizer/pkg/config
// [session]: github.com/matzehuels/graphilizer/pkg/session
// [observability]: github.com/matzehuels/graphilizer/pkg/observability
package pkg
