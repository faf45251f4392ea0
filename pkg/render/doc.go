// Package render converts exported diagrams between formats.
//
// The [nodelink] subpackage turns a view snapshot into Graphviz DOT and SVG.
// [ToPDF] and [ToPNG] convert that SVG with the external rsvg-convert tool
// from librsvg:
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(snap, nodelink.Options{}))
//	pdf, err := render.ToPDF(svg)
//
// [nodelink]: github.com/matzehuels/graphilizer/pkg/render/nodelink
package render
