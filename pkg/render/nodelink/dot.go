package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/render"
	"github.com/matzehuels/graphilizer/pkg/view"
)

// pointsPerInch converts engine units (treated as points) for Graphviz.
const pointsPerInch = 72.0

const dimColor = "#c8c8c8"

// Options configures DOT generation.
type Options struct {
	// Relayout drops the engine's positions and lets Graphviz lay out.
	Relayout bool
	// Detailed appends metadata lines to node labels.
	Detailed bool
}

// ToDOT converts a snapshot to Graphviz DOT source.
func ToDOT(s *view.Snapshot, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Relayout {
		fmt.Fprintf(&buf, "  rankdir=%s;\n", rankdir(s.Direction))
		buf.WriteString("  ranksep=0.6;\n  nodesep=0.4;\n")
	} else {
		buf.WriteString("  layout=neato;\n")
		fmt.Fprintf(&buf, "  inputscale=%g;\n", pointsPerInch)
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=11];\n\n")

	members := map[string][]graph.Node{}
	for _, n := range s.Nodes {
		if n.Parent != "" && opts.Relayout {
			members[n.Parent] = append(members[n.Parent], n)
		}
	}

	for _, n := range s.Nodes {
		switch {
		case n.IsGroup && opts.Relayout:
			writeCluster(&buf, n, members[n.ID], opts)
		case n.Parent != "" && opts.Relayout:
			// written inside its cluster
		default:
			writeNode(&buf, "  ", n, opts)
		}
	}
	buf.WriteString("\n")
	for _, e := range s.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", e.Source, e.Target, strings.Join(edgeAttrs(e), ", "))
	}
	buf.WriteString("}\n")
	return buf.String()
}

func writeCluster(buf *bytes.Buffer, g graph.Node, members []graph.Node, opts Options) {
	fmt.Fprintf(buf, "  subgraph %q {\n", "cluster_"+g.ID)
	fmt.Fprintf(buf, "    label=%q;\n    style=\"rounded,dashed\";\n", g.Label)
	if bg, ok := g.GroupStyle["backgroundColor"].(string); ok {
		fmt.Fprintf(buf, "    bgcolor=%q;\n", bg)
	}
	for _, n := range members {
		writeNode(buf, "    ", n, opts)
	}
	buf.WriteString("  }\n")
}

func writeNode(buf *bytes.Buffer, indent string, n graph.Node, opts Options) {
	fmt.Fprintf(buf, "%s%q [%s];\n", indent, n.ID, strings.Join(nodeAttrs(n, opts), ", "))
}

func nodeAttrs(n graph.Node, opts Options) []string {
	attrs := []string{fmt.Sprintf("label=%q", label(n, opts.Detailed))}

	fill := n.Style.Color
	if n.Dimmed {
		attrs = append(attrs, fmt.Sprintf("fontcolor=%q", dimColor), fmt.Sprintf("color=%q", dimColor))
		fill = "white"
	}
	if fill != "" {
		attrs = append(attrs, fmt.Sprintf("fillcolor=%q", fill))
	}
	if n.IsGroup {
		attrs = append(attrs, `style="rounded,dashed"`, "fillcolor=\"none\"")
	} else if st := border(n.Style.BorderStyle); st != "" {
		attrs = append(attrs, fmt.Sprintf("style=%q", "rounded,filled,"+st))
	}
	if n.Highlighted {
		attrs = append(attrs, "penwidth=3")
	}

	if !opts.Relayout {
		c := n.Center()
		// Graphviz y grows upwards.
		attrs = append(attrs,
			fmt.Sprintf("pos=\"%g,%g!\"", c.X, -c.Y),
			fmt.Sprintf("width=%g", n.Size.Width/pointsPerInch),
			fmt.Sprintf("height=%g", n.Size.Height/pointsPerInch),
			"fixedsize=true",
		)
	}
	return attrs
}

func label(n graph.Node, detailed bool) string {
	if !detailed || len(n.Meta) == 0 {
		return n.Label
	}
	lines := []string{n.Label}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		lines = append(lines, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return strings.Join(lines, "\n")
}

func border(style string) string {
	switch style {
	case graph.BorderDashed:
		return "dashed"
	case graph.BorderDotted:
		return "dotted"
	}
	return ""
}

func edgeAttrs(e graph.Edge) []string {
	var attrs []string
	if e.Label != "" {
		attrs = append(attrs, fmt.Sprintf("label=%q", e.Label))
	}
	color := e.Style.Color
	if e.Dimmed {
		color = dimColor
	}
	if color != "" {
		attrs = append(attrs, fmt.Sprintf("color=%q", color))
	}

	style := ""
	switch e.Style.Dash {
	case graph.DashDashed:
		style = "dashed"
	case graph.DashDotted:
		style = "dotted"
	}
	switch e.TimelineState {
	case graph.TimelineActive:
		attrs = append(attrs, "penwidth=3")
	case graph.TimelineFuture:
		style = "dotted"
	}
	if style != "" {
		attrs = append(attrs, "style="+style)
	}
	if e.SourceHandle != "" {
		attrs = append(attrs, "tailport="+port(e.SourceHandle))
	}
	if e.TargetHandle != "" {
		attrs = append(attrs, "headport="+port(e.TargetHandle))
	}
	return attrs
}

// port maps an anchor to a Graphviz compass point.
func port(h graph.Handle) string {
	_, side, _ := strings.Cut(string(h), "-")
	switch side {
	case "top":
		return "n"
	case "bottom":
		return "s"
	case "left":
		return "w"
	case "right":
		return "e"
	}
	return "_"
}

func rankdir(d graph.Direction) string {
	if _, ok := graph.ParseDirection(string(d)); !ok || d == "" {
		return string(graph.DirectionTB)
	}
	return string(d)
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return fitViewBox(buf.Bytes()), nil
}

var (
	svgOpenRe = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([-0-9.]+)\s+([-0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// fitViewBox replaces Graphviz's pt-sized root element with one that scales
// to its container.
func fitViewBox(svg []byte) []byte {
	m := viewBoxRe.FindSubmatch(svg)
	if m == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(m[3]), 64)
	h, _ := strconv.ParseFloat(string(m[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	open := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgOpenRe.ReplaceAll(svg, []byte(open))
}

// RenderPDF renders DOT source to PDF. Requires rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}

// RenderPNG renders DOT source to PNG at the given scale. Requires
// rsvg-convert.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}
