// Package theme resolves node and edge styles from registered type
// definitions, falling back to a deterministic palette color for unknown
// types.
package theme

import (
	"unicode/utf16"

	"github.com/matzehuels/graphilizer/pkg/graph"
)

// DefaultPalette is the fallback color cycle for types without a registered
// color.
var DefaultPalette = []string{
	"#6c9bcf", "#e94560", "#53d769", "#ffd93d", "#a855f7",
	"#f97316", "#06b6d4", "#ec4899", "#84cc16", "#f43f5e",
	"#8b5cf6", "#14b8a6",
}

// DefaultGroupBackground is the container fill of groups that declare none.
const DefaultGroupBackground = "rgba(255,255,255,0.05)"

// Hash is the 31-multiplier string hash over UTF-16 code units with 32-bit
// wraparound. The absolute value is returned as int64 so math.MinInt32 stays
// positive.
func Hash(s string) int64 {
	var h int32
	for _, u := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(u)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}

// Color returns the palette color for a type name. The same name always maps
// to the same color.
func Color(typeName string) string {
	return DefaultPalette[Hash(typeName)%int64(len(DefaultPalette))]
}

// NodeStyle resolves the style of a node type. A registered definition keeps
// its non-empty fields; everything else falls back to defaults.
func NodeStyle(typeName string, defs map[string]graph.NodeTypeDef) graph.NodeStyle {
	style := graph.NodeStyle{
		Color:       Color(typeName),
		BorderStyle: graph.BorderSolid,
		Shape:       graph.DefaultShape,
	}
	def, ok := defs[typeName]
	if !ok {
		return style
	}
	if def.Color != "" {
		style.Color = def.Color
	}
	if def.BorderStyle != "" {
		style.BorderStyle = def.BorderStyle
	}
	if def.Shape != "" {
		style.Shape = def.Shape
	}
	style.Icon = def.Icon
	return style
}

// EdgeStyle resolves the style of an edge type. Unknown dash values fall back
// to solid.
func EdgeStyle(typeName string, defs map[string]graph.EdgeTypeDef) graph.EdgeStyle {
	style := graph.EdgeStyle{Color: Color(typeName), Dash: graph.DashSolid}
	def, ok := defs[typeName]
	if !ok {
		return style
	}
	if def.Color != "" {
		style.Color = def.Color
	}
	switch def.Style {
	case graph.DashDashed, graph.DashDotted:
		style.Dash = def.Style
	}
	style.Animated = def.Animated
	return style
}

// GroupStyle returns the container style of a group with the default
// background filled in. The input map is not modified.
func GroupStyle(style map[string]any) map[string]any {
	out := map[string]any{"backgroundColor": DefaultGroupBackground}
	for k, v := range style {
		out[k] = v
	}
	return out
}
