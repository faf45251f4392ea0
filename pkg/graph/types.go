package graph

import "math"

// =============================================================================
// Geometry
// =============================================================================

// Point is a 2D coordinate. Layout positions are top-left corners.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsOrigin reports whether p is exactly (0,0), which the layout treats as
// "no position supplied".
func (p Point) IsOrigin() bool { return p.X == 0 && p.Y == 0 }

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p translated by -q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Dist returns the Euclidean distance between p and q.
func (p Point) Dist(q Point) float64 { return math.Hypot(p.X-q.X, p.Y-q.Y) }

// Size is the extent of a node box.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Half returns the offset from a box's top-left corner to its center.
func (s Size) Half() Point { return Point{s.Width / 2, s.Height / 2} }

// Default node extent used when placing nodes.
const (
	DefaultNodeWidth  = 200
	DefaultNodeHeight = 60
)

// DefaultSize is the box every regular node gets.
var DefaultSize = Size{Width: DefaultNodeWidth, Height: DefaultNodeHeight}

// =============================================================================
// Styling
// =============================================================================

// Node border styles.
const (
	BorderSolid  = "solid"
	BorderDashed = "dashed"
	BorderDotted = "dotted"
)

// Edge dash styles.
const (
	DashSolid  = "solid"
	DashDashed = "dashed"
	DashDotted = "dotted"
)

// DefaultShape is the node shape used when a type defines none.
const DefaultShape = "default"

// DefaultType is the type tag of nodes and edges that declare none.
const DefaultType = "default"

// NodeStyle is the resolved visual style of a node type.
type NodeStyle struct {
	Color       string `json:"color"`
	Icon        string `json:"icon,omitempty"`
	BorderStyle string `json:"borderStyle"`
	Shape       string `json:"shape"`
}

// EdgeStyle is the resolved visual style of an edge type.
type EdgeStyle struct {
	Color    string `json:"color"`
	Dash     string `json:"dash"`
	Animated bool   `json:"animated,omitempty"`
}

// =============================================================================
// Anchors & timeline classification
// =============================================================================

// Handle names the side of a node an edge attaches to. Source handles are
// prefixed "s-", target handles "t-".
type Handle string

// The eight anchor identifiers.
const (
	SourceTop    Handle = "s-top"
	SourceBottom Handle = "s-bottom"
	SourceLeft   Handle = "s-left"
	SourceRight  Handle = "s-right"
	TargetTop    Handle = "t-top"
	TargetBottom Handle = "t-bottom"
	TargetLeft   Handle = "t-left"
	TargetRight  Handle = "t-right"
)

// TimelineState classifies an ordered edge relative to the timeline cursor.
type TimelineState string

// Timeline classifications. Unordered edges, and every edge before the user
// engages the timeline, stay TimelineNone.
const (
	TimelineNone   TimelineState = "none"
	TimelinePast   TimelineState = "past"
	TimelineActive TimelineState = "active"
	TimelineFuture TimelineState = "future"
)

// =============================================================================
// Direction
// =============================================================================

// Direction is the flow of the hierarchical layout.
type Direction string

// Layout directions.
const (
	DirectionTB Direction = "TB" // top to bottom
	DirectionBT Direction = "BT" // bottom to top
	DirectionLR Direction = "LR" // left to right
	DirectionRL Direction = "RL" // right to left
)

// ParseDirection converts s into a Direction. The empty string maps to
// DirectionTB; any other unknown value reports false.
func ParseDirection(s string) (Direction, bool) {
	switch d := Direction(s); d {
	case DirectionTB, DirectionBT, DirectionLR, DirectionRL:
		return d, true
	case "":
		return DirectionTB, true
	}
	return DirectionTB, false
}

// Horizontal reports whether ranks advance along the x axis.
func (d Direction) Horizontal() bool { return d == DirectionLR || d == DirectionRL }

// Reversed reports whether ranks advance towards negative coordinates.
func (d Direction) Reversed() bool { return d == DirectionBT || d == DirectionRL }
