package graph

import "slices"

// Metadata holds display-only key/value pairs. Layout never reads it.
type Metadata map[string]any

// Node is a canonical node. Group containers are nodes too (IsGroup) and are
// listed before regular nodes so consumers see parents first.
type Node struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Type     string    `json:"type"`
	Position Point     `json:"position"`
	Size     Size      `json:"size"`
	Pinned   bool      `json:"pinned,omitempty"`
	Parent   string    `json:"parent,omitempty"` // resolved containing group
	Group    string    `json:"group,omitempty"`  // group tag as declared, used by filters
	Layer    string    `json:"layer,omitempty"`
	IsGroup  bool      `json:"isGroup,omitempty"`
	Style    NodeStyle `json:"style"`
	Meta     Metadata  `json:"metadata,omitempty"`

	// GroupStyle is the opaque container style of group nodes.
	GroupStyle map[string]any `json:"groupStyle,omitempty"`

	Dimmed      bool `json:"dimmed,omitempty"`
	Highlighted bool `json:"highlighted,omitempty"`
}

// Center returns the geometric center of the node box.
func (n Node) Center() Point { return n.Position.Add(n.Size.Half()) }

// Edge is a canonical edge whose endpoints are known to exist.
type Edge struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Target   string    `json:"target"`
	Type     string    `json:"type"`
	Label    string    `json:"label,omitempty"`
	Subtitle string    `json:"subtitle,omitempty"`
	Order    *int      `json:"order,omitempty"`
	Layer    string    `json:"layer,omitempty"`
	Style    EdgeStyle `json:"style"`
	Meta     Metadata  `json:"metadata,omitempty"`

	TimelineState TimelineState `json:"timelineState"`
	SourceHandle  Handle        `json:"sourceHandle,omitempty"`
	TargetHandle  Handle        `json:"targetHandle,omitempty"`
	Dimmed        bool          `json:"dimmed,omitempty"`
}

// Ordered reports whether the edge takes part in the timeline.
func (e Edge) Ordered() bool { return e.Order != nil }

// Group is a declared containment group.
type Group struct {
	ID    string         `json:"id"`
	Label string         `json:"label"`
	Style map[string]any `json:"style,omitempty"`
}

// Settings are the resolved graph-wide settings.
type Settings struct {
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Direction   Direction `json:"direction"`
	NodeSpacing float64   `json:"nodeSpacing,omitempty"`
	RankSpacing float64   `json:"rankSpacing,omitempty"`
}

// Graph is the canonical entity set produced by normalization.
type Graph struct {
	Nodes    []Node   `json:"nodes"`
	Edges    []Edge   `json:"edges"`
	Groups   []Group  `json:"groups,omitempty"`
	Settings Settings `json:"settings"`
}

// NodeIndex maps node IDs to their position in g.Nodes.
func (g *Graph) NodeIndex() map[string]int {
	idx := make(map[string]int, len(g.Nodes))
	for i, n := range g.Nodes {
		idx[n.ID] = i
	}
	return idx
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// NodeIDs returns the IDs of all nodes in order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.Nodes))
	for i, n := range g.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// Clone returns a copy of g whose node and edge slices can be modified
// without affecting g. Metadata and style maps are shared.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return &Graph{}
	}
	return &Graph{
		Nodes:    slices.Clone(g.Nodes),
		Edges:    slices.Clone(g.Edges),
		Groups:   slices.Clone(g.Groups),
		Settings: g.Settings,
	}
}
