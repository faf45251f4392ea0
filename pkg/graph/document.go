package graph

// =============================================================================
// Document - raw input schema
// =============================================================================

// Document is the declarative input as written by users. It is decoded from
// JSON, YAML or TOML and handed to normalization unchanged; nothing here is
// validated yet.
//
//	{
//	  "nodes":  [{"id": "api", "type": "service", "group": "backend"}],
//	  "edges":  [{"source": "api", "target": "db", "order": 1}],
//	  "groups": [{"id": "backend", "label": "Backend"}],
//	  "settings": {"layout": {"direction": "LR"}}
//	}
type Document struct {
	Nodes    []DocNode   `json:"nodes"`
	Edges    []DocEdge   `json:"edges"`
	Groups   []DocGroup  `json:"groups"`
	Settings DocSettings `json:"settings"`
}

// DocNode is a node record of the input schema.
type DocNode struct {
	ID       string         `json:"id"`
	Label    string         `json:"label,omitempty"`
	Type     string         `json:"type,omitempty"`
	Position *Point         `json:"position,omitempty"`
	Group    string         `json:"group,omitempty"`
	Layer    string         `json:"layer,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DocEdge is an edge record of the input schema.
type DocEdge struct {
	ID       string         `json:"id,omitempty"`
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Type     string         `json:"type,omitempty"`
	Label    string         `json:"label,omitempty"`
	Order    *int           `json:"order,omitempty"`
	Subtitle string         `json:"subtitle,omitempty"`
	Layer    string         `json:"layer,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// DocGroup is a group record of the input schema.
type DocGroup struct {
	ID    string         `json:"id"`
	Label string         `json:"label,omitempty"`
	Style map[string]any `json:"style,omitempty"`
}

// DocSettings holds layout parameters and per-type style definitions.
type DocSettings struct {
	Layout      DocLayout              `json:"layout"`
	NodeTypes   map[string]NodeTypeDef `json:"nodeTypes,omitempty"`
	EdgeTypes   map[string]EdgeTypeDef `json:"edgeTypes,omitempty"`
	Title       string                 `json:"title,omitempty"`
	Description string                 `json:"description,omitempty"`
}

// DocLayout is the layout section of the settings. Zero spacing means
// "use the default".
type DocLayout struct {
	Direction   string  `json:"direction,omitempty"`
	NodeSpacing float64 `json:"nodeSpacing,omitempty"`
	RankSpacing float64 `json:"rankSpacing,omitempty"`
}

// NodeTypeDef is a registered node type. Empty fields fall back to defaults.
type NodeTypeDef struct {
	Color       string `json:"color,omitempty"`
	Icon        string `json:"icon,omitempty"`
	BorderStyle string `json:"borderStyle,omitempty"`
	Shape       string `json:"shape,omitempty"`
}

// EdgeTypeDef is a registered edge type. Empty fields fall back to defaults.
type EdgeTypeDef struct {
	Color    string `json:"color,omitempty"`
	Style    string `json:"style,omitempty"`
	Animated bool   `json:"animated,omitempty"`
}
