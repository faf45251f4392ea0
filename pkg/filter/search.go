package filter

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/graphilizer/pkg/graph"
)

// DefaultLimit is the number of results returned when a query passes no
// positive limit.
const DefaultLimit = 10

// Kind says whether a search item is a node or an edge.
type Kind string

// Search item kinds.
const (
	KindNode Kind = "node"
	KindEdge Kind = "edge"
)

// Item is one searchable entry. Edge items carry their endpoints so a
// selection can focus the source node.
type Item struct {
	Kind   Kind   `json:"kind"`
	ID     string `json:"id"`
	Label  string `json:"label"`
	Type   string `json:"type,omitempty"`
	Color  string `json:"color,omitempty"`
	Source string `json:"source,omitempty"`
	Target string `json:"target,omitempty"`

	text string
}

// SearchIndex is a flat list of nodes then edges, each with a lower-cased
// search text made of its label and metadata values.
type SearchIndex struct {
	items []Item
}

// NewSearchIndex indexes the non-group nodes and then the edges, both in
// input order.
func NewSearchIndex(nodes []graph.Node, edges []graph.Edge) *SearchIndex {
	x := &SearchIndex{items: make([]Item, 0, len(nodes)+len(edges))}
	for _, n := range nodes {
		if n.IsGroup {
			continue
		}
		x.items = append(x.items, Item{
			Kind:  KindNode,
			ID:    n.ID,
			Label: n.Label,
			Type:  n.Type,
			Color: n.Style.Color,
			text:  searchText(n.Label, n.Meta),
		})
	}
	for _, e := range edges {
		x.items = append(x.items, Item{
			Kind:   KindEdge,
			ID:     e.ID,
			Label:  e.Label,
			Type:   e.Type,
			Color:  e.Style.Color,
			Source: e.Source,
			Target: e.Target,
			text:   searchText(e.Label, e.Meta),
		})
	}
	return x
}

// Len returns the number of indexed items.
func (x *SearchIndex) Len() int { return len(x.items) }

// Query returns up to limit items whose search text contains q, compared
// case-insensitively after trimming. Results keep index order, so nodes come
// before edges and earlier input wins. An empty query returns nothing.
func (x *SearchIndex) Query(q string, limit int) []Item {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return nil
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	var out []Item
	for _, it := range x.items {
		if strings.Contains(it.text, q) {
			out = append(out, it)
			if len(out) == limit {
				break
			}
		}
	}
	return out
}

// searchText joins the label and the metadata values, ordered by key.
func searchText(label string, meta graph.Metadata) string {
	parts := []string{label}
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		parts = append(parts, fmt.Sprint(meta[k]))
	}
	return strings.ToLower(strings.Join(parts, " "))
}
