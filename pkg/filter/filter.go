// Package filter derives which nodes and edges match the user's tag toggles
// and answers text searches over the graph.
//
// Filters never move geometry. The view layer uses the match result only to
// set the Dimmed flag of nodes and edges.
package filter

import (
	"slices"

	"github.com/matzehuels/graphilizer/pkg/graph"
)

// State holds the disabled type, group and layer tags. The three sets are
// independent: disabling a group only excludes nodes tagged with that group,
// it does not cascade into types or layers.
//
// State is a value: every toggle returns the next state and leaves the
// receiver untouched. The zero value has every tag enabled.
type State struct {
	types  tagSet
	groups tagSet
	layers tagSet
}

type tagSet map[string]struct{}

func (s tagSet) has(tag string) bool {
	_, ok := s[tag]
	return ok
}

// toggle returns a copy of s with tag added or removed.
func (s tagSet) toggle(tag string) tagSet {
	out := make(tagSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	if s.has(tag) {
		delete(out, tag)
	} else {
		out[tag] = struct{}{}
	}
	return out
}

func (s tagSet) sorted() []string {
	tags := make([]string, 0, len(s))
	for k := range s {
		tags = append(tags, k)
	}
	slices.Sort(tags)
	return tags
}

// ToggleType flips whether nodes of the given type are shown.
func (s State) ToggleType(tag string) State {
	s.types = s.types.toggle(tag)
	return s
}

// ToggleGroup flips whether nodes tagged with the given group are shown.
func (s State) ToggleGroup(tag string) State {
	s.groups = s.groups.toggle(tag)
	return s
}

// ToggleLayer flips whether nodes and edges on the given layer are shown.
func (s State) ToggleLayer(tag string) State {
	s.layers = s.layers.toggle(tag)
	return s
}

// TypeEnabled reports whether nodes of type tag are shown.
func (s State) TypeEnabled(tag string) bool { return !s.types.has(tag) }

// GroupEnabled reports whether nodes tagged with group tag are shown.
func (s State) GroupEnabled(tag string) bool { return !s.groups.has(tag) }

// LayerEnabled reports whether layer tag is shown.
func (s State) LayerEnabled(tag string) bool { return !s.layers.has(tag) }

// DisabledTypes returns the disabled type tags in lexical order.
func (s State) DisabledTypes() []string { return s.types.sorted() }

// DisabledGroups returns the disabled group tags in lexical order.
func (s State) DisabledGroups() []string { return s.groups.sorted() }

// DisabledLayers returns the disabled layer tags in lexical order.
func (s State) DisabledLayers() []string { return s.layers.sorted() }

// IDSet is a set of node or edge IDs.
type IDSet map[string]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Result is the outcome of [State.Match].
type Result struct {
	NodeIDs IDSet
	EdgeIDs IDSet
	// TotalCount is the number of non-group nodes considered.
	TotalCount int
}

// MatchCount returns the number of matching nodes.
func (r Result) MatchCount() int { return len(r.NodeIDs) }

// Match computes the matching node and edge sets for g.
//
// A node matches when it is not a group node and its type, group tag and
// layer (when set) are all enabled. An edge matches when its layer (when set)
// is enabled and both endpoints match.
func (s State) Match(g *graph.Graph) Result {
	res := Result{NodeIDs: IDSet{}, EdgeIDs: IDSet{}}
	if g == nil {
		return res
	}
	for _, n := range g.Nodes {
		if n.IsGroup {
			continue
		}
		res.TotalCount++
		if !s.TypeEnabled(n.Type) {
			continue
		}
		if n.Group != "" && !s.GroupEnabled(n.Group) {
			continue
		}
		if n.Layer != "" && !s.LayerEnabled(n.Layer) {
			continue
		}
		res.NodeIDs[n.ID] = struct{}{}
	}
	for _, e := range g.Edges {
		if e.Layer != "" && !s.LayerEnabled(e.Layer) {
			continue
		}
		if res.NodeIDs.Has(e.Source) && res.NodeIDs.Has(e.Target) {
			res.EdgeIDs[e.ID] = struct{}{}
		}
	}
	return res
}

// Tags lists the type, group and layer tags of a graph.
type Tags struct {
	Types  []string `json:"types"`
	Groups []string `json:"groups"`
	Layers []string `json:"layers"`
}

// Available returns every tag present in g, each list in order of first
// appearance. Group nodes contribute no tags; layers come from nodes and
// then edges.
func Available(g *graph.Graph) Tags {
	var t Tags
	if g == nil {
		return t
	}
	seen := map[string]bool{}
	add := func(list *[]string, kind, tag string) {
		if tag == "" || seen[kind+"\x00"+tag] {
			return
		}
		seen[kind+"\x00"+tag] = true
		*list = append(*list, tag)
	}
	for _, n := range g.Nodes {
		if n.IsGroup {
			continue
		}
		add(&t.Types, "type", n.Type)
		add(&t.Groups, "group", n.Group)
		add(&t.Layers, "layer", n.Layer)
	}
	for _, e := range g.Edges {
		add(&t.Layers, "layer", e.Layer)
	}
	return t
}

// Active returns the subset of available tags that are enabled in s.
func (s State) Active(available Tags) Tags {
	keep := func(tags []string, enabled func(string) bool) []string {
		var out []string
		for _, tag := range tags {
			if enabled(tag) {
				out = append(out, tag)
			}
		}
		return out
	}
	return Tags{
		Types:  keep(available.Types, s.TypeEnabled),
		Groups: keep(available.Groups, s.GroupEnabled),
		Layers: keep(available.Layers, s.LayerEnabled),
	}
}
