// Package normalize turns a raw [graph.Document] into the canonical
// [graph.Graph] the layout and view layers work on.
//
// Normalization is pure and never fails. Data-integrity problems are
// collected in a [Report] and the offending record (or only its containment)
// is dropped, so processing always continues with the valid subset.
package normalize

import (
	"fmt"

	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/theme"
)

// IssueKind classifies a data-integrity problem.
type IssueKind string

// Issue kinds reported by [Normalize].
const (
	IssueDanglingEdge     IssueKind = "dangling-edge"
	IssueUnknownGroup     IssueKind = "unknown-group"
	IssueDuplicateID      IssueKind = "duplicate-id"
	IssueDuplicateEdgeID  IssueKind = "duplicate-edge-id"
	IssueMissingID        IssueKind = "missing-id"
	IssueInvalidOrder     IssueKind = "invalid-order"
	IssueInvalidDirection IssueKind = "invalid-direction"
)

// Issue is one data-integrity finding.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Subject string    `json:"subject"`
	Detail  string    `json:"detail"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s %s: %s", i.Kind, i.Subject, i.Detail)
}

// Report lists everything normalization had to drop or repair.
type Report struct {
	Issues []Issue `json:"issues,omitempty"`
}

// Count returns the number of issues of the given kind.
func (r Report) Count(kind IssueKind) int {
	n := 0
	for _, i := range r.Issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

// Empty reports whether normalization found nothing to repair.
func (r Report) Empty() bool { return len(r.Issues) == 0 }

func (r *Report) add(kind IssueKind, subject, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Kind: kind, Subject: subject, Detail: fmt.Sprintf(format, args...)})
}

// Options override document settings.
type Options struct {
	// Direction replaces the document's layout direction when set.
	Direction graph.Direction
	// NodeSpacing and RankSpacing replace the document's spacing when > 0.
	NodeSpacing float64
	RankSpacing float64
}

// Normalize builds the canonical graph from doc.
//
// Groups become group nodes and are emitted before regular nodes. Labels
// default to IDs, types to "default", and styles are resolved through the
// theme package. Edges without an ID get "source-target", suffixed with
// "-2", "-3", ... when that ID is taken, so parallel edges survive. Containment is only
// kept when a node's group exists; groups never carry a parent themselves, so
// containment chains cannot form cycles.
func Normalize(doc *graph.Document, opts Options) (*graph.Graph, Report) {
	var rep Report
	if doc == nil {
		doc = &graph.Document{}
	}

	g := &graph.Graph{Settings: settings(doc.Settings, opts, &rep)}
	seen := make(map[string]bool, len(doc.Groups)+len(doc.Nodes))
	groups := make(map[string]bool, len(doc.Groups))

	for i, dg := range doc.Groups {
		if dg.ID == "" {
			rep.add(IssueMissingID, fmt.Sprintf("groups[%d]", i), "group without id dropped")
			continue
		}
		if seen[dg.ID] {
			rep.add(IssueDuplicateID, dg.ID, "repeated group id dropped")
			continue
		}
		seen[dg.ID] = true
		groups[dg.ID] = true
		label := orDefault(dg.Label, dg.ID)
		g.Groups = append(g.Groups, graph.Group{ID: dg.ID, Label: label, Style: dg.Style})
		g.Nodes = append(g.Nodes, graph.Node{
			ID:         dg.ID,
			Label:      label,
			Type:       "group",
			IsGroup:    true,
			GroupStyle: theme.GroupStyle(dg.Style),
		})
	}

	for i, dn := range doc.Nodes {
		if dn.ID == "" {
			rep.add(IssueMissingID, fmt.Sprintf("nodes[%d]", i), "node without id dropped")
			continue
		}
		if seen[dn.ID] {
			rep.add(IssueDuplicateID, dn.ID, "repeated node id dropped")
			continue
		}
		seen[dn.ID] = true
		g.Nodes = append(g.Nodes, node(dn, doc.Settings.NodeTypes, groups, &rep))
	}

	edgeIDs := make(map[string]bool, len(doc.Edges))
	explicit := make(map[string]bool, len(doc.Edges))
	for _, de := range doc.Edges {
		if de.ID != "" {
			explicit[de.ID] = true
		}
	}
	for i, de := range doc.Edges {
		id := de.ID
		if id == "" {
			id = generatedEdgeID(de, edgeIDs, explicit)
		}
		if de.Source == "" || de.Target == "" || !seen[de.Source] || !seen[de.Target] {
			rep.add(IssueDanglingEdge, id, "edges[%d] %q -> %q references a missing node", i, de.Source, de.Target)
			continue
		}
		if edgeIDs[id] {
			rep.add(IssueDuplicateEdgeID, id, "repeated edge id dropped")
			continue
		}
		edgeIDs[id] = true
		g.Edges = append(g.Edges, edge(id, de, doc.Settings.EdgeTypes, &rep))
	}

	return g, rep
}

func settings(ds graph.DocSettings, opts Options, rep *Report) graph.Settings {
	dir, ok := graph.ParseDirection(ds.Layout.Direction)
	if !ok {
		rep.add(IssueInvalidDirection, ds.Layout.Direction, "unknown layout direction, using %s", graph.DirectionTB)
	}
	if opts.Direction != "" {
		dir = opts.Direction
	}
	s := graph.Settings{
		Title:       ds.Title,
		Description: ds.Description,
		Direction:   dir,
		NodeSpacing: ds.Layout.NodeSpacing,
		RankSpacing: ds.Layout.RankSpacing,
	}
	if opts.NodeSpacing > 0 {
		s.NodeSpacing = opts.NodeSpacing
	}
	if opts.RankSpacing > 0 {
		s.RankSpacing = opts.RankSpacing
	}
	return s
}

func node(dn graph.DocNode, defs map[string]graph.NodeTypeDef, groups map[string]bool, rep *Report) graph.Node {
	typ := orDefault(dn.Type, graph.DefaultType)
	n := graph.Node{
		ID:    dn.ID,
		Label: orDefault(dn.Label, dn.ID),
		Type:  typ,
		Size:  graph.DefaultSize,
		Group: dn.Group,
		Layer: dn.Layer,
		Style: theme.NodeStyle(typ, defs),
		Meta:  graph.Metadata(dn.Metadata),
	}
	if dn.Position != nil && !dn.Position.IsOrigin() {
		n.Position = *dn.Position
		n.Pinned = true
	}
	if dn.Group != "" {
		if groups[dn.Group] {
			n.Parent = dn.Group
		} else {
			rep.add(IssueUnknownGroup, dn.ID, "group %q does not exist, containment dropped", dn.Group)
		}
	}
	return n
}

func edge(id string, de graph.DocEdge, defs map[string]graph.EdgeTypeDef, rep *Report) graph.Edge {
	typ := orDefault(de.Type, graph.DefaultType)
	e := graph.Edge{
		ID:            id,
		Source:        de.Source,
		Target:        de.Target,
		Type:          typ,
		Label:         de.Label,
		Subtitle:      de.Subtitle,
		Layer:         de.Layer,
		Style:         theme.EdgeStyle(typ, defs),
		Meta:          graph.Metadata(de.Metadata),
		TimelineState: graph.TimelineNone,
	}
	if de.Order != nil {
		if *de.Order < 0 {
			rep.add(IssueInvalidOrder, id, "negative order %d ignored", *de.Order)
		} else {
			order := *de.Order
			e.Order = &order
		}
	}
	return e
}

// generatedEdgeID returns "source-target", or the first free suffixed form
// when an earlier edge or any explicit ID already uses it.
func generatedEdgeID(de graph.DocEdge, used, explicit map[string]bool) string {
	base := de.Source + "-" + de.Target
	id := base
	for n := 2; used[id] || explicit[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	return id
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
