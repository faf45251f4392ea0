package view

import (
	"github.com/matzehuels/graphilizer/pkg/filter"
	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/normalize"
	"github.com/matzehuels/graphilizer/pkg/timeline"
)

// Focus describes the active focus mode.
type Focus struct {
	Center string `json:"center"`
	Depth  int    `json:"depth"`
}

// Snapshot is one complete derived view. Treat it as read-only: the slices
// may be shared with later snapshots.
type Snapshot struct {
	Nodes []graph.Node `json:"nodes"`
	Edges []graph.Edge `json:"edges"`

	// Focus is nil when the whole graph is shown.
	Focus     *Focus          `json:"focus,omitempty"`
	Direction graph.Direction `json:"direction"`

	Timeline timeline.State `json:"timeline"`
	// Subtitle joins the subtitles of the active timeline edges.
	Subtitle string `json:"subtitle,omitempty"`

	MatchCount int         `json:"matchCount"`
	TotalCount int         `json:"totalCount"`
	Available  filter.Tags `json:"available"`
	Active     filter.Tags `json:"active"`

	Issues []normalize.Issue `json:"issues,omitempty"`
	Cycles [][]string        `json:"cycles,omitempty"`

	// Revision increases with every published snapshot.
	Revision uint64 `json:"revision"`
}

// Node returns the snapshot node with the given ID.
func (s *Snapshot) Node(id string) (graph.Node, bool) {
	for _, n := range s.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return graph.Node{}, false
}

// Edge returns the snapshot edge with the given ID.
func (s *Snapshot) Edge(id string) (graph.Edge, bool) {
	for _, e := range s.Edges {
		if e.ID == id {
			return e, true
		}
	}
	return graph.Edge{}, false
}

// Connection is one edge seen from one of its endpoints.
type Connection struct {
	EdgeID    string `json:"edgeId"`
	Label     string `json:"label,omitempty"`
	Peer      string `json:"peer"`
	PeerLabel string `json:"peerLabel"`
}

// Connections lists a node's incoming and outgoing edges.
type Connections struct {
	Incoming []Connection `json:"incoming"`
	Outgoing []Connection `json:"outgoing"`
}
