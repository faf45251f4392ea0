package dag

import (
	"errors"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrNonConsecutiveRows is returned by [DAG.Validate] when an edge
	// connects nodes that are not in adjacent rows (From.Row+1 != To.Row).
	ErrNonConsecutiveRows = errors.New("edges must connect consecutive rows")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// Metadata stores arbitrary key-value pairs attached to nodes and edges.
type Metadata map[string]any

// NodeKind distinguishes between original and synthetic nodes created during
// graph transformation.
type NodeKind int

const (
	// NodeKindRegular represents a node from the input graph.
	NodeKindRegular NodeKind = iota
	// NodeKindSubdivider represents a virtual node inserted to split an edge
	// that spans more than one rank. Subdividers keep a MasterID linking to
	// the edge's source.
	NodeKindSubdivider
)

// Node is a vertex of the ranking graph.
//
// Row is the rank assigned by the layering step. Cluster names the containment
// group of the node; nodes sharing a cluster are kept adjacent inside a rank.
type Node struct {
	ID      string
	Row     int
	Cluster string
	Meta    Metadata

	Kind     NodeKind
	MasterID string
}

// IsSubdivider reports whether the node was inserted to break a long edge.
func (n Node) IsSubdivider() bool { return n.Kind == NodeKindSubdivider }

// Edge is a directed connection between two nodes.
type Edge struct {
	From string
	To   string
	Meta Metadata
}

// DAG is a directed graph stored as an arena: nodes are addressed by their
// insertion index and adjacency lists hold indices, so traversals never chase
// pointers between nodes and iteration order is always insertion order.
//
// Despite the name the graph may contain cycles until [DAG.Validate] is
// satisfied; the transform package breaks them before layering.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes []*Node
	index map[string]int
	edges []Edge
	out   [][]int
	in    [][]int
	rows  map[int][]int
}

// New creates an empty DAG.
func New() *DAG {
	return &DAG{
		index: make(map[string]int),
		rows:  make(map[int][]int),
	}
}

// AddNode appends a node to the arena and indexes it by its Row.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.index[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	idx := len(d.nodes)
	d.nodes = append(d.nodes, &n)
	d.index[n.ID] = idx
	d.out = append(d.out, nil)
	d.in = append(d.in, nil)
	d.rows[n.Row] = append(d.rows[n.Row], idx)
	return nil
}

// SetRows updates row assignments and rebuilds the row index.
// Nodes not present in rows keep their current row. Within a row, nodes are
// listed in insertion order.
func (d *DAG) SetRows(rows map[string]int) {
	d.rows = make(map[int][]int)
	for i, n := range d.nodes {
		if r, ok := rows[n.ID]; ok {
			n.Row = r
		}
		d.rows[n.Row] = append(d.rows[n.Row], i)
	}
}

// AddEdge adds a directed edge between two existing nodes. Parallel edges
// are allowed.
func (d *DAG) AddEdge(e Edge) error {
	from, ok := d.index[e.From]
	if !ok {
		return ErrUnknownSourceNode
	}
	to, ok := d.index[e.To]
	if !ok {
		return ErrUnknownTargetNode
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	d.edges = append(d.edges, e)
	d.out[from] = append(d.out[from], to)
	d.in[to] = append(d.in[to], from)
	return nil
}

// RemoveEdge removes every edge from→to. Missing edges are ignored.
func (d *DAG) RemoveEdge(from, to string) {
	fi, okF := d.index[from]
	ti, okT := d.index[to]
	if !okF || !okT {
		return
	}
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool { return e.From == from && e.To == to })
	d.out[fi] = slices.DeleteFunc(d.out[fi], func(i int) bool { return i == ti })
	d.in[ti] = slices.DeleteFunc(d.in[ti], func(i int) bool { return i == fi })
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// arena entries, so modifications affect the graph.
func (d *DAG) Nodes() []*Node { return slices.Clone(d.nodes) }

// Edges returns a copy of all edges in insertion order.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Index returns the arena index of the node with the given ID.
func (d *DAG) Index(id string) (int, bool) {
	i, ok := d.index[id]
	return i, ok
}

// At returns the node stored at arena index i.
func (d *DAG) At(i int) *Node { return d.nodes[i] }

// Children returns the IDs of the targets of the node's outgoing edges.
func (d *DAG) Children(id string) []string {
	i, ok := d.index[id]
	if !ok {
		return nil
	}
	return d.ids(d.out[i])
}

// Parents returns the IDs of the sources of the node's incoming edges.
func (d *DAG) Parents(id string) []string {
	i, ok := d.index[id]
	if !ok {
		return nil
	}
	return d.ids(d.in[i])
}

// ChildIndices returns the arena indices of the node's children. The slice
// must be treated as read-only.
func (d *DAG) ChildIndices(i int) []int { return d.out[i] }

// ParentIndices returns the arena indices of the node's parents. The slice
// must be treated as read-only.
func (d *DAG) ParentIndices(i int) []int { return d.in[i] }

// OutDegree returns the number of outgoing edges from the node.
func (d *DAG) OutDegree(id string) int {
	if i, ok := d.index[id]; ok {
		return len(d.out[i])
	}
	return 0
}

// InDegree returns the number of incoming edges to the node.
func (d *DAG) InDegree(id string) int {
	if i, ok := d.index[id]; ok {
		return len(d.in[i])
	}
	return 0
}

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	i, ok := d.index[id]
	if !ok {
		return nil, false
	}
	return d.nodes[i], true
}

// NodesInRow returns the nodes assigned to the given row in insertion order.
func (d *DAG) NodesInRow(row int) []*Node {
	idx := d.rows[row]
	if len(idx) == 0 {
		return nil
	}
	nodes := make([]*Node, len(idx))
	for k, i := range idx {
		nodes[k] = d.nodes[i]
	}
	return nodes
}

// RowCount returns the number of distinct rows in the graph.
func (d *DAG) RowCount() int { return len(d.rows) }

// RowIDs returns all row indices in ascending order.
func (d *DAG) RowIDs() []int {
	return slices.Sorted(maps.Keys(d.rows))
}

// Sources returns nodes with no incoming edges, in insertion order.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for i, n := range d.nodes {
		if len(d.in[i]) == 0 {
			sources = append(sources, n)
		}
	}
	return sources
}

// Validate checks that every edge connects consecutive rows and that the
// graph is acyclic.
func (d *DAG) Validate() error {
	for from, targets := range d.out {
		for _, to := range targets {
			if d.nodes[to].Row != d.nodes[from].Row+1 {
				return ErrNonConsecutiveRows
			}
		}
	}
	return d.detectCycles()
}

func (d *DAG) detectCycles() error {
	const (
		white = iota
		gray
		black
	)

	color := make([]int, len(d.nodes))
	var hasCycle bool

	var dfs func(i int)
	dfs = func(i int) {
		color[i] = gray
		for _, c := range d.out[i] {
			switch color[c] {
			case white:
				dfs(c)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[i] = black
	}

	for i := range d.nodes {
		if color[i] == white {
			dfs(i)
			if hasCycle {
				return ErrGraphHasCycle
			}
		}
	}
	return nil
}

func (d *DAG) ids(idx []int) []string {
	if len(idx) == 0 {
		return nil
	}
	out := make([]string, len(idx))
	for k, i := range idx {
		out[k] = d.nodes[i].ID
	}
	return out
}

// PosMap creates a position lookup map from a slice of node IDs.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
