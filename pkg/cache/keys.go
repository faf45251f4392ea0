package cache

import (
	"fmt"
	"time"
)

// LayoutKeyOpts are the layout parameters that change a hierarchical layout.
type LayoutKeyOpts struct {
	Direction   string  `json:"direction"`
	NodeSpacing float64 `json:"node_spacing"`
	RankSpacing float64 `json:"rank_spacing"`
}

// FocusKeyOpts identify one focus layout of a graph.
type FocusKeyOpts struct {
	Center     string  `json:"center"`
	Depth      int     `json:"depth"`
	RingRadius float64 `json:"ring_radius"`
}

// ArtifactKeyOpts identify one exported rendering of a layout.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Relayout bool    `json:"relayout,omitempty"`
	Detailed bool    `json:"detailed,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys. graphHash is the content hash of the normalized
// graph, usually produced with [HashJSON].
type Keyer interface {
	LayoutKey(graphHash string, opts LayoutKeyOpts) string
	FocusKey(graphHash string, opts FocusKeyOpts) string
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer hashes the graph hash together with the options.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(graphHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", graphHash, opts)
}

// FocusKey returns "focus:<sha256>".
func (DefaultKeyer) FocusKey(graphHash string, opts FocusKeyOpts) string {
	return hashKey("focus", graphHash, opts)
}

// ArtifactKey returns "artifact:<format>:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(fmt.Sprintf("artifact:%s", opts.Format), layoutHash, opts)
}

// Default entry lifetimes.
const (
	TTLLayout   = 7 * 24 * time.Hour
	TTLFocus    = 24 * time.Hour
	TTLArtifact = 7 * 24 * time.Hour
)
