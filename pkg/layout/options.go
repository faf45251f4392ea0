package layout

import (
	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/layout/ordering"
)

// Default layout parameters.
const (
	DefaultNodeSpacing  = 80.0
	DefaultRankSpacing  = 120.0
	DefaultGroupPadding = 20.0
	DefaultRingRadius   = 220.0
)

// Options configures [Hierarchical]. Zero values select the defaults.
type Options struct {
	Direction    graph.Direction
	NodeSpacing  float64
	RankSpacing  float64
	GroupPadding float64
	Orderer      ordering.Orderer
}

// OptionsFromSettings builds options from normalized graph settings.
func OptionsFromSettings(s graph.Settings) Options {
	return Options{
		Direction:   s.Direction,
		NodeSpacing: s.NodeSpacing,
		RankSpacing: s.RankSpacing,
	}
}

// WithDefaults returns a copy of o with every zero field set to its default.
func (o Options) WithDefaults() Options {
	if _, ok := graph.ParseDirection(string(o.Direction)); !ok || o.Direction == "" {
		o.Direction = graph.DirectionTB
	}
	if o.NodeSpacing <= 0 {
		o.NodeSpacing = DefaultNodeSpacing
	}
	if o.RankSpacing <= 0 {
		o.RankSpacing = DefaultRankSpacing
	}
	if o.GroupPadding <= 0 {
		o.GroupPadding = DefaultGroupPadding
	}
	if o.Orderer == nil {
		o.Orderer = ordering.Barycentric{Passes: ordering.DefaultPasses}
	}
	return o
}

// RadialOptions configures [Radial].
type RadialOptions struct {
	RingRadius float64
}

func (o RadialOptions) withDefaults() RadialOptions {
	if o.RingRadius <= 0 {
		o.RingRadius = DefaultRingRadius
	}
	return o
}
