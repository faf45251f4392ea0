// Package pipeline runs the load → layout → export sequence shared by the
// CLI and the HTTP adapter.
//
// # Stages
//
//  1. Load: decode a graph document (JSON, YAML or TOML) and normalize it.
//     Integrity issues are logged as warnings and kept on the result.
//  2. Layout: compute the hierarchical layout, reusing a cached one when the
//     same graph was laid out with the same options before.
//  3. View: derive the snapshot (optionally focused and filtered) through a
//     view coordinator primed with that layout.
//  4. Export: render the snapshot to the requested formats.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	res, err := runner.Execute(ctx, pipeline.Options{
//	    Path:    "architecture.yaml",
//	    Formats: []string{pipeline.FormatSVG},
//	})
//	svg := res.Artifacts[pipeline.FormatSVG]
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/graphilizer/pkg/cache"
	"github.com/matzehuels/graphilizer/pkg/errors"
	"github.com/matzehuels/graphilizer/pkg/focus"
	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/layout"
	"github.com/matzehuels/graphilizer/pkg/normalize"
	"github.com/matzehuels/graphilizer/pkg/view"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultDepth is the focus depth used when Center is set.
	DefaultDepth = focus.DefaultDepth

	// DefaultPNGScale renders PNGs at twice the layout resolution.
	DefaultPNGScale = 2.0

	// DefaultParallelism bounds concurrent runs in ExecuteMany.
	DefaultParallelism = 4
)

// Export formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatDOT  = "dot"
	FormatJSON = "json"
)

// ValidFormats is the set of supported export formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatDOT:  true,
	FormatJSON: true,
}

// =============================================================================
// Options
// =============================================================================

// Options configures one pipeline run.
type Options struct {
	// Input: a file path, or raw Data in the given Format.
	Path   string       `json:"path,omitempty"`
	Data   []byte       `json:"-"`
	Format graph.Format `json:"format,omitempty"`

	// Layout overrides; zero keeps the document's settings.
	Direction   string  `json:"direction,omitempty"`
	NodeSpacing float64 `json:"node_spacing,omitempty"`
	RankSpacing float64 `json:"rank_spacing,omitempty"`

	// View: focus and filters applied before export.
	Center         string   `json:"center,omitempty"`
	Depth          int      `json:"depth,omitempty"`
	DisabledTypes  []string `json:"disabled_types,omitempty"`
	DisabledGroups []string `json:"disabled_groups,omitempty"`
	DisabledLayers []string `json:"disabled_layers,omitempty"`
	// Step engages the timeline at the given step when set.
	Step *float64 `json:"step,omitempty"`
	// StepDuration is the playback time per timeline step.
	StepDuration time.Duration `json:"step_duration,omitempty"`

	// Export.
	Formats  []string `json:"formats,omitempty"`
	Relayout bool     `json:"relayout,omitempty"`
	Detailed bool     `json:"detailed,omitempty"`
	PNGScale float64  `json:"png_scale,omitempty"`

	// Refresh ignores cached layouts (they are still written).
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`

	validated bool
}

// Result holds everything a run produced.
type Result struct {
	Graph     *graph.Graph
	Report    normalize.Report
	GraphHash string
	Layout    layout.Result
	Snapshot  *view.Snapshot
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats records sizes and stage timings.
type Stats struct {
	NodeCount  int
	EdgeCount  int
	LoadTime   time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo records which stages were served from the cache.
type CacheInfo struct {
	LayoutHit bool
	RenderHit bool
}

// =============================================================================
// Validation
// =============================================================================

// ValidateFormat checks that format is a supported export format.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks every format.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDirection checks a layout direction override. Empty is valid.
func ValidateDirection(d string) error {
	if _, ok := graph.ParseDirection(d); !ok {
		return errors.New(errors.ErrCodeInvalidInput, "invalid direction %q (must be one of: TB, BT, LR, RL)", d)
	}
	return nil
}

// ValidateAndSetDefaults checks the options and fills defaults. Calling it
// again is a no-op.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := ValidateDirection(o.Direction); err != nil {
		return err
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	o.SetViewDefaults()
	o.validated = true
	return nil
}

// ValidateForLoad checks that an input is given and sets the logger default.
func (o *Options) ValidateForLoad() error {
	if o.Path == "" && len(o.Data) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "path or data is required")
	}
	if o.Path == "" && o.Format == "" {
		o.Format = graph.FormatJSON
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetViewDefaults fills the view and export defaults.
func (o *Options) SetViewDefaults() {
	if o.Depth == 0 {
		o.Depth = DefaultDepth
	}
	o.Depth = focus.ClampDepth(o.Depth)
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// NormalizeOptions returns the document overrides for normalization.
func (o *Options) NormalizeOptions() normalize.Options {
	dir, _ := graph.ParseDirection(o.Direction)
	if o.Direction == "" {
		dir = ""
	}
	return normalize.Options{
		Direction:   dir,
		NodeSpacing: o.NodeSpacing,
		RankSpacing: o.RankSpacing,
	}
}

// LayoutKeyOpts returns the cache key options for g's hierarchical layout.
func LayoutKeyOpts(g *graph.Graph) cache.LayoutKeyOpts {
	lo := layout.OptionsFromSettings(g.Settings).WithDefaults()
	return cache.LayoutKeyOpts{
		Direction:   string(lo.Direction),
		NodeSpacing: lo.NodeSpacing,
		RankSpacing: lo.RankSpacing,
	}
}

// ArtifactKeyOpts returns the cache key options for one export format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Relayout: o.Relayout, Detailed: o.Detailed}
	if format == FormatPNG {
		k.Scale = o.PNGScale
	}
	return k
}

func (o *Options) source() string {
	if o.Path != "" {
		return o.Path
	}
	return fmt.Sprintf("<%s data>", o.Format)
}
