// Package cli implements the graphilizer command-line interface.
//
// # Commands
//
//   - layout: lay out one or more graph files and write the snapshots as JSON
//   - focus: show the neighborhood of a node and export it
//   - search: find nodes and edges by label or metadata
//   - play: step through the edge timeline in the terminal
//   - export: render a graph view to SVG, PNG, PDF, DOT or JSON
//   - serve: expose interactive view sessions over HTTP
//   - cache: inspect and clear the layout cache
//
// Defaults come from ~/.config/graphilizer/config.yaml; flags override them.
// All commands accept --verbose (-v) for debug logging.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphilizer/pkg/buildinfo"
	"github.com/matzehuels/graphilizer/pkg/cache"
	"github.com/matzehuels/graphilizer/pkg/config"
	"github.com/matzehuels/graphilizer/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "graphilizer"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
	Config *config.Config
}

// New creates a new CLI instance with a default logger and the built-in
// configuration. LoadConfig replaces the configuration before a command runs.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// LoadConfig reads the config file at path, or the default location when
// path is empty.
func (c *CLI) LoadConfig(path string) error {
	if path == "" {
		path = config.Path()
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("loaded config", "path", path, "cache", cfg.Cache.Backend)
	return nil
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Graphilizer lays out and explores architecture graphs",
		Long:         `Graphilizer turns declarative graph documents (JSON, YAML or TOML) into laid-out views: hierarchical overviews, radial focus views around a node, filtered views and a step-by-step edge timeline.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.focusCommand())
	root.AddCommand(c.searchCommand())
	root.AddCommand(c.playCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache opens the configured cache backend. A file cache without a
// usable home directory degrades to no caching.
func (c *CLI) newCache(noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == config.BackendRedis {
		var opts []cache.RedisOption
		if cfg.RedisPrefix != "" {
			opts = append(opts, cache.WithRedisPrefix(cfg.RedisPrefix))
		}
		return cache.NewRedisCache(cfg.RedisAddr, opts...), nil
	}
	dir, err := cacheDir()
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/graphilizer/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// viewFlags are the focus, filter and timeline flags shared by commands that
// derive a view.
type viewFlags struct {
	center         string
	depth          int
	direction      string
	disabledTypes  []string
	disabledGroups []string
	disabledLayers []string
	step           float64
	noCache        bool
	refresh        bool
}

func (f *viewFlags) register(cmd *cobra.Command, withFocus bool) {
	if withFocus {
		cmd.Flags().StringVar(&f.center, "center", "", "focus on the neighborhood of this node")
	}
	cmd.Flags().IntVarP(&f.depth, "depth", "d", 0, "focus depth, 1-5 (default from config)")
	cmd.Flags().StringVar(&f.direction, "direction", "", "layout direction: TB, BT, LR, RL (default from document)")
	cmd.Flags().StringSliceVar(&f.disabledTypes, "hide-type", nil, "dim nodes and edges of these types")
	cmd.Flags().StringSliceVar(&f.disabledGroups, "hide-group", nil, "dim nodes of these groups")
	cmd.Flags().StringSliceVar(&f.disabledLayers, "hide-layer", nil, "dim nodes and edges of these layers")
	cmd.Flags().Float64Var(&f.step, "step", 0, "engage the timeline at this step")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute cached layouts")
}

// options builds pipeline options for input from the flags over the
// configured defaults. stepSet reports whether --step was given.
func (c *CLI) options(input string, f viewFlags, stepSet bool) pipeline.Options {
	opts := pipeline.Options{
		Path:           input,
		Direction:      c.Config.Layout.Direction,
		NodeSpacing:    c.Config.Layout.NodeSpacing,
		RankSpacing:    c.Config.Layout.RankSpacing,
		Center:         f.center,
		Depth:          c.Config.View.Depth,
		StepDuration:   c.Config.View.StepDuration,
		DisabledTypes:  f.disabledTypes,
		DisabledGroups: f.disabledGroups,
		DisabledLayers: f.disabledLayers,
		Refresh:        f.refresh,
		Logger:         c.Logger,
	}
	if f.direction != "" {
		opts.Direction = strings.ToUpper(f.direction)
	}
	if f.depth != 0 {
		opts.Depth = f.depth
	}
	if stepSet {
		step := f.step
		opts.Step = &step
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}

// outputPath derives the output file for input and format. An explicit
// output is used as is for a single format and as a base path otherwise.
func outputPath(input, output, format string, multi bool) string {
	if output != "" && !multi {
		return output
	}
	base := output
	if base == "" {
		base = strings.TrimSuffix(input, filepath.Ext(input))
	} else {
		base = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return base + "." + format
}
