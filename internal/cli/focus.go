package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphilizer/pkg/focus"
	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/pipeline"
)

// focusCommand creates the focus command for inspecting a node's neighborhood.
func (c *CLI) focusCommand() *cobra.Command {
	var (
		output  string
		formats string
		flags   viewFlags
	)

	cmd := &cobra.Command{
		Use:   "focus [graph file] [node]",
		Short: "Show the neighborhood of a node",
		Long: `Show the nodes within --depth hops of a node, ring by ring, following
edges in both directions.

With --format the radial focus view is also exported.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: nodeCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.center = args[1]
			opts := c.options(args[0], flags, cmd.Flags().Changed("step"))
			if formats != "" {
				opts.Formats = parseFormats(formats)
			}
			return c.runFocus(cmd.Context(), opts, flags.noCache, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "also export the focus view: svg, png, pdf, dot, json (comma-separated)")
	flags.register(cmd, false)

	return cmd
}

func (c *CLI) runFocus(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	res, err := runner.Execute(ctx, opts)
	if err != nil {
		return err
	}
	if _, ok := res.Graph.Node(opts.Center); !ok {
		return fmt.Errorf("node %q not found in %s", opts.Center, opts.Path)
	}

	rings := neighborhoodRings(res.Graph, opts.Center, res.Snapshot.Focus.Depth)
	printFocus(res.Graph, rings)
	printStats(len(res.Snapshot.Nodes), len(res.Snapshot.Edges), res.Stats.LayoutTime, res.CacheInfo.LayoutHit)

	multi := len(opts.Formats) > 1
	for _, f := range opts.Formats {
		path := outputPath(opts.Path, output, f, multi)
		if err := os.WriteFile(path, res.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	return nil
}

// neighborhoodRings groups the non-group nodes around center by distance.
func neighborhoodRings(g *graph.Graph, center string, depth int) [][]string {
	var ids []string
	for _, n := range g.Nodes {
		if !n.IsGroup {
			ids = append(ids, n.ID)
		}
	}
	return focus.NewIndex(ids, g.Edges).Rings(center, depth)
}
