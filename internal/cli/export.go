package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphilizer/pkg/pipeline"
)

// exportCommand creates the export command for rendering graph views.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output  string
		formats string
		flags   viewFlags
		opts    pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "export [graph file]",
		Short: "Render a graph view to SVG, PNG, PDF, DOT or JSON",
		Long: `Render a graph view to one or more formats.

By default the whole graph is exported with its hierarchical layout. Use
--center to export a focus view, --hide-* to dim filtered entities and
--step to highlight one step of the edge timeline.

PNG and PDF output needs rsvg-convert on the PATH.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: graphFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			run := c.options(args[0], flags, cmd.Flags().Changed("step"))
			run.Formats = parseFormats(formats)
			run.Relayout, run.Detailed, run.PNGScale = opts.Relayout, opts.Detailed, opts.PNGScale
			return c.runExport(cmd.Context(), run, flags.noCache, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().BoolVar(&opts.Relayout, "relayout", false, "let Graphviz lay out the view instead of using computed positions")
	cmd.Flags().BoolVar(&opts.Detailed, "detailed", false, "include types and metadata in node labels")
	cmd.Flags().Float64Var(&opts.PNGScale, "scale", pipeline.DefaultPNGScale, "PNG scale factor")
	flags.register(cmd, true)

	return cmd
}

// runExport runs the pipeline and writes one file per format.
func (c *CLI) runExport(ctx context.Context, opts pipeline.Options, noCache bool, output string) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	res, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Export failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	printSuccess("Export complete")
	multi := len(opts.Formats) > 1
	for _, f := range opts.Formats {
		path := outputPath(opts.Path, output, f, multi)
		if err := os.WriteFile(path, res.Artifacts[f], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		printFile(path)
	}
	printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.LayoutTime, res.CacheInfo.LayoutHit)
	printIssues(res.Report.Issues, res.Layout.Cycles)
	return nil
}
