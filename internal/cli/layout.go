package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/pipeline"
)

// layoutCommand creates the layout command for laying out graph files.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output   string
		parallel int
		flags    viewFlags
	)

	cmd := &cobra.Command{
		Use:   "layout [graph file]...",
		Short: "Compute hierarchical layouts for graph files",
		Long: `Compute hierarchical layouts for one or more graph files.

Each input (JSON, YAML or TOML) is normalized and laid out, and the resulting
view snapshot is written next to it as <input>.layout.json. Several inputs
are processed concurrently.

Results are cached locally for faster subsequent runs.`,
		Args:              cobra.MinimumNArgs(1),
		ValidArgsFunction: graphFilesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output != "" && len(args) > 1 {
				return fmt.Errorf("--output needs exactly one input")
			}
			return c.runLayout(cmd.Context(), args, flags, output, parallel)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json)")
	cmd.Flags().IntVarP(&parallel, "parallel", "j", pipeline.DefaultParallelism, "number of files laid out concurrently")
	cmd.Flags().StringVar(&flags.direction, "direction", "", "layout direction: TB, BT, LR, RL (default from document)")
	cmd.Flags().BoolVar(&flags.noCache, "no-cache", false, "disable the layout cache")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "recompute cached layouts")

	return cmd
}

// runLayout lays out every input and writes one snapshot file per input.
func (c *CLI) runLayout(ctx context.Context, inputs []string, flags viewFlags, output string, parallel int) error {
	runner, err := c.newRunner(flags.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	runs := make([]pipeline.Options, len(inputs))
	for i, in := range inputs {
		runs[i] = c.options(in, flags, false)
	}

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Laying out %d graph(s)...", len(inputs)))
	spinner.Start()
	results, err := runner.ExecuteMany(ctx, runs, parallel)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()
	prog.done(fmt.Sprintf("Laid out %d graph(s)", len(results)))

	for i, res := range results {
		path := outputPath(inputs[i], output, "layout.json", false)
		if err := graph.WriteJSONFile(res.Snapshot, path); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		printSuccess("Layout complete: %s", inputs[i])
		printFile(path)
		printStats(res.Stats.NodeCount, res.Stats.EdgeCount, res.Stats.LayoutTime, res.CacheInfo.LayoutHit)
		printIssues(res.Report.Issues, res.Layout.Cycles)
	}
	if len(results) == 1 {
		printNewline()
		printNextStep("Render", appName+" export "+inputs[0])
	}
	return nil
}
