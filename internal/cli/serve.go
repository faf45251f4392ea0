package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/graphilizer/internal/server"
	"github.com/matzehuels/graphilizer/pkg/observability/prom"
	"github.com/matzehuels/graphilizer/pkg/pipeline"
)

// serveCommand creates the serve command for the HTTP adapter.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		watch   bool
		metrics bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve [directory]",
		Short: "Serve interactive view sessions over HTTP",
		Long: `Serve interactive view sessions over HTTP.

Clients open a session on a graph file below the served directory (or upload
a document) and drive it with focus, filter and timeline requests; every
request returns the new view snapshot as JSON.

With --watch, edits to graph files reload every session opened from them.`,
		Args: cobra.MaximumNArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return nil, cobra.ShellCompDirectiveFilterDirs
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			if addr == "" {
				addr = c.Config.Server.Addr
			}
			return c.runServe(cmd.Context(), root, addr, watch, metrics, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, localhost:8080)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "reload sessions when graph files change")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the layout cache")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, root, addr string, watch, metrics, noCache bool) error {
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	cfg := server.Config{
		Root:   root,
		Runner: runner,
		Defaults: pipeline.Options{
			Direction:    c.Config.Layout.Direction,
			NodeSpacing:  c.Config.Layout.NodeSpacing,
			RankSpacing:  c.Config.Layout.RankSpacing,
			Depth:        c.Config.View.Depth,
			StepDuration: c.Config.View.StepDuration,
		},
		Logger: c.Logger,
	}
	if metrics {
		m := prom.New()
		m.Install()
		cfg.Metrics = m.Handler()
	}
	srv := server.New(cfg)

	printInfo("Serving %s on %s", root, StyleLink.Render("http://"+addr))

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return srv.Run(ctx, addr) })
	if watch {
		eg.Go(func() error { return srv.Watch(ctx) })
	}
	return eg.Wait()
}
