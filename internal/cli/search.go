package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/graphilizer/pkg/errors"
	"github.com/matzehuels/graphilizer/pkg/filter"
	"github.com/matzehuels/graphilizer/pkg/pipeline"
)

// searchCommand creates the search command.
func (c *CLI) searchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search [graph file] [query]",
		Short: "Find nodes and edges by label or metadata",
		Long: `Find nodes and edges whose label or metadata values contain the query,
case-insensitively. Nodes are listed before edges.`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: graphFileCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSearch(cmd.Context(), args[0], args[1], limit)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", filter.DefaultLimit, "maximum number of results")
	return cmd
}

func (c *CLI) runSearch(ctx context.Context, input, query string, limit int) error {
	if err := errors.ValidateQuery(query); err != nil {
		return err
	}
	g, _, err := pipeline.Load(ctx, pipeline.Options{Path: input, Logger: c.Logger})
	if err != nil {
		return err
	}

	items := filter.NewSearchIndex(g.Nodes, g.Edges).Query(query, limit)
	if len(items) == 0 {
		printInfo("No matches for %q", query)
		return nil
	}
	printSearchResults(items)
	printDetail("%d match(es)", len(items))
	if items[0].Kind == filter.KindNode {
		printNewline()
		printNextStep("Focus", fmt.Sprintf("%s focus %s %s", appName, input, items[0].ID))
	}
	return nil
}
