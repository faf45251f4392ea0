package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/normalize"
	"github.com/matzehuels/graphilizer/pkg/observability"
)

// Load decodes and normalizes the input named by opts. Only malformed or
// unreadable input is an error; integrity issues are returned in the report
// and logged as warnings.
func Load(ctx context.Context, opts Options) (*graph.Graph, normalize.Report, error) {
	if err := opts.ValidateForLoad(); err != nil {
		return nil, normalize.Report{}, err
	}
	src := opts.source()
	observability.Pipeline().OnLoadStart(ctx, src)
	start := time.Now()

	var doc *graph.Document
	var err error
	if opts.Path != "" {
		doc, err = graph.ReadDocumentFile(opts.Path)
	} else {
		doc, err = graph.ParseDocument(opts.Data, opts.Format)
	}
	if err != nil {
		observability.Pipeline().OnLoadComplete(ctx, src, 0, 0, time.Since(start), err)
		return nil, normalize.Report{}, err
	}

	g, rep := normalize.Normalize(doc, opts.NormalizeOptions())
	for _, issue := range rep.Issues {
		opts.Logger.Warn("data integrity", "kind", issue.Kind, "subject", issue.Subject, "detail", issue.Detail)
	}
	observability.Pipeline().OnLoadComplete(ctx, src, len(g.Nodes), len(rep.Issues), time.Since(start), nil)
	return g, rep, nil
}
