package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/observability"
	"github.com/matzehuels/graphilizer/pkg/render/nodelink"
	"github.com/matzehuels/graphilizer/pkg/view"
)

// Render exports a snapshot in every requested format.
func Render(ctx context.Context, s *view.Snapshot, opts Options) (map[string][]byte, error) {
	out := make(map[string][]byte, len(opts.Formats))
	dot := nodelink.ToDOT(s, nodelink.Options{Relayout: opts.Relayout, Detailed: opts.Detailed})

	for _, format := range opts.Formats {
		observability.Pipeline().OnRenderStart(ctx, format)
		start := time.Now()
		data, err := renderFormat(ctx, s, dot, format, opts)
		observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

func renderFormat(ctx context.Context, s *view.Snapshot, dot, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return graph.Marshal(s)
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPDF:
		return nodelink.RenderPDF(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot, opts.PNGScale)
	}
	return nil, ValidateFormat(format)
}
