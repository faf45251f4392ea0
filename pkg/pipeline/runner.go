package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/graphilizer/pkg/cache"
	"github.com/matzehuels/graphilizer/pkg/graph"
	"github.com/matzehuels/graphilizer/pkg/layout"
	"github.com/matzehuels/graphilizer/pkg/normalize"
	"github.com/matzehuels/graphilizer/pkg/observability"
	"github.com/matzehuels/graphilizer/pkg/timeline"
	"github.com/matzehuels/graphilizer/pkg/view"
)

// Retry policy for cache backends that report retryable failures.
const (
	cacheAttempts = 3
	cacheBackoff  = 100 * time.Millisecond
)

// Runner executes the pipeline against a cache. It keeps no per-run state,
// so one Runner may serve concurrent runs.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the default one and a nil logger the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger}
}

// Execute runs load → layout → view → export.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	res := &Result{Artifacts: map[string][]byte{}}

	start := time.Now()
	g, rep, err := Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	res.Graph, res.Report = g, rep
	res.Stats.LoadTime = time.Since(start)
	res.Stats.NodeCount, res.Stats.EdgeCount = len(g.Nodes), len(g.Edges)
	r.Logger.Info("loaded graph",
		"source", opts.source(),
		"nodes", len(g.Nodes),
		"edges", len(g.Edges),
		"issues", len(rep.Issues),
		"duration", res.Stats.LoadTime)

	start = time.Now()
	lay, hash, hit, err := r.LayoutWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	res.Layout, res.GraphHash = lay, hash
	res.CacheInfo.LayoutHit = hit
	res.Stats.LayoutTime = time.Since(start)
	r.Logger.Info("computed layout",
		"nodes", len(lay.Nodes),
		"crossings", lay.Crossings,
		"cached", hit,
		"duration", res.Stats.LayoutTime)
	if len(lay.Cycles) > 0 {
		r.Logger.Warn("graph has cycles", "count", len(lay.Cycles), "broken_edges", lay.BrokenEdges)
	}

	res.Snapshot = BuildView(g, rep, lay, opts).Snapshot()

	if len(opts.Formats) == 0 {
		return res, nil
	}
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, res.Snapshot, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	res.Artifacts = artifacts
	res.CacheInfo.RenderHit = hit
	res.Stats.RenderTime = time.Since(start)
	r.Logger.Info("rendered outputs", "formats", opts.Formats, "cached", hit, "duration", res.Stats.RenderTime)
	return res, nil
}

// ExecuteMany runs several pipelines concurrently, at most limit at a time
// (DefaultParallelism when limit <= 0). Results keep the order of runs; the
// first failure cancels the remaining runs.
func (r *Runner) ExecuteMany(ctx context.Context, runs []Options, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = DefaultParallelism
	}
	results := make([]*Result, len(runs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, opts := range runs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(ctx, opts)
			if err != nil {
				return fmt.Errorf("%s: %w", opts.source(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// BuildView creates a coordinator for g primed with lay, then applies the
// focus, filter and timeline settings of opts.
func BuildView(g *graph.Graph, rep normalize.Report, lay layout.Result, opts Options) *view.Coordinator {
	c := view.New(g, rep.Issues, view.Options{
		Timeline: timeline.Options{StepDuration: opts.StepDuration},
		Depth:    opts.Depth,
		Primed:   &lay,
	})
	for _, t := range opts.DisabledTypes {
		c.ToggleType(t)
	}
	for _, t := range opts.DisabledGroups {
		c.ToggleGroup(t)
	}
	for _, t := range opts.DisabledLayers {
		c.ToggleLayer(t)
	}
	if opts.Center != "" {
		c.SelectNode(opts.Center)
	}
	if opts.Step != nil {
		c.Seek(*opts.Step)
	}
	return c
}

// LayoutWithCacheInfo computes g's hierarchical layout, or reads it from the
// cache. It also returns the graph's content hash.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, g *graph.Graph, opts Options) (layout.Result, string, bool, error) {
	r.applyLogger(&opts)
	hash, err := cache.HashJSON(g)
	if err != nil {
		return layout.Result{}, "", false, err
	}
	key := r.Keyer.LayoutKey(hash, LayoutKeyOpts(g))

	if !opts.Refresh {
		if data, hit := r.get(ctx, "layout", key); hit {
			var cached layout.Result
			if err := json.Unmarshal(data, &cached); err == nil {
				return cached, hash, true, nil
			}
			r.Logger.Debug("discarding unreadable cached layout", "key", key)
		}
	}

	observability.Pipeline().OnLayoutStart(ctx, "hierarchical", len(g.Nodes))
	start := time.Now()
	res := layout.Hierarchical(g, layout.OptionsFromSettings(g.Settings))
	observability.Pipeline().OnLayoutComplete(ctx, "hierarchical", time.Since(start), nil)

	if data, err := json.Marshal(res); err == nil {
		r.set(ctx, "layout", key, data, cache.TTLLayout)
	}
	return res, hash, false, nil
}

// RenderWithCacheInfo exports s, serving every format from the cache when
// all of them are there.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, s *view.Snapshot, opts Options) (map[string][]byte, bool, error) {
	if err := ValidateFormats(opts.Formats); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)
	opts.SetViewDefaults()

	// Revision differs between otherwise equal snapshots.
	keyed := *s
	keyed.Revision = 0
	hash, err := cache.HashJSON(&keyed)
	if err != nil {
		return nil, false, fmt.Errorf("hash snapshot: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, f := range opts.Formats {
		data, hit := r.get(ctx, "artifact", r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(f)))
		if !hit {
			break
		}
		artifacts[f] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, s, opts)
	if err != nil {
		return nil, false, err
	}
	for f, data := range rendered {
		r.set(ctx, "artifact", r.Keyer.ArtifactKey(hash, opts.ArtifactKeyOpts(f)), data, cache.TTLArtifact)
	}
	return rendered, false, nil
}

// get reads key, retrying retryable backend failures. Errors are logged and
// treated as misses.
func (r *Runner) get(ctx context.Context, keyType, key string) ([]byte, bool) {
	var data []byte
	var hit bool
	err := cache.RetryWithBackoff(ctx, cacheAttempts, cacheBackoff, func() error {
		var err error
		data, hit, err = r.Cache.Get(ctx, key)
		return err
	})
	if err != nil {
		r.Logger.Warn("cache read failed", "key_type", keyType, "err", err)
		return nil, false
	}
	if hit {
		observability.Cache().OnCacheHit(ctx, keyType)
	} else {
		observability.Cache().OnCacheMiss(ctx, keyType)
	}
	return data, hit
}

func (r *Runner) set(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	err := cache.RetryWithBackoff(ctx, cacheAttempts, cacheBackoff, func() error {
		return r.Cache.Set(ctx, key, data, ttl)
	})
	if err != nil {
		r.Logger.Warn("cache write failed", "key_type", keyType, "err", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// Close closes the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
