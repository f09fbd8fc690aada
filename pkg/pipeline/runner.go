package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/familygraph/pkg/cache"
	"github.com/matzehuels/familygraph/pkg/family"
	"github.com/matzehuels/familygraph/pkg/force"
	"github.com/matzehuels/familygraph/pkg/observability"
	"github.com/matzehuels/familygraph/pkg/source"
)

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger; it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete prepare → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, snap source.Snapshot, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	// Stage 1: Prepare
	prep := Prepare(ctx, snap)
	result := &Result{
		Graph:       prep.Graph,
		Diagnostics: prep.Diagnostics,
		Inferred:    prep.Inferred,
		GraphHash:   cache.GraphHash(prep.Graph),
		Artifacts:   make(map[string][]byte),
	}
	result.Stats.NodeCount = prep.Graph.NodeCount()
	result.Stats.EdgeCount = prep.Graph.EdgeCount()

	for _, d := range prep.Diagnostics {
		opts.Logger.Warn("skipped record", "code", d.Code, "edge", d.EdgeID, "node", d.NodeID, "reason", d.Message)
	}
	opts.Logger.Info("prepared graph",
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"inferred", prep.Inferred)

	// Stage 2: Layout
	if !opts.IsNodelink() {
		layoutStart := time.Now()
		layout, layoutHit, err := r.GenerateLayoutWithCacheInfo(ctx, prep.Graph, opts)
		if err != nil {
			return nil, fmt.Errorf("layout: %w", err)
		}
		result.Layout = layout
		result.Stats.Ticks = layout.Tick
		result.Stats.LayoutTime = time.Since(layoutStart)
		result.CacheInfo.LayoutHit = layoutHit

		opts.Logger.Info("computed layout",
			"ticks", layout.Tick,
			"settled", layout.Settled,
			"cached", layoutHit,
			"duration", result.Stats.LayoutTime)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, result.Layout, prep.Graph, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	opts.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// GenerateLayoutWithCacheInfo settles a layout with caching and returns cache hit info.
func (r *Runner) GenerateLayoutWithCacheInfo(ctx context.Context, g family.Graph, opts Options) (force.Snapshot, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()

	cacheKey := r.Keyer.LayoutKey(cache.GraphHash(g), opts.LayoutKeyOpts())

	if !opts.Refresh {
		if cached, err := cache.GetJSON[force.Snapshot](ctx, r.Cache, cacheKey); err == nil {
			return cached, true, nil
		}
	}

	layout, diags, err := GenerateLayout(ctx, g, opts)
	if err != nil {
		return force.Snapshot{}, false, err
	}
	for _, d := range diags {
		opts.Logger.Warn("excluded edge", "edge", d.EdgeID, "reason", d.Message)
	}

	if err := cache.SetJSON(ctx, r.Cache, cacheKey, layout, cache.TTLLayout); err != nil {
		opts.Logger.Debug("cache layout", "err", err)
	}
	return layout, false, nil
}

// GenerateLayout is a convenience wrapper that discards the cache hit info.
func (r *Runner) GenerateLayout(ctx context.Context, g family.Graph, opts Options) (force.Snapshot, error) {
	layout, _, err := r.GenerateLayoutWithCacheInfo(ctx, g, opts)
	return layout, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, layout force.Snapshot, g family.Graph, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	opts.SetDefaults()
	if err := opts.Validate(); err != nil {
		return nil, false, err
	}

	// Nodelink artifacts depend on the graph alone.
	keyHash := cache.GraphHash(g)
	if !opts.IsNodelink() {
		keyHash = cache.HashJSON(layout)
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	start := time.Now()

	if !opts.Refresh {
		artifacts := make(map[string][]byte, len(opts.Formats))
		for _, format := range opts.Formats {
			data, hit, err := r.Cache.Get(ctx, r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format)))
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), nil)
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, layout, g, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(keyHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, cacheKey, data, cache.TTLArtifact)
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that discards the cache hit info.
func (r *Runner) Render(ctx context.Context, layout force.Snapshot, g family.Graph, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, layout, g, opts)
	return artifacts, err
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
