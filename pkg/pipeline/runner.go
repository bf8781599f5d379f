package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/railcdl/pkg/cache"
	"github.com/matzehuels/railcdl/pkg/cdl"
	perrors "github.com/matzehuels/railcdl/pkg/errors"
	rio "github.com/matzehuels/railcdl/pkg/io"
	"github.com/matzehuels/railcdl/pkg/network"
	"github.com/matzehuels/railcdl/pkg/observability"
	"github.com/matzehuels/railcdl/pkg/render/nodelink"
	"github.com/matzehuels/railcdl/pkg/report"
)

// Key types reported to the cache hooks.
const (
	keyTypeAnalysis = "analysis"
	keyTypeRender   = "render"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL overrides the default lifetime of cached entries when positive.
	TTL time.Duration
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

// Execute runs the complete load → analyze → render pipeline with caching.
// The render stage is skipped when opts.Formats is empty.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Load
	loadStart := time.Now()
	g, err := r.Load(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result.Network = g
	result.Stats.LoadTime = time.Since(loadStart)
	result.Stats.NodeCount = g.NodeCount()
	result.Stats.EdgeCount = g.EdgeCount()

	if hash, err := StationHash(g); err == nil {
		result.StationHash = hash
	}

	r.Logger.Info("loaded station",
		"station", g.Name,
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"duration", result.Stats.LoadTime)

	// Stage 2: Analyze
	analyzeStart := time.Now()
	rep, res, hit, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	result.Report = rep
	result.Analysis = res
	result.Stats.AnalyzeTime = time.Since(analyzeStart)
	result.CacheInfo.AnalysisHit = hit

	r.Logger.Info("analyzed station",
		"zones", rep.Summary.Zones,
		"signals", rep.Summary.Signals,
		"partial", rep.Summary.PartialSignals,
		"cached", hit,
		"duration", result.Stats.AnalyzeTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, g, res, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered diagrams",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Load reads the station named by opts.Path, or decodes opts.Station.
func (r *Runner) Load(ctx context.Context, opts Options) (*network.Network, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLoad(); err != nil {
		return nil, err
	}

	source := opts.Path
	if source == "" {
		source = "document"
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, source)
	start := time.Now()

	var g *network.Network
	var err error
	if opts.Path != "" {
		g, err = rio.ImportAs(opts.Path, rio.Format(opts.Format))
	} else {
		g, err = rio.Read(bytes.NewReader(opts.Station), rio.Format(opts.Format))
	}

	nodes := 0
	if g != nil {
		nodes = g.NodeCount()
	}
	hooks.OnLoadComplete(ctx, source, nodes, time.Since(start), err)
	if err != nil {
		return nil, perrors.FromCore(err)
	}
	opts.Logger.Debug("station decoded", "source", source, "format", opts.Format, "nodes", nodes)
	return g, nil
}

// AnalyzeWithCacheInfo analyses g with caching and returns cache hit info.
// On a cache hit the returned *cdl.Result is nil; the report carries
// everything the callers display.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, g *network.Network, opts Options) (*report.Report, *cdl.Result, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAnalysis(); err != nil {
		return nil, nil, false, err
	}

	hash, err := StationHash(g)
	if err != nil {
		return nil, nil, false, err
	}
	cacheKey := r.Keyer.AnalysisKey(hash, opts.AnalysisKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var rep report.Report
			if err := json.Unmarshal(data, &rep); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeAnalysis)
				return &rep, nil, true, nil
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeAnalysis)
	}

	res, err := r.analyze(ctx, g, opts)
	if err != nil {
		return nil, nil, false, err
	}
	rep := report.New(g, res)

	// Cache the report
	var buf bytes.Buffer
	if err := rep.WriteJSON(&buf); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, buf.Bytes(), r.ttl(cache.TTLAnalysis)); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeAnalysis, buf.Len())
		} else {
			opts.Logger.Debug("cache write failed", "key", keyTypeAnalysis, "error", err)
		}
	}

	return rep, res, false, nil
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, g *network.Network, opts Options) (*report.Report, *cdl.Result, error) {
	rep, res, _, err := r.AnalyzeWithCacheInfo(ctx, g, opts)
	return rep, res, err
}

// analyze runs the zone detector and placement walker without the cache.
func (r *Runner) analyze(ctx context.Context, g *network.Network, opts Options) (*cdl.Result, error) {
	hooks := observability.Pipeline()
	hooks.OnAnalyzeStart(ctx, g.Name, g.NodeCount())
	start := time.Now()

	res, err := cdl.Analyze(g, opts.CDLOptions())
	if err != nil {
		err = perrors.FromCore(err)
		hooks.OnAnalyzeComplete(ctx, g.Name, observability.AnalysisStats{}, time.Since(start), err)
		return nil, err
	}

	partial := res.Partial()
	hooks.OnAnalyzeComplete(ctx, g.Name, observability.AnalysisStats{
		Zones:          res.Zones.Len(),
		Signals:        len(res.Signals),
		PartialSignals: len(partial),
	}, time.Since(start), nil)

	for _, s := range partial {
		opts.Logger.Warn("approach shorter than threshold",
			"signal", s.ID,
			"placed_at", s.PlacedAt,
			"distance", s.DistanceToZone,
			"threshold", s.Threshold)
	}
	return res, nil
}

// RenderWithCacheInfo draws the analysed station with caching and returns
// cache hit info. A nil res is recomputed from g when a diagram has to be drawn.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, g *network.Network, res *cdl.Result, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForAnalysis(); err != nil {
		return nil, false, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	hash, err := StationHash(g)
	if err != nil {
		return nil, false, err
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	if !opts.Refresh {
		for _, format := range opts.Formats {
			cacheKey := r.Keyer.RenderKey(hash, opts.RenderKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, cacheKey)
			if err != nil || !hit {
				observability.Cache().OnCacheMiss(ctx, keyTypeRender)
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Cache().OnCacheHit(ctx, keyTypeRender)
			return artifacts, true, nil // All artifacts from cache
		}
	}

	if res == nil {
		if res, err = r.analyze(ctx, g, opts); err != nil {
			return nil, false, err
		}
	}

	dot := nodelink.ToDOT(g, res, opts.NodelinkOptions())
	hooks := observability.Pipeline()
	rendered := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		hooks.OnRenderStart(ctx, format)
		start := time.Now()
		data, err := nodelink.Render(ctx, dot, nodelink.Format(format), nodelink.Engine(opts.Engine))
		hooks.OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", format, err)
		}
		rendered[format] = data
	}

	// Cache each format
	for format, data := range rendered {
		cacheKey := r.Keyer.RenderKey(hash, opts.RenderKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLRender)); err == nil {
			observability.Cache().OnCacheSet(ctx, keyTypeRender, len(data))
		}
	}

	return rendered, false, nil // Cache miss
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, g *network.Network, res *cdl.Result, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, g, res, opts)
	return artifacts, err
}

// StationHash returns the content hash of g's canonical JSON encoding.
func StationHash(g *network.Network) (string, error) {
	var buf bytes.Buffer
	if err := rio.WriteJSON(g, &buf); err != nil {
		return "", fmt.Errorf("serialize station for cache key: %w", err)
	}
	return cache.Hash(buf.Bytes()), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
