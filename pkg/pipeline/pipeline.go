// Package pipeline provides the station analysis pipeline for railcdl.
//
// This package implements the complete load → analyze → render pipeline used
// by the CLI and the HTTP server. Keeping it in one place means both entry
// points validate, cache and log the same way.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read a station from a file or an in-memory document
//     (JSON, YAML or RailML)
//  2. Analyze: Detect CDL zones and place protecting signals, producing a
//     [report.Report]
//  3. Render: Draw the analysed station as DOT, SVG or PNG
//
// Analysis reports and rendered diagrams are cached by content: the key is
// derived from the canonical JSON of the loaded station, so the same station
// read from YAML or RailML shares cache entries.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Path:      "station.yaml",
//	    Threshold: 700,
//	    Formats:   []string{"svg"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result.Report.WriteText(os.Stdout)
//	svg := result.Artifacts["svg"]
//
// Run individual stages:
//
//	g, err := runner.Load(ctx, opts)
//	rep, res, err := runner.Analyze(ctx, g, opts)
//	artifacts, err := runner.Render(ctx, g, res, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/railcdl/pkg/cache"
	"github.com/matzehuels/railcdl/pkg/cdl"
	perrors "github.com/matzehuels/railcdl/pkg/errors"
	rio "github.com/matzehuels/railcdl/pkg/io"
	"github.com/matzehuels/railcdl/pkg/network"
	"github.com/matzehuels/railcdl/pkg/render/nodelink"
	"github.com/matzehuels/railcdl/pkg/report"
)

// DefaultFormat is the diagram format rendered when none is requested.
const DefaultFormat = string(nodelink.FormatSVG)

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options. Exactly one of Path or Station is used; Path wins.
	Path    string `json:"-"`
	Station []byte `json:"-"`
	// Format names the station encoding (json, yaml, railml). It is detected
	// from Path when empty, and defaults to json for Station.
	Format string `json:"format,omitempty"`

	// Analysis options
	Threshold float64 `json:"signal_distance,omitempty"`
	Branch    string  `json:"branch_policy,omitempty"`
	Refresh   bool    `json:"refresh,omitempty"`

	// Render options. Execute skips rendering when Formats is empty.
	Formats    []string `json:"formats,omitempty"`
	Engine     string   `json:"engine,omitempty"`
	Detailed   bool     `json:"detailed,omitempty"`
	EdgeLabels bool     `json:"edge_labels,omitempty"`
	Positions  bool     `json:"positions,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Network is the loaded station.
	Network *network.Network

	// StationHash is the content hash of the station's canonical JSON.
	StationHash string

	// Report is the analysis summary.
	Report *report.Report

	// Analysis is the full analysis result. It is nil when the report came
	// from the cache and no diagram had to be drawn.
	Analysis *cdl.Result

	// Artifacts contains rendered diagrams keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	LoadTime    time.Duration
	AnalyzeTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	AnalysisHit bool // Whether the report came from cache
	RenderHit   bool // Whether all artifacts came from cache
}

// ValidateAndSetDefaults checks required fields and applies defaults for the full pipeline.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForLoad(); err != nil {
		return err
	}
	if err := o.ValidateForAnalysis(); err != nil {
		return err
	}
	if len(o.Formats) > 0 {
		if err := o.ValidateForRender(); err != nil {
			return err
		}
	}
	o.validated = true
	return nil
}

// ValidateForLoad checks that a station source is present and its format is known.
func (o *Options) ValidateForLoad() error {
	if o.Path == "" && len(o.Station) == 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "station path or document is required")
	}
	if o.Format != "" {
		f, err := rio.ParseFormat(o.Format)
		if err != nil {
			return err
		}
		o.Format = string(f)
	} else if o.Path == "" {
		o.Format = string(rio.FormatJSON)
	}
	o.setLogger()
	return nil
}

// ValidateForAnalysis applies the default threshold and checks the analysis options.
func (o *Options) ValidateForAnalysis() error {
	if o.Threshold == 0 {
		o.Threshold = cdl.DefaultThreshold
	}
	if err := cdl.ValidateThreshold(o.Threshold); err != nil {
		return perrors.FromCore(err)
	}
	b, err := cdl.ParseBranchPolicy(o.Branch)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid branch policy")
	}
	o.Branch = b.String()
	o.setLogger()
	return nil
}

// ValidateForRender applies render defaults and checks formats and engine.
func (o *Options) ValidateForRender() error {
	if len(o.Formats) == 0 {
		o.Formats = []string{DefaultFormat}
	}
	for _, f := range o.Formats {
		if _, err := nodelink.ParseFormat(f); err != nil {
			return perrors.Wrap(perrors.ErrCodeUnsupported, err, "invalid format")
		}
	}
	if o.Engine == "" && o.Positions {
		o.Engine = string(nodelink.EngineNeato)
	}
	e, err := nodelink.ParseEngine(o.Engine)
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeUnsupported, err, "invalid engine")
	}
	o.Engine = string(e)
	o.setLogger()
	return nil
}

func (o *Options) setLogger() {
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// CDLOptions returns the analysis options. Call after ValidateForAnalysis.
func (o *Options) CDLOptions() cdl.Options {
	b, _ := cdl.ParseBranchPolicy(o.Branch)
	return cdl.Options{Threshold: o.Threshold, Branch: b}
}

// NodelinkOptions returns the diagram options.
func (o *Options) NodelinkOptions() nodelink.Options {
	return nodelink.Options{
		Detailed:   o.Detailed,
		EdgeLabels: o.EdgeLabels,
		Positions:  o.Positions,
	}
}

// AnalysisKeyOpts returns cache key options for the analysis stage.
func (o *Options) AnalysisKeyOpts() cache.AnalysisKeyOpts {
	return cache.AnalysisKeyOpts{
		Threshold: o.Threshold,
		Branch:    o.Branch,
	}
}

// RenderKeyOpts returns cache key options for one rendered format.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	return cache.RenderKeyOpts{
		Analysis:   o.AnalysisKeyOpts(),
		Format:     format,
		Engine:     o.Engine,
		Detailed:   o.Detailed,
		EdgeLabels: o.EdgeLabels,
		Positions:  o.Positions,
	}
}
