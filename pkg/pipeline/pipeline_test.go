package pipeline

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/railcdl/pkg/cache"
	"github.com/matzehuels/railcdl/pkg/cdl"
	perrors "github.com/matzehuels/railcdl/pkg/errors"
	"github.com/matzehuels/railcdl/pkg/observability"
)

const junctionJSON = `{
  "name": "Junction",
  "nodes": [
    {"id": "E1", "kind": "entry"},
    {"id": "A"},
    {"id": "B", "kind": "entry"},
    {"id": "M", "kind": "switch"}
  ],
  "edges": [
    {"from": "E1", "to": "A", "length": 400},
    {"from": "A", "to": "M", "length": 300},
    {"from": "B", "to": "M", "length": 250}
  ]
}`

const junctionYAML = `name: Junction
nodes:
  - id: E1
    kind: entry
  - id: A
  - id: B
    kind: entry
  - id: M
    kind: switch
edges:
  - {from: E1, to: A, length: 400}
  - {from: A, to: M, length: 300}
  - {from: B, to: M, length: 250}
`

func newTestRunner(t *testing.T) *Runner {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	r := NewRunner(c, nil, nil)
	t.Cleanup(func() { r.Close() })
	return r
}

func TestOptionsDefaults(t *testing.T) {
	opts := Options{Station: []byte(junctionJSON)}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults() error = %v", err)
	}

	if opts.Threshold != cdl.DefaultThreshold {
		t.Errorf("Threshold = %v, want %v", opts.Threshold, cdl.DefaultThreshold)
	}
	if opts.Branch != "first" {
		t.Errorf("Branch = %q, want first", opts.Branch)
	}
	if opts.Format != "json" {
		t.Errorf("Format = %q, want json for an in-memory document", opts.Format)
	}
	if len(opts.Formats) != 0 {
		t.Errorf("Formats = %v, want none (render skipped)", opts.Formats)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discard logger")
	}
}

func TestOptionsValidateForRender(t *testing.T) {
	opts := Options{}
	if err := opts.ValidateForRender(); err != nil {
		t.Fatalf("ValidateForRender() error = %v", err)
	}
	if diff := cmp.Diff([]string{DefaultFormat}, opts.Formats); diff != "" {
		t.Errorf("Formats mismatch (-want +got):\n%s", diff)
	}
	if opts.Engine != "dot" {
		t.Errorf("Engine = %q, want dot", opts.Engine)
	}

	pinned := Options{Positions: true}
	_ = pinned.ValidateForRender()
	if pinned.Engine != "neato" {
		t.Errorf("Engine with positions = %q, want neato", pinned.Engine)
	}
}

func TestOptionsErrors(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code perrors.Code
	}{
		{"no source", Options{}, perrors.ErrCodeInvalidInput},
		{"bad format", Options{Station: []byte("{}"), Format: "csv"}, perrors.ErrCodeUnsupported},
		{"negative threshold", Options{Station: []byte("{}"), Threshold: -1}, perrors.ErrCodeInvalidThreshold},
		{"bad branch", Options{Station: []byte("{}"), Branch: "random"}, perrors.ErrCodeInvalidInput},
		{"bad diagram format", Options{Station: []byte("{}"), Formats: []string{"pdf"}}, perrors.ErrCodeUnsupported},
		{"bad engine", Options{Station: []byte("{}"), Formats: []string{"svg"}, Engine: "circo"}, perrors.ErrCodeUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !perrors.Is(err, tt.code) {
				t.Errorf("ValidateAndSetDefaults() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestOptionsValidateAndSetDefaultsIdempotent(t *testing.T) {
	opts := Options{Station: []byte(junctionJSON), Threshold: 700, Formats: []string{"dot"}}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("first validation failed: %v", err)
	}
	first := opts
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("second validation failed: %v", err)
	}
	if opts.Threshold != first.Threshold || opts.Engine != first.Engine || opts.Branch != first.Branch {
		t.Errorf("second call changed options: %+v vs %+v", opts, first)
	}
}

func TestExecute(t *testing.T) {
	r := newTestRunner(t)
	res, err := r.Execute(context.Background(), Options{Station: []byte(junctionJSON)})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if res.Stats.NodeCount != 4 || res.Stats.EdgeCount != 3 {
		t.Errorf("Stats = %+v, want 4 nodes, 3 edges", res.Stats)
	}
	if res.StationHash == "" {
		t.Error("StationHash should be set")
	}
	if res.Analysis == nil {
		t.Fatal("Analysis should be set on a cache miss")
	}

	var ids []string
	for _, s := range res.Report.Signals {
		ids = append(ids, s.ID+"@"+s.PlacedAt)
	}
	if diff := cmp.Diff([]string{"SIG_A_to_M@E1", "SIG_B_to_M@B"}, ids); diff != "" {
		t.Errorf("signals mismatch (-want +got):\n%s", diff)
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("Artifacts = %v, want none without formats", res.Artifacts)
	}
}

func TestExecute_AnalysisCache(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Station: []byte(junctionJSON), Threshold: 600}

	first, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("first Execute() error = %v", err)
	}
	if first.CacheInfo.AnalysisHit {
		t.Error("first run should miss the cache")
	}

	second, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !second.CacheInfo.AnalysisHit {
		t.Error("second run should hit the cache")
	}
	if second.Analysis != nil {
		t.Error("Analysis should be nil when served from cache")
	}
	if diff := cmp.Diff(first.Report.Summary, second.Report.Summary); diff != "" {
		t.Errorf("cached summary mismatch (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(first.Report.Signals, second.Report.Signals); diff != "" {
		t.Errorf("cached signals mismatch (-first +second):\n%s", diff)
	}

	// A different threshold is a different key.
	other := opts
	other.Threshold = 800
	third, err := r.Execute(ctx, other)
	if err != nil {
		t.Fatalf("third Execute() error = %v", err)
	}
	if third.CacheInfo.AnalysisHit {
		t.Error("changing the threshold should miss the cache")
	}

	refresh := opts
	refresh.Refresh = true
	fourth, err := r.Execute(ctx, refresh)
	if err != nil {
		t.Fatalf("refresh Execute() error = %v", err)
	}
	if fourth.CacheInfo.AnalysisHit {
		t.Error("Refresh should bypass the cache")
	}
}

func TestExecute_RenderDOT(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Station: []byte(junctionJSON), Formats: []string{"dot"}}

	res, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	dot := string(res.Artifacts["dot"])
	for _, want := range []string{"digraph", "SIG_A_to_M", "SIG_B_to_M", "CDL zone"} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT output missing %q", want)
		}
	}

	// The report is now cached, so the second run renders from cache too.
	again, err := r.Execute(ctx, opts)
	if err != nil {
		t.Fatalf("second Execute() error = %v", err)
	}
	if !again.CacheInfo.AnalysisHit || !again.CacheInfo.RenderHit {
		t.Errorf("CacheInfo = %+v, want both hits", again.CacheInfo)
	}
	if !bytes.Equal(res.Artifacts["dot"], again.Artifacts["dot"]) {
		t.Error("cached diagram differs from rendered one")
	}
}

func TestRender_RecomputesMissingResult(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()
	opts := Options{Station: []byte(junctionJSON)}

	g, err := r.Load(ctx, opts)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	opts.Formats = []string{"dot"}
	artifacts, err := r.Render(ctx, g, nil, opts)
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(string(artifacts["dot"]), "SIG_B_to_M") {
		t.Error("Render with nil result should still draw signals")
	}
}

func TestLoad_FromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "junction.yaml")
	if err := os.WriteFile(path, []byte(junctionYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	r := newTestRunner(t)
	g, err := r.Load(context.Background(), Options{Path: path})
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if g.Name != "Junction" || g.NodeCount() != 4 {
		t.Errorf("loaded %q with %d nodes", g.Name, g.NodeCount())
	}

	_, err = r.Load(context.Background(), Options{Path: filepath.Join(dir, "missing.json")})
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("Load(missing) error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestStationHash_FormatIndependent(t *testing.T) {
	r := newTestRunner(t)
	ctx := context.Background()

	fromJSON, err := r.Load(ctx, Options{Station: []byte(junctionJSON)})
	if err != nil {
		t.Fatal(err)
	}
	fromYAML, err := r.Load(ctx, Options{Station: []byte(junctionYAML), Format: "yaml"})
	if err != nil {
		t.Fatal(err)
	}

	h1, _ := StationHash(fromJSON)
	h2, _ := StationHash(fromYAML)
	if h1 != h2 {
		t.Errorf("hash differs between JSON (%s) and YAML (%s) of the same station", h1, h2)
	}
}

func TestExecute_Errors(t *testing.T) {
	cycle := `{"name": "Loop", "nodes": [{"id": "B"}, {"id": "C"}, {"id": "D"}, {"id": "M"}],
	  "edges": [{"from": "C", "to": "M", "length": 10}, {"from": "D", "to": "M", "length": 10},
	            {"from": "B", "to": "C", "length": 10}, {"from": "C", "to": "B", "length": 10}]}`
	unknown := `{"name": "Broken", "nodes": [{"id": "A"}], "edges": [{"from": "A", "to": "Z", "length": 1}]}`

	tests := []struct {
		name    string
		station string
		code    perrors.Code
	}{
		{"cycle", cycle, perrors.ErrCodeCycle},
		{"unknown endpoint", unknown, perrors.ErrCodeInvalidNetwork},
		{"malformed", `{"name":`, perrors.ErrCodeInvalidFormat},
	}
	r := newTestRunner(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Execute(context.Background(), Options{Station: []byte(tt.station)})
			if !perrors.Is(err, tt.code) {
				t.Errorf("Execute() error = %v, want code %s", err, tt.code)
			}
		})
	}
}

type recordingCacheHooks struct {
	observability.NoopCacheHooks
	hits, misses, sets map[string]int
}

func (h *recordingCacheHooks) OnCacheHit(_ context.Context, keyType string)  { h.hits[keyType]++ }
func (h *recordingCacheHooks) OnCacheMiss(_ context.Context, keyType string) { h.misses[keyType]++ }
func (h *recordingCacheHooks) OnCacheSet(_ context.Context, keyType string, _ int) {
	h.sets[keyType]++
}

func TestExecute_CacheHooks(t *testing.T) {
	hooks := &recordingCacheHooks{hits: map[string]int{}, misses: map[string]int{}, sets: map[string]int{}}
	observability.SetCacheHooks(hooks)
	t.Cleanup(observability.Reset)

	r := newTestRunner(t)
	opts := Options{Station: []byte(junctionJSON)}
	for i := 0; i < 2; i++ {
		if _, err := r.Execute(context.Background(), opts); err != nil {
			t.Fatalf("Execute() error = %v", err)
		}
	}

	if hooks.misses[keyTypeAnalysis] != 1 || hooks.sets[keyTypeAnalysis] != 1 || hooks.hits[keyTypeAnalysis] != 1 {
		t.Errorf("hits=%v misses=%v sets=%v, want one of each for analysis", hooks.hits, hooks.misses, hooks.sets)
	}
}
