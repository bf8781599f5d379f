package cdl

import (
	"fmt"

	"github.com/matzehuels/railcdl/pkg/network"
)

// Options configures [Analyze].
type Options struct {
	Threshold float64      // meters; DefaultThreshold when zero
	Branch    BranchPolicy // behaviour at secondary merges
}

// Result is the outcome of one analysis run over a network snapshot.
type Result struct {
	Zones     Zones
	Signals   []Signal
	Registry  *Registry
	Threshold float64
	Branch    BranchPolicy
}

// Summary aggregates coverage over every zone of a result.
type Summary struct {
	Zones          int     `json:"zones"`
	Approaches     int     `json:"approaches"`
	Signals        int     `json:"signals"`
	FullyCovered   int     `json:"fully_covered_zones"`
	PartialSignals int     `json:"partial_signals"`
	Coverage       float64 `json:"coverage_percent"`
}

// Analyze detects the CDL zones of g, places their signals and registers
// them in a fresh registry. A zero threshold selects DefaultThreshold.
func Analyze(g *network.Network, opts Options) (*Result, error) {
	if opts.Threshold == 0 {
		opts.Threshold = DefaultThreshold
	}
	if err := ValidateThreshold(opts.Threshold); err != nil {
		return nil, err
	}

	zones := IdentifyZones(g)
	p := Placer{Threshold: opts.Threshold, Branch: opts.Branch}
	signals, err := p.Place(g, zones)
	if err != nil {
		return nil, fmt.Errorf("place signals: %w", err)
	}

	reg := NewRegistry()
	reg.AddZones(zones)
	if err := reg.Add(signals...); err != nil {
		return nil, fmt.Errorf("register signals: %w", err)
	}

	return &Result{
		Zones:     zones,
		Signals:   signals,
		Registry:  reg,
		Threshold: opts.Threshold,
		Branch:    opts.Branch,
	}, nil
}

// Partial returns the signals whose approach was shorter than the threshold.
func (r *Result) Partial() []Signal {
	var out []Signal
	for _, s := range r.Signals {
		if s.Partial() {
			out = append(out, s)
		}
	}
	return out
}

// Summary computes aggregate coverage for the result.
func (r *Result) Summary() Summary {
	s := Summary{
		Zones:          r.Zones.Len(),
		Approaches:     r.Zones.ApproachCount(),
		Signals:        r.Registry.Len(),
		PartialSignals: len(r.Partial()),
	}
	for _, z := range r.Zones {
		if r.Registry.Coverage(z.ID).Full() {
			s.FullyCovered++
		}
	}
	if s.Approaches > 0 {
		s.Coverage = float64(s.Signals) / float64(s.Approaches) * 100
	}
	return s
}
