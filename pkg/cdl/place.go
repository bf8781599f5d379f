package cdl

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/railcdl/pkg/network"
)

// DefaultThreshold is the default braking distance, in meters, between a
// signal and the zone it protects.
const DefaultThreshold = 500.0

// BranchPolicy decides what a backward walk does when it reaches a node with
// several predecessors before covering the threshold.
type BranchPolicy int

const (
	// BranchFirst follows the first predecessor in edge insertion order.
	// The other branches are covered by their own zone and approach, since a
	// node with several predecessors is itself a zone.
	BranchFirst BranchPolicy = iota
	// BranchStrict fails the walk with ErrNestedMerge.
	BranchStrict
)

var branchNames = map[BranchPolicy]string{
	BranchFirst:  "first",
	BranchStrict: "strict",
}

// String returns the policy name used in configuration files.
func (p BranchPolicy) String() string {
	if s, ok := branchNames[p]; ok {
		return s
	}
	return fmt.Sprintf("branch(%d)", int(p))
}

// ParseBranchPolicy converts a configuration name into a BranchPolicy.
// An empty string selects BranchFirst.
func ParseBranchPolicy(s string) (BranchPolicy, error) {
	if s == "" {
		return BranchFirst, nil
	}
	for p, name := range branchNames {
		if name == s {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown branch policy %q (must be one of: first, strict)", s)
}

// Placer walks upstream from each approach of each zone and decides where
// the protecting signal goes.
type Placer struct {
	// Threshold is the distance in meters the walk tries to cover.
	Threshold float64
	// Branch selects the behaviour at secondary merges.
	Branch BranchPolicy
}

// PlaceSignals places one signal per (zone, approach) pair using the
// BranchFirst policy. See [Placer.Place].
func PlaceSignals(g *network.Network, zones Zones, threshold float64) ([]Signal, error) {
	p := Placer{Threshold: threshold}
	return p.Place(g, zones)
}

// Place returns exactly one signal per (zone, approach) pair, zones in the
// given order and approaches in zone order.
//
// For each pair the walk starts at the approach with the length of the
// approach→zone segment already covered, then follows predecessor edges
// until the covered distance reaches the threshold or the track runs out.
// Running out is not an error: the signal is placed at the last node with
// the shorter distance recorded.
//
// Place returns ErrInvalidThreshold before walking anything if the threshold
// is not a positive finite number. A walk that revisits a node fails with
// ErrCycleDetected; under BranchStrict a walk reaching a secondary merge
// fails with ErrNestedMerge. No signals are returned on failure.
func (p Placer) Place(g *network.Network, zones Zones) ([]Signal, error) {
	if err := ValidateThreshold(p.Threshold); err != nil {
		return nil, err
	}
	signals := make([]Signal, 0, zones.ApproachCount())
	for _, z := range zones {
		for _, approach := range z.Approaches {
			s, err := p.walk(g, z.ID, approach)
			if err != nil {
				return nil, err
			}
			signals = append(signals, s)
		}
	}
	return signals, nil
}

// ValidateThreshold returns ErrInvalidThreshold unless t is a positive,
// finite distance.
func ValidateThreshold(t float64) error {
	if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidThreshold, t)
	}
	return nil
}

func (p Placer) walk(g *network.Network, zone, approach string) (Signal, error) {
	accumulated, ok := segmentLength(g, approach, zone)
	if !ok {
		return Signal{}, fmt.Errorf("%w: %s", ErrNotApproach, SignalID(approach, zone))
	}

	current := approach
	path := []string{zone, approach}
	visited := map[string]bool{zone: true, approach: true}

	for accumulated < p.Threshold {
		preds := g.Predecessors(current)
		if len(preds) == 0 {
			break
		}
		if len(preds) > 1 && p.Branch == BranchStrict {
			return Signal{}, fmt.Errorf("%w: %s reached %s after %.1fm",
				ErrNestedMerge, SignalID(approach, zone), current, accumulated)
		}
		next := preds[0]
		if visited[next.Node] {
			return Signal{}, fmt.Errorf("%w: %s revisits %s after %.1fm",
				ErrCycleDetected, SignalID(approach, zone), next.Node, accumulated)
		}
		visited[next.Node] = true
		accumulated += next.Length
		current = next.Node
		path = append(path, current)
	}

	return Signal{
		ID:             SignalID(approach, zone),
		PlacedAt:       current,
		ProtectsZone:   zone,
		ApproachFrom:   approach,
		DistanceToZone: accumulated,
		Threshold:      p.Threshold,
		Path:           slices.Clip(path),
	}, nil
}

// segmentLength returns the length of the first edge from→to in insertion
// order.
func segmentLength(g *network.Network, from, to string) (float64, bool) {
	for _, l := range g.Predecessors(to) {
		if l.Node == from {
			return l.Length, true
		}
	}
	return 0, false
}
