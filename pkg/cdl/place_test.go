package cdl

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPlaceSignals_EndToEnd(t *testing.T) {
	g := build(t, edge("A", "M", 300), edge("B", "M", 250))

	zones := IdentifyZones(g)
	signals, err := PlaceSignals(g, zones, 500)
	if err != nil {
		t.Fatalf("PlaceSignals() error = %v", err)
	}

	want := []Signal{
		{
			ID: "SIG_A_to_M", PlacedAt: "A", ProtectsZone: "M", ApproachFrom: "A",
			DistanceToZone: 300, Threshold: 500, Path: []string{"M", "A"},
		},
		{
			ID: "SIG_B_to_M", PlacedAt: "B", ProtectsZone: "M", ApproachFrom: "B",
			DistanceToZone: 250, Threshold: 500, Path: []string{"M", "B"},
		},
	}
	if diff := cmp.Diff(want, signals); diff != "" {
		t.Errorf("PlaceSignals() mismatch (-want +got):\n%s", diff)
	}

	reg := NewRegistry()
	reg.AddZones(zones)
	if err := reg.Add(signals...); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if c := reg.Coverage("M"); c != (Coverage{Approaches: 2, Signals: 2}) || !c.Full() {
		t.Errorf("Coverage(M) = %+v, want full 2/2", c)
	}
}

func TestPlaceSignals_WalksUpstream(t *testing.T) {
	g := build(t,
		edge("E1", "A", 400), edge("A", "M", 300),
		edge("B", "M", 250),
	)

	signals, err := PlaceSignals(g, IdentifyZones(g), 500)
	if err != nil {
		t.Fatalf("PlaceSignals() error = %v", err)
	}
	if len(signals) != 2 {
		t.Fatalf("got %d signals, want 2", len(signals))
	}

	a := signals[0]
	if a.PlacedAt != "E1" || a.DistanceToZone != 700 {
		t.Errorf("signal A placed at %s (%vm), want E1 (700m)", a.PlacedAt, a.DistanceToZone)
	}
	if a.Partial() {
		t.Error("signal A should not be partial")
	}
	if diff := cmp.Diff([]string{"M", "A", "E1"}, a.Path); diff != "" {
		t.Errorf("Path mismatch (-want +got):\n%s", diff)
	}

	b := signals[1]
	if !b.Partial() || b.Shortfall() != 250 {
		t.Errorf("signal B partial=%v shortfall=%v, want true/250", b.Partial(), b.Shortfall())
	}
}

func TestPlaceSignals_ThresholdBoundary(t *testing.T) {
	g := build(t,
		edge("W", "X", 100), edge("X", "A", 200), edge("A", "M", 300),
		edge("B", "M", 600),
	)

	signals, err := PlaceSignals(g, IdentifyZones(g), 500)
	if err != nil {
		t.Fatalf("PlaceSignals() error = %v", err)
	}

	a := signals[0]
	if a.PlacedAt != "X" || a.DistanceToZone != 500 {
		t.Errorf("signal A placed at %s (%vm), want X (500m) without overshoot", a.PlacedAt, a.DistanceToZone)
	}
	b := signals[1]
	if b.PlacedAt != "B" || b.DistanceToZone != 600 {
		t.Errorf("signal B placed at %s (%vm), want B (600m)", b.PlacedAt, b.DistanceToZone)
	}
}

func TestPlaceSignals_PartialCoverage(t *testing.T) {
	g := build(t,
		edge("S", "A", 50), edge("A", "M", 100),
		edge("B", "M", 100),
	)

	signals, err := PlaceSignals(g, IdentifyZones(g), 1000)
	if err != nil {
		t.Fatalf("PlaceSignals() error = %v", err)
	}
	if signals[0].PlacedAt != "S" || signals[0].DistanceToZone != 150 {
		t.Errorf("signal A = %s/%v, want S/150", signals[0].PlacedAt, signals[0].DistanceToZone)
	}
	if !signals[0].Partial() {
		t.Error("signal A should be partial")
	}
}

func TestPlaceSignals_NestedMergeFirstBranch(t *testing.T) {
	// M <- A <- {P, Q}, P <- R, plus B -> M.
	g := build(t,
		edge("A", "M", 100), edge("B", "M", 100),
		edge("P", "A", 100), edge("Q", "A", 100),
		edge("R", "P", 400),
	)
	p := Placer{Threshold: 500}

	signals, err := p.Place(g, IdentifyZones(g))
	if err != nil {
		t.Fatalf("Place() error = %v", err)
	}

	got := make(map[string]string)
	dist := make(map[string]float64)
	for _, s := range signals {
		got[s.ID] = s.PlacedAt
		dist[s.ID] = s.DistanceToZone
	}
	want := map[string]string{
		"SIG_A_to_M": "R", // A -> P (first branch) -> R
		"SIG_B_to_M": "B",
		"SIG_P_to_A": "R",
		"SIG_Q_to_A": "Q",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("placements mismatch (-want +got):\n%s", diff)
	}
	if dist["SIG_A_to_M"] != 600 {
		t.Errorf("SIG_A_to_M distance = %v, want 600", dist["SIG_A_to_M"])
	}
	if dist["SIG_P_to_A"] != 500 {
		t.Errorf("SIG_P_to_A distance = %v, want 500", dist["SIG_P_to_A"])
	}
}

func TestPlaceSignals_NestedMergeStrict(t *testing.T) {
	g := build(t,
		edge("A", "M", 100), edge("B", "M", 100),
		edge("P", "A", 100), edge("Q", "A", 100),
	)
	p := Placer{Threshold: 500, Branch: BranchStrict}

	signals, err := p.Place(g, IdentifyZones(g))
	if !errors.Is(err, ErrNestedMerge) {
		t.Fatalf("Place() error = %v, want ErrNestedMerge", err)
	}
	if signals != nil {
		t.Error("no signals should be returned on failure")
	}
}

func TestPlaceSignals_CycleGuard(t *testing.T) {
	g := build(t,
		edge("C", "M", 10), edge("D", "M", 10),
		edge("B", "C", 10), edge("C", "B", 10),
	)

	_, err := PlaceSignals(g, IdentifyZones(g), 500)
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("PlaceSignals() error = %v, want ErrCycleDetected", err)
	}
}

func TestPlaceSignals_CycleBeyondThreshold(t *testing.T) {
	// The loop is only reachable after the threshold is covered.
	g := build(t,
		edge("C", "M", 600), edge("D", "M", 10),
		edge("B", "C", 10), edge("C", "B", 10),
	)

	signals, err := PlaceSignals(g, IdentifyZones(g), 500)
	if err != nil {
		t.Fatalf("PlaceSignals() error = %v", err)
	}
	if signals[0].PlacedAt != "C" {
		t.Errorf("signal C placed at %s, want C", signals[0].PlacedAt)
	}
}

func TestPlaceSignals_InvalidThreshold(t *testing.T) {
	g := build(t, edge("A", "M", 1), edge("B", "M", 1))
	zones := IdentifyZones(g)

	for _, th := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		signals, err := PlaceSignals(g, zones, th)
		if !errors.Is(err, ErrInvalidThreshold) {
			t.Errorf("PlaceSignals(threshold=%v) error = %v, want ErrInvalidThreshold", th, err)
		}
		if signals != nil {
			t.Errorf("PlaceSignals(threshold=%v) returned signals", th)
		}
	}
}

func TestPlaceSignals_StaleZones(t *testing.T) {
	g := build(t, edge("A", "M", 1), edge("B", "M", 1))
	zones := Zones{{ID: "M", Approaches: []string{"A", "X"}}}

	_, err := PlaceSignals(g, zones, 500)
	if !errors.Is(err, ErrNotApproach) {
		t.Errorf("PlaceSignals() error = %v, want ErrNotApproach", err)
	}
}

func TestPlaceSignals_Idempotent(t *testing.T) {
	g := build(t,
		edge("E1", "A", 400), edge("A", "M", 300),
		edge("E2", "B", 100), edge("B", "M", 250),
		edge("M", "N", 50), edge("C", "N", 50),
	)

	first, err := PlaceSignals(g, IdentifyZones(g), 500)
	if err != nil {
		t.Fatalf("first run error = %v", err)
	}
	second, err := PlaceSignals(g, IdentifyZones(g), 500)
	if err != nil {
		t.Fatalf("second run error = %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("PlaceSignals() not idempotent (-first +second):\n%s", diff)
	}
}

func TestParseBranchPolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    BranchPolicy
		wantErr bool
	}{
		{"", BranchFirst, false},
		{"first", BranchFirst, false},
		{"strict", BranchStrict, false},
		{"fanout", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseBranchPolicy(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseBranchPolicy(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseBranchPolicy(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if BranchStrict.String() != "strict" {
		t.Errorf("BranchStrict.String() = %q", BranchStrict.String())
	}
}

func TestSignalID(t *testing.T) {
	tests := []struct {
		approach, zone, want string
	}{
		{"A", "M", "SIG_A_to_M"},
		{"ENTRY_B", "SWITCH_B1", "SIG_ENTRY_B_to_SWITCH_B1"},
		{"to", "to", "SIG_to_to_to"},
		{"A_to_B", "C", "SIG_6_A_to_B_to_C"},
		{"A", "B_to_C", "SIG_1_A_to_B_to_C"},
		{"A_to", "_B", "SIG_4_A_to_to__B"},
		{"A", "to__B", "SIG_1_A_to_to__B"},
	}
	for _, tt := range tests {
		if got := SignalID(tt.approach, tt.zone); got != tt.want {
			t.Errorf("SignalID(%q, %q) = %q, want %q", tt.approach, tt.zone, got, tt.want)
		}
	}
}

func TestAnalyze_SeparatorInNodeIDs(t *testing.T) {
	g := build(t,
		edge("A_to_B", "C", 100), edge("X", "C", 100),
		edge("A", "B_to_C", 100), edge("Y", "B_to_C", 100),
	)

	res, err := Analyze(g, Options{Threshold: 50})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	var got []string
	for _, s := range res.Signals {
		got = append(got, s.ID)
	}
	want := []string{"SIG_6_A_to_B_to_C", "SIG_X_to_C", "SIG_1_A_to_B_to_C", "SIG_Y_to_B_to_C"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("signal IDs mismatch (-want +got):\n%s", diff)
	}
	if c := res.Registry.Coverage("C"); !c.Full() {
		t.Errorf("Coverage(C) = %+v, want full", c)
	}
}

func TestSignalMeta(t *testing.T) {
	s := Signal{ID: "SIG_A_to_M", PlacedAt: "E1", ProtectsZone: "M", ApproachFrom: "A", DistanceToZone: 700}
	meta := s.Meta()
	if meta[MetaProtectsZone] != "M" || meta[MetaApproachFrom] != "A" || meta[MetaDistance] != 700.0 {
		t.Errorf("Meta() = %v", meta)
	}
}
