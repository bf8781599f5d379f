package cdl

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/railcdl/pkg/network"
)

// build creates a network from edges, adding nodes in order of first
// appearance.
func build(t *testing.T, edges ...network.Edge) *network.Network {
	t.Helper()
	g := network.New("test", nil)
	for _, e := range edges {
		for _, id := range []string{e.From, e.To} {
			if _, ok := g.Node(id); !ok {
				if err := g.AddNode(network.Node{ID: id}); err != nil {
					t.Fatalf("AddNode(%s) error = %v", id, err)
				}
			}
		}
		if err := g.AddEdge(e); err != nil {
			t.Fatalf("AddEdge(%s->%s) error = %v", e.From, e.To, err)
		}
	}
	return g
}

func edge(from, to string, length float64) network.Edge {
	return network.Edge{From: from, To: to, Length: length}
}

func TestIdentifyZones_Merge(t *testing.T) {
	g := build(t, edge("A", "M", 300), edge("B", "M", 250))

	got := IdentifyZones(g).Map()
	want := map[string][]string{"M": {"A", "B"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("IdentifyZones() mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentifyZones_LinearChain(t *testing.T) {
	g := build(t, edge("A", "B", 100), edge("B", "C", 100))

	if zones := IdentifyZones(g); zones.Len() != 0 {
		t.Errorf("IdentifyZones() = %v, want none", zones.IDs())
	}
	signals, err := PlaceSignals(g, IdentifyZones(g), DefaultThreshold)
	if err != nil {
		t.Fatalf("PlaceSignals() error = %v", err)
	}
	if len(signals) != 0 {
		t.Errorf("PlaceSignals() = %d signals, want 0", len(signals))
	}
}

func TestIdentifyZones_Empty(t *testing.T) {
	if zones := IdentifyZones(network.New("empty", nil)); zones.Len() != 0 {
		t.Errorf("empty network has %d zones", zones.Len())
	}
}

func TestIdentifyZones_ParallelEdges(t *testing.T) {
	g := build(t, edge("A", "M", 100), edge("A", "M", 110), edge("B", "M", 90))

	zones := IdentifyZones(g)
	z, ok := zones.Get("M")
	if !ok {
		t.Fatal("M should be a zone")
	}
	if diff := cmp.Diff([]string{"A", "B"}, z.Approaches); diff != "" {
		t.Errorf("Approaches mismatch (-want +got):\n%s", diff)
	}
	if z.Parallel["A"] != 2 || z.Parallel["B"] != 1 {
		t.Errorf("Parallel = %v, want A:2 B:1", z.Parallel)
	}
	if z.InDegree() != 3 {
		t.Errorf("InDegree() = %d, want 3", z.InDegree())
	}
}

func TestIdentifyZones_ParallelOnly(t *testing.T) {
	// Two tracks from one predecessor still make a merge point.
	g := build(t, edge("A", "M", 100), edge("A", "M", 100))

	zones := IdentifyZones(g)
	if zones.Len() != 1 {
		t.Fatalf("zones = %v, want [M]", zones.IDs())
	}
	if diff := cmp.Diff([]string{"A"}, zones[0].Approaches); diff != "" {
		t.Errorf("Approaches mismatch (-want +got):\n%s", diff)
	}
}

func TestIdentifyZones_Order(t *testing.T) {
	g := network.New("test", nil)
	for _, id := range []string{"Z2", "Z1", "C", "B", "A"} {
		_ = g.AddNode(network.Node{ID: id})
	}
	_ = g.AddEdge(edge("C", "Z1", 1))
	_ = g.AddEdge(edge("A", "Z1", 1))
	_ = g.AddEdge(edge("B", "Z2", 1))
	_ = g.AddEdge(edge("A", "Z2", 1))

	zones := IdentifyZones(g)
	if diff := cmp.Diff([]string{"Z2", "Z1"}, zones.IDs()); diff != "" {
		t.Errorf("zone order mismatch (-want +got):\n%s", diff)
	}
	z1, _ := zones.Get("Z1")
	if diff := cmp.Diff([]string{"C", "A"}, z1.Approaches); diff != "" {
		t.Errorf("approach order mismatch (-want +got):\n%s", diff)
	}
	if zones.ApproachCount() != 4 {
		t.Errorf("ApproachCount() = %d, want 4", zones.ApproachCount())
	}
}

func TestIdentifyZones_Idempotent(t *testing.T) {
	g := build(t,
		edge("A", "M", 1), edge("B", "M", 1), edge("M", "N", 1),
		edge("C", "N", 1), edge("C", "N", 1),
	)

	first := IdentifyZones(g)
	second := IdentifyZones(g)
	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("IdentifyZones() not idempotent (-first +second):\n%s", diff)
	}
}

func TestIdentifyZones_DoesNotMutate(t *testing.T) {
	g := build(t, edge("A", "M", 1), edge("B", "M", 1))
	before, _ := g.Node("M")
	kind := before.Kind

	IdentifyZones(g)

	after, _ := g.Node("M")
	if after.Kind != kind || len(after.Meta) != 0 {
		t.Errorf("IdentifyZones() modified node M: %+v", after)
	}
}
