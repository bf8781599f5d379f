// Package sample builds small reference stations.
//
// The stations are used by `railcdl example`, by documentation examples and
// by tests in other packages. Each call returns a fresh network the caller
// owns.
package sample

import "github.com/matzehuels/railcdl/pkg/network"

// Names lists the stations known to [Build].
func Names() []string { return []string{"central", "junction"} }

// Build returns the named sample station, or false for an unknown name.
func Build(name string) (*network.Network, bool) {
	switch name {
	case "central":
		return Central(), true
	case "junction":
		return Junction(), true
	}
	return nil, false
}

type nodeSpec struct {
	id   string
	kind network.Kind
	x, y float64
	meta network.Metadata
}

type edgeSpec struct {
	from, to string
	length   float64
}

func build(name string, nodes []nodeSpec, edges []edgeSpec) *network.Network {
	g := network.New(name, nil)
	for _, n := range nodes {
		err := g.AddNode(network.Node{
			ID:       n.id,
			Kind:     n.kind,
			Position: &network.Position{X: n.x, Y: n.y},
			Meta:     n.meta,
		})
		if err != nil {
			panic("sample: " + err.Error())
		}
	}
	for _, e := range edges {
		if err := g.AddEdge(network.Edge{From: e.from, To: e.to, Length: e.length}); err != nil {
			panic("sample: " + err.Error())
		}
	}
	return g
}

// Central is a two-platform station with a crossover and a siding:
//
//	                 ┌── Platform 1 ──┐
//	Entry A ──┬──────┤                ├──── Exit A
//	          │      └────────────────┘
//	          │      ┌── Platform 2 ──┐
//	Entry B ──┴──────┤                ├──── Exit B
//	          │      └────────────────┘
//	          └─────── Siding ──────────── Exit C
//
// The crossover from SWITCH_A1 joins SWITCH_B1, making it the only zone.
// Both approaches are shorter than the default threshold.
func Central() *network.Network {
	return build("Central Station", []nodeSpec{
		{"ENTRY_A", network.KindEntry, 0, 200, network.Metadata{"description": "Main entry from North"}},
		{"ENTRY_B", network.KindEntry, 0, 0, network.Metadata{"description": "Secondary entry from South"}},
		{"SWITCH_A1", network.KindSwitch, 200, 200, network.Metadata{"direction": "diverging"}},
		{"SWITCH_B1", network.KindSwitch, 200, 0, network.Metadata{"direction": "diverging"}},
		{"SWITCH_A2", network.KindSwitch, 800, 200, network.Metadata{"direction": "converging"}},
		{"SWITCH_B2", network.KindSwitch, 800, 0, network.Metadata{"direction": "converging"}},
		{"PLATFORM_1_START", network.KindPlatform, 400, 250, network.Metadata{"platform_number": 1}},
		{"PLATFORM_1_END", network.KindPlatform, 600, 250, network.Metadata{"platform_number": 1}},
		{"PLATFORM_2_START", network.KindPlatform, 400, 50, network.Metadata{"platform_number": 2}},
		{"PLATFORM_2_END", network.KindPlatform, 600, 50, network.Metadata{"platform_number": 2}},
		{"SIDING_MID", network.KindTrack, 500, -100, network.Metadata{"track_type": "siding"}},
		{"EXIT_A", network.KindExit, 1000, 200, network.Metadata{"description": "Exit to East"}},
		{"EXIT_B", network.KindExit, 1000, 0, network.Metadata{"description": "Exit to Southeast"}},
		{"EXIT_C", network.KindExit, 900, -100, network.Metadata{"description": "Exit to Siding Yard"}},
	}, []edgeSpec{
		{"ENTRY_A", "SWITCH_A1", 200},
		{"SWITCH_A1", "PLATFORM_1_START", 250},
		{"PLATFORM_1_START", "PLATFORM_1_END", 200},
		{"PLATFORM_1_END", "SWITCH_A2", 250},
		{"ENTRY_B", "SWITCH_B1", 200},
		{"SWITCH_B1", "PLATFORM_2_START", 250},
		{"PLATFORM_2_START", "PLATFORM_2_END", 200},
		{"PLATFORM_2_END", "SWITCH_B2", 250},
		{"SWITCH_A1", "SWITCH_B1", 200},
		{"SWITCH_B1", "SIDING_MID", 550},
		{"SIDING_MID", "EXIT_C", 450},
		{"SWITCH_A2", "EXIT_A", 200},
		{"SWITCH_B2", "EXIT_B", 200},
	})
}

// Junction is three lines merging in two stages: lines A and B join at
// SWITCH_AB, which then joins line C at SWITCH_MAIN. The approach from
// SWITCH_AB to SWITCH_MAIN walks back through a nested merge.
func Junction() *network.Network {
	return build("Complex Junction", []nodeSpec{
		{"LINE_A_ENTRY", network.KindEntry, 0, 300, nil},
		{"LINE_B_ENTRY", network.KindEntry, 0, 150, nil},
		{"LINE_C_ENTRY", network.KindEntry, 0, 0, nil},
		{"TRACK_A1", network.KindTrack, 300, 300, nil},
		{"TRACK_A2", network.KindTrack, 600, 300, nil},
		{"TRACK_B1", network.KindTrack, 300, 150, nil},
		{"TRACK_B2", network.KindTrack, 600, 150, nil},
		{"TRACK_C1", network.KindTrack, 300, 0, nil},
		{"SWITCH_AB", network.KindSwitch, 900, 225, nil},
		{"SWITCH_MAIN", network.KindSwitch, 1200, 150, nil},
		{"MAIN_EXIT", network.KindExit, 1500, 150, nil},
	}, []edgeSpec{
		{"LINE_A_ENTRY", "TRACK_A1", 300},
		{"TRACK_A1", "TRACK_A2", 300},
		{"TRACK_A2", "SWITCH_AB", 350},
		{"LINE_B_ENTRY", "TRACK_B1", 300},
		{"TRACK_B1", "TRACK_B2", 300},
		{"TRACK_B2", "SWITCH_AB", 350},
		{"LINE_C_ENTRY", "TRACK_C1", 300},
		{"TRACK_C1", "SWITCH_MAIN", 950},
		{"SWITCH_AB", "SWITCH_MAIN", 300},
		{"SWITCH_MAIN", "MAIN_EXIT", 300},
	})
}
