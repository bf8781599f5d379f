package cdl

import "github.com/matzehuels/railcdl/pkg/network"

// Zone is a node where two or more directed tracks converge.
// Its identity is the ID of the qualifying node.
type Zone struct {
	ID string
	// Approaches are the distinct predecessor nodes feeding the zone, in
	// first-seen edge insertion order.
	Approaches []string
	// Parallel counts, per approach, how many physical edges connect it to
	// the zone. Values above one mark parallel tracks sharing one signal.
	Parallel map[string]int
}

// InDegree returns the number of edges terminating at the zone.
func (z Zone) InDegree() int {
	n := 0
	for _, c := range z.Parallel {
		n += c
	}
	return n
}

// Zones is the ordered result of [IdentifyZones].
type Zones []Zone

// Get returns the zone with the given node ID.
func (zs Zones) Get(id string) (Zone, bool) {
	for _, z := range zs {
		if z.ID == id {
			return z, true
		}
	}
	return Zone{}, false
}

// IDs returns the zone IDs in detection order.
func (zs Zones) IDs() []string {
	ids := make([]string, len(zs))
	for i, z := range zs {
		ids[i] = z.ID
	}
	return ids
}

// Len returns the number of zones.
func (zs Zones) Len() int { return len(zs) }

// ApproachCount returns the total number of (zone, approach) pairs.
func (zs Zones) ApproachCount() int {
	n := 0
	for _, z := range zs {
		n += len(z.Approaches)
	}
	return n
}

// Map returns the zones as a mapping from zone ID to approach IDs.
func (zs Zones) Map() map[string][]string {
	m := make(map[string][]string, len(zs))
	for _, z := range zs {
		m[z.ID] = z.Approaches
	}
	return m
}

// IdentifyZones returns every node whose in-degree is greater than one.
// Zones are listed in node insertion order and approaches in edge insertion
// order, so two calls over an unchanged network return equal results.
// Parallel edges from one predecessor form a single approach.
//
// The result is a snapshot: any later change to g invalidates it.
func IdentifyZones(g *network.Network) Zones {
	var zones Zones
	for _, n := range g.Nodes() {
		preds := g.Predecessors(n.ID)
		if len(preds) <= 1 {
			continue
		}
		z := Zone{ID: n.ID, Parallel: make(map[string]int, len(preds))}
		for _, p := range preds {
			if z.Parallel[p.Node] == 0 {
				z.Approaches = append(z.Approaches, p.Node)
			}
			z.Parallel[p.Node]++
		}
		zones = append(zones, z)
	}
	return zones
}
