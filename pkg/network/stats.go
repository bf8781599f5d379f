package network

// Stats summarises a network's composition.
type Stats struct {
	Nodes       int          `json:"total_nodes"`
	Edges       int          `json:"total_edges"`
	ByKind      map[Kind]int `json:"by_kind"`
	TrackLength float64      `json:"total_track_length"`
}

// Stats counts nodes per kind and sums the length of every edge.
func (g *Network) Stats() Stats {
	s := Stats{
		Nodes:  len(g.nodes),
		Edges:  len(g.edges),
		ByKind: make(map[Kind]int, len(kindNames)),
	}
	for _, k := range Kinds() {
		s.ByKind[k] = 0
	}
	for _, n := range g.nodes {
		s.ByKind[n.Kind]++
	}
	for _, e := range g.edges {
		s.TrackLength += e.Length
	}
	return s
}
