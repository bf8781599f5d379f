package io

import (
	"fmt"

	"github.com/matzehuels/railcdl/pkg/network"
)

// station is the serialized form of a network shared by the JSON and YAML
// codecs.
type station struct {
	Name  string           `json:"name" yaml:"name"`
	Meta  network.Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
	Nodes []node           `json:"nodes" yaml:"nodes"`
	Edges []edge           `json:"edges" yaml:"edges"`
}

type node struct {
	ID       string            `json:"id" yaml:"id"`
	Kind     string            `json:"kind,omitempty" yaml:"kind,omitempty"`
	Position *network.Position `json:"position,omitempty" yaml:"position,omitempty"`
	Meta     network.Metadata  `json:"meta,omitempty" yaml:"meta,omitempty"`
}

type edge struct {
	From   string           `json:"from" yaml:"from"`
	To     string           `json:"to" yaml:"to"`
	Length float64          `json:"length" yaml:"length"`
	Meta   network.Metadata `json:"meta,omitempty" yaml:"meta,omitempty"`
}

// toNetwork builds a network from the decoded station, adding nodes before
// edges in document order.
func (s station) toNetwork() (*network.Network, error) {
	g := network.New(s.Name, s.Meta)
	for _, n := range s.Nodes {
		kind, err := network.ParseKind(n.Kind)
		if err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
		if err := g.AddNode(network.Node{ID: n.ID, Kind: kind, Position: n.Position, Meta: n.Meta}); err != nil {
			return nil, fmt.Errorf("node %s: %w", n.ID, err)
		}
	}
	for _, e := range s.Edges {
		if err := g.AddEdge(network.Edge{From: e.From, To: e.To, Length: e.Length, Meta: e.Meta}); err != nil {
			return nil, fmt.Errorf("edge %s->%s: %w", e.From, e.To, err)
		}
	}
	return g, nil
}

func fromNetwork(g *network.Network) station {
	nodes := g.Nodes()
	edges := g.Edges()
	out := station{
		Name:  g.Name,
		Meta:  emptyToNil(g.Meta()),
		Nodes: make([]node, len(nodes)),
		Edges: make([]edge, len(edges)),
	}
	for i, n := range nodes {
		out.Nodes[i] = node{ID: n.ID, Kind: n.Kind.String(), Position: n.Position, Meta: emptyToNil(n.Meta)}
	}
	for i, e := range edges {
		out.Edges[i] = edge{From: e.From, To: e.To, Length: e.Length, Meta: emptyToNil(e.Meta)}
	}
	return out
}

func emptyToNil(m network.Metadata) network.Metadata {
	if len(m) == 0 {
		return nil
	}
	return m
}
