package network

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Network.AddNode] when the node ID is
	// empty. All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNode is returned by [Network.AddNode] when a node with the
	// same ID already exists. Node IDs are unique across the whole station.
	ErrDuplicateNode = errors.New("duplicate node")

	// ErrUnknownNode is returned by [Network.AddEdge] when either endpoint
	// does not exist in the network.
	ErrUnknownNode = errors.New("unknown node")

	// ErrNegativeLength is returned by [Network.AddEdge] when the edge length
	// is negative, infinite or not a number.
	ErrNegativeLength = errors.New("edge length must be finite and non-negative")

	// ErrInvalidKind is returned by [ParseKind] for strings outside the
	// closed set of physical node kinds.
	ErrInvalidKind = errors.New("invalid node kind")
)

// Metadata stores arbitrary key-value pairs attached to nodes, edges or the
// network. The analysis never interprets it. Metadata maps are never nil
// once a node or edge has been added.
type Metadata map[string]any

// Position is a 2D coordinate in meters. It is only consumed by renderers.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Node is a point in the station topology: a track section, a switch,
// a platform, or a point where trains enter or leave the station.
type Node struct {
	ID       string
	Kind     Kind
	Position *Position // nil when the source carries no coordinates
	Meta     Metadata
}

// Edge is a directed track segment of Length meters. Parallel edges between
// the same pair of nodes are distinct physical connections and are kept.
type Edge struct {
	From   string
	To     string
	Length float64
	Meta   Metadata
}

// Link is one end of an edge as seen from a node: the neighbouring node and
// the length of the connecting segment.
type Link struct {
	Node   string
	Length float64
}

// Network is a directed, length-weighted graph describing one station.
//
// The zero value is not usable; create instances with [New].
// Network is not safe for concurrent use. A network is owned by one caller
// at a time and must not be mutated while an analysis is running over it.
type Network struct {
	Name string

	nodes    map[string]*Node
	order    []string // node IDs in insertion order
	edges    []Edge
	outgoing map[string][]Link
	incoming map[string][]Link
	meta     Metadata
}

// New creates an empty network for the named station.
func New(name string, meta Metadata) *Network {
	if meta == nil {
		meta = Metadata{}
	}
	return &Network{
		Name:     name,
		nodes:    make(map[string]*Node),
		outgoing: make(map[string][]Link),
		incoming: make(map[string][]Link),
		meta:     meta,
	}
}

// Meta returns the network-level metadata map. It is never nil.
func (g *Network) Meta() Metadata { return g.meta }

// AddNode adds a node to the network. It returns ErrInvalidNodeID if the ID
// is empty and ErrDuplicateNode if the ID is already taken. A nil Meta is
// replaced by an empty map.
func (g *Network) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, n.ID)
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	g.nodes[n.ID] = &n
	g.order = append(g.order, n.ID)
	return nil
}

// AddEdge adds a directed track segment between two existing nodes.
// It returns ErrUnknownNode if either endpoint is missing and
// ErrNegativeLength if the length is negative, infinite or NaN.
func (g *Network) AddEdge(e Edge) error {
	if _, ok := g.nodes[e.From]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, e.From)
	}
	if _, ok := g.nodes[e.To]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownNode, e.To)
	}
	if e.Length < 0 || math.IsNaN(e.Length) || math.IsInf(e.Length, 0) {
		return fmt.Errorf("%w: %s->%s (%v)", ErrNegativeLength, e.From, e.To, e.Length)
	}
	if e.Meta == nil {
		e.Meta = Metadata{}
	}
	g.edges = append(g.edges, e)
	g.outgoing[e.From] = append(g.outgoing[e.From], Link{Node: e.To, Length: e.Length})
	g.incoming[e.To] = append(g.incoming[e.To], Link{Node: e.From, Length: e.Length})
	return nil
}

// Node returns the node with the given ID. The returned pointer refers to the
// node stored in the network.
func (g *Network) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Network) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Network) Edges() []Edge { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes.
func (g *Network) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges, parallel edges included.
func (g *Network) EdgeCount() int { return len(g.edges) }

// Predecessors returns the upstream end of every edge terminating at id,
// in edge insertion order. The slice is a read-only view.
func (g *Network) Predecessors(id string) []Link { return g.incoming[id] }

// Successors returns the downstream end of every edge originating at id,
// in edge insertion order. The slice is a read-only view.
func (g *Network) Successors(id string) []Link { return g.outgoing[id] }

// InDegree returns the number of edges terminating at id. Parallel edges
// each count.
func (g *Network) InDegree(id string) int { return len(g.incoming[id]) }

// OutDegree returns the number of edges originating at id.
func (g *Network) OutDegree(id string) int { return len(g.outgoing[id]) }

// Sources returns nodes without incoming edges, in insertion order.
func (g *Network) Sources() []*Node {
	var out []*Node
	for _, id := range g.order {
		if len(g.incoming[id]) == 0 {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// Sinks returns nodes without outgoing edges, in insertion order.
func (g *Network) Sinks() []*Node {
	var out []*Node
	for _, id := range g.order {
		if len(g.outgoing[id]) == 0 {
			out = append(out, g.nodes[id])
		}
	}
	return out
}

// HasCycle reports whether the network contains a directed cycle.
// Loops are legal station topology, but they bound how far a backward walk
// can go before revisiting a node.
func (g *Network) HasCycle() bool {
	return len(g.Cycle()) > 0
}

// Cycle returns the node IDs of one directed cycle, starting and ending at
// the same node, or nil if the network is acyclic. Detection is a depth-first
// search with white/gray/black colouring, O(N+E).
func (g *Network) Cycle() []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.nodes))
	var stack []string
	var found []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		stack = append(stack, id)
		for _, l := range g.outgoing[id] {
			switch color[l.Node] {
			case white:
				if dfs(l.Node) {
					return true
				}
			case gray:
				start := slices.Index(stack, l.Node)
				found = append(slices.Clone(stack[start:]), l.Node)
				return true
			}
		}
		stack = stack[:len(stack)-1]
		color[id] = black
		return false
	}

	for _, id := range g.order {
		if color[id] == white && dfs(id) {
			return found
		}
	}
	return nil
}
