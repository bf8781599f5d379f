// Package network provides the directed track graph of a railway station.
//
// # Overview
//
// A station is a set of typed nodes (track sections, switches, platforms,
// entry and exit points) joined by directed, length-weighted edges. Each
// edge is a physical track segment; two parallel edges between the same
// nodes are two separate tracks and are never merged.
//
// # Basic Usage
//
// Create a network with [New], add nodes with [Network.AddNode] and track
// segments with [Network.AddEdge]:
//
//	g := network.New("Central", nil)
//	g.AddNode(network.Node{ID: "A", Kind: network.KindEntry})
//	g.AddNode(network.Node{ID: "M", Kind: network.KindSwitch})
//	g.AddEdge(network.Edge{From: "A", To: "M", Length: 300})
//
// Query the topology with [Network.Predecessors], [Network.Successors] and
// [Network.InDegree]. Adjacency is reported in edge insertion order so every
// algorithm built on top is deterministic.
//
// # Errors
//
// Construction errors are sentinel values wrapped with the offending ID:
// [ErrInvalidNodeID], [ErrDuplicateNode], [ErrUnknownNode] and
// [ErrNegativeLength]. Use errors.Is to test for them.
//
// # Concurrency
//
// Network instances are not safe for concurrent use. One caller owns a
// network at a time; mutating it while package cdl analyses it is undefined.
package network
