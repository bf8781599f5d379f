// Package cdl detects CDL zones in a station network and places the signals
// that protect them.
//
// # CDL Zones
//
// A CDL (Conflicting Direction Logic) zone is a node where two or more
// directed tracks converge: its in-degree is greater than one. Each distinct
// predecessor feeding the zone is an approach. [IdentifyZones] finds every
// zone in a single O(N+E) pass.
//
// Parallel edges from the same predecessor count towards the in-degree but
// form one approach, because a signal is placed per predecessor node. The
// number of physical edges behind each approach is kept in [Zone.Parallel].
//
// # Signal Placement
//
// For every (zone, approach) pair, [Placer.Place] walks predecessor edges
// upstream from the approach, accumulating track length until it reaches the
// threshold (500 m by default). The signal goes on the node where the walk
// stops:
//
//	E1 --400m--> A --300m--> M <--250m-- B
//
// With a 500 m threshold the signal for approach A is placed at E1
// (700 m from M) and the signal for approach B is placed at B (250 m, a
// partial placement since B has no predecessor).
//
// When the walk meets another merge before covering the threshold, the
// [BranchFirst] policy follows the first predecessor in insertion order;
// [BranchStrict] fails instead. Each walk keeps a visited set and fails with
// [ErrCycleDetected] rather than looping.
//
// # Registry
//
// [Registry] accumulates signals, rejects duplicates and answers coverage
// queries. [Analyze] runs detection, placement and registration in one call.
//
// # Concurrency
//
// Everything here is synchronous and unsynchronised. The network must not be
// mutated while an analysis runs, and results describe the snapshot they were
// computed from.
package cdl
