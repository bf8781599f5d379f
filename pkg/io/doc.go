// Package io reads and writes station networks.
//
// # Overview
//
// Stations can be exchanged in three encodings:
//
//   - JSON: the native format, see [ReadJSON] and [WriteJSON]
//   - YAML: the same document shape, handy for hand-written fixtures
//   - RailML: import only, see [ReadRailML]
//
// # Station Format
//
// JSON and YAML share one shape:
//
//	{
//	  "name": "Central",
//	  "nodes": [
//	    {"id": "E1", "kind": "entry"},
//	    {"id": "A"},
//	    {"id": "B", "kind": "entry"},
//	    {"id": "M", "kind": "switch", "position": {"x": 600, "y": 0}}
//	  ],
//	  "edges": [
//	    {"from": "E1", "to": "A", "length": 400},
//	    {"from": "A", "to": "M", "length": 300},
//	    {"from": "B", "to": "M", "length": 250}
//	  ]
//	}
//
// Nodes are added before edges, in document order. The kind defaults to
// "track". Edge lengths are in meters and must not be negative.
//
// # RailML
//
// [ReadRailML] matches element local names, so documents with or without a
// namespace are accepted. Connections whose endpoints were not imported
// are skipped; the count is returned in [RailMLStats] and stored in the
// network metadata under "skipped_connections".
//
// # Files
//
// [Import] and [Export] choose the format from the file extension
// (.json, .yaml/.yml, .railml/.xml):
//
//	g, err := io.Import("station.railml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = io.Export(g, "station.json")
//
// # Errors
//
// Malformed documents produce INVALID_FORMAT errors from pkg/errors.
// Structural problems are the network package's sentinel errors wrapped with
// the offending node or edge, so errors.Is works for both.
package io
