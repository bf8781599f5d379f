package io

import (
	"encoding/json"
	"io"

	"github.com/matzehuels/railcdl/pkg/errors"
	"github.com/matzehuels/railcdl/pkg/network"
)

// ReadJSON decodes a JSON station from r into a network.
//
// The input must be a JSON object with "nodes" and "edges" arrays:
//
//	{
//	  "name": "Central",
//	  "nodes": [{"id": "A"}, {"id": "M", "kind": "switch"}],
//	  "edges": [{"from": "A", "to": "M", "length": 300}]
//	}
//
// Each node must have an "id" field. Optional fields:
//   - kind: track (default), switch, platform, entry or exit
//   - position: object with "x" and "y" in meters
//   - meta: object with arbitrary key-value pairs
//
// Each edge must have "from" and "to" fields that reference node IDs, and a
// finite, non-negative "length" in meters.
//
// ReadJSON returns an INVALID_FORMAT error if the JSON is malformed or has
// fields outside this schema, such as the editor's "type" key. Network
// violations (duplicate IDs, unknown endpoints, negative lengths, unknown
// kinds) are wrapped with context describing which node or edge caused the
// problem; use errors.Is with the network sentinels to check for them.
//
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*network.Network, error) {
	var data station
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode json")
	}
	return data.toNetwork()
}

// WriteJSON encodes a network as indented JSON and writes it to w.
// The output can be re-imported with [ReadJSON].
func WriteJSON(g *network.Network, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(fromNetwork(g)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode json")
	}
	return nil
}
