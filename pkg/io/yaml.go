package io

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/railcdl/pkg/errors"
	"github.com/matzehuels/railcdl/pkg/network"
)

// ReadYAML decodes a YAML station from r. The document has the same shape
// as the JSON format accepted by [ReadJSON].
func ReadYAML(r io.Reader) (*network.Network, error) {
	var data station
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode yaml")
	}
	return data.toNetwork()
}

// WriteYAML encodes a network as YAML and writes it to w.
func WriteYAML(g *network.Network, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(fromNetwork(g)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode yaml")
	}
	return enc.Close()
}
