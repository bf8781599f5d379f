package io

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"github.com/matzehuels/railcdl/pkg/errors"
	"github.com/matzehuels/railcdl/pkg/network"
)

const (
	// DefaultRailMLLength is the segment length used for connections that
	// carry no length attribute.
	DefaultRailMLLength = 500.0

	// DefaultRailMLStation names stations whose document has no
	// operationControlPoint or station element.
	DefaultRailMLStation = "Imported Station"

	// Coordinates are scaled from degrees so that diagrams stay legible.
	geoScale = 10000.0

	gridColumns = 10
	gridDX      = 300.0
	gridDY      = 200.0
)

// Meta keys written by the RailML importer.
const (
	MetaSource             = "source"
	MetaLength             = "length"
	MetaHeight             = "height"
	MetaSwitchType         = "type"
	MetaSkippedConnections = "skipped_connections"
)

// RailMLStats counts what a RailML import produced.
type RailMLStats struct {
	Tracks      int `json:"tracks"`
	Switches    int `json:"switches"`
	Platforms   int `json:"platforms"`
	Connections int `json:"connections"`
	// Skipped counts connections whose endpoints are not imported nodes.
	Skipped int `json:"skipped"`
	// Duplicates counts elements whose ID was already taken.
	Duplicates int `json:"duplicates"`
}

// element is the subset of an XML start tag the importer needs.
type element struct {
	attrs map[string]string
}

func (e element) get(names ...string) string {
	for _, n := range names {
		if v := e.attrs[n]; v != "" {
			return v
		}
	}
	return ""
}

// railmlGroups lists the element local names the importer collects. Names in
// the same group are imported in the listed order.
var (
	trackTags      = []string{"track", "netElement"}
	switchTags     = []string{"switch", "turnout"}
	platformTags   = []string{"platform", "platformEdge"}
	connectionTags = []string{"connection", "relation"}
	stationTags    = []string{"operationControlPoint", "station"}
)

// ReadRailML imports railway infrastructure from a RailML 2.x or 3.x
// document. Element names are matched on their local part, so any namespace
// (or none) is accepted.
//
// Tracks and netElements become track nodes, switches and turnouts become
// switch nodes, platforms and platformEdges become platform nodes.
// Connections and relations become edges from the "ref" (or "from")
// attribute to the "to" (or "target") attribute, with the "length"
// attribute in meters or [DefaultRailMLLength]. Connections whose endpoints
// were not imported are skipped and counted.
//
// Node positions come from latitude/longitude attributes scaled by 10000,
// or are laid out on a grid when the element has no coordinates.
func ReadRailML(r io.Reader) (*network.Network, RailMLStats, error) {
	var stats RailMLStats

	found, err := scanRailML(r)
	if err != nil {
		return nil, stats, err
	}

	g := network.New(stationName(found), network.Metadata{MetaSource: "railml"})

	add := func(el element, kind network.Kind, index int, meta network.Metadata) (bool, error) {
		id := el.get("id", "name")
		if id == "" {
			return false, nil
		}
		if _, exists := g.Node(id); exists {
			stats.Duplicates++
			return false, nil
		}
		err := g.AddNode(network.Node{ID: id, Kind: kind, Position: railMLPosition(el, index), Meta: meta})
		if err != nil {
			return false, fmt.Errorf("node %s: %w", id, err)
		}
		return true, nil
	}

	for _, el := range collect(found, trackTags) {
		ok, err := add(el, network.KindTrack, stats.Tracks, network.Metadata{
			MetaSource: "railml",
			MetaLength: orUnknown(el.get("length")),
		})
		if err != nil {
			return nil, stats, err
		}
		if ok {
			stats.Tracks++
		}
	}
	for _, el := range collect(found, switchTags) {
		ok, err := add(el, network.KindSwitch, stats.Switches*2, network.Metadata{
			MetaSource:     "railml",
			MetaSwitchType: orDefault(el.get("type"), "turnout"),
		})
		if err != nil {
			return nil, stats, err
		}
		if ok {
			stats.Switches++
		}
	}
	for _, el := range collect(found, platformTags) {
		ok, err := add(el, network.KindPlatform, stats.Platforms*3, network.Metadata{
			MetaSource: "railml",
			MetaLength: orUnknown(el.get("length")),
			MetaHeight: orUnknown(el.get("height")),
		})
		if err != nil {
			return nil, stats, err
		}
		if ok {
			stats.Platforms++
		}
	}

	for _, el := range collect(found, connectionTags) {
		from := el.get("ref", "from")
		to := el.get("to", "target")
		_, okFrom := g.Node(from)
		_, okTo := g.Node(to)
		if !okFrom || !okTo {
			stats.Skipped++
			continue
		}
		length := DefaultRailMLLength
		if raw := el.get("length"); raw != "" {
			length, err = strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, stats, errors.Wrap(errors.ErrCodeInvalidFormat, err, "connection %s->%s: length %q", from, to, raw)
			}
		}
		if err := g.AddEdge(network.Edge{From: from, To: to, Length: length, Meta: network.Metadata{MetaSource: "railml"}}); err != nil {
			return nil, stats, fmt.Errorf("connection %s->%s: %w", from, to, err)
		}
		stats.Connections++
	}

	g.Meta()[MetaSkippedConnections] = stats.Skipped
	return g, stats, nil
}

// scanRailML streams the document once and groups the interesting elements
// by local name, in document order.
func scanRailML(r io.Reader) (map[string][]element, error) {
	wanted := make(map[string]bool)
	for _, group := range [][]string{trackTags, switchTags, platformTags, connectionTags, stationTags} {
		for _, t := range group {
			wanted[t] = true
		}
	}

	found := make(map[string][]element)
	dec := xml.NewDecoder(r)
	sawRoot := false
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode railml")
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if !wanted[se.Name.Local] {
			continue
		}
		el := element{attrs: make(map[string]string, len(se.Attr))}
		for _, a := range se.Attr {
			el.attrs[a.Name.Local] = a.Value
		}
		found[se.Name.Local] = append(found[se.Name.Local], el)
	}
	if !sawRoot {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "decode railml: empty document")
	}
	return found, nil
}

func collect(found map[string][]element, tags []string) []element {
	var out []element
	for _, t := range tags {
		out = append(out, found[t]...)
	}
	return out
}

func stationName(found map[string][]element) string {
	for _, t := range stationTags {
		if els := found[t]; len(els) > 0 {
			if name := els[0].get("name", "id"); name != "" {
				return name
			}
		}
	}
	return DefaultRailMLStation
}

func railMLPosition(el element, index int) *network.Position {
	lat := el.get("latitude", "lat")
	lon := el.get("longitude", "lon")
	if lat != "" && lon != "" {
		y, errLat := strconv.ParseFloat(lat, 64)
		x, errLon := strconv.ParseFloat(lon, 64)
		if errLat == nil && errLon == nil {
			return &network.Position{X: x * geoScale, Y: y * geoScale}
		}
	}
	return &network.Position{
		X: float64(index%gridColumns) * gridDX,
		Y: float64(index/gridColumns) * gridDY,
	}
}

func orUnknown(s string) string { return orDefault(s, "unknown") }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
