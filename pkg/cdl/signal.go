package cdl

import (
	"strconv"
	"strings"

	"github.com/matzehuels/railcdl/pkg/network"
)

// Metadata keys written by [Signal.Meta]. Exporters attach them to the
// placement node or to a rendered signal marker.
const (
	MetaProtectsZone = "protects_cdl_zone"
	MetaApproachFrom = "approach_from"
	MetaDistance     = "distance_to_cdl"
	MetaPlacedAt     = "placed_at"
)

// Signal is a protective marker placed upstream of a CDL zone.
// Signals are immutable once created.
type Signal struct {
	ID           string `json:"id"`
	PlacedAt     string `json:"placed_at_node"`
	ProtectsZone string `json:"protects_zone"`
	ApproachFrom string `json:"approach_from"`
	// DistanceToZone is the track length actually covered between PlacedAt
	// and the zone. It is below Threshold when the approach ran out of track.
	DistanceToZone float64 `json:"distance_to_zone"`
	Threshold      float64 `json:"threshold"`
	// Path lists the walked nodes, zone first and PlacedAt last.
	Path []string `json:"path"`
}

// signalSep joins the approach and zone parts of a signal ID.
const signalSep = "_to_"

// SignalID returns the canonical identifier of the signal protecting zone
// from approach, SIG_<approach>_to_<zone>.
//
// When the separator can be found at more than one place in the joined
// pair, the readable form would be shared by different pairs. Those IDs
// carry the approach length instead: SIG_<len>_<approach>_to_<zone>.
// The two forms never overlap, since the second always contains the
// separator twice.
func SignalID(approach, zone string) string {
	joined := approach + signalSep + zone
	if first := strings.Index(joined, signalSep); strings.Contains(joined[first+1:], signalSep) {
		return "SIG_" + strconv.Itoa(len(approach)) + "_" + joined
	}
	return "SIG_" + joined
}

// Partial reports whether the approach was shorter than the threshold.
func (s Signal) Partial() bool { return s.DistanceToZone < s.Threshold }

// Shortfall returns how many meters short of the threshold the signal is.
func (s Signal) Shortfall() float64 {
	if !s.Partial() {
		return 0
	}
	return s.Threshold - s.DistanceToZone
}

// Meta returns the signal facts as metadata under the documented keys.
func (s Signal) Meta() network.Metadata {
	return network.Metadata{
		MetaProtectsZone: s.ProtectsZone,
		MetaApproachFrom: s.ApproachFrom,
		MetaDistance:     s.DistanceToZone,
		MetaPlacedAt:     s.PlacedAt,
	}
}
