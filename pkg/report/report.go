// Package report summarises a station analysis for people and programs.
//
// A [Report] is a snapshot built from a network and its [cdl.Result]. It
// renders as plain text with [Report.WriteText] or as JSON with
// [Report.WriteJSON]; the JSON form is also the HTTP API response body.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/railcdl/pkg/cdl"
	"github.com/matzehuels/railcdl/pkg/network"
)

// Stats counts the station's composition together with the analysis totals.
type Stats struct {
	Nodes       int     `json:"total_nodes"`
	Edges       int     `json:"total_edges"`
	Tracks      int     `json:"tracks"`
	Switches    int     `json:"switches"`
	Platforms   int     `json:"platforms"`
	Entries     int     `json:"entries"`
	Exits       int     `json:"exits"`
	Zones       int     `json:"cdl_zones"`
	Signals     int     `json:"signals"`
	TrackLength float64 `json:"total_track_length"`
}

// Zone describes one detected zone and how well it is protected.
type Zone struct {
	ID         string       `json:"id"`
	Approaches []string     `json:"approaches"`
	Coverage   cdl.Coverage `json:"coverage"`
	Full       bool         `json:"fully_covered"`
}

// Report is the complete result of analysing one station.
type Report struct {
	Station   string       `json:"station"`
	Threshold float64      `json:"threshold"`
	Branch    string       `json:"branch_policy"`
	Stats     Stats        `json:"stats"`
	Summary   cdl.Summary  `json:"summary"`
	Zones     []Zone       `json:"zones"`
	Signals   []cdl.Signal `json:"signals"`

	// ZoneDetails and SignalDetails are one-line descriptions for display.
	ZoneDetails   []string `json:"cdl_details"`
	SignalDetails []string `json:"signal_details"`
}

// New builds a report for g from an analysis result.
func New(g *network.Network, res *cdl.Result) *Report {
	ns := g.Stats()
	r := &Report{
		Station:   g.Name,
		Threshold: res.Threshold,
		Branch:    res.Branch.String(),
		Stats: Stats{
			Nodes:       ns.Nodes,
			Edges:       ns.Edges,
			Tracks:      ns.ByKind[network.KindTrack],
			Switches:    ns.ByKind[network.KindSwitch],
			Platforms:   ns.ByKind[network.KindPlatform],
			Entries:     ns.ByKind[network.KindEntry],
			Exits:       ns.ByKind[network.KindExit],
			Zones:       res.Zones.Len(),
			Signals:     len(res.Signals),
			TrackLength: ns.TrackLength,
		},
		Summary:       res.Summary(),
		Zones:         make([]Zone, 0, res.Zones.Len()),
		Signals:       append([]cdl.Signal{}, res.Signals...),
		ZoneDetails:   make([]string, 0, res.Zones.Len()),
		SignalDetails: make([]string, 0, len(res.Signals)),
	}

	for _, z := range res.Zones {
		c := res.Registry.Coverage(z.ID)
		r.Zones = append(r.Zones, Zone{ID: z.ID, Approaches: z.Approaches, Coverage: c, Full: c.Full()})
		r.ZoneDetails = append(r.ZoneDetails,
			fmt.Sprintf("%s (Converging tracks: %s)", z.ID, strings.Join(z.Approaches, ", ")))
	}
	for _, s := range res.Signals {
		detail := fmt.Sprintf("%s: Protects %s from %s", s.ID, s.ProtectsZone, s.ApproachFrom)
		if s.Partial() {
			detail += fmt.Sprintf(" (partial, %.0fm short)", s.Shortfall())
		}
		r.SignalDetails = append(r.SignalDetails, detail)
	}
	return r
}

// WriteJSON encodes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

const rule = "======================================================================"

// WriteText writes a human-readable summary. Zones and signals are listed in
// detection and placement order.
func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\nRAILWAY NETWORK SUMMARY: %s\n%s\n\n", rule, r.Station, rule)

	b.WriteString("NETWORK STATISTICS:\n")
	fmt.Fprintf(&b, "  • Total Nodes: %d\n", r.Stats.Nodes)
	fmt.Fprintf(&b, "  • Total Edges: %d\n", r.Stats.Edges)
	fmt.Fprintf(&b, "  • Track Nodes: %d\n", r.Stats.Tracks)
	fmt.Fprintf(&b, "  • Switches: %d\n", r.Stats.Switches)
	fmt.Fprintf(&b, "  • Platforms: %d\n", r.Stats.Platforms)
	fmt.Fprintf(&b, "  • Entry/Exit Points: %d/%d\n", r.Stats.Entries, r.Stats.Exits)
	fmt.Fprintf(&b, "  • CDL Zones: %d\n", r.Stats.Zones)
	fmt.Fprintf(&b, "  • Signals: %d\n", r.Stats.Signals)
	fmt.Fprintf(&b, "  • Total Track Length: %.2f meters\n", r.Stats.TrackLength)

	b.WriteString("\nCDL ZONES (Conflict/Merge Points):\n")
	if len(r.Zones) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, z := range r.Zones {
		fmt.Fprintf(&b, "  • %s\n", z.ID)
		fmt.Fprintf(&b, "    - Incoming tracks: %s\n", strings.Join(z.Approaches, ", "))
		fmt.Fprintf(&b, "    - Coverage: %d/%d\n", z.Coverage.Signals, z.Coverage.Approaches)
	}

	fmt.Fprintf(&b, "\nSIGNALS (threshold %.0fm):\n", r.Threshold)
	if len(r.Signals) == 0 {
		b.WriteString("  (none)\n")
	}
	for _, s := range r.Signals {
		fmt.Fprintf(&b, "  • %s at %s\n", s.ID, s.PlacedAt)
		fmt.Fprintf(&b, "    - Protects CDL Zone: %s\n", s.ProtectsZone)
		fmt.Fprintf(&b, "    - Approach from: %s\n", s.ApproachFrom)
		fmt.Fprintf(&b, "    - Distance to CDL: %.1fm\n", s.DistanceToZone)
		if s.Partial() {
			fmt.Fprintf(&b, "    - Partial: reached a station boundary %.1fm short\n", s.Shortfall())
		}
	}

	fmt.Fprintf(&b, "\nCOVERAGE: %d/%d zones fully covered, %.1f%% of approaches signalled\n",
		r.Summary.FullyCovered, r.Summary.Zones, r.Summary.Coverage)
	fmt.Fprintf(&b, "\n%s\n", rule)

	_, err := io.WriteString(w, b.String())
	return err
}
