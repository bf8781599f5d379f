package nodelink

import (
	"bytes"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/matzehuels/railcdl/pkg/cdl"
	"github.com/matzehuels/railcdl/pkg/network"
)

// Options configures node-link diagram generation.
type Options struct {
	// Detailed includes the node kind and metadata in node labels.
	// When false, only the node ID is shown.
	Detailed bool

	// EdgeLabels prints segment lengths on the edges.
	EdgeLabels bool

	// Positions pins nodes at their recorded coordinates. Nodes without a
	// position are left to the layout engine. Render with [EngineNeato] for
	// the pins to take effect.
	Positions bool
}

// Kind colours, shared with the legend.
var kindColors = map[network.Kind]string{
	network.KindTrack:    "#4A90E2",
	network.KindSwitch:   "#F5A623",
	network.KindPlatform: "#9013FE",
	network.KindEntry:    "#50E3C2",
	network.KindExit:     "#B8E986",
}

const (
	zoneColor   = "#D0021B"
	signalColor = "#7ED321"
	edgeColor   = "#AAAAAA"

	// maxExtent is the size in inches of the larger side of a pinned layout.
	maxExtent = 20.0
)

// KindColor returns the fill colour used for nodes of kind k.
func KindColor(k network.Kind) string {
	if c, ok := kindColors[k]; ok {
		return c
	}
	return "#CCCCCC"
}

// SignalNodeID is the DOT identifier of a signal annotation. The prefix keeps
// annotations apart from station nodes of the same name.
func SignalNodeID(signalID string) string { return "signal:" + signalID }

// ToDOT converts a station network to Graphviz DOT source.
//
// When res is non-nil, zone nodes are highlighted and every placed signal is
// drawn as an annotation attached to its placement node with a dashed line.
// The output is deterministic for a given network, result and options.
func ToDOT(g *network.Network, res *cdl.Result, opts Options) string {
	var zones cdl.Zones
	var signals []cdl.Signal
	if res != nil {
		zones, signals = res.Zones, res.Signals
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", g.Name)
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"white\";\n")
	fmt.Fprintf(&buf, "  label=%q;\n", g.Name)
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	fmt.Fprintf(&buf, "  edge [color=%q, penwidth=2];\n", edgeColor)
	buf.WriteString("  ranksep=0.6;\n")
	buf.WriteString("  nodesep=0.4;\n")
	buf.WriteString("\n")

	place := positioner(g, opts.Positions)
	for _, n := range g.Nodes() {
		_, isZone := zones.Get(n.ID)
		attrs := fmtAttrs(*n, fmtLabel(*n, opts.Detailed, isZone), isZone)
		if pos, ok := place(n); ok {
			attrs = append(attrs, pos)
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		if opts.EdgeLabels {
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n", e.From, e.To, fmtLength(e.Length))
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q;\n", e.From, e.To)
	}

	if len(signals) > 0 {
		buf.WriteString("\n")
	}
	for _, s := range signals {
		id := SignalNodeID(s.ID)
		label := fmt.Sprintf("%s\n%s", s.ID, fmtLength(s.DistanceToZone))
		style := "filled"
		if s.Partial() {
			label += " (partial)"
			style = "filled,dashed"
		}
		fmt.Fprintf(&buf, "  %q [label=%q, shape=cds, style=%q, fillcolor=%q, fontcolor=black];\n",
			id, label, style, signalColor)
		fmt.Fprintf(&buf, "  %q -> %q [style=dashed, arrowhead=none, color=%q];\n", id, s.PlacedAt, signalColor)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n network.Node, detailed, zone bool) string {
	label := n.ID
	if zone {
		label += "\nCDL zone"
	}
	if !detailed {
		return label
	}

	parts := []string{fmt.Sprintf("kind: %s", n.Kind)}
	for _, k := range slices.Sorted(maps.Keys(n.Meta)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, n.Meta[k]))
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n network.Node, label string, zone bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if zone {
		return append(attrs, fmt.Sprintf("fillcolor=%q", zoneColor), "penwidth=3", "shape=doubleoctagon")
	}
	attrs = append(attrs, fmt.Sprintf("fillcolor=%q", KindColor(n.Kind)))
	switch n.Kind {
	case network.KindSwitch:
		attrs = append(attrs, "shape=diamond")
	case network.KindEntry, network.KindExit:
		attrs = append(attrs, "shape=invhouse", "fontcolor=black")
	case network.KindPlatform:
		attrs = append(attrs, "shape=box3d")
	}
	return attrs
}

func fmtLength(m float64) string {
	return fmt.Sprintf("%gm", math.Round(m*10)/10)
}

// positioner returns a function producing a pinned pos attribute for nodes
// with coordinates, scaled so the whole station fits in maxExtent inches.
func positioner(g *network.Network, enabled bool) func(*network.Node) (string, bool) {
	none := func(*network.Node) (string, bool) { return "", false }
	if !enabled {
		return none
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, n := range g.Nodes() {
		if n.Position == nil {
			continue
		}
		minX, maxX = math.Min(minX, n.Position.X), math.Max(maxX, n.Position.X)
		minY, maxY = math.Min(minY, n.Position.Y), math.Max(maxY, n.Position.Y)
	}
	if math.IsInf(minX, 1) {
		return none
	}

	scale := 1.0
	if extent := math.Max(maxX-minX, maxY-minY); extent > 0 {
		scale = maxExtent / extent
	}
	return func(n *network.Node) (string, bool) {
		if n.Position == nil {
			return "", false
		}
		x := (n.Position.X - minX) * scale
		y := (n.Position.Y - minY) * scale
		return fmt.Sprintf("pos=\"%.3f,%.3f!\"", x, y), true
	}
}
