// Package nodelink renders station networks as node-link diagrams.
//
// # Overview
//
// Nodes are drawn as coloured shapes per kind (tracks, switches, platforms,
// entry and exit points) connected by arrows in the direction of travel.
// When an analysis result is supplied, CDL zones are highlighted in red and
// each placed signal is attached to its placement node as a green
// annotation showing its distance to the protected zone. Partial signals
// are drawn dashed.
//
// # Usage
//
//	dot := nodelink.ToDOT(g, res, nodelink.Options{EdgeLabels: true})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Stations with recorded coordinates can be drawn geographically:
//
//	dot := nodelink.ToDOT(g, res, nodelink.Options{Positions: true})
//	png, err := nodelink.Render(ctx, dot, nodelink.FormatPNG, nodelink.EngineNeato)
//
// # Dependencies
//
// Layout and encoding run in-process through [github.com/goccy/go-graphviz].
package nodelink
