// Package pkg provides the libraries behind railcdl, which protects railway
// merge points with signals.
//
// # Overview
//
// A station is a directed, length-weighted track graph. Wherever two or more
// tracks converge (a CDL zone) trains may conflict, so a protecting signal is
// placed on every approach a fixed distance upstream. The pkg directory is
// organized as:
//
//  1. [network] - The station graph: nodes, kinds, directed edges
//  2. [cdl] - Zone detection, backward placement walk, signal registry
//  3. [io] - JSON, YAML and RailML codecs
//  4. [report] - Text and JSON summaries of an analysis
//  5. [render/nodelink] - Graphviz diagrams of an analysed station
//  6. [pipeline] - Orchestration (load → analyze → render) with caching
//  7. [cache], [store], [config], [observability] - Infrastructure
//
// # Architecture
//
// The typical data flow through railcdl:
//
//	RailML / YAML / JSON
//	         ↓
//	    [io] package (decode into a network)
//	         ↓
//	    [cdl] package (zones + signals)
//	         ↓
//	    [report] and [render/nodelink] packages
//	         ↓
//	    Text / JSON / DOT / SVG / PNG output
//
// # Quick Start
//
//	g, err := io.Import("station.yaml")
//	if err != nil {
//	    return err
//	}
//	res, err := cdl.Analyze(g, cdl.Options{Threshold: 500})
//	if err != nil {
//	    return err
//	}
//	report.New(g, res).WriteText(os.Stdout)
//
// The CLI and HTTP server go through [pipeline.Runner], which adds
// validation, caching and metrics hooks around these calls.
package pkg
