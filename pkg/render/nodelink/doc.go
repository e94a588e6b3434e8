// Package nodelink renders the top of a ranking as a node-link diagram.
//
// # Overview
//
// A full passport network has tens of thousands of edges, too many to draw.
// This package keeps the best-ranked entities at the final level and draws
// the free-passage edges among them, so the diagram shows how the strongest
// passports reach each other.
//
// # Usage
//
// Convert a result to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(res, nodelink.Options{Top: 25})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// # Options
//
//   - Top: number of entities to keep (default 25)
//   - Detailed: add final rank and score to node labels
//
// The DOT source can also be saved and processed with external Graphviz
// tools; the rank command writes it as-is for a .dot output path.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package nodelink
