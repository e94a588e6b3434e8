// Package render provides the output formats for passrank analysis results.
//
// # Overview
//
// This package holds helpers shared by every output, such as [FormatDelta]
// and [FormatScore]. The formats themselves live in subpackages:
//
//   - Markdown report (in [markdown] subpackage)
//   - Node-link diagrams of the top-ranked sub-network (in [nodelink] subpackage)
//
// # Markdown Report
//
//	err := markdown.Render(w, res, markdown.Options{})
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage renders the free-passage edges among the
// best-ranked entities using Graphviz.
//
//	dot := nodelink.ToDOT(res, nodelink.Options{Top: 25})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// [markdown]: github.com/matzehuels/passrank/pkg/render/markdown
// [nodelink]: github.com/matzehuels/passrank/pkg/render/nodelink
package render
