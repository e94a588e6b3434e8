package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/passrank/pkg/analysis"
	"github.com/matzehuels/passrank/pkg/render"
)

// DefaultTop is the number of entities drawn when Options.Top is zero.
const DefaultTop = 25

// Options configures node-link diagram rendering.
type Options struct {
	// Top is how many of the best-ranked entities at the final level are
	// drawn. Zero means DefaultTop.
	Top int

	// Detailed adds the final rank and score to node labels.
	// When false, only the entity name is shown.
	Detailed bool
}

// ToDOT converts the free-passage edges among the top-ranked entities of res
// to Graphviz DOT format. The resulting DOT string can be rendered using
// [RenderSVG].
//
// Entities that share rank 1 are filled to stand out. Duplicate edges and
// self-edges are not drawn.
func ToDOT(res *analysis.Result, opts Options) string {
	if opts.Top <= 0 {
		opts.Top = DefaultTop
	}
	final := res.Propagation.Last()
	top := final.Ranking.Top(opts.Top)
	ids := top.Order()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [color=\"#888888\", arrowsize=0.6];\n")
	buf.WriteString("\n")

	for _, e := range top {
		label := res.Labels[e.ID]
		if opts.Detailed {
			label = fmt.Sprintf("%s\n#%d  %s", label, e.Rank, render.FormatScore(e.Score))
		}
		attrs := []string{fmt.Sprintf("label=%q", label)}
		if e.Rank == 1 {
			attrs = append(attrs, "fillcolor=\"#ffe08a\"")
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", res.Labels[e.ID], strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	sub := res.Graph.Subgraph(ids)
	for _, src := range ids {
		for _, dst := range sub[src] {
			fmt.Fprintf(&buf, "  %q -> %q;\n", res.Labels[src], res.Labels[dst])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized root element with one
// whose width and height match the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
