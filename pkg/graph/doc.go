// Package graph builds the directed free-passage network that the ranking
// engine propagates scores over.
//
// # Ids
//
// Every distinct source label in a [relation.Table] gets a dense integer id in
// [0, n), in order of first appearance. All algorithms downstream work on these
// ids and plain slices; labels are only looked up again when results are
// rendered.
//
// A label that appears only as a target is not an entity. It gets no id, and
// rows pointing at it contribute no edge. The dataset lists every country as a
// passport, so in practice this only drops territories that issue no
// passports.
//
// # Edges
//
// [Build] appends target's id to source's neighbor list for every free-passage
// row. Duplicate rows are kept as duplicate edges; each one counts once in the
// propagation sum.
//
//	g, stats := graph.Build(table)
//	for _, dst := range g.Neighbors(id) {
//	    ...
//	}
//
// [relation.Table]: github.com/matzehuels/passrank/pkg/relation.Table
package graph
