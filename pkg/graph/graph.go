package graph

import (
	"errors"

	"github.com/matzehuels/passrank/pkg/relation"
)

// ErrUnknownEntity is returned by [Graph.Lookup] when a label was never seen
// as a source.
var ErrUnknownEntity = errors.New("unknown entity")

// Graph is the free-passage relation over dense entity ids.
//
// Ids are assigned in order of first appearance as a source, so id 0 is the
// first source label in the table. The zero value is an empty graph.
// A Graph is never modified after [Build] returns and is safe for
// concurrent readers.
type Graph struct {
	labels []string
	index  map[string]int
	out    [][]int
	edges  int
}

// Stats summarizes what [Build] did with the table's rows.
type Stats struct {
	Entities      int // distinct source labels
	Edges         int // free-passage edges, duplicates included
	Blocked       int // rows that are not free passage
	UnknownTarget int // free-passage rows whose target is not an entity
}

// Build assigns ids to every distinct source label and appends an edge
// source→target for each free-passage row whose target also has an id.
//
// Rows whose target never appears as a source are dropped without error.
// Duplicate rows produce duplicate edges.
func Build(t *relation.Table) (*Graph, Stats) {
	rows := t.Rows()
	g := &Graph{index: make(map[string]int)}

	for _, r := range rows {
		if _, ok := g.index[r.Source]; ok {
			continue
		}
		g.index[r.Source] = len(g.labels)
		g.labels = append(g.labels, r.Source)
	}
	g.out = make([][]int, len(g.labels))

	var st Stats
	for _, r := range rows {
		if !t.FreePassage(r) {
			st.Blocked++
			continue
		}
		dst, ok := g.index[r.Target]
		if !ok {
			st.UnknownTarget++
			continue
		}
		src := g.index[r.Source]
		g.out[src] = append(g.out[src], dst)
		g.edges++
	}

	st.Entities = len(g.labels)
	st.Edges = g.edges
	return g, st
}

// Len returns the number of entities.
func (g *Graph) Len() int { return len(g.labels) }

// EdgeCount returns the number of edges, counting duplicates.
func (g *Graph) EdgeCount() int { return g.edges }

// Label returns the label of id. It panics if id is out of range.
func (g *Graph) Label(id int) string { return g.labels[id] }

// Labels returns all labels indexed by id. The slice must not be modified.
func (g *Graph) Labels() []string { return g.labels }

// ID returns the id of label and whether it exists.
func (g *Graph) ID(label string) (int, bool) {
	id, ok := g.index[label]
	return id, ok
}

// Lookup is like [Graph.ID] but returns [ErrUnknownEntity] for missing labels.
func (g *Graph) Lookup(label string) (int, error) {
	if id, ok := g.index[label]; ok {
		return id, nil
	}
	return 0, ErrUnknownEntity
}

// Neighbors returns the out-neighbors of id in row order.
// The slice must not be modified.
func (g *Graph) Neighbors(id int) []int { return g.out[id] }

// OutDegree returns the number of free-passage destinations of id.
func (g *Graph) OutDegree(id int) int { return len(g.out[id]) }

// Subgraph returns the edges among ids, keyed by source id, with duplicates
// collapsed. It is used to draw a readable slice of the network.
func (g *Graph) Subgraph(ids []int) map[int][]int {
	keep := make(map[int]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	sub := make(map[int][]int, len(ids))
	for _, src := range ids {
		seen := make(map[int]bool)
		for _, dst := range g.out[src] {
			if keep[dst] && !seen[dst] && dst != src {
				seen[dst] = true
				sub[src] = append(sub[src], dst)
			}
		}
	}
	return sub
}
