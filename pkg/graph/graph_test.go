package graph

import (
	"errors"
	"slices"
	"testing"

	"github.com/matzehuels/passrank/pkg/relation"
)

func table(rows ...relation.Row) *relation.Table {
	return relation.NewTable(rows, relation.DefaultClassifier())
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name       string
		rows       []relation.Row
		wantLabels []string
		wantOut    [][]int
		wantStats  Stats
	}{
		{
			name:       "Empty",
			wantLabels: nil,
			wantOut:    [][]int{},
		},
		{
			name: "Chain",
			rows: []relation.Row{
				{Source: "A", Target: "B", Classifier: "visa free"},
				{Source: "A", Target: "C", Classifier: "eta"},
				{Source: "B", Target: "C", Classifier: "30"},
				{Source: "C", Target: "A", Classifier: "visa required"},
			},
			wantLabels: []string{"A", "B", "C"},
			wantOut:    [][]int{{1, 2}, {2}, nil},
			wantStats:  Stats{Entities: 3, Edges: 3, Blocked: 1},
		},
		{
			name: "TargetOnlyLabelIsDropped",
			rows: []relation.Row{
				{Source: "A", Target: "Z", Classifier: "visa free"},
				{Source: "A", Target: "B", Classifier: "visa free"},
				{Source: "B", Target: "A", Classifier: "visa free"},
			},
			wantLabels: []string{"A", "B"},
			wantOut:    [][]int{{1}, {0}},
			wantStats:  Stats{Entities: 2, Edges: 2, UnknownTarget: 1},
		},
		{
			name: "ExcludedSourceIsNotEntity",
			rows: []relation.Row{
				{Source: "A", Target: "B", Classifier: "visa free"},
				{Source: "A", Target: "B", Classifier: "visa free"},
				{Source: "B", Target: "B", Classifier: "-1"},
			},
			wantLabels: []string{"A"},
			wantOut:    [][]int{nil},
			wantStats:  Stats{Entities: 1, UnknownTarget: 2},
		},
		{
			name: "FirstAppearanceOrder",
			rows: []relation.Row{
				{Source: "C", Target: "A", Classifier: "visa free"},
				{Source: "A", Target: "C", Classifier: "visa free"},
				{Source: "B", Target: "C", Classifier: "visa free"},
				{Source: "C", Target: "B", Classifier: "visa free"},
			},
			wantLabels: []string{"C", "A", "B"},
			wantOut:    [][]int{{1, 2}, {0}, {0}},
			wantStats:  Stats{Entities: 3, Edges: 4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, st := Build(table(tt.rows...))

			if !slices.Equal(g.Labels(), tt.wantLabels) {
				t.Errorf("Labels() = %v, want %v", g.Labels(), tt.wantLabels)
			}
			if g.Len() != len(tt.wantOut) {
				t.Fatalf("Len() = %d, want %d", g.Len(), len(tt.wantOut))
			}
			for id, want := range tt.wantOut {
				if got := g.Neighbors(id); !slices.Equal(got, want) {
					t.Errorf("Neighbors(%d) = %v, want %v", id, got, want)
				}
			}
			if st != tt.wantStats {
				t.Errorf("stats = %+v, want %+v", st, tt.wantStats)
			}
		})
	}
}

func TestBuildDuplicateEdges(t *testing.T) {
	g, st := Build(table(
		relation.Row{Source: "A", Target: "B", Classifier: "visa free"},
		relation.Row{Source: "A", Target: "B", Classifier: "90"},
		relation.Row{Source: "B", Target: "A", Classifier: "e-visa"},
	))

	if got := g.OutDegree(0); got != 2 {
		t.Errorf("OutDegree(A) = %d, want 2", got)
	}
	if got := g.EdgeCount(); got != 2 {
		t.Errorf("EdgeCount() = %d, want 2", got)
	}
	if st.Blocked != 1 {
		t.Errorf("Blocked = %d, want 1", st.Blocked)
	}
}

func TestLookup(t *testing.T) {
	g, _ := Build(table(relation.Row{Source: "A", Target: "B", Classifier: "eta"}))

	if id, err := g.Lookup("A"); err != nil || id != 0 {
		t.Errorf("Lookup(A) = %d, %v", id, err)
	}
	if _, err := g.Lookup("B"); !errors.Is(err, ErrUnknownEntity) {
		t.Errorf("Lookup(B) error = %v, want ErrUnknownEntity", err)
	}
	if _, ok := g.ID("B"); ok {
		t.Error("target-only label should have no id")
	}
	if g.Label(0) != "A" {
		t.Errorf("Label(0) = %q, want A", g.Label(0))
	}
}

func TestSubgraph(t *testing.T) {
	g, _ := Build(table(
		relation.Row{Source: "A", Target: "B", Classifier: "eta"},
		relation.Row{Source: "A", Target: "B", Classifier: "eta"},
		relation.Row{Source: "A", Target: "C", Classifier: "eta"},
		relation.Row{Source: "B", Target: "A", Classifier: "eta"},
		relation.Row{Source: "C", Target: "A", Classifier: "eta"},
	))

	sub := g.Subgraph([]int{0, 1})

	if got := sub[0]; !slices.Equal(got, []int{1}) {
		t.Errorf("sub[A] = %v, want [1]", got)
	}
	if got := sub[1]; !slices.Equal(got, []int{0}) {
		t.Errorf("sub[B] = %v, want [0]", got)
	}
	if _, ok := sub[2]; ok {
		t.Error("C should not be in the subgraph")
	}
}
