package propagate

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/matzehuels/passrank/pkg/graph"
	"github.com/matzehuels/passrank/pkg/rank"
	"github.com/matzehuels/passrank/pkg/relation"
)

// build creates a graph from "A>B" edge specs. Every label listed in nodes
// becomes an entity even without outgoing edges.
func build(nodes []string, edges ...string) *graph.Graph {
	var rows []relation.Row
	for _, n := range nodes {
		rows = append(rows, relation.Row{Source: n, Target: n, Classifier: "visa required"})
	}
	for _, e := range edges {
		var src, dst string
		for i := range e {
			if e[i] == '>' {
				src, dst = e[:i], e[i+1:]
			}
		}
		rows = append(rows, relation.Row{Source: src, Target: dst, Classifier: "visa free"})
	}
	g, _ := graph.Build(relation.NewTable(rows, relation.DefaultClassifier()))
	return g
}

func TestRunScenario(t *testing.T) {
	g := build([]string{"A", "B", "C"}, "A>B", "A>C", "B>C")

	res, err := Run(context.Background(), g, Options{MaxLevel: 2, Checkpoints: []int{}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if got := res.Levels(); !slices.Equal(got, []int{1, 2}) {
		t.Fatalf("Levels() = %v, want [1 2]", got)
	}

	l1, l2 := res.First(), res.Last()
	if want := []float64{100, 50, 0}; !slices.Equal(l1.Scores, want) {
		t.Errorf("level 1 scores = %v, want %v", l1.Scores, want)
	}
	if want := []float64{100, 0, 0}; !slices.Equal(l2.Scores, want) {
		t.Errorf("level 2 scores = %v, want %v", l2.Scores, want)
	}
	if want := []int{1, 2, 3}; !slices.Equal(l1.Ranks, want) {
		t.Errorf("level 1 ranks = %v, want %v", l1.Ranks, want)
	}
	if want := []int{1, 2, 2}; !slices.Equal(l2.Ranks, want) {
		t.Errorf("level 2 ranks = %v, want %v", l2.Ranks, want)
	}
	if delta := l1.Ranks[2] - l2.Ranks[2]; delta != 1 {
		t.Errorf("delta(C) = %d, want 1", delta)
	}
	// B and C tie at level 2 and keep id order, so the order is unchanged.
	if res.ConvergedAt != 2 {
		t.Errorf("ConvergedAt = %d, want 2", res.ConvergedAt)
	}
}

func TestRunSingleEntity(t *testing.T) {
	g := build([]string{"A"})

	res, err := Run(context.Background(), g, Options{MaxLevel: 5})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, s := range res.Snapshots {
		if !slices.Equal(s.Scores, []float64{0}) {
			t.Errorf("level %d scores = %v, want [0]", s.Level, s.Scores)
		}
		if !slices.Equal(s.Ranks, []int{1}) {
			t.Errorf("level %d ranks = %v, want [1]", s.Level, s.Ranks)
		}
	}
	if res.ConvergedAt != 2 {
		t.Errorf("ConvergedAt = %d, want 2", res.ConvergedAt)
	}
}

func TestRunEmptyGraph(t *testing.T) {
	res, err := Run(context.Background(), build(nil), Options{MaxLevel: 3})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Last().Scores) != 0 {
		t.Errorf("scores = %v, want empty", res.Last().Scores)
	}
}

func TestRunNoConvergenceAtSingleLevel(t *testing.T) {
	g := build([]string{"A", "B"}, "A>B")

	res, err := Run(context.Background(), g, Options{MaxLevel: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Converged() {
		t.Errorf("ConvergedAt = %d, want 0", res.ConvergedAt)
	}
	if len(res.Snapshots) != 1 {
		t.Errorf("snapshots = %d, want 1", len(res.Snapshots))
	}
}

func TestRunSinkStaysZero(t *testing.T) {
	// S has no destinations but everyone can enter it.
	g := build([]string{"A", "B", "S"}, "A>S", "B>S", "A>B", "B>A")

	res, err := Run(context.Background(), g, Options{MaxLevel: 10, Checkpoints: []int{2, 3, 5}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	sink, _ := g.ID("S")
	for _, s := range res.Snapshots {
		if s.Scores[sink] != 0 {
			t.Errorf("level %d: sink score = %v, want 0", s.Level, s.Scores[sink])
		}
		last := s.Ranking[len(s.Ranking)-1].Rank
		if s.Ranks[sink] != last {
			t.Errorf("level %d: sink rank = %d, want last rank %d", s.Level, s.Ranks[sink], last)
		}
	}
}

func TestRunDegenerateLevelStaysZero(t *testing.T) {
	// After level 2 nothing reaches a positive-score entity.
	g := build([]string{"A", "B", "C"}, "A>B", "B>C")

	res, err := Run(context.Background(), g, Options{MaxLevel: 4, Checkpoints: []int{2, 3}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	l3, _ := res.Snapshot(3)
	if !slices.Equal(l3.Scores, []float64{0, 0, 0}) {
		t.Errorf("level 3 scores = %v, want all zero", l3.Scores)
	}
	if !slices.Equal(l3.Ranks, []int{1, 1, 1}) {
		t.Errorf("level 3 ranks = %v, want all 1", l3.Ranks)
	}
}

func randomGraph(seed uint64, n, degree int) *graph.Graph {
	rng := rand.New(rand.NewPCG(seed, seed+1))
	nodes := make([]string, n)
	for i := range nodes {
		nodes[i] = fmt.Sprintf("n%02d", i)
	}
	var edges []string
	for _, src := range nodes {
		k := rng.IntN(degree + 1)
		for j := 0; j < k; j++ {
			edges = append(edges, src+">"+nodes[rng.IntN(n)])
		}
	}
	return build(nodes, edges...)
}

func TestRunProperties(t *testing.T) {
	for seed := uint64(1); seed <= 10; seed++ {
		t.Run(fmt.Sprintf("seed%d", seed), func(t *testing.T) {
			g := randomGraph(seed, 30, 6)

			var orders [][]int
			opts := Options{
				MaxLevel:    40,
				Checkpoints: []int{2, 5, 10, 20},
				Observer: func(level int, r rank.Ranking, converged bool) {
					orders = append(orders, r.Order())
					if converged && !slices.Equal(orders[level-1], orders[level-2]) {
						t.Errorf("converged at %d but order changed", level)
					}
				},
			}
			res, err := Run(context.Background(), g, opts)
			if err != nil {
				t.Fatalf("Run: %v", err)
			}

			if len(orders) != 40 {
				t.Errorf("observer saw %d levels, want 40", len(orders))
			}
			if res.Converged() {
				l := res.ConvergedAt
				if !slices.Equal(orders[l-1], orders[l-2]) {
					t.Errorf("ConvergedAt = %d but orders differ", l)
				}
				for i := 1; i < l-1; i++ {
					if slices.Equal(orders[i], orders[i-1]) {
						t.Errorf("order already stable at level %d, before ConvergedAt %d", i+1, l)
					}
				}
			}

			for _, s := range res.Snapshots {
				positive := slices.ContainsFunc(s.Scores, func(v float64) bool { return v > 0 })
				if positive && slices.Max(s.Scores) != Scale {
					t.Errorf("level %d max = %v, want %v", s.Level, slices.Max(s.Scores), Scale)
				}
				if len(s.Ranks) != g.Len() {
					t.Errorf("level %d ranks %d entities, want %d", s.Level, len(s.Ranks), g.Len())
				}
			}
		})
	}
}

func TestRunSnapshotsNotAliased(t *testing.T) {
	g := build([]string{"A", "B", "C"}, "A>B", "B>C", "C>A", "A>C")

	res, err := Run(context.Background(), g, Options{MaxLevel: 30})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// Level 1 is plain out-degree: A has 2, B and C have 1.
	if want := []float64{100, 50, 50}; !slices.Equal(res.First().Scores, want) {
		t.Errorf("level 1 scores = %v, want %v", res.First().Scores, want)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, build([]string{"A"}), Options{MaxLevel: 3})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestOptionsLevels(t *testing.T) {
	tests := []struct {
		name    string
		opts    Options
		want    []int
		wantErr error
	}{
		{
			name: "Defaults",
			opts: Options{},
			want: []int{1, 2, 3, 5, 10, 20, 50, 100},
		},
		{
			name: "DefaultsClippedToMax",
			opts: Options{MaxLevel: 8},
			want: []int{1, 2, 3, 5, 8},
		},
		{
			name: "UnsortedDuplicates",
			opts: Options{MaxLevel: 10, Checkpoints: []int{5, 1, 5, 10, 3}},
			want: []int{1, 3, 5, 10},
		},
		{
			name: "OnlyEnds",
			opts: Options{MaxLevel: 7, Checkpoints: []int{}},
			want: []int{1, 7},
		},
		{
			name: "MaxLevelOne",
			opts: Options{MaxLevel: 1, Checkpoints: []int{}},
			want: []int{1},
		},
		{
			name:    "NegativeMax",
			opts:    Options{MaxLevel: -1},
			wantErr: ErrInvalidMaxLevel,
		},
		{
			name:    "CheckpointAboveMax",
			opts:    Options{MaxLevel: 10, Checkpoints: []int{11}},
			wantErr: ErrInvalidCheckpoint,
		},
		{
			name:    "CheckpointZero",
			opts:    Options{MaxLevel: 10, Checkpoints: []int{0}},
			wantErr: ErrInvalidCheckpoint,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.opts.Levels()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Levels: %v", err)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Levels() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []float64
		want []float64
	}{
		{"Empty", []float64{}, []float64{}},
		{"AllZero", []float64{0, 0}, []float64{0, 0}},
		{"Scales", []float64{2, 1, 0}, []float64{100, 50, 0}},
		{"AwkwardMax", []float64{3, 1, 3}, []float64{100, 100.0 / 3, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := slices.Clone(tt.in)
			Normalize(s)
			for i := range s {
				if !rank.Equal(s[i], tt.want[i]) {
					t.Errorf("Normalize(%v) = %v, want %v", tt.in, s, tt.want)
					break
				}
			}
			if len(s) > 0 && slices.Max(tt.in) > 0 && slices.Max(s) != Scale {
				t.Errorf("max = %v, want exactly %v", slices.Max(s), Scale)
			}
		})
	}
}
