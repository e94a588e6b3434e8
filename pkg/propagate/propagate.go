package propagate

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/passrank/pkg/graph"
	"github.com/matzehuels/passrank/pkg/rank"
)

const (
	// DefaultMaxLevel is the number of levels computed when none is configured.
	DefaultMaxLevel = 100

	// Scale is the value the strongest entity receives after normalization.
	Scale = 100.0
)

// DefaultCheckpoints are the intermediate levels retained by default.
var DefaultCheckpoints = []int{2, 3, 5, 10, 20, 50}

var (
	// ErrInvalidMaxLevel is returned when MaxLevel is below 1.
	ErrInvalidMaxLevel = errors.New("max level must be at least 1")

	// ErrInvalidCheckpoint is returned for a checkpoint outside [1, MaxLevel].
	ErrInvalidCheckpoint = errors.New("checkpoint out of range")
)

// Options configures a propagation run.
type Options struct {
	// MaxLevel is the last level computed. Zero means DefaultMaxLevel.
	MaxLevel int

	// Checkpoints are the levels retained besides level 1 and MaxLevel.
	// Order and duplicates do not matter. Nil means DefaultCheckpoints,
	// clipped to MaxLevel; an empty non-nil slice retains only the ends.
	Checkpoints []int

	// Observer, if set, is called after every level with its ranking.
	Observer func(level int, r rank.Ranking, converged bool)
}

// Levels returns the sorted, de-duplicated list of retained levels.
func (o Options) Levels() ([]int, error) {
	maxLevel := o.MaxLevel
	if maxLevel == 0 {
		maxLevel = DefaultMaxLevel
	}
	if maxLevel < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidMaxLevel, maxLevel)
	}

	checkpoints := o.Checkpoints
	if checkpoints == nil {
		for _, l := range DefaultCheckpoints {
			if l < maxLevel {
				checkpoints = append(checkpoints, l)
			}
		}
	}

	levels := []int{1, maxLevel}
	for _, l := range checkpoints {
		if l < 1 || l > maxLevel {
			return nil, fmt.Errorf("%w: %d not in [1, %d]", ErrInvalidCheckpoint, l, maxLevel)
		}
		levels = append(levels, l)
	}
	slices.Sort(levels)
	return slices.Compact(levels), nil
}

// Snapshot is the retained state of one level. Snapshots are never modified
// after the engine stores them.
type Snapshot struct {
	Level   int
	Scores  []float64    // normalized, indexed by entity id
	Ranking rank.Ranking // ordered by descending score
	Ranks   []int        // dense rank indexed by entity id
}

// Result is the outcome of a run.
type Result struct {
	// Snapshots holds the retained levels in ascending order.
	Snapshots []Snapshot

	// MaxLevel is the last level computed.
	MaxLevel int

	// ConvergedAt is the first level whose ranking order equals the previous
	// level's order, or 0 if that never happened.
	ConvergedAt int
}

// Converged reports whether the ranking order stabilized before MaxLevel.
func (r *Result) Converged() bool { return r.ConvergedAt > 0 }

// Snapshot returns the retained snapshot for level.
func (r *Result) Snapshot(level int) (Snapshot, bool) {
	i, ok := slices.BinarySearchFunc(r.Snapshots, level, func(s Snapshot, l int) int {
		return s.Level - l
	})
	if !ok {
		return Snapshot{}, false
	}
	return r.Snapshots[i], true
}

// First returns the level 1 snapshot.
func (r *Result) First() Snapshot { return r.Snapshots[0] }

// Last returns the MaxLevel snapshot.
func (r *Result) Last() Snapshot { return r.Snapshots[len(r.Snapshots)-1] }

// Levels returns the retained level numbers.
func (r *Result) Levels() []int {
	levels := make([]int, len(r.Snapshots))
	for i, s := range r.Snapshots {
		levels[i] = s.Level
	}
	return levels
}

// Run computes levels 1 through MaxLevel over g.
//
// Level 1 scores each entity by its out-degree. Every later level scores an
// entity by the sum of its neighbors' scores from the level before. Each
// level is normalized so the strongest entity has [Scale]; a level that is
// all zero stays all zero.
//
// Run always computes every level, even after the order has converged, so
// that every configured checkpoint is filled. ctx is checked between levels.
func Run(ctx context.Context, g *graph.Graph, opts Options) (*Result, error) {
	levels, err := opts.Levels()
	if err != nil {
		return nil, err
	}
	maxLevel := levels[len(levels)-1]

	res := &Result{
		Snapshots: make([]Snapshot, 0, len(levels)),
		MaxLevel:  maxLevel,
	}
	next := 0 // index into levels of the next level to retain

	var (
		scores []float64
		prev   rank.Ranking
	)
	for level := 1; level <= maxLevel; level++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if level == 1 {
			scores = outDegrees(g)
		} else {
			scores = step(g, scores)
		}
		Normalize(scores)

		r := rank.Dense(scores)
		converged := false
		if prev != nil && res.ConvergedAt == 0 && rank.SameOrder(prev, r) {
			res.ConvergedAt = level
			converged = true
		}
		prev = r

		if next < len(levels) && levels[next] == level {
			res.Snapshots = append(res.Snapshots, Snapshot{
				Level:   level,
				Scores:  scores,
				Ranking: r,
				Ranks:   r.ByEntity(),
			})
			next++
		}
		if opts.Observer != nil {
			opts.Observer(level, r, converged)
		}
	}
	return res, nil
}

func outDegrees(g *graph.Graph) []float64 {
	scores := make([]float64, g.Len())
	for id := range scores {
		scores[id] = float64(g.OutDegree(id))
	}
	return scores
}

// step returns a new vector; prev is left untouched because it may be
// referenced by a retained snapshot.
func step(g *graph.Graph, prev []float64) []float64 {
	scores := make([]float64, len(prev))
	for id := range scores {
		var sum float64
		for _, dst := range g.Neighbors(id) {
			sum += prev[dst]
		}
		scores[id] = sum
	}
	return scores
}

// Normalize scales scores in place so the maximum becomes [Scale].
// It does nothing when scores is empty or its maximum is not positive.
func Normalize(scores []float64) {
	if len(scores) == 0 {
		return
	}
	m := floats.Max(scores)
	if m <= 0 {
		return
	}
	// divide first: x/m*Scale is exactly Scale for x == m
	for i, x := range scores {
		scores[i] = x / m * Scale
	}
}
