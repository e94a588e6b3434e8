package compare

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/passrank/pkg/propagate"
)

// DefaultTopMovers is the number of movers reported when none is configured.
const DefaultTopMovers = 20

var (
	// ErrNoSnapshots is returned when there is nothing to compare.
	ErrNoSnapshots = errors.New("no snapshots")

	// ErrLevelNotRetained is returned when a requested level has no snapshot.
	ErrLevelNotRetained = errors.New("level not retained")

	// ErrSizeMismatch is returned when two snapshots rank different entity counts.
	ErrSizeMismatch = errors.New("snapshots rank different entity counts")
)

// Mover records how one entity's rank changed between two levels.
// A positive Delta means the entity moved up (toward rank 1).
type Mover struct {
	ID        int
	Entity    string
	FromLevel int
	ToLevel   int
	FromRank  int
	ToRank    int
	Delta     int // FromRank - ToRank
}

// Abs returns the magnitude of the rank change.
func (m Mover) Abs() int {
	if m.Delta < 0 {
		return -m.Delta
	}
	return m.Delta
}

// Report is the comparison between a baseline level and a final level, plus
// the biggest mover between each pair of consecutive retained levels.
type Report struct {
	Baseline int
	Final    int

	// Deltas holds one mover per entity, indexed by id.
	Deltas []Mover

	// Top holds the largest absolute rank changes, largest first.
	Top []Mover

	// Steps holds the biggest mover of each consecutive pair of retained
	// levels, in level order.
	Steps []Mover
}

// Options configures [Compare].
type Options struct {
	// Baseline is the starting level. Zero means the first snapshot.
	Baseline int
	// Final is the ending level. Zero means the last snapshot.
	Final int
	// TopMovers is how many movers to keep. Zero means DefaultTopMovers;
	// negative keeps every entity.
	TopMovers int
}

// Compare derives rank deltas between two retained levels of res.
// labels maps entity ids to names and must cover every ranked entity.
func Compare(res *propagate.Result, labels []string, opts Options) (*Report, error) {
	if res == nil || len(res.Snapshots) == 0 {
		return nil, ErrNoSnapshots
	}
	if opts.Baseline == 0 {
		opts.Baseline = res.First().Level
	}
	if opts.Final == 0 {
		opts.Final = res.Last().Level
	}
	if opts.TopMovers == 0 {
		opts.TopMovers = DefaultTopMovers
	}

	from, ok := res.Snapshot(opts.Baseline)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrLevelNotRetained, opts.Baseline)
	}
	to, ok := res.Snapshot(opts.Final)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrLevelNotRetained, opts.Final)
	}

	deltas, err := Deltas(from, to, labels)
	if err != nil {
		return nil, err
	}

	steps := make([]Mover, 0, len(res.Snapshots))
	for i := 1; i < len(res.Snapshots); i++ {
		step, err := Deltas(res.Snapshots[i-1], res.Snapshots[i], labels)
		if err != nil {
			return nil, err
		}
		if m, ok := Biggest(step); ok {
			steps = append(steps, m)
		}
	}

	return &Report{
		Baseline: opts.Baseline,
		Final:    opts.Final,
		Deltas:   deltas,
		Top:      Top(deltas, opts.TopMovers),
		Steps:    steps,
	}, nil
}

// Deltas computes one mover per entity between two snapshots.
func Deltas(from, to propagate.Snapshot, labels []string) ([]Mover, error) {
	if len(from.Ranks) != len(to.Ranks) {
		return nil, fmt.Errorf("%w: level %d has %d, level %d has %d",
			ErrSizeMismatch, from.Level, len(from.Ranks), to.Level, len(to.Ranks))
	}
	movers := make([]Mover, len(from.Ranks))
	for id := range movers {
		movers[id] = Mover{
			ID:        id,
			Entity:    labels[id],
			FromLevel: from.Level,
			ToLevel:   to.Level,
			FromRank:  from.Ranks[id],
			ToRank:    to.Ranks[id],
			Delta:     from.Ranks[id] - to.Ranks[id],
		}
	}
	return movers, nil
}

// Top returns the k movers with the largest absolute delta. Equal magnitudes
// keep entity order. movers is not modified. k < 0 returns all movers.
func Top(movers []Mover, k int) []Mover {
	sorted := slices.Clone(movers)
	slices.SortStableFunc(sorted, func(a, b Mover) int {
		return cmp.Compare(b.Abs(), a.Abs())
	})
	if k >= 0 && k < len(sorted) {
		sorted = sorted[:k]
	}
	return sorted
}

// Biggest returns the mover with the largest absolute delta, preferring the
// lowest id on ties. It reports false for an empty slice.
func Biggest(movers []Mover) (Mover, bool) {
	if len(movers) == 0 {
		return Mover{}, false
	}
	best := movers[0]
	for _, m := range movers[1:] {
		if m.Abs() > best.Abs() {
			best = m
		}
	}
	return best, true
}
