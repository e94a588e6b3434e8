package rank

import (
	"cmp"
	"math"
	"slices"
)

// Epsilon is the absolute tolerance under which two scores are equal.
const Epsilon = 1e-9

// Entry is one ranked entity.
type Entry struct {
	ID    int     // entity id
	Score float64 // normalized score
	Rank  int     // dense rank, 1 = strongest
}

// Ranking is a dense ranking ordered by descending score.
type Ranking []Entry

// Equal reports whether a and b are within [Epsilon] of each other.
func Equal(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// Dense ranks scores by descending value.
//
// Entities are sorted by exact score, equal scores in id order. Neighbors
// within [Epsilon] of each other share one rank. The next distinct score gets
// the previous rank plus one, so ranks have no gaps: scores {100, 50, 50, 0}
// rank {1, 2, 2, 3}.
func Dense(scores []float64) Ranking {
	ids := make([]int, len(scores))
	for i := range ids {
		ids[i] = i
	}
	slices.SortStableFunc(ids, func(a, b int) int {
		return cmp.Compare(scores[b], scores[a])
	})

	r := make(Ranking, len(ids))
	for i, id := range ids {
		rank := 1
		if i > 0 {
			prev := r[i-1]
			rank = prev.Rank
			if !Equal(scores[id], prev.Score) {
				rank++
			}
		}
		r[i] = Entry{ID: id, Score: scores[id], Rank: rank}
	}
	return r
}

// ByEntity returns the rank of every entity indexed by id.
func (r Ranking) ByEntity() []int {
	m := make([]int, len(r))
	for _, e := range r {
		m[e.ID] = e.Rank
	}
	return m
}

// Order returns the entity ids in ranked order.
func (r Ranking) Order() []int {
	ids := make([]int, len(r))
	for i, e := range r {
		ids[i] = e.ID
	}
	return ids
}

// Groups returns the number of distinct ranks.
func (r Ranking) Groups() int {
	if len(r) == 0 {
		return 0
	}
	return r[len(r)-1].Rank
}

// Top returns at most n leading entries.
func (r Ranking) Top(n int) Ranking {
	if n < 0 || n > len(r) {
		n = len(r)
	}
	return r[:n]
}

// SameOrder reports whether a and b list the same ids in the same positions.
func SameOrder(a, b Ranking) bool {
	return slices.EqualFunc(a, b, func(x, y Entry) bool { return x.ID == y.ID })
}
