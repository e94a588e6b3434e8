// Package propagate runs the bounded score propagation over the free-passage
// network and records how the ranking evolves level by level.
//
// # Levels
//
// Level 1 is reach: an entity's score is the number of destinations it can
// enter freely. Level k+1 is depth: an entity's score is the sum of the level
// k scores of its destinations, so access to well-connected destinations
// counts for more. This is a power iteration without damping; breadth is not
// penalized because the sum is not averaged.
//
// Every level is normalized to a 0-100 scale with the strongest entity at
// 100. A level whose raw scores are all zero stays all zero.
//
// # Convergence
//
// After each level the engine ranks the scores (see the rank package) and
// compares the resulting id order with the previous level's. The first level
// whose order is identical is reported as [Result.ConvergedAt]. Convergence
// does not stop the run: every level up to MaxLevel is computed so that all
// configured checkpoints are filled.
//
// # Snapshots
//
// Only level 1, the configured checkpoints and MaxLevel are kept, as
// [Snapshot] values. Every level allocates a fresh score vector, so a
// snapshot is never changed by later iterations.
//
//	res, err := propagate.Run(ctx, g, propagate.Options{MaxLevel: 100})
//	first, last := res.First(), res.Last()
package propagate
