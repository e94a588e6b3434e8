// Package compare turns retained propagation snapshots into rank-change
// statistics.
//
// For every entity the baseline-to-final delta is rank(baseline) minus
// rank(final). Rank 1 is the strongest, so a positive delta means the entity
// climbed as deeper levels were taken into account. [Top] keeps the largest
// absolute changes, with ties broken by entity order so the output is the
// same on every run.
//
// [Compare] also reports, for each pair of consecutive retained levels, the
// single entity that moved most. Read in level order these show how quickly
// the ranking settles.
package compare
