// Package pkg provides the core libraries for passrank passport ranking.
//
// # Overview
//
// passrank ranks countries by how far their passports reach. Level 1 counts
// the destinations a passport enters without a visa. Every deeper level
// weights those destinations by their own strength, and the report contrasts
// the shallow ranking with the deep one.
//
// # Architecture
//
// The typical data flow:
//
//	CSV file or URL (io, httputil)
//	         ↓
//	relation rows (relation)
//	         ↓
//	free-passage graph (graph)
//	         ↓
//	per-level scores and dense ranks (propagate, rank)
//	         ↓
//	rank deltas and movers (compare)
//	         ↓
//	Markdown, JSON, DOT/SVG (render/markdown, io, render/nodelink)
//
// [analysis] runs the whole flow with logging and [observability] hooks.
// [config] loads TOML or YAML settings, and [errors] defines the coded
// errors every layer returns.
package pkg
