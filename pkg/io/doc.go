// Package io loads relation rows from CSV and exports analysis results as JSON.
//
// # CSV Import
//
// The input is the "tidy" passport index layout: one row per
// (passport, destination) pair with a requirement column.
//
//	Passport,Destination,Requirement
//	Albania,Algeria,e-visa
//	Albania,Andorra,90
//	Albania,Albania,-1
//
// Header names are matched case-insensitively and may appear in any order.
// Extra columns are ignored. Use [CSVOptions] to read a file whose columns
// are named differently.
//
// Use [ImportCSV] to read from a file path, or [ReadCSV] to read from any
// io.Reader:
//
//	rows, stats, err := io.ImportCSV("passport-index-tidy.csv", io.CSVOptions{})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Rows with a missing or blank field are skipped and counted in
// [CSVStats.Malformed]; the sentinel and free-passage rules are applied later
// by [relation.NewTable].
//
// # JSON Export
//
// [WriteResults] and [ExportResults] serialize a finished analysis:
//
//	{
//	  "run": {"id": "4f1c...", "source": "passport-index-tidy.csv", "created_at": "..."},
//	  "entities": ["Afghanistan", "Albania", ...],
//	  "max_level": 100,
//	  "converged_at": 7,
//	  "levels": [{"level": 1, "scores": [...], "ranks": [...]}, ...],
//	  "baseline": 1,
//	  "final": 100,
//	  "movers": [{"entity": "...", "from_rank": 80, "to_rank": 41, "delta": 39, ...}],
//	  "steps": [...]
//	}
//
// Per-level scores and ranks are indexed by entity id, the position of the
// entity in "entities". A converged_at of 0 means the ordering never settled.
//
// [relation.NewTable]: github.com/matzehuels/passrank/pkg/relation.NewTable
package io
