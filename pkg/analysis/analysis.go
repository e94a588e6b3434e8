// Package analysis runs the complete passrank pipeline for one dataset.
//
// This package wires the core packages into a single load → build →
// propagate → compare run that the CLI commands and the HTTP server share.
// Centralizing it keeps every entry point on the same defaults and the same
// logging.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Load: read relation rows from a CSV file or URL (or take them preloaded)
//  2. Build: drop not-applicable rows and build the free-passage graph
//  3. Propagate: compute scores and dense ranks for every level
//  4. Compare: derive rank deltas and the biggest movers
//
// # Usage
//
//	runner := analysis.NewRunner(logger)
//	res, err := runner.Execute(ctx, analysis.Options{
//	    Input: "passport-index-tidy.csv",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Propagation.ConvergedAt)
package analysis

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/passrank/pkg/compare"
	perrors "github.com/matzehuels/passrank/pkg/errors"
	"github.com/matzehuels/passrank/pkg/graph"
	"github.com/matzehuels/passrank/pkg/httputil"
	pio "github.com/matzehuels/passrank/pkg/io"
	"github.com/matzehuels/passrank/pkg/propagate"
	"github.com/matzehuels/passrank/pkg/relation"
)

// Options contains all configuration for one analysis run.
type Options struct {
	// Input is the CSV path or an http(s) URL. Ignored when Rows is set.
	Input string

	// Rows, if non-nil, are analyzed instead of reading Input.
	Rows []relation.Row

	CSV        pio.CSVOptions
	Classifier relation.Classifier
	Propagate  propagate.Options
	Compare    compare.Options

	// Fetcher downloads Input when it is a URL. Nil uses an uncached
	// fetcher with default retries.
	Fetcher *httputil.Fetcher

	// Logger overrides the runner's logger for this run.
	Logger *log.Logger

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Rows == nil {
		if err := perrors.ValidatePath(o.Input); err != nil {
			return err
		}
	}
	if len(o.Classifier.Labels) == 0 && o.Classifier.Excluded == "" {
		o.Classifier = relation.DefaultClassifier()
	}
	if o.Propagate.MaxLevel == 0 {
		o.Propagate.MaxLevel = propagate.DefaultMaxLevel
	}
	if _, err := o.Propagate.Levels(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidLevel, err, "invalid levels")
	}
	if o.Compare.TopMovers == 0 {
		o.Compare.TopMovers = compare.DefaultTopMovers
	}
	o.validated = true
	return nil
}

// Source describes where the rows came from, for logs and exports.
func (o Options) Source() string {
	if o.Rows != nil {
		return "rows"
	}
	return o.Input
}

// Result contains the outputs of one run.
type Result struct {
	// RunID uniquely identifies the run in logs, JSON exports and the API.
	RunID     string
	Source    string
	CreatedAt time.Time

	// Labels maps entity ids to entity names.
	Labels []string

	Graph       *graph.Graph
	Propagation *propagate.Result
	Report      *compare.Report

	Stats Stats
}

// Stats contains run statistics.
type Stats struct {
	Records   int // CSV records read
	Malformed int // CSV records skipped
	Excluded  int // rows dropped as not applicable

	Graph graph.Stats

	LoadTime      time.Duration
	PropagateTime time.Duration
	CompareTime   time.Duration
}

// Run returns the export metadata of the result.
func (r *Result) Run() pio.Run {
	return pio.Run{ID: r.RunID, Source: r.Source, CreatedAt: r.CreatedAt}
}

// Entry is one entity's position at a retained level.
type Entry struct {
	ID     int     `json:"id"`
	Entity string  `json:"entity"`
	Score  float64 `json:"score"`
	Rank   int     `json:"rank"`
}

// Level returns the entries of a retained level, ordered by rank.
func (r *Result) Level(level int) ([]Entry, error) {
	if err := perrors.ValidateLevel(level, r.Propagation.Levels()); err != nil {
		return nil, err
	}
	snap, _ := r.Propagation.Snapshot(level)
	entries := make([]Entry, len(snap.Ranking))
	for i, e := range snap.Ranking {
		entries[i] = Entry{ID: e.ID, Entity: r.Labels[e.ID], Score: e.Score, Rank: e.Rank}
	}
	return entries, nil
}

// Trend returns an entity's rank at every retained level.
func (r *Result) Trend(entity string) ([]int, error) {
	id, err := r.Graph.Lookup(entity)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeNotFound, err, "no entity %q", entity)
	}
	ranks := make([]int, len(r.Propagation.Snapshots))
	for i, s := range r.Propagation.Snapshots {
		ranks[i] = s.Ranks[id]
	}
	return ranks, nil
}
