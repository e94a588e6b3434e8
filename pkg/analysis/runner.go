package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/passrank/pkg/compare"
	perrors "github.com/matzehuels/passrank/pkg/errors"
	"github.com/matzehuels/passrank/pkg/graph"
	"github.com/matzehuels/passrank/pkg/httputil"
	pio "github.com/matzehuels/passrank/pkg/io"
	"github.com/matzehuels/passrank/pkg/observability"
	"github.com/matzehuels/passrank/pkg/propagate"
	"github.com/matzehuels/passrank/pkg/rank"
	"github.com/matzehuels/passrank/pkg/relation"
)

// Runner executes analysis runs.
//
// The Runner is stateless except for the logger. Multiple goroutines can
// safely use the same Runner with different options.
type Runner struct {
	Logger *log.Logger
}

// NewRunner creates a runner. If logger is nil, log.Default() is used.
func NewRunner(logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Logger: logger}
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// Execute runs the complete load → build → propagate → compare pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	rows := opts.Rows
	var stats pio.CSVStats
	loadStart := time.Now()
	if rows == nil {
		var err error
		rows, stats, err = r.Load(ctx, opts)
		if err != nil {
			return nil, fmt.Errorf("load: %w", err)
		}
	} else {
		stats.Records = len(rows)
	}
	loadTime := time.Since(loadStart)

	res, err := r.Analyze(ctx, rows, opts)
	if err != nil {
		return nil, err
	}
	res.Stats.Records = stats.Records
	res.Stats.Malformed = stats.Malformed
	res.Stats.LoadTime = loadTime

	if stats.Malformed > 0 {
		logger.Warn("skipped malformed rows", "count", stats.Malformed)
	}
	return res, nil
}

// Load reads relation rows from opts.Input.
func (r *Runner) Load(ctx context.Context, opts Options) ([]relation.Row, pio.CSVStats, error) {
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, opts.Input)
	start := time.Now()

	var (
		rows  []relation.Row
		stats pio.CSVStats
		err   error
	)
	if httputil.IsURL(opts.Input) {
		rows, stats, err = r.download(ctx, opts)
	} else {
		rows, stats, err = pio.ImportCSV(opts.Input, opts.CSV)
	}
	hooks.OnLoadComplete(ctx, opts.Input, len(rows), time.Since(start), err)
	if err != nil {
		return nil, stats, err
	}

	r.logger(opts).Debug("read relation rows",
		"path", opts.Input,
		"records", stats.Records,
		"rows", len(rows))
	return rows, stats, nil
}

// download fetches opts.Input and decodes it as CSV.
func (r *Runner) download(ctx context.Context, opts Options) ([]relation.Row, pio.CSVStats, error) {
	f := opts.Fetcher
	if f == nil {
		f = httputil.NewFetcher(nil, r.logger(opts))
	}
	body, err := f.Fetch(ctx, opts.Input)
	if err != nil {
		return nil, pio.CSVStats{}, err
	}
	rows, stats, err := pio.ReadCSV(bytes.NewReader(body), opts.CSV)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", opts.Input, err)
	}
	return rows, stats, nil
}

// Analyze runs the build, propagate and compare stages over rows.
// It fails with EMPTY_DATASET when rows yield no entities.
func (r *Runner) Analyze(ctx context.Context, rows []relation.Row, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	logger := r.logger(opts)

	res := &Result{
		RunID:     uuid.NewString(),
		Source:    opts.Source(),
		CreatedAt: time.Now().UTC(),
	}
	logger = logger.With("run", res.RunID)

	// Stage 1: Build
	table := relation.NewTable(rows, opts.Classifier)
	g, gstats := graph.Build(table)
	if g.Len() == 0 {
		return nil, perrors.New(perrors.ErrCodeEmptyDataset,
			"%s has no entities (%d rows, %d not applicable)", res.Source, len(rows), table.Excluded())
	}
	res.Graph = g
	res.Labels = g.Labels()
	res.Stats.Excluded = table.Excluded()
	res.Stats.Graph = gstats

	logger.Debug("built graph",
		"entities", gstats.Entities,
		"edges", gstats.Edges,
		"blocked", gstats.Blocked,
		"unknown_target", gstats.UnknownTarget)

	// Stage 2: Propagate
	popts := opts.Propagate
	if popts.Observer == nil {
		popts.Observer = func(level int, _ rank.Ranking, converged bool) {
			if converged {
				logger.Debug("order converged", "level", level)
			}
		}
	}

	hooks := observability.Pipeline()
	hooks.OnPropagateStart(ctx, g.Len(), popts.MaxLevel)
	propStart := time.Now()
	prop, err := propagate.Run(ctx, g, popts)
	res.Stats.PropagateTime = time.Since(propStart)
	convergedAt := 0
	if prop != nil {
		convergedAt = prop.ConvergedAt
	}
	hooks.OnPropagateComplete(ctx, convergedAt, res.Stats.PropagateTime, err)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("propagate: %w", err)
	}
	res.Propagation = prop

	logger.Info("propagated scores",
		"entities", g.Len(),
		"levels", prop.MaxLevel,
		"converged_at", prop.ConvergedAt,
		"duration", res.Stats.PropagateTime)

	// Stage 3: Compare
	cmpStart := time.Now()
	rep, err := compare.Compare(prop, res.Labels, opts.Compare)
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeInternal, err, "compare levels")
	}
	res.Report = rep
	res.Stats.CompareTime = time.Since(cmpStart)

	if m, ok := compare.Biggest(rep.Deltas); ok {
		logger.Debug("biggest mover", "entity", m.Entity, "delta", m.Delta)
	}
	return res, nil
}
