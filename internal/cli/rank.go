package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/passrank/pkg/analysis"
	"github.com/matzehuels/passrank/pkg/config"
	perrors "github.com/matzehuels/passrank/pkg/errors"
	pio "github.com/matzehuels/passrank/pkg/io"
	"github.com/matzehuels/passrank/pkg/observability"
	"github.com/matzehuels/passrank/pkg/render/markdown"
	"github.com/matzehuels/passrank/pkg/render/nodelink"
)

// rankOpts holds the command-line flags for the rank command.
// Zero values leave the configured setting in place.
type rankOpts struct {
	output      string // Markdown report path
	jsonOut     string // optional JSON results path
	graphOut    string // optional node-link diagram path (.svg or .dot)
	detailed    bool   // rank and score in diagram labels
	maxLevel    int    // propagation depth
	checkpoints string // comma-separated retained levels
	top         int    // rows printed to the console
	movers      int    // movers kept in the report
}

// rankCommand creates the rank command, which runs the full analysis and
// writes the report.
func (c *CLI) rankCommand() *cobra.Command {
	var opts rankOpts

	cmd := &cobra.Command{
		Use:   "rank [csv]",
		Short: "Rank passports and write the reach vs depth report",
		Long: `Rank reads a passport index CSV (default ` + config.DefaultInput + `), propagates
visa-free reach through the country graph and writes a Markdown report. The CSV
may also be an http(s) URL; downloads are cached as set in the [fetch] config.

Optionally it also writes the full results as JSON and a node-link diagram of
the top-ranked countries as SVG or DOT.`,
		Example: `  passrank rank
  passrank rank https://raw.githubusercontent.com/ilyankou/passport-index-dataset/master/passport-index-tidy.csv
  passrank rank data/passport-index-tidy.csv -o report.md --json results.json
  passrank rank --max-level 50 --checkpoints 2,5,10 --graph top.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			cfg, err = applyRankFlags(cmd, cfg, opts)
			if err != nil {
				return err
			}
			return c.runRank(cmd.Context(), inputArg(args), cfg, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Markdown report path (default from config, "+config.DefaultOutput+")")
	cmd.Flags().StringVar(&opts.jsonOut, "json", "", "also write results as JSON to this path")
	cmd.Flags().StringVar(&opts.graphOut, "graph", "", "also write a node-link diagram (.svg or .dot)")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show rank and score in diagram labels")
	cmd.Flags().IntVar(&opts.maxLevel, "max-level", 0, "deepest propagation level")
	cmd.Flags().StringVar(&opts.checkpoints, "checkpoints", "", "retained levels, comma-separated (e.g. 2,5,10)")
	cmd.Flags().IntVar(&opts.top, "top", 0, "rows printed to the console")
	cmd.Flags().IntVar(&opts.movers, "movers", 0, "biggest movers listed in the report")

	return cmd
}

// applyRankFlags returns a copy of cfg with the flags the user set applied,
// validated like a config file.
func applyRankFlags(cmd *cobra.Command, base *config.Config, opts rankOpts) (*config.Config, error) {
	cfg := *base
	flags := cmd.Flags()

	if flags.Changed("output") {
		cfg.Report.Output = opts.output
	}
	if flags.Changed("max-level") {
		cfg.Analysis.MaxLevel = opts.maxLevel
	}
	if flags.Changed("checkpoints") {
		levels, err := parseLevels(opts.checkpoints)
		if err != nil {
			return nil, err
		}
		cfg.Analysis.Checkpoints = levels
	}
	if flags.Changed("top") {
		cfg.Report.ConsoleTop = opts.top
	}
	if flags.Changed("movers") {
		cfg.Analysis.TopMovers = opts.movers
	}
	if opts.graphOut != "" {
		if err := perrors.ValidateExtension(opts.graphOut, ".svg", ".dot"); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// parseLevels parses a comma-separated list of levels.
func parseLevels(s string) ([]int, error) {
	var levels []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, perrors.New(perrors.ErrCodeInvalidLevel, "invalid level %q", part)
		}
		levels = append(levels, n)
	}
	return levels, nil
}

// runRank analyzes input and writes every requested artifact.
func (c *CLI) runRank(ctx context.Context, input string, cfg *config.Config, opts rankOpts) error {
	res, err := c.analyze(ctx, input, cfg)
	if err != nil {
		return err
	}

	output := cfg.Report.Output
	if err := writeArtifact(ctx, output, "markdown", func(w io.Writer) error {
		return markdown.Render(w, res, markdown.Options{})
	}); err != nil {
		return err
	}

	var extra []string
	if opts.jsonOut != "" {
		if err := writeArtifact(ctx, opts.jsonOut, "json", func(w io.Writer) error {
			return pio.WriteResults(w, res.Run(), res.Labels, res.Propagation, res.Report)
		}); err != nil {
			return err
		}
		extra = append(extra, opts.jsonOut)
	}
	if opts.graphOut != "" {
		if err := writeGraph(ctx, res, opts.graphOut, cfg.Report.GraphTop, opts.detailed); err != nil {
			return err
		}
		extra = append(extra, opts.graphOut)
	}

	printSummary(c.Out, res, output, cfg.Report.ConsoleTop)
	for _, path := range extra {
		printFile(c.Out, path)
	}
	return nil
}

// writeGraph writes the node-link diagram as DOT or SVG depending on the
// extension of path.
func writeGraph(ctx context.Context, res *analysis.Result, path string, top int, detailed bool) error {
	dot := nodelink.ToDOT(res, nodelink.Options{Top: top, Detailed: detailed})
	if strings.EqualFold(filepath.Ext(path), ".dot") {
		return writeArtifact(ctx, path, "dot", func(w io.Writer) error {
			_, err := io.WriteString(w, dot)
			return err
		})
	}
	return writeArtifact(ctx, path, "svg", func(w io.Writer) error {
		svg, err := nodelink.RenderSVG(ctx, dot)
		if err != nil {
			return err
		}
		_, err = w.Write(svg)
		return err
	})
}

// writeArtifact renders into memory and writes the result to path, reporting
// the render to the pipeline hooks.
func writeArtifact(ctx context.Context, path, format string, render func(io.Writer) error) error {
	if err := perrors.ValidatePath(path); err != nil {
		return err
	}
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, format)
	start := time.Now()

	var buf bytes.Buffer
	err := render(&buf)
	if err == nil {
		err = os.WriteFile(path, buf.Bytes(), 0o644)
	}
	hooks.OnRenderComplete(ctx, format, buf.Len(), time.Since(start), err)
	if err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	loggerFromContext(ctx).Debug("wrote artifact", "format", format, "path", path, "bytes", buf.Len())
	return nil
}

// printSummary prints the completion line and the top of the final ranking.
func printSummary(w io.Writer, res *analysis.Result, output string, top int) {
	fmt.Fprintf(w, "Done! %d countries ranked. Output: %s\n", len(res.Labels), output)
	fmt.Fprintln(w, statsLine(res))
	if top <= 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Top %d:\n", top)
	fmt.Fprintln(w, rankTable(res, top))
}
