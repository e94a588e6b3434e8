// Package markdown renders an analysis as a Markdown report.
//
// The report has a title and generation line, the full ranking ordered by
// final rank with baseline ("reach") and final ("depth") scores, a rank per
// retained level table, the biggest rank changes, and the biggest mover
// between each pair of retained levels.
package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/matzehuels/passrank/pkg/analysis"
	"github.com/matzehuels/passrank/pkg/render"
)

const (
	// DefaultTitle is the report heading.
	DefaultTitle = "Passport Reach vs Depth"

	// DatasetName and DatasetURL credit the source data.
	DatasetName = "Passport Index Dataset"
	DatasetURL  = "https://github.com/ilyankou/passport-index-dataset"
)

// Options configures the report.
type Options struct {
	// Title replaces DefaultTitle when set.
	Title string

	// GeneratedAt is printed in the header. Zero means the run's creation time.
	GeneratedAt time.Time
}

// Render writes the report for res to w.
func Render(w io.Writer, res *analysis.Result, opts Options) error {
	if res == nil || res.Propagation == nil || res.Report == nil {
		return fmt.Errorf("render markdown: incomplete result")
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = res.CreatedAt
	}

	rep := res.Report
	from, ok := res.Propagation.Snapshot(rep.Baseline)
	if !ok {
		return fmt.Errorf("render markdown: level %d not retained", rep.Baseline)
	}
	to, ok := res.Propagation.Snapshot(rep.Final)
	if !ok {
		return fmt.Errorf("render markdown: level %d not retained", rep.Final)
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "# %s\n\n", opts.Title)
	fmt.Fprintf(&b, "> Generated on %s | Data: [%s](%s) | %d countries\n\n",
		opts.GeneratedAt.Format("2006-01-02"), DatasetName, DatasetURL, len(res.Labels))
	fmt.Fprintf(&b, "> Reach is level %d, depth is level %d. %s\n\n",
		rep.Baseline, rep.Final, convergence(res))

	b.WriteString("| # | Country | Reach Score | Reach Rank | Depth Score | Depth Rank | Delta |\n")
	b.WriteString("|--:|---------|----------:|----------:|----------:|----------:|------:|\n")
	for _, e := range to.Ranking {
		m := rep.Deltas[e.ID]
		fmt.Fprintf(&b, "| %d | %s | %s | %d | %s | %d | %s |\n",
			e.Rank, cell(res.Labels[e.ID]),
			render.FormatScore(from.Scores[e.ID]), m.FromRank,
			render.FormatScore(e.Score), e.Rank,
			render.FormatDelta(m.Delta))
	}

	if len(res.Propagation.Snapshots) > 2 {
		writeLevels(&b, res, to.Ranking.Order())
	}

	b.WriteString("\n## Biggest Rank Changes (Reach → Depth)\n\n")
	b.WriteString("| Country | Reach Rank | Depth Rank | Delta |\n")
	b.WriteString("|---------|----------:|----------:|------:|\n")
	for _, m := range rep.Top {
		fmt.Fprintf(&b, "| %s | %d | %d | %s |\n",
			cell(m.Entity), m.FromRank, m.ToRank, render.FormatDelta(m.Delta))
	}

	if len(rep.Steps) > 0 {
		b.WriteString("\n## Convergence\n\n")
		b.WriteString("| Levels | Biggest Mover | From | To | Delta |\n")
		b.WriteString("|--------|---------------|-----:|---:|------:|\n")
		for _, m := range rep.Steps {
			fmt.Fprintf(&b, "| %d → %d | %s | %d | %d | %s |\n",
				m.FromLevel, m.ToLevel, cell(m.Entity), m.FromRank, m.ToRank, render.FormatDelta(m.Delta))
		}
	}

	_, err := w.Write(b.Bytes())
	return err
}

// writeLevels lists every entity's rank at each retained level, in order.
func writeLevels(b *bytes.Buffer, res *analysis.Result, order []int) {
	snaps := res.Propagation.Snapshots

	b.WriteString("\n## Rank by Level\n\n")
	b.WriteString("| Country |")
	for _, s := range snaps {
		fmt.Fprintf(b, " L%d |", s.Level)
	}
	b.WriteString("\n|---------|")
	b.WriteString(strings.Repeat("---:|", len(snaps)))
	b.WriteString("\n")

	for _, id := range order {
		fmt.Fprintf(b, "| %s |", cell(res.Labels[id]))
		for _, s := range snaps {
			fmt.Fprintf(b, " %d |", s.Ranks[id])
		}
		b.WriteString("\n")
	}
}

func convergence(res *analysis.Result) string {
	p := res.Propagation
	if p.Converged() {
		return fmt.Sprintf("Ranking order converged at level %d.", p.ConvergedAt)
	}
	return fmt.Sprintf("Ranking order did not converge within %d levels.", p.MaxLevel)
}

// cell escapes a value for use inside a table cell.
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
