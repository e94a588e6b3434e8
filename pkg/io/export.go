package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/matzehuels/passrank/pkg/compare"
	"github.com/matzehuels/passrank/pkg/propagate"
)

// Run identifies one analysis run in exported results.
type Run struct {
	ID        string    `json:"id"`
	Source    string    `json:"source,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type results struct {
	Run         Run      `json:"run"`
	Entities    []string `json:"entities"`
	MaxLevel    int      `json:"max_level"`
	ConvergedAt int      `json:"converged_at"`
	Levels      []level  `json:"levels"`
	Baseline    int      `json:"baseline"`
	Final       int      `json:"final"`
	Movers      []mover  `json:"movers"`
	Steps       []mover  `json:"steps"`
}

type level struct {
	Level  int       `json:"level"`
	Scores []float64 `json:"scores"`
	Ranks  []int     `json:"ranks"`
}

type mover struct {
	Entity    string `json:"entity"`
	FromLevel int    `json:"from_level"`
	ToLevel   int    `json:"to_level"`
	FromRank  int    `json:"from_rank"`
	ToRank    int    `json:"to_rank"`
	Delta     int    `json:"delta"`
}

func exportMovers(ms []compare.Mover) []mover {
	out := make([]mover, len(ms))
	for i, m := range ms {
		out[i] = mover{
			Entity:    m.Entity,
			FromLevel: m.FromLevel,
			ToLevel:   m.ToLevel,
			FromRank:  m.FromRank,
			ToRank:    m.ToRank,
			Delta:     m.Delta,
		}
	}
	return out
}

// WriteResults encodes an analysis as indented JSON and writes it to w.
// Scores and ranks in each level are indexed by entity id, matching the
// order of entities. rep may be nil, in which case the mover lists are empty.
func WriteResults(w io.Writer, run Run, entities []string, res *propagate.Result, rep *compare.Report) error {
	if res == nil {
		return fmt.Errorf("encode: nil propagation result")
	}
	out := results{
		Run:         run,
		Entities:    entities,
		MaxLevel:    res.MaxLevel,
		ConvergedAt: res.ConvergedAt,
		Levels:      make([]level, len(res.Snapshots)),
		Movers:      []mover{},
		Steps:       []mover{},
	}
	if out.Entities == nil {
		out.Entities = []string{}
	}
	for i, s := range res.Snapshots {
		out.Levels[i] = level{Level: s.Level, Scores: s.Scores, Ranks: s.Ranks}
	}
	if rep != nil {
		out.Baseline = rep.Baseline
		out.Final = rep.Final
		out.Movers = exportMovers(rep.Top)
		out.Steps = exportMovers(rep.Steps)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportResults writes an analysis to a JSON file at path.
// This is a convenience wrapper around [WriteResults] for file-based output.
func ExportResults(path string, run Run, entities []string, res *propagate.Result, rep *compare.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteResults(f, run, entities, res, rep); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
