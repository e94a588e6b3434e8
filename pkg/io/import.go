package io

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	perrors "github.com/matzehuels/passrank/pkg/errors"
	"github.com/matzehuels/passrank/pkg/relation"
)

// Default column names of the passport index tidy CSV.
const (
	DefaultSourceColumn     = "Passport"
	DefaultTargetColumn     = "Destination"
	DefaultClassifierColumn = "Requirement"
)

// CSVOptions selects the columns holding each relation field.
// Header names are matched case-insensitively after trimming.
// Empty fields fall back to the Default*Column constants.
type CSVOptions struct {
	SourceColumn     string
	TargetColumn     string
	ClassifierColumn string
}

func (o CSVOptions) withDefaults() CSVOptions {
	if o.SourceColumn == "" {
		o.SourceColumn = DefaultSourceColumn
	}
	if o.TargetColumn == "" {
		o.TargetColumn = DefaultTargetColumn
	}
	if o.ClassifierColumn == "" {
		o.ClassifierColumn = DefaultClassifierColumn
	}
	return o
}

// CSVStats reports what ReadCSV saw.
type CSVStats struct {
	Records   int // data records read, excluding the header
	Malformed int // records skipped for missing or blank fields
}

// ReadCSV decodes relation rows from r.
//
// The first record must be a header naming the source, target and classifier
// columns; other columns are ignored. Records that are too short for one of
// those columns, or where one of the three fields is blank, are skipped and
// counted in [CSVStats.Malformed]. They are not an error.
//
// ReadCSV returns an error only if the header is missing or lacks a required
// column, or if the input is not readable CSV. It does not close r.
func ReadCSV(r io.Reader, opts CSVOptions) ([]relation.Row, CSVStats, error) {
	opts = opts.withDefaults()
	var stats CSVStats

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, stats, perrors.New(perrors.ErrCodeEmptyDataset, "CSV has no header")
	}
	if err != nil {
		return nil, stats, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read CSV header")
	}

	cols, err := columnIndexes(header, opts)
	if err != nil {
		return nil, stats, err
	}
	width := max(cols[0], cols[1], cols[2]) + 1

	var rows []relation.Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read CSV")
		}
		stats.Records++

		if len(rec) < width {
			stats.Malformed++
			continue
		}
		row := relation.Row{
			Source:     rec[cols[0]],
			Target:     rec[cols[1]],
			Classifier: rec[cols[2]],
		}.Trimmed()
		if row.Source == "" || row.Target == "" || row.Classifier == "" {
			stats.Malformed++
			continue
		}
		rows = append(rows, row)
	}
	return rows, stats, nil
}

// ImportCSV reads the CSV file at path. See [ReadCSV].
func ImportCSV(path string, opts CSVOptions) ([]relation.Row, CSVStats, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, CSVStats{}, perrors.Wrap(perrors.ErrCodeFileNotFound, err, "open %s", path)
	}
	if err != nil {
		return nil, CSVStats{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rows, stats, err := ReadCSV(f, opts)
	if err != nil {
		return nil, stats, fmt.Errorf("%s: %w", path, err)
	}
	return rows, stats, nil
}

// columnIndexes returns the positions of the source, target and classifier
// columns in header.
func columnIndexes(header []string, opts CSVOptions) ([3]int, error) {
	want := [3]string{opts.SourceColumn, opts.TargetColumn, opts.ClassifierColumn}
	idx := [3]int{-1, -1, -1}

	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		for j, name := range want {
			if idx[j] < 0 && strings.EqualFold(h, name) {
				idx[j] = i
			}
		}
	}

	var missing []string
	for j, i := range idx {
		if i < 0 {
			missing = append(missing, want[j])
		}
	}
	if len(missing) > 0 {
		return idx, perrors.New(perrors.ErrCodeInvalidInput,
			"CSV header %q is missing column(s): %s", strings.Join(header, ","), strings.Join(missing, ", "))
	}
	return idx, nil
}
