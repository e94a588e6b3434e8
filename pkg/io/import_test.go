package io

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	perrors "github.com/matzehuels/passrank/pkg/errors"
	"github.com/matzehuels/passrank/pkg/relation"
)

func TestReadCSV(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		opts          CSVOptions
		want          []relation.Row
		wantMalformed int
	}{
		{
			name:  "Tidy",
			input: "Passport,Destination,Requirement\nA,B,visa free\nA,C,-1\n",
			want: []relation.Row{
				{Source: "A", Target: "B", Classifier: "visa free"},
				{Source: "A", Target: "C", Classifier: "-1"},
			},
		},
		{
			name:  "ReorderedAndCased",
			input: "requirement,EXTRA,passport,destination\n 90 ,x, A , B \n",
			want:  []relation.Row{{Source: "A", Target: "B", Classifier: "90"}},
		},
		{
			name:  "ByteOrderMark",
			input: "\ufeffPassport,Destination,Requirement\nA,B,eta\n",
			want:  []relation.Row{{Source: "A", Target: "B", Classifier: "eta"}},
		},
		{
			name:          "ShortAndBlankRows",
			input:         "Passport,Destination,Requirement\nA,B\nA,,eta\n ,B,eta\nA,B,e-visa\n",
			want:          []relation.Row{{Source: "A", Target: "B", Classifier: "e-visa"}},
			wantMalformed: 3,
		},
		{
			name:  "CustomColumns",
			input: "from,to,rule\nA,B,visa free\n",
			opts:  CSVOptions{SourceColumn: "from", TargetColumn: "to", ClassifierColumn: "rule"},
			want:  []relation.Row{{Source: "A", Target: "B", Classifier: "visa free"}},
		},
		{
			name:  "HeaderOnly",
			input: "Passport,Destination,Requirement\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, stats, err := ReadCSV(strings.NewReader(tt.input), tt.opts)
			if err != nil {
				t.Fatalf("ReadCSV: %v", err)
			}
			if len(rows) != len(tt.want) {
				t.Fatalf("rows = %v, want %v", rows, tt.want)
			}
			for i := range rows {
				if rows[i] != tt.want[i] {
					t.Errorf("row %d = %+v, want %+v", i, rows[i], tt.want[i])
				}
			}
			if stats.Malformed != tt.wantMalformed {
				t.Errorf("Malformed = %d, want %d", stats.Malformed, tt.wantMalformed)
			}
			if stats.Records != len(tt.want)+tt.wantMalformed {
				t.Errorf("Records = %d, want %d", stats.Records, len(tt.want)+tt.wantMalformed)
			}
		})
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  perrors.Code
	}{
		{"Empty", "", perrors.ErrCodeEmptyDataset},
		{"MissingColumn", "Passport,Destination\nA,B\n", perrors.ErrCodeInvalidInput},
		{"BadQuoting", "Passport,Destination,Requirement\nA,B,\"eta\"x\"\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := ReadCSV(strings.NewReader(tt.input), CSVOptions{})
			if tt.want == "" {
				// LazyQuotes accepts stray quotes.
				if err != nil {
					t.Errorf("ReadCSV: unexpected error %v", err)
				}
				return
			}
			if !perrors.Is(err, tt.want) {
				t.Errorf("code = %q, want %q (err %v)", perrors.GetCode(err), tt.want, err)
			}
		})
	}
}

func TestImportCSV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "passport-index-tidy.csv")
	data := "Passport,Destination,Requirement\nA,B,visa free\nB,A,30\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	rows, _, err := ImportCSV(path, CSVOptions{})
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("rows = %d, want 2", len(rows))
	}

	_, _, err = ImportCSV(filepath.Join(dir, "missing.csv"), CSVOptions{})
	if !perrors.Is(err, perrors.ErrCodeFileNotFound) {
		t.Errorf("missing file: code = %q, want %q", perrors.GetCode(err), perrors.ErrCodeFileNotFound)
	}
}
