package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/passrank/pkg/analysis"
	"github.com/matzehuels/passrank/pkg/config"
	perrors "github.com/matzehuels/passrank/pkg/errors"
	"github.com/matzehuels/passrank/pkg/propagate"
)

const tidy = `Passport,Destination,Requirement
A,A,-1
A,B,visa free
A,C,eta
B,B,-1
B,C,30
C,C,-1
C,A,visa required
C,D,visa free
`

// testCLI returns a CLI with a silent logger whose output is captured.
// It runs in a fresh working directory without a config file.
func testCLI(t *testing.T) (*CLI, *bytes.Buffer) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(config.EnvConfig, "")
	var out bytes.Buffer
	return &CLI{Logger: log.New(io.Discard), Out: &out}, &out
}

func writeCSV(t *testing.T, data string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "passport-index-tidy.csv")
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// tidyResult analyzes the tidy fixture up to level 5.
func tidyResult(t *testing.T) *analysis.Result {
	t.Helper()
	res, err := analysis.NewRunner(log.New(io.Discard)).Execute(context.Background(), analysis.Options{
		Input:     writeCSV(t, tidy),
		Propagate: propagate.Options{MaxLevel: 5},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	return res
}

func execute(c *CLI, args ...string) error {
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(c.Out)
	root.SetErr(io.Discard)
	return root.ExecuteContext(context.Background())
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitOK},
		{"plain", errors.New("boom"), ExitFailure},
		{"coded", perrors.New(perrors.ErrCodeInvalidConfig, "bad"), ExitFailure},
		{"cancelled", context.Canceled, ExitInterrupt},
		{"wrapped cancel", fmt.Errorf("rank: %w", context.Canceled), ExitInterrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := perrors.Wrap(perrors.ErrCodeFileNotFound, errors.New("no such file"), "open x.csv")
	if got, want := ErrorMessage(err), "open x.csv: no such file (FILE_NOT_FOUND)"; got != want {
		t.Errorf("ErrorMessage = %q, want %q", got, want)
	}
	if got := ErrorMessage(errors.New("plain")); got != "plain" {
		t.Errorf("ErrorMessage(plain) = %q", got)
	}
}

func TestRootCommandSubcommands(t *testing.T) {
	c, _ := testCLI(t)
	root := c.RootCommand()

	for _, name := range []string{"rank", "explore", "serve", "config", "completion"} {
		if cmd, _, err := root.Find([]string{name}); err != nil || cmd.Name() != name {
			t.Errorf("subcommand %q not registered", name)
		}
	}
	if root.PersistentFlags().Lookup("config") == nil {
		t.Error("missing --config flag")
	}
}

func TestCompletion(t *testing.T) {
	c, out := testCLI(t)
	if err := execute(c, "completion", "bash"); err != nil {
		t.Fatalf("completion: %v", err)
	}
	if !strings.Contains(out.String(), "passrank") {
		t.Error("bash completion does not mention passrank")
	}
}

func TestConfigFlagLoadsFile(t *testing.T) {
	c, _ := testCLI(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	if err := os.WriteFile(path, []byte("[analysis]\nmax_level = 7\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c.configPath = path

	cfg, err := c.loadConfig()
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	if cfg.Analysis.MaxLevel != 7 || c.cfgSource != path {
		t.Errorf("max_level = %d from %q, want 7 from %q", cfg.Analysis.MaxLevel, c.cfgSource, path)
	}
}
