package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/matzehuels/passrank/pkg/analysis"
	"github.com/matzehuels/passrank/pkg/config"
	perrors "github.com/matzehuels/passrank/pkg/errors"
	"github.com/matzehuels/passrank/pkg/httputil"
)

// Exit codes returned by main.
const (
	ExitOK        = 0
	ExitFailure   = 1
	ExitInterrupt = 130 // shell convention for SIGINT
)

// ExitCode maps a command error to a process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, context.Canceled):
		return ExitInterrupt
	default:
		return ExitFailure
	}
}

// ErrorMessage returns the text printed for a failed command.
func ErrorMessage(err error) string {
	if code := perrors.GetCode(err); code != "" {
		return fmt.Sprintf("%s (%s)", perrors.UserMessage(err), code)
	}
	return err.Error()
}

// analyze runs the analysis of input under cfg, with a spinner on stderr
// while it works.
func (c *CLI) analyze(ctx context.Context, input string, cfg *config.Config) (*analysis.Result, error) {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	opts := analysisOptions(input, cfg)
	opts.Logger = logger
	if httputil.IsURL(input) {
		opts.Fetcher = cfg.Fetcher(logger)
	}

	spin := newSpinnerWithContext(ctx, "Ranking "+input+"...")
	spin.Start()
	res, err := c.newRunner().Execute(ctx, opts)
	spin.Stop()
	if err != nil {
		return nil, err
	}

	prog.done("Ranked %d countries over %d levels", len(res.Labels), res.Propagation.MaxLevel)
	return res, nil
}
