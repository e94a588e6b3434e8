package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/passrank/pkg/analysis"
	"github.com/matzehuels/passrank/pkg/buildinfo"
	"github.com/matzehuels/passrank/pkg/config"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "passrank"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Out receives command output such as tables and status lines.
	Out io.Writer

	configPath string
	cfg        *config.Config
	cfgSource  string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Passrank ranks passports by how far visa-free travel reaches",
		Long: `Passrank ranks countries by the reach of their passports. Level 1 counts the
destinations a passport enters without a visa; every deeper level weights those
destinations by their own strength, until the ranking settles.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "",
		"config file (.toml or .yaml; default $"+config.EnvConfig+" or ./"+config.DefaultFile+")")

	// Register all subcommands
	root.AddCommand(c.rankCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates an analysis runner for CLI use.
func (c *CLI) newRunner() *analysis.Runner {
	return analysis.NewRunner(c.Logger)
}

// loadConfig returns the effective configuration, loading it on first use.
func (c *CLI) loadConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	cfg, path, err := config.Discover(c.configPath)
	if err != nil {
		return nil, err
	}
	if path != "" {
		c.Logger.Debug("loaded config", "path", path)
	}
	c.cfg, c.cfgSource = cfg, path
	return cfg, nil
}

// analysisOptions builds analysis options for input from cfg.
func analysisOptions(input string, cfg *config.Config) analysis.Options {
	return analysis.Options{
		Input:      input,
		CSV:        cfg.CSVOptions(),
		Classifier: cfg.Classifier(),
		Propagate:  cfg.PropagateOptions(),
		Compare:    cfg.CompareOptions(),
	}
}

// inputArg returns the CSV path argument, or the default dataset name.
func inputArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return config.DefaultInput
}
