package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/passrank/pkg/config"
)

// configCommand creates the config command group.
func (c *CLI) configCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or inspect the configuration file",
	}
	cmd.AddCommand(c.configInitCommand())
	cmd.AddCommand(c.configShowCommand())
	return cmd
}

// configInitCommand writes the default configuration to a new file.
func (c *CLI) configInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration to a file",
		Long: `Init writes the built-in defaults to path (default ` + config.DefaultFile + `).
The format follows the extension: .toml, .yaml or .yml.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFile
			if len(args) > 0 {
				path = args[0]
			}
			if err := config.Write(path, config.Default(), force); err != nil {
				return err
			}
			printSuccess(c.Out, "Wrote %s", path)
			printNextStep(c.Out, "Edit it, then run", "passrank rank --config "+path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "replace an existing file")
	return cmd
}

// configShowCommand prints the effective configuration.
func (c *CLI) configShowCommand() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			source := c.cfgSource
			if source == "" {
				source = "built-in defaults"
			}
			printKeyValue(c.Out, "Source", source)
			printNewline(c.Out)
			return config.Encode(c.Out, cfg, asYAML)
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print as YAML instead of TOML")
	return cmd
}
