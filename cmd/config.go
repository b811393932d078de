package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spiffcs/glance/config"
	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/log"
)

// NewCmdConfig creates the config command with subcommands.
func NewCmdConfig(opts *Options) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Validate or show the configuration",
		Long: `Validate or show the configuration.

When run without arguments, shows the merged entries.

Subcommands:
  validate  Check every entry and report the invalid ones
  show      Show the entries after defaults are applied
  path      Show the resolved configuration and token file paths`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, opts, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	cmd.AddCommand(NewCmdConfigValidate(opts))
	cmd.AddCommand(NewCmdConfigShow(opts))
	cmd.AddCommand(NewCmdConfigPath(opts))

	return cmd
}

// NewCmdConfigValidate creates the config validate subcommand.
func NewCmdConfigValidate(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate every configuration entry",
		Long: `Load the configuration and report each entry as valid or invalid.
Exits non-zero when any entry is invalid.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, opts)
		},
	}
}

// NewCmdConfigShow creates the config show subcommand.
func NewCmdConfigShow(opts *Options) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the merged configuration entries",
		Long:  `Show every valid entry after the defaults entry has been applied.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigShow(cmd, opts, outputFormat)
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format (yaml, json)")

	return cmd
}

// NewCmdConfigPath creates the config path subcommand.
func NewCmdConfigPath(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show the configuration file location",
		Long:  `Show the absolute paths of the configuration file and token file and whether they exist.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigPath(cmd, opts)
		},
	}
}

func runConfigValidate(cmd *cobra.Command, opts *Options) error {
	log.Initialize(opts.Verbosity, cmd.ErrOrStderr())
	w := cmd.OutOrStdout()

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	for _, e := range cfg.Entries {
		detail := fmt.Sprintf("%d weight rules", len(e.Weights))
		if e.IsInheriting() {
			detail = "inherits " + e.InheritFrom
		}
		fmt.Fprintf(w, "%s %s (%s)\n", color.GreenString("✓"), e.Key, detail)
	}
	for _, v := range cfg.Invalid {
		fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), v.Error())
	}

	if len(cfg.Invalid) > 0 {
		return fmt.Errorf("%d of %d entries are invalid", len(cfg.Invalid), len(cfg.Entries)+len(cfg.Invalid))
	}
	return nil
}

func runConfigShow(cmd *cobra.Command, opts *Options, format string) error {
	log.Initialize(opts.Verbosity, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	var out string
	switch format {
	case "yaml":
		out, err = cfg.ToYAML()
	case "json":
		out, err = cfg.ToJSON()
	default:
		return fmt.Errorf("invalid format: %s (must be yaml or json)", format)
	}
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), out)
	return nil
}

func runConfigPath(cmd *cobra.Command, opts *Options) error {
	w := cmd.OutOrStdout()

	confPath := config.AbsPath(opts.ConfigPath)
	tokenPath := filepath.Join(filepath.Dir(confPath), constants.TokenFileName)

	fmt.Fprintf(w, "Config:     %s (%s)\n", confPath, fileStatus(confPath))
	fmt.Fprintf(w, "Token file: %s (%s)\n", tokenPath, fileStatus(tokenPath))
	return nil
}

func fileStatus(path string) string {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return "exists"
	case errors.Is(err, fs.ErrNotExist):
		return "not found"
	default:
		return err.Error()
	}
}
