package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spiffcs/glance/internal/constants"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := NewOptions()

	rootCmd := &cobra.Command{
		Use:   "glance",
		Short: "Rank GitHub issues and publish the rankings as Markdown",
		Long: `Glance ranks the open issues of your repositories with weight rules
from a configuration file and publishes one Markdown report per entry
to a GitHub repository.

Running glance without a subcommand is the same as 'glance update'.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	rootCmd.PersistentFlags().StringVarP(&opts.ConfigPath, "conf", "c", constants.DefaultConfigPath, "Configuration file")
	rootCmd.PersistentFlags().StringVar(&opts.Token, "token", "", "GitHub token (overrides defaults.token, GITHUB_TOKEN and "+constants.TokenFileName+")")
	rootCmd.PersistentFlags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")

	// Add update flags to root command so `glance` and `glance update` work identically
	addUpdateFlags(rootCmd, opts)

	rootCmd.AddCommand(NewCmdUpdate(opts))
	rootCmd.AddCommand(NewCmdRank(opts))
	rootCmd.AddCommand(NewCmdConfig(opts))
	rootCmd.AddCommand(NewCmdRateLimit(opts))
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}
