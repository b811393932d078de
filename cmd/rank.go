package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spiffcs/glance/internal/log"
	"github.com/spiffcs/glance/internal/output"
	"github.com/spiffcs/glance/internal/runner"
)

// NewCmdRank creates the rank command.
func NewCmdRank(opts *Options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "rank <entry>",
		Short: "Print the ranking of one entry without publishing it",
		Long: `Ranks a single entry, together with the entries it inherits from, and
prints every issue above the publish threshold with its weight. Nothing
is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRank(cmd, opts, args[0], format)
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "table", "Output format (table, json, markdown)")
	return cmd
}

func runRank(cmd *cobra.Command, opts *Options, key, formatName string) error {
	ctx := cmd.Context()

	format, err := output.ParseFormat(formatName)
	if err != nil {
		return err
	}

	log.Initialize(opts.Verbosity, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	sub, err := cfg.Select([]string{key})
	if err != nil {
		return err
	}

	client, err := newGitHubClient(ctx, cfg, opts)
	if err != nil {
		return err
	}

	results, _ := runner.New(newEngine(client), runner.WithWorkers(opts.Workers)).Run(ctx, sub)
	for _, res := range results {
		if res.Key != key {
			continue
		}
		if res.Failed() {
			return res.Err
		}
		return output.NewFormatter(format).Format(res.Ranking, cmd.OutOrStdout())
	}
	return fmt.Errorf("entry %q was not ranked", key)
}
