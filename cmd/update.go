package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/log"
	"github.com/spiffcs/glance/internal/output"
	"github.com/spiffcs/glance/internal/report"
	"github.com/spiffcs/glance/internal/runner"
)

// NewCmdUpdate creates the update command.
func NewCmdUpdate(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Rank every entry and publish its report (same as root glance)",
		Long: `Ranks every entry of the configuration file and publishes each report
to its output repository. Reports whose content has not changed are not
written.

With --entry only the named entries are published; the entries they
inherit from are still ranked. With --dry-run nothing is written and a
diff of each report is printed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runUpdate(cmd, opts)
		},
	}

	addUpdateFlags(cmd, opts)
	return cmd
}

// addUpdateFlags adds the update-specific flags to a command.
func addUpdateFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringArrayVarP(&opts.Entries, "entry", "e", nil, "Publish only this entry (repeatable)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Print report diffs instead of writing them")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", constants.DefaultWorkers, "Number of entries processed concurrently")
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "table", "Summary format (table, json, markdown)")

	// TUI flag with tri-state: nil = auto, true = force, false = disable
	cmd.Flags().Var(newTUIFlag(opts), "tui", "Enable/disable TUI progress (default: auto-detect)")
	cmd.Flags().Lookup("tui").NoOptDefVal = "true"
}

func runUpdate(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	format, err := output.ParseFormat(opts.Format)
	if err != nil {
		return err
	}

	rt := newProgressRuntime(opts, cmd.ErrOrStderr())

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if len(opts.Entries) > 0 {
		if cfg, err = cfg.Select(opts.Entries); err != nil {
			return err
		}
	}

	client, err := newGitHubClient(ctx, cfg, opts)
	if err != nil {
		return err
	}

	var pubOpts []report.PublisherOption
	if opts.DryRun {
		pubOpts = append(pubOpts, report.WithDryRun(out))
	}

	runOpts := []runner.Option{
		runner.WithWorkers(opts.Workers),
		runner.WithPublisher(report.NewPublisher(client, pubOpts...)),
		runner.WithRateLimitState(client.RateLimitState()),
		runner.WithProgress(logProgress()),
	}
	if len(opts.Entries) > 0 {
		runOpts = append(runOpts, runner.WithPublishOnly(opts.Entries))
	}

	rt.startTUI(cfg.Keys())
	if rt.events != nil {
		runOpts = append(runOpts, runner.WithEvents(rt.events))
	}

	results, runErr := runner.New(newEngine(client), runOpts...).Run(ctx, cfg)
	rt.close()

	if err := output.NewFormatter(format).FormatResults(results, out); err != nil {
		return fmt.Errorf("failed to print results: %w", err)
	}

	if runErr != nil {
		log.Debug("run finished with failures", "error", runErr)
		failed := 0
		for _, res := range results {
			if res.Failed() {
				failed++
			}
		}
		return fmt.Errorf("%d of %d entries failed", failed, len(results))
	}
	return nil
}
