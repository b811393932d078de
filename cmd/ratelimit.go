package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	gh "github.com/google/go-github/v57/github"
	"github.com/spf13/cobra"
	"github.com/spiffcs/glance/config"
	"github.com/spiffcs/glance/internal/log"
)

// NewCmdRateLimit creates the ratelimit command.
func NewCmdRateLimit(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Check GitHub API rate limit status",
		Long:  `Display the current GitHub API rate limit status for the core and search APIs.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRateLimit(cmd, opts)
		},
	}
}

func runRateLimit(cmd *cobra.Command, opts *Options) error {
	ctx := cmd.Context()
	log.Initialize(opts.Verbosity, cmd.ErrOrStderr())

	// The configuration only supplies token sources here.
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return err
		}
		cfg = &config.Config{Path: opts.ConfigPath}
	}

	client, err := newGitHubClient(ctx, cfg, opts)
	if err != nil {
		return err
	}

	limits, err := client.RateLimits(ctx)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, "GitHub API Rate Limits:")
	fmt.Fprintln(w)
	printRate(w, "Core API:  ", limits.Core)
	printRate(w, "Search API:", limits.Search)
	return nil
}

func printRate(w io.Writer, name string, rate *gh.Rate) {
	if rate == nil {
		return
	}
	resetIn := max(time.Until(rate.Reset.Time).Round(time.Second), 0)
	fmt.Fprintf(w, "%s %d/%d remaining (resets in %s)\n", name, rate.Remaining, rate.Limit, resetIn)
}
