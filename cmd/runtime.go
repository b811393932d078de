package cmd

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/spiffcs/glance/config"
	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/filter"
	"github.com/spiffcs/glance/internal/ghclient"
	"github.com/spiffcs/glance/internal/log"
	"github.com/spiffcs/glance/internal/ranking"
	"github.com/spiffcs/glance/internal/runner"
	"github.com/spiffcs/glance/internal/tui"
)

// progressRuntime bundles TUI-related state that's threaded through a run.
type progressRuntime struct {
	useTUI  bool
	events  chan tui.Event
	tuiDone chan error
}

// newProgressRuntime initializes logging for a run. Logs are suppressed
// while the TUI owns the terminal.
func newProgressRuntime(opts *Options, stderr io.Writer) *progressRuntime {
	useTUI, reason := progressDisplay(opts)
	if useTUI {
		log.Initialize(opts.Verbosity, io.Discard)
	} else {
		log.Initialize(opts.Verbosity, stderr)
	}
	log.Debug("progress display", "enabled", useTUI, "reason", reason)
	return &progressRuntime{useTUI: useTUI}
}

// startTUI starts the TUI goroutine if TUI mode is enabled.
func (rt *progressRuntime) startTUI(keys []string) {
	if !rt.useTUI {
		return
	}
	rt.events = make(chan tui.Event, 100)
	rt.tuiDone = make(chan error, 1)
	go func() {
		rt.tuiDone <- tui.Run(rt.events, keys)
	}()
}

// close closes the event channel and waits for the TUI to finish.
func (rt *progressRuntime) close() {
	if rt.events == nil {
		return
	}
	close(rt.events)
	if err := <-rt.tuiDone; err != nil {
		log.Warn("progress display failed", "error", err)
	}
	rt.events = nil
}

// loadConfig reads the configuration file named by opts.
func loadConfig(opts *Options) (*config.Config, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded configuration", "path", config.AbsPath(cfg.Path),
		"entries", len(cfg.Entries), "invalid", len(cfg.Invalid))
	for _, v := range cfg.Invalid {
		log.Debug("invalid entry", "entry", v.Key, "error", v.Err)
	}
	return cfg, nil
}

// newGitHubClient resolves the token and builds the API client. It makes
// no remote call, so a missing token fails before any request is sent.
func newGitHubClient(ctx context.Context, cfg *config.Config, opts *Options) (*ghclient.Client, error) {
	token, err := cfg.ResolveToken(opts.Token)
	if err != nil {
		return nil, err
	}
	return ghclient.NewClient(ctx, token)
}

// newEngine builds a ranking engine with this month's placeholders.
func newEngine(searcher ghclient.Searcher) *ranking.Engine {
	return ranking.NewEngine(searcher, ranking.NewCache(),
		ranking.WithPlaceholders(filter.Placeholders(time.Now())))
}

// logProgress logs completed entries, at most once per ProgressInterval
// except for the final entry.
func logProgress() runner.ProgressFunc {
	var last atomic.Int64
	return func(completed, total int) {
		now := time.Now().UnixNano()
		prev := last.Load()
		if completed < total && now-prev < int64(constants.ProgressInterval) {
			return
		}
		if !last.CompareAndSwap(prev, now) && completed < total {
			return
		}
		log.Info("progress", "completed", completed, "total", total)
	}
}
