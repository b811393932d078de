package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spiffcs/glance/internal/tui"
)

// progressModes maps accepted --tui values to Options.TUI. nil means
// decide from the terminal.
var progressModes = map[string]*bool{
	"auto":   nil,
	"true":   boolPtr(true),
	"always": boolPtr(true),
	"false":  boolPtr(false),
	"never":  boolPtr(false),
}

func boolPtr(b bool) *bool { return &b }

// tuiFlag is the --tui pflag.Value. Bare --tui means true.
type tuiFlag struct {
	opts *Options
}

func newTUIFlag(opts *Options) *tuiFlag {
	return &tuiFlag{opts: opts}
}

func (f *tuiFlag) String() string {
	switch {
	case f.opts.TUI == nil:
		return "auto"
	case *f.opts.TUI:
		return "true"
	default:
		return "false"
	}
}

func (f *tuiFlag) Set(s string) error {
	mode, ok := progressModes[strings.ToLower(s)]
	if !ok {
		names := make([]string, 0, len(progressModes))
		for name := range progressModes {
			names = append(names, name)
		}
		sort.Strings(names)
		return fmt.Errorf("invalid value %q: want one of %s", s, strings.Join(names, ", "))
	}
	f.opts.TUI = mode
	return nil
}

func (f *tuiFlag) Type() string { return "mode" }

func (f *tuiFlag) IsBoolFlag() bool { return true }

// progressDisplay decides whether a run shows the progress display and
// why. Verbose logs and dry-run diffs own the terminal, so they win over
// an explicit --tui.
func progressDisplay(opts *Options) (bool, string) {
	switch {
	case opts.DryRun:
		return false, "dry run prints diffs"
	case opts.Verbosity > 0:
		return false, "verbose logging"
	case opts.TUI != nil && *opts.TUI:
		return true, "requested"
	case opts.TUI != nil:
		return false, "disabled"
	case tui.Available():
		return true, "interactive terminal"
	default:
		return false, "no interactive terminal"
	}
}
