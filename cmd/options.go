package cmd

import "github.com/spiffcs/glance/internal/constants"

// Options holds the shared command-line options for the glance CLI.
type Options struct {
	ConfigPath string
	Token      string
	Verbosity  int

	// Entries limits publishing to these keys. Their parents are still
	// ranked.
	Entries []string
	DryRun  bool
	Workers int
	Format  string
	TUI     *bool // nil = auto-detect, true = force TUI, false = disable TUI
}

// NewOptions creates Options holding the flag defaults.
func NewOptions() *Options {
	return &Options{
		ConfigPath: constants.DefaultConfigPath,
		Workers:    constants.DefaultWorkers,
		Format:     "table",
	}
}
