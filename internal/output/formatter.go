// Package output prints rankings and run results for the terminal.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/spiffcs/glance/internal/ranking"
	"github.com/spiffcs/glance/internal/runner"
	"golang.org/x/term"
)

// Format represents the output format
type Format string

const (
	FormatTable    Format = "table"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
)

// Formats lists the accepted format names.
var Formats = []Format{FormatTable, FormatJSON, FormatMarkdown}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	for _, f := range Formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown output format %q (want table, json or markdown)", s)
}

// Formatter defines the interface for output formatters
type Formatter interface {
	// Format prints one entry's ranking.
	Format(r *ranking.Ranking, w io.Writer) error
	// FormatResults prints the outcome of a run, one line per entry.
	FormatResults(results []*runner.Result, w io.Writer) error
}

// NewFormatter creates a formatter for the specified format
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatMarkdown:
		return &MarkdownFormatter{}
	default:
		return &TableFormatter{Hyperlinks: term.IsTerminal(int(os.Stdout.Fd()))}
	}
}

// status is the one-word state of a finished entry.
func status(r *runner.Result) string {
	switch {
	case r.Failed():
		return "failed"
	case r.Published:
		return r.Outcome.String()
	default:
		return "ranked"
	}
}

func issueCount(r *runner.Result) int {
	if r.Ranking == nil {
		return 0
	}
	return len(r.Ranking.Ranked)
}

var (
	_ Formatter = (*TableFormatter)(nil)
	_ Formatter = (*JSONFormatter)(nil)
	_ Formatter = (*MarkdownFormatter)(nil)
)
