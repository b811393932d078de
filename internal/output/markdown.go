package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/ranking"
	"github.com/spiffcs/glance/internal/runner"
)

// MarkdownFormatter formats output as Markdown
type MarkdownFormatter struct{}

var cellEscaper = strings.NewReplacer("|", `\|`, "[", `\[`, "]", `\]`)

// Format outputs a ranking as a Markdown table
func (f *MarkdownFormatter) Format(r *ranking.Ranking, w io.Writer) error {
	fmt.Fprintf(w, "## %s\n\n", r.Entry.Key)

	if len(r.Ranked) == 0 {
		fmt.Fprintln(w, "No issues ranked.")
		return nil
	}

	fmt.Fprintln(w, "| # | Weight | Issue | Repository |")
	fmt.Fprintln(w, "|---|--------|-------|------------|")
	for i, rec := range r.Ranked {
		fmt.Fprintf(w, "| %d | %.1f | [%s](%s) | %s |\n",
			i+1,
			rec.Weight,
			cellEscaper.Replace(rec.Issue.Title),
			rec.Issue.URL(),
			rec.Issue.Repository,
		)
	}

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "\n### Warnings")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "- %s\n", warn)
		}
	}
	return nil
}

// FormatResults outputs run results as a Markdown table
func (f *MarkdownFormatter) FormatResults(results []*runner.Result, w io.Writer) error {
	fmt.Fprintln(w, "| Entry | Status | Issues | Duration |")
	fmt.Fprintln(w, "|-------|--------|--------|----------|")
	for _, r := range results {
		fmt.Fprintf(w, "| %s | %s | %d | %s |\n",
			r.Key, status(r), issueCount(r), r.Duration.Round(constants.DurationPrecision))
	}

	var failed []*runner.Result
	for _, r := range results {
		if r.Failed() {
			failed = append(failed, r)
		}
	}
	if len(failed) > 0 {
		fmt.Fprintln(w, "\n### Failures")
		for _, r := range failed {
			fmt.Fprintf(w, "- **%s**: %s\n", r.Key, r.Err)
		}
	}
	return nil
}
