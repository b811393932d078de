package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/format"
	"github.com/spiffcs/glance/internal/model"
	"github.com/spiffcs/glance/internal/ranking"
	"github.com/spiffcs/glance/internal/runner"
)

// TableFormatter formats output as a terminal table
type TableFormatter struct {
	// Hyperlinks wraps titles in OSC 8 links to the issue.
	Hyperlinks bool
}

const (
	colRank   = 4
	colWeight = 7
	colDue    = 10
)

// Format outputs a ranking as a table
func (f *TableFormatter) Format(r *ranking.Ranking, w io.Writer) error {
	if len(r.Ranked) == 0 {
		fmt.Fprintf(w, "No issues ranked for %s.\n", r.Entry.Key)
		f.printWarnings(r, w)
		return nil
	}

	colRepo := constants.RepoColumnWidth
	colTitle := constants.TitleColumnWidth

	fmt.Fprintf(w, "%-*s  %-*s  %-*s  %-*s  %s\n",
		colRank, "#",
		colWeight, "Weight",
		colRepo, "Repository",
		colTitle, "Title",
		"Due")
	fmt.Fprintln(w, strings.Repeat("-", colRank+colWeight+colRepo+colTitle+colDue+8))

	for i, rec := range r.Ranked {
		issue := rec.Issue

		repo := format.Truncate(fmt.Sprintf("%s#%d", issue.Repository, issue.Number), colRepo)

		title := format.Truncate(issue.Title, colTitle)
		title = format.PadRight(format.Hyperlink(title, issue.URL(), f.Hyperlinks), colTitle)

		fmt.Fprintf(w, "%-*d  %s  %s  %s  %s\n",
			colRank, i+1,
			format.PadRight(colorWeight(rec.Weight), colWeight),
			format.PadRight(repo, colRepo),
			title,
			formatDue(issue),
		)
	}

	printFooter(r, w)
	f.printWarnings(r, w)
	return nil
}

// colorWeight highlights the heaviest issues.
func colorWeight(weight float64) string {
	s := fmt.Sprintf("%.1f", weight)
	switch {
	case weight >= 10:
		return color.New(color.FgRed, color.Bold).Sprint(s)
	case weight >= 3:
		return color.YellowString(s)
	default:
		return color.GreenString(s)
	}
}

func formatDue(issue *model.Issue) string {
	if issue.Due == nil {
		return ""
	}
	due := issue.Due.Format(constants.DueDateLayout)
	if issue.Due.Before(time.Now().UTC().Truncate(24 * time.Hour)) {
		return color.RedString(due)
	}
	return due
}

func printFooter(r *ranking.Ranking, w io.Writer) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d of %d issues ranked for %s", len(r.Ranked), r.Set.Len(), r.Entry.Key)
	if r.Inherited {
		fmt.Fprintf(w, " (weights from %s)", r.Entry.InheritFrom)
	}
	fmt.Fprintln(w)
}

func (f *TableFormatter) printWarnings(r *ranking.Ranking, w io.Writer) {
	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("warning:"), warn)
	}
}

// FormatResults outputs one line per entry followed by a summary.
func (f *TableFormatter) FormatResults(results []*runner.Result, w io.Writer) error {
	if len(results) == 0 {
		fmt.Fprintln(w, "No entries to process.")
		return nil
	}

	keyWidth := 0
	for _, r := range results {
		keyWidth = max(keyWidth, format.Width(r.Key))
	}

	counts := map[string]int{}
	for _, r := range results {
		st := status(r)
		counts[st]++

		icon := color.GreenString("✓")
		detail := fmt.Sprintf("%s, %d issues", st, issueCount(r))
		if r.Failed() {
			icon = color.RedString("✗")
			detail = color.RedString(r.Err.Error())
		}
		fmt.Fprintf(w, "%s %s  %s  %s\n",
			icon,
			format.PadRight(r.Key, keyWidth),
			detail,
			color.New(color.Faint).Sprint(r.Duration.Round(constants.DurationPrecision)),
		)
	}

	var parts []string
	for _, st := range []string{"created", "updated", "unchanged", "ranked", "failed"} {
		if n := counts[st]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, st))
		}
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%d entries: %s\n", len(results), strings.Join(parts, ", "))
	return nil
}
