// Package report renders rankings as Markdown and publishes them to a
// repository file.
package report

import (
	"fmt"
	"strings"

	"github.com/spiffcs/glance/internal/model"
)

var titleEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)

// Render returns the Markdown report for issues, numbered 1..n in order.
// A non-empty header is followed by a blank line and a non-empty footer is
// preceded by one.
func Render(issues []*model.Issue, header, footer string) string {
	var b strings.Builder

	if h := strings.TrimSpace(header); h != "" {
		b.WriteString(h)
		b.WriteString("\n\n")
	}
	for n, issue := range issues {
		fmt.Fprintf(&b, "%d. [%s](%s)\n", n+1, titleEscaper.Replace(issue.Title), issue.URL())
	}
	if f := strings.TrimSpace(footer); f != "" {
		b.WriteString("\n")
		b.WriteString(f)
		b.WriteString("\n")
	}

	return b.String()
}
