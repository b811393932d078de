package report

import (
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// diffContext is the number of unchanged lines shown around a change.
const diffContext = 2

var (
	addedStyle   = color.New(color.FgGreen)
	removedStyle = color.New(color.FgRed)
	elidedStyle  = color.New(color.Faint)
)

// Diff renders a line diff from before to after. Added lines are prefixed with
// "+", removed lines with "-". Returns "" when the texts are equal.
func Diff(before, after string) string {
	if before == after {
		return ""
	}

	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for i, d := range diffs {
		text := splitLines(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			for _, l := range text {
				out.WriteString(addedStyle.Sprint("+ "+l) + "\n")
			}
		case diffmatchpatch.DiffDelete:
			for _, l := range text {
				out.WriteString(removedStyle.Sprint("- "+l) + "\n")
			}
		case diffmatchpatch.DiffEqual:
			writeContext(&out, text, i > 0, i < len(diffs)-1)
		}
	}
	return out.String()
}

// writeContext writes the unchanged lines adjacent to a change and elides
// the rest.
func writeContext(out *strings.Builder, lines []string, afterChange, beforeChange bool) {
	var head, tail []string
	if afterChange {
		head = lines[:min(diffContext, len(lines))]
	}
	if beforeChange {
		tail = lines[max(len(lines)-diffContext, len(head)):]
	}

	for _, l := range head {
		out.WriteString("  " + l + "\n")
	}
	if elided := len(lines) - len(head) - len(tail); elided > 0 {
		out.WriteString(elidedStyle.Sprint("  ...") + "\n")
	}
	for _, l := range tail {
		out.WriteString("  " + l + "\n")
	}
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}
