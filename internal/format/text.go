// Package format measures and trims text for terminal tables.
package format

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spiffcs/glance/internal/constants"
)

// escapeRegex matches SGR color codes and OSC 8 hyperlink wrappers.
var escapeRegex = regexp.MustCompile(`\x1b\[[0-9;]*m|\x1b]8;;[^\x1b]*\x1b\\`)

// StripAnsi removes color codes and hyperlink escapes from s.
func StripAnsi(s string) string {
	return escapeRegex.ReplaceAllString(s, "")
}

// Width returns the number of terminal columns s occupies once escapes
// are removed. Emoji followed by VS16 count as two columns.
func Width(s string) int {
	plain := StripAnsi(s)
	width := 0
	runes := []rune(plain)
	for i := 0; i < len(runes); i++ {
		if runes[i] == '\uFE0F' {
			continue
		}
		if i+1 < len(runes) && runes[i+1] == '\uFE0F' {
			width += 2
			i++
			continue
		}
		width += runewidth.RuneWidth(runes[i])
	}
	return width
}

// Truncate shortens s to at most maxWidth columns, ending it with "...".
// Escapes are dropped from a truncated string; s is returned unchanged
// when it already fits.
func Truncate(s string, maxWidth int) string {
	if Width(s) <= maxWidth {
		return s
	}
	if maxWidth <= constants.TruncationSuffixWidth {
		return strings.Repeat(".", max(maxWidth, 0))
	}
	return runewidth.Truncate(StripAnsi(s), maxWidth, "...")
}

// PadRight pads s with spaces until it is width columns wide.
func PadRight(s string, width int) string {
	w := Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// Hyperlink wraps text in an OSC 8 terminal hyperlink when enabled.
func Hyperlink(text, url string, enabled bool) string {
	if !enabled || url == "" {
		return text
	}
	return fmt.Sprintf("\x1b]8;;%s\x1b\\%s\x1b]8;;\x1b\\", url, text)
}
