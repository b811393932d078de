package filter

import (
	"fmt"
	"strings"
	"time"
)

// Placeholders returns the replacer for {{month}} and {{month_1}} through
// {{month_11}}. Each expands to the two-digit month number offset from
// the month of now, wrapping past December.
func Placeholders(now time.Time) *strings.Replacer {
	current := int(now.Month())
	pairs := make([]string, 0, 24)
	for i := 11; i >= 0; i-- {
		token := "{{month}}"
		if i > 0 {
			token = fmt.Sprintf("{{month_%d}}", i)
		}
		pairs = append(pairs, token, fmt.Sprintf("%02d", (current-1+i)%12+1))
	}
	return strings.NewReplacer(pairs...)
}
