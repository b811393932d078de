package filter

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// dateLayouts are the accepted due date formats, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
	"2 January 2006",
	time.RFC3339,
}

// dueLine matches a "due: <date>" or "due <date>" line in an issue body.
var dueLine = regexp.MustCompile(`(?im)^[ \t]*due[ \t]*[: \t][ \t]*(.+?)[ \t\r]*$`)

// ParseDate parses s in one of the accepted formats and returns the date
// at midnight UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// DueDate returns the first parseable due directive in body.
func DueDate(body string) (time.Time, bool) {
	for _, m := range dueLine.FindAllStringSubmatch(body, -1) {
		if d, err := ParseDate(m[1]); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

// inRange reports whether d lies within [from, to], compared by day.
func inRange(d time.Time, from, to *time.Time) bool {
	if from != nil && d.Before(*from) {
		return false
	}
	if to != nil && d.After(*to) {
		return false
	}
	return true
}

func day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
