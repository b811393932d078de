// Package filter interprets the filter expressions used by weight rules.
//
// A small set of syntaxes is evaluated locally against an already fetched
// issue set. Every other expression is passed to GitHub issue search.
package filter

import (
	"regexp"
	"strings"
	"time"
)

// Kind identifies how a filter expression is evaluated.
type Kind int

const (
	KindRemote Kind = iota
	KindDue
	KindLabel
	KindNoMilestone
	KindMilestone
	KindNoAssignee
	KindAssignee
)

// String returns the kind name used in log output.
func (k Kind) String() string {
	switch k {
	case KindDue:
		return "due"
	case KindLabel:
		return "label"
	case KindNoMilestone:
		return "no:milestone"
	case KindMilestone:
		return "milestone"
	case KindNoAssignee:
		return "no:assignee"
	case KindAssignee:
		return "assignee"
	default:
		return "remote"
	}
}

// IsLocal reports whether filters of this kind are evaluated in memory.
func (k Kind) IsLocal() bool {
	return k != KindRemote
}

// Filter is a parsed filter expression.
type Filter struct {
	Kind Kind

	// Expr is the expression as written, after placeholder substitution.
	Expr string

	// Value is the compared name for label, milestone and assignee filters.
	Value string

	// From and To bound a due filter. Nil means unbounded.
	From *time.Time
	To   *time.Time
}

func (f Filter) String() string {
	return f.Expr
}

// matcher recognizes one syntax. build returns false when the expression
// has the right shape but cannot be used, such as a due range with an
// unparseable bound.
type matcher struct {
	re    *regexp.Regexp
	build func(expr string, m []string) (Filter, bool)
}

// quotedOrBare captures `"some value"` or `value`.
const quotedOrBare = `(?:"([^"]+)"|([^\s"]+))`

var matchers = []matcher{
	{re: regexp.MustCompile(`^due:` + quotedOrBare + `$`), build: buildDue},
	{re: regexp.MustCompile(`^label:` + quotedOrBare + `$`), build: valueBuilder(KindLabel)},
	{re: regexp.MustCompile(`^no:milestone$`), build: flagBuilder(KindNoMilestone)},
	{re: regexp.MustCompile(`^milestone:` + quotedOrBare + `$`), build: valueBuilder(KindMilestone)},
	{re: regexp.MustCompile(`^no:assignee$`), build: flagBuilder(KindNoAssignee)},
	{re: regexp.MustCompile(`^assignee:` + quotedOrBare + `$`), build: valueBuilder(KindAssignee)},
}

// Parse classifies expr. The first syntax matching the whole expression
// wins; anything unrecognized or malformed becomes a remote filter.
func Parse(expr string) Filter {
	expr = strings.TrimSpace(expr)
	for _, m := range matchers {
		sub := m.re.FindStringSubmatch(expr)
		if sub == nil {
			continue
		}
		if f, ok := m.build(expr, sub); ok {
			return f
		}
	}
	return Filter{Kind: KindRemote, Expr: expr}
}

func captured(m []string) string {
	if m[1] != "" {
		return strings.TrimSpace(m[1])
	}
	return m[2]
}

func valueBuilder(kind Kind) func(string, []string) (Filter, bool) {
	return func(expr string, m []string) (Filter, bool) {
		v := captured(m)
		if v == "" {
			return Filter{}, false
		}
		return Filter{Kind: kind, Expr: expr, Value: v}, true
	}
}

func flagBuilder(kind Kind) func(string, []string) (Filter, bool) {
	return func(expr string, _ []string) (Filter, bool) {
		return Filter{Kind: kind, Expr: expr}, true
	}
}

func buildDue(expr string, m []string) (Filter, bool) {
	lo, hi, ok := strings.Cut(captured(m), "..")
	if !ok {
		return Filter{}, false
	}

	from, ok := parseBound(lo)
	if !ok {
		return Filter{}, false
	}
	to, ok := parseBound(hi)
	if !ok {
		return Filter{}, false
	}
	if from != nil && to != nil && from.After(*to) {
		return Filter{}, false
	}
	return Filter{Kind: KindDue, Expr: expr, From: from, To: to}, true
}

func parseBound(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "*" {
		return nil, true
	}
	d, err := ParseDate(s)
	if err != nil {
		return nil, false
	}
	return &d, true
}
