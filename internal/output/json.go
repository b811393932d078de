package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/spiffcs/glance/internal/ranking"
	"github.com/spiffcs/glance/internal/runner"
)

// JSONFormatter formats output as JSON
type JSONFormatter struct {
	Pretty bool
}

// JSONRecord is one ranked issue.
type JSONRecord struct {
	Rank       int        `json:"rank"`
	Weight     float64    `json:"weight"`
	ID         string     `json:"id"`
	Repository string     `json:"repository"`
	Number     int        `json:"number"`
	Title      string     `json:"title"`
	Labels     []string   `json:"labels,omitempty"`
	Milestone  string     `json:"milestone,omitempty"`
	Assignee   string     `json:"assignee,omitempty"`
	Due        *time.Time `json:"due,omitempty"`
}

// JSONRanking is one entry's ranking.
type JSONRanking struct {
	Entry       string       `json:"entry"`
	InheritFrom string       `json:"inherit_from,omitempty"`
	Candidates  int          `json:"candidates"`
	Issues      []JSONRecord `json:"issues"`
	Warnings    []string     `json:"warnings,omitempty"`
}

// JSONResult is the outcome of one entry in a run.
type JSONResult struct {
	Entry      string `json:"entry"`
	Status     string `json:"status"`
	Issues     int    `json:"issues"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func (f *JSONFormatter) encode(v any, w io.Writer) error {
	encoder := json.NewEncoder(w)
	if f.Pretty {
		encoder.SetIndent("", "  ")
	}
	return encoder.Encode(v)
}

// Format outputs a ranking as JSON
func (f *JSONFormatter) Format(r *ranking.Ranking, w io.Writer) error {
	out := JSONRanking{
		Entry:       r.Entry.Key,
		InheritFrom: r.Entry.InheritFrom,
		Candidates:  r.Set.Len(),
		Issues:      make([]JSONRecord, 0, len(r.Ranked)),
	}
	for i, rec := range r.Ranked {
		issue := rec.Issue
		jr := JSONRecord{
			Rank:       i + 1,
			Weight:     rec.Weight,
			ID:         issue.ID,
			Repository: issue.Repository,
			Number:     issue.Number,
			Title:      issue.Title,
			Milestone:  issue.MilestoneTitle(),
			Assignee:   issue.AssigneeLogin(),
			Due:        issue.Due,
		}
		for _, l := range issue.Labels {
			jr.Labels = append(jr.Labels, l.Name)
		}
		out.Issues = append(out.Issues, jr)
	}
	for _, warn := range r.Warnings {
		out.Warnings = append(out.Warnings, warn.Error())
	}
	return f.encode(out, w)
}

// FormatResults outputs run results as JSON
func (f *JSONFormatter) FormatResults(results []*runner.Result, w io.Writer) error {
	out := make([]JSONResult, 0, len(results))
	for _, r := range results {
		jr := JSONResult{
			Entry:      r.Key,
			Status:     status(r),
			Issues:     issueCount(r),
			DurationMS: r.Duration.Milliseconds(),
		}
		if r.Err != nil {
			jr.Error = r.Err.Error()
		}
		out = append(out, jr)
	}
	return f.encode(out, w)
}
