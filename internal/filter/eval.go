package filter

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spiffcs/glance/internal/ghclient"
	"github.com/spiffcs/glance/internal/log"
	"github.com/spiffcs/glance/internal/model"
)

// Scope is what a remote filter is evaluated against.
type Scope struct {
	Repos      []model.Repo
	BaseFilter string
	Searcher   ghclient.Searcher

	// Log tags evaluation output with the owning entry.
	Log log.Entry
}

// Result is the outcome of one evaluation.
type Result struct {
	Filter Filter
	Issues []*model.Issue

	// Due holds the parsed due date of every issue matched by a due filter,
	// keyed by issue ID.
	Due map[string]time.Time
}

// Evaluate applies f to issues. Local kinds never fail. A remote filter
// runs "<base filter> <expr>" for every scope repository and returns the
// deduplicated search results, which may include issues absent from issues.
func Evaluate(ctx context.Context, f Filter, issues []*model.Issue, scope Scope) (Result, error) {
	res := Result{Filter: f}

	switch f.Kind {
	case KindRemote:
		found, err := searchAll(ctx, f, scope)
		if err != nil {
			return res, err
		}
		res.Issues = found
	case KindDue:
		res.Due = make(map[string]time.Time)
		for _, issue := range issues {
			d, ok := DueDate(issue.Body)
			if !ok || !inRange(d, f.From, f.To) {
				continue
			}
			res.Issues = append(res.Issues, issue)
			res.Due[issue.ID] = d
		}
	default:
		for _, issue := range issues {
			if f.Matches(issue) {
				res.Issues = append(res.Issues, issue)
			}
		}
	}

	scope.Log.Info(fmt.Sprintf("%d results for %s '%s'", len(res.Issues), f.Kind, f.Expr))
	return res, nil
}

// Matches reports whether a local filter selects issue. Remote filters
// never match locally.
func (f Filter) Matches(issue *model.Issue) bool {
	switch f.Kind {
	case KindLabel:
		return issue.HasLabel(f.Value)
	case KindNoMilestone:
		return issue.MilestoneTitle() == ""
	case KindMilestone:
		return issue.Milestone != nil && strings.EqualFold(issue.MilestoneTitle(), f.Value)
	case KindNoAssignee:
		return issue.AssigneeLogin() == ""
	case KindAssignee:
		return issue.Assignee != nil && strings.EqualFold(issue.AssigneeLogin(), f.Value)
	case KindDue:
		d, ok := DueDate(issue.Body)
		return ok && inRange(d, f.From, f.To)
	default:
		return false
	}
}

func searchAll(ctx context.Context, f Filter, scope Scope) ([]*model.Issue, error) {
	if scope.Searcher == nil {
		return nil, fmt.Errorf("no searcher for remote filter '%s'", f.Expr)
	}

	query := strings.TrimSpace(scope.BaseFilter + " " + f.Expr)
	seen := make(map[string]bool)
	var out []*model.Issue
	for _, repo := range scope.Repos {
		found, err := scope.Searcher.SearchIssues(ctx, repo, query)
		if err != nil {
			return nil, fmt.Errorf("failed to evaluate filter '%s' in %s: %w", f.Expr, repo, err)
		}
		for _, issue := range found {
			if seen[issue.ID] {
				continue
			}
			seen[issue.ID] = true
			out = append(out, issue)
		}
	}
	return out, nil
}
