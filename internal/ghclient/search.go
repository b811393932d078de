package ghclient

import (
	"context"
	"fmt"
	"strings"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/log"
	"github.com/spiffcs/glance/internal/model"
)

// SearchIssues runs "repo:<repo> <query>" through the issue search API and
// collects every page.
func (c *Client) SearchIssues(ctx context.Context, repo model.Repo, query string) ([]*model.Issue, error) {
	q := strings.TrimSpace(fmt.Sprintf("repo:%s %s", repo, query))

	opts := &gh.SearchOptions{
		ListOptions: gh.ListOptions{
			PerPage: constants.SearchPerPage,
		},
	}

	var issues []*model.Issue
	for {
		var (
			result *gh.IssuesSearchResult
			resp   *gh.Response
		)
		err := c.retry.read(ctx, "search", func(ctx context.Context) error {
			var err error
			result, resp, err = c.client.Search.Issues(ctx, q, opts)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to search issues %q: %w", q, err)
		}

		log.Debug("search page", "query", q, "page", opts.Page, "count", len(result.Issues))
		for _, issue := range result.Issues {
			issues = append(issues, issueToModel(issue, repo))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, nil
}

// issueToModel converts a GitHub search result issue to a model.Issue.
func issueToModel(issue *gh.Issue, repo model.Repo) *model.Issue {
	labels := make([]model.Label, 0, len(issue.Labels))
	for _, l := range issue.Labels {
		labels = append(labels, model.Label{Name: l.GetName()})
	}

	m := &model.Issue{
		ID:         issue.GetHTMLURL(),
		Number:     issue.GetNumber(),
		Title:      issue.GetTitle(),
		Body:       issue.GetBody(),
		Repository: repo.String(),
		State:      issue.GetState(),
		Labels:     labels,
	}
	if issue.Milestone != nil {
		m.Milestone = &model.Milestone{Title: issue.Milestone.GetTitle()}
	}
	if issue.Assignee != nil {
		m.Assignee = &model.User{Login: issue.Assignee.GetLogin()}
	}
	if issue.User != nil {
		m.Author = &model.User{Login: issue.User.GetLogin()}
	}
	return m
}
