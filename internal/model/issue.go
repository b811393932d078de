// Package model contains domain types for glance.
// These types are independent of any external GitHub library.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Issue is one tracked work item returned by an issue search.
type Issue struct {
	// ID is the canonical HTML URL of the issue. It is unique across
	// repositories and used as the primary key everywhere.
	ID         string     `json:"id"`
	Number     int        `json:"number"`
	Title      string     `json:"title"`
	Body       string     `json:"body,omitempty"`
	Repository string     `json:"repository"`
	State      string     `json:"state,omitempty"`
	Labels     []Label    `json:"labels,omitempty"`
	Milestone  *Milestone `json:"milestone,omitempty"`
	Assignee   *User      `json:"assignee,omitempty"`
	Author     *User      `json:"author,omitempty"`

	// Due is derived from a "due:" line in the body when a due filter
	// matched the issue. It is not a GitHub field.
	Due *time.Time `json:"due,omitempty"`
}

// Label is an issue label.
type Label struct {
	Name string `json:"name"`
}

// Milestone is an issue milestone.
type Milestone struct {
	Title string `json:"title"`
}

// User is a GitHub account.
type User struct {
	Login string `json:"login"`
}

// URL returns the link used in rendered reports.
func (i *Issue) URL() string {
	return i.ID
}

// HasLabel reports whether the issue carries a label named name,
// compared case-insensitively.
func (i *Issue) HasLabel(name string) bool {
	for _, l := range i.Labels {
		if strings.EqualFold(l.Name, name) {
			return true
		}
	}
	return false
}

// MilestoneTitle returns the milestone title or "" when there is none.
func (i *Issue) MilestoneTitle() string {
	if i.Milestone == nil {
		return ""
	}
	return i.Milestone.Title
}

// AssigneeLogin returns the assignee login or "" when unassigned.
func (i *Issue) AssigneeLogin() string {
	if i.Assignee == nil {
		return ""
	}
	return i.Assignee.Login
}

// AuthorLogin returns the author login or "" when unknown.
func (i *Issue) AuthorLogin() string {
	if i.Author == nil {
		return ""
	}
	return i.Author.Login
}

// Clone returns a deep copy of the issue.
func (i *Issue) Clone() *Issue {
	c := *i
	if i.Labels != nil {
		c.Labels = append([]Label(nil), i.Labels...)
	}
	if i.Milestone != nil {
		m := *i.Milestone
		c.Milestone = &m
	}
	if i.Assignee != nil {
		a := *i.Assignee
		c.Assignee = &a
	}
	if i.Author != nil {
		a := *i.Author
		c.Author = &a
	}
	if i.Due != nil {
		d := *i.Due
		c.Due = &d
	}
	return &c
}

// Repo identifies a repository as owner/name.
type Repo struct {
	Owner string
	Name  string
}

// ParseRepo splits an "owner/repo" identifier.
func ParseRepo(s string) (Repo, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("invalid repository %q: expected owner/repo", s)
	}
	return Repo{Owner: owner, Name: name}, nil
}

// String returns the owner/name form.
func (r Repo) String() string {
	return r.Owner + "/" + r.Name
}
