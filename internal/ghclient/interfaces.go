// Package ghclient provides the GitHub collaborators used by glance:
// issue search and repository file access.
package ghclient

import (
	"context"
	"errors"

	"github.com/spiffcs/glance/internal/model"
)

// ErrNotFound is returned by ReadFile when the file does not exist.
var ErrNotFound = errors.New("not found")

// Searcher runs issue searches scoped to one repository.
type Searcher interface {
	// SearchIssues returns every issue of repo matching query. Pagination
	// is handled by the implementation.
	SearchIssues(ctx context.Context, repo model.Repo, query string) ([]*model.Issue, error)
}

// File is the content and revision of a repository file.
type File struct {
	Content string
	SHA     string
}

// FileStore reads and writes text files in a repository.
type FileStore interface {
	// ReadFile returns ErrNotFound when the file is absent.
	ReadFile(ctx context.Context, repo model.Repo, path, branch string) (*File, error)

	// WriteFile creates the file when sha is empty and updates it otherwise.
	WriteFile(ctx context.Context, repo model.Repo, path, branch, content, message, sha string) error
}

// Ensure Client implements both collaborator interfaces.
var (
	_ Searcher  = (*Client)(nil)
	_ FileStore = (*Client)(nil)
)
