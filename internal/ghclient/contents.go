package ghclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	gh "github.com/google/go-github/v57/github"
	"github.com/spiffcs/glance/internal/model"
)

// ReadFile fetches a file from a branch (the default branch when empty).
func (c *Client) ReadFile(ctx context.Context, repo model.Repo, path, branch string) (*File, error) {
	var content *gh.RepositoryContent
	err := c.retry.read(ctx, "read file", func(ctx context.Context) error {
		var (
			resp *gh.Response
			err  error
		)
		content, _, resp, err = c.client.Repositories.GetContents(ctx, repo.Owner, repo.Name, path,
			&gh.RepositoryContentGetOptions{Ref: branch})
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return ErrNotFound
		}
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s:%s: %w", repo, path, err)
	}
	if content == nil {
		return nil, fmt.Errorf("failed to read %s:%s: path is a directory", repo, path)
	}

	text, err := content.GetContent()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s:%s: %w", repo, path, err)
	}

	return &File{Content: text, SHA: content.GetSHA()}, nil
}

// WriteFile creates or updates a file. It is never retried.
func (c *Client) WriteFile(ctx context.Context, repo model.Repo, path, branch, content, message, sha string) error {
	opts := &gh.RepositoryContentFileOptions{
		Message: gh.String(message),
		Content: []byte(content),
	}
	if branch != "" {
		opts.Branch = gh.String(branch)
	}

	err := c.retry.write(ctx, func(ctx context.Context) error {
		var err error
		if sha == "" {
			_, _, err = c.client.Repositories.CreateFile(ctx, repo.Owner, repo.Name, path, opts)
		} else {
			opts.SHA = gh.String(sha)
			_, _, err = c.client.Repositories.UpdateFile(ctx, repo.Owner, repo.Name, path, opts)
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to write %s:%s: %w", repo, path, err)
	}
	return nil
}
