package report

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/ghclient"
	"github.com/spiffcs/glance/internal/log"
	"github.com/spiffcs/glance/internal/model"
)

// Outcome describes what Publish did with a report.
type Outcome int

const (
	OutcomeUnchanged Outcome = iota
	OutcomeCreated
	OutcomeUpdated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeCreated:
		return "created"
	case OutcomeUpdated:
		return "updated"
	default:
		return "unchanged"
	}
}

// Target is the file a report is published to.
type Target struct {
	Repo   model.Repo
	Path   string
	Branch string
}

func (t Target) String() string {
	if t.Branch == "" {
		return fmt.Sprintf("%s:%s", t.Repo, t.Path)
	}
	return fmt.Sprintf("%s:%s@%s", t.Repo, t.Path, t.Branch)
}

// Publisher writes reports through a FileStore.
type Publisher struct {
	store   ghclient.FileStore
	message string
	dryRun  io.Writer
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithDryRun makes Publish print a diff to w instead of writing.
func WithDryRun(w io.Writer) PublisherOption {
	return func(p *Publisher) {
		p.dryRun = w
	}
}

// WithCommitMessage overrides the commit message.
func WithCommitMessage(msg string) PublisherOption {
	return func(p *Publisher) {
		p.message = msg
	}
}

// NewPublisher returns a Publisher writing through store.
func NewPublisher(store ghclient.FileStore, opts ...PublisherOption) *Publisher {
	p := &Publisher{
		store:   store,
		message: constants.CommitMessage,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// DryRun reports whether writes are suppressed.
func (p *Publisher) DryRun() bool {
	return p.dryRun != nil
}

// Publish creates the target file when it is absent and updates it when
// its content differs from content, ignoring whitespace. At most one
// write is made.
func (p *Publisher) Publish(ctx context.Context, target Target, content string) (Outcome, error) {
	var previous string
	existing, err := p.store.ReadFile(ctx, target.Repo, target.Path, target.Branch)
	switch {
	case errors.Is(err, ghclient.ErrNotFound):
		existing = nil
	case err != nil:
		return OutcomeUnchanged, fmt.Errorf("failed to read %s: %w", target, err)
	default:
		previous = existing.Content
		if Normalize(previous) == Normalize(content) {
			log.Info("report unchanged", "target", target.String())
			return OutcomeUnchanged, nil
		}
	}

	entered, left := churn(previous, content)
	log.Info("report changed", "target", target.String(), "entered", entered, "left", left)

	outcome := OutcomeCreated
	sha := ""
	if existing != nil {
		outcome = OutcomeUpdated
		sha = existing.SHA
	}

	if p.dryRun != nil {
		fmt.Fprintf(p.dryRun, "--- %s (%s)\n%s", target, outcome, Diff(previous, content))
		return outcome, nil
	}

	if err := p.store.WriteFile(ctx, target.Repo, target.Path, target.Branch, content, p.message, sha); err != nil {
		return OutcomeUnchanged, fmt.Errorf("failed to write %s: %w", target, err)
	}
	return outcome, nil
}

// Normalize removes all whitespace from s.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}
