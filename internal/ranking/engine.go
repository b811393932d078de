package ranking

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spiffcs/glance/config"
	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/filter"
	"github.com/spiffcs/glance/internal/ghclient"
	"github.com/spiffcs/glance/internal/log"
	"github.com/spiffcs/glance/internal/model"
	"golang.org/x/sync/errgroup"
)

// Ranking is the result of ranking one entry.
type Ranking struct {
	Entry *config.Entry

	// Set is the full weighted set, shared with inheriting entries.
	Set *WeightedSet

	// Ranked holds the visible records above the publish threshold,
	// in ranking order.
	Ranked []*Record

	// Inherited is true when Set came from another entry.
	Inherited bool

	// Warnings holds weight rules that were skipped.
	Warnings []error
}

// Issues returns the ranked issues in order.
func (r *Ranking) Issues() []*model.Issue {
	out := make([]*model.Issue, 0, len(r.Ranked))
	for _, rec := range r.Ranked {
		out = append(out, rec.Issue)
	}
	return out
}

// Engine computes rankings for configuration entries.
type Engine struct {
	searcher     ghclient.Searcher
	cache        *Cache
	placeholders *strings.Replacer
}

// Option configures an Engine.
type Option func(*Engine)

// WithPlaceholders sets the month placeholder replacer. It defaults to
// one built from the current time.
func WithPlaceholders(r *strings.Replacer) Option {
	return func(e *Engine) {
		e.placeholders = r
	}
}

// NewEngine returns an Engine searching through searcher and sharing
// results through cache.
func NewEngine(searcher ghclient.Searcher, cache *Cache, opts ...Option) *Engine {
	e := &Engine{
		searcher: searcher,
		cache:    cache,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.placeholders == nil {
		e.placeholders = filter.Placeholders(time.Now())
	}
	return e
}

// Cache returns the cache shared by this engine.
func (e *Engine) Cache() *Cache {
	return e.cache
}

// Rank computes the ranking of entry. An inheriting entry waits until its
// parent is cached. Failures are recorded in the cache so that dependants
// fail with ErrParentFailed instead of waiting.
func (e *Engine) Rank(ctx context.Context, entry *config.Entry) (*Ranking, error) {
	r, err := e.rank(ctx, entry)
	if err != nil {
		e.cache.Fail(entry.Key, err)
		return nil, err
	}
	return r, nil
}

func (e *Engine) rank(ctx context.Context, entry *config.Entry) (*Ranking, error) {
	logger := log.ForEntry(entry.Key)
	r := &Ranking{Entry: entry, Inherited: entry.IsInheriting()}

	if entry.IsInheriting() {
		set, err := e.cache.Wait(ctx, entry.InheritFrom)
		if err != nil {
			return nil, err
		}
		logger.Debug("inherited ranking", "from", entry.InheritFrom, "issues", set.Len())
		r.Set = set
	} else {
		set, warnings, err := e.build(ctx, entry, logger)
		if err != nil {
			return nil, err
		}
		r.Set = set
		r.Warnings = warnings
	}

	if err := e.cache.Store(entry.Key, r.Set); err != nil {
		return nil, err
	}

	visible, err := e.visible(ctx, entry, r.Set, logger)
	if err != nil {
		return nil, err
	}

	for _, rec := range r.Set.Ordered() {
		if rec.Weight <= constants.PublishThreshold {
			continue
		}
		if visible != nil && !visible[rec.Issue.ID] {
			continue
		}
		r.Ranked = append(r.Ranked, rec)
	}
	logger.Info("ranked issues", "total", r.Set.Len(), "ranked", len(r.Ranked))
	return r, nil
}

// build fetches the base set of entry and applies its weight rules.
func (e *Engine) build(ctx context.Context, entry *config.Entry, logger log.Entry) (*WeightedSet, []error, error) {
	repos := entry.RepoList()
	base := e.placeholders.Replace(entry.Filter)

	fetched := make([][]*model.Issue, len(repos))
	g, gctx := errgroup.WithContext(ctx)
	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			issues, err := e.searcher.SearchIssues(gctx, repo, base)
			if err != nil {
				return fmt.Errorf("failed to fetch issues from %s: %w", repo, err)
			}
			fetched[i] = issues
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	set := NewWeightedSet(repos)
	for _, issues := range fetched {
		for _, issue := range issues {
			set.Add(issue.Clone())
		}
	}
	logger.Info(fmt.Sprintf("%d results for base filter '%s'", set.Len(), base))

	scope := filter.Scope{Repos: repos, BaseFilter: base, Searcher: e.searcher, Log: logger}
	var warnings []error
	for i, rule := range entry.Weights {
		f := filter.Parse(e.placeholders.Replace(rule.Filter))
		res, err := filter.Evaluate(ctx, f, set.Issues(), scope)
		if err != nil {
			if ctx.Err() != nil {
				return nil, nil, ctx.Err()
			}
			logger.Warn("skipping weight rule", "rule", i, "filter", f.Expr, "error", err)
			warnings = append(warnings, fmt.Errorf("weights[%d] '%s': %w", i, f.Expr, err))
			continue
		}
		applyRule(set, rule, res, logger)
	}
	return set, warnings, nil
}

// applyRule multiplies the weight of every matched issue in set and
// applies the rule's metadata changes.
func applyRule(set *WeightedSet, rule config.WeightRule, res filter.Result, logger log.Entry) {
	for _, matched := range res.Issues {
		rec, ok := set.Get(matched.ID)
		if !ok {
			logger.Debug("ignoring match outside base set", "filter", res.Filter.Expr, "issue", matched.ID)
			continue
		}

		rec.Weight *= rule.Weight
		issue := rec.Issue
		if d, ok := res.Due[issue.ID]; ok {
			issue.Due = &d
		}
		if rule.Assignee == config.AssigneeOwner {
			issue.Assignee = nil
			if issue.Author != nil {
				owner := *issue.Author
				issue.Assignee = &owner
			}
		}
		if rule.Suffix != "" {
			issue.Title += expandSuffix(rule.Suffix, issue.Due)
		}
		logger.Trace("weighted issue", "issue", issue.ID, "filter", res.Filter.Expr, "factor", rule.Weight, "weight", rec.Weight)
	}
}

func expandSuffix(suffix string, due *time.Time) string {
	value := ""
	if due != nil {
		value = due.Format(constants.DueDateLayout)
	}
	return strings.ReplaceAll(suffix, "{{due}}", value)
}

// visible returns the IDs matched by the entry's inherit_filter, or nil
// when every issue is visible.
func (e *Engine) visible(ctx context.Context, entry *config.Entry, set *WeightedSet, logger log.Entry) (map[string]bool, error) {
	if !entry.IsInheriting() || entry.InheritFilter == "" {
		return nil, nil
	}

	repos := entry.RepoList()
	if len(repos) == 0 {
		repos = set.Repos()
	}
	scope := filter.Scope{
		Repos:      repos,
		BaseFilter: e.placeholders.Replace(entry.Filter),
		Searcher:   e.searcher,
		Log:        logger,
	}

	f := filter.Parse(e.placeholders.Replace(entry.InheritFilter))
	res, err := filter.Evaluate(ctx, f, set.Issues(), scope)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate inherit_filter: %w", err)
	}

	visible := make(map[string]bool, len(res.Issues))
	for _, issue := range res.Issues {
		visible[issue.ID] = true
	}
	return visible, nil
}
