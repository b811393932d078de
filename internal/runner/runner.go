// Package runner ranks and publishes configuration entries in parallel.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/spiffcs/glance/config"
	"github.com/spiffcs/glance/internal/constants"
	"github.com/spiffcs/glance/internal/ghclient"
	"github.com/spiffcs/glance/internal/log"
	"github.com/spiffcs/glance/internal/ranking"
	"github.com/spiffcs/glance/internal/report"
	"github.com/spiffcs/glance/internal/tui"
	"golang.org/x/sync/errgroup"
)

// ProgressFunc is called as entries complete.
type ProgressFunc func(completed, total int)

// Result is the outcome of one entry.
type Result struct {
	Key     string
	Ranking *ranking.Ranking

	// Published is true when Publish ran; Outcome is only meaningful then.
	Published bool
	Outcome   report.Outcome

	Err      error
	Duration time.Duration
}

// Failed reports whether the entry failed.
func (r *Result) Failed() bool {
	return r.Err != nil
}

// Runner ranks entries and publishes their reports.
type Runner struct {
	engine     *ranking.Engine
	publisher  *report.Publisher
	workers    int
	publish    map[string]bool
	progress   *tui.Reporter
	rateLimit  *ghclient.RateLimitState
	onProgress ProgressFunc
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many entries are processed at once.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithPublisher publishes each successful ranking. Without a publisher
// the runner only ranks.
func WithPublisher(p *report.Publisher) Option {
	return func(r *Runner) {
		r.publisher = p
	}
}

// WithPublishOnly limits publishing to the given keys. Other entries are
// still ranked when something inherits from them.
func WithPublishOnly(keys []string) Option {
	return func(r *Runner) {
		if len(keys) == 0 {
			return
		}
		r.publish = make(map[string]bool, len(keys))
		for _, k := range keys {
			r.publish[k] = true
		}
	}
}

// WithEvents sends progress events to ch.
func WithEvents(ch chan<- tui.Event) Option {
	return func(r *Runner) {
		r.progress = tui.NewReporter(ch)
	}
}

// WithRateLimitState reports rate limiting observed by the GitHub client.
func WithRateLimitState(s *ghclient.RateLimitState) Option {
	return func(r *Runner) {
		r.rateLimit = s
	}
}

// WithProgress sets a callback invoked as entries complete.
func WithProgress(fn ProgressFunc) Option {
	return func(r *Runner) {
		r.onProgress = fn
	}
}

// New returns a Runner using engine.
func New(engine *ranking.Engine, opts ...Option) *Runner {
	r := &Runner{
		engine:  engine,
		workers: constants.DefaultWorkers,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run processes every entry of cfg. Entries start in declaration order
// and an inheriting entry waits until its parent is cached; since parents
// are always declared first this cannot deadlock. Invalid entries are
// reported failed and fail their dependants, unless a valid entry
// holds the same key.
//
// Results are returned in declaration order of cfg.Entries, followed by
// the invalid entries. The error joins every entry failure.
func (r *Runner) Run(ctx context.Context, cfg *config.Config) ([]*Result, error) {
	total := len(cfg.Entries) + len(cfg.Invalid)
	results := make([]*Result, len(cfg.Entries), total)

	var completed int32
	done := func() {
		if r.onProgress != nil {
			r.onProgress(int(atomic.AddInt32(&completed, 1)), total)
		}
	}

	var failures []*Result
	for _, verr := range cfg.Invalid {
		// A duplicate key must not fail the valid entry declared first.
		if cfg.Entry(verr.Key) == nil {
			r.engine.Cache().Fail(verr.Key, verr)
		}
		r.progress.Failed(verr.Key, verr.Err)
		failures = append(failures, &Result{Key: verr.Key, Err: verr})
		done()
	}

	g := new(errgroup.Group)
	g.SetLimit(r.workers)
	for i, entry := range cfg.Entries {
		i, entry := i, entry
		g.Go(func() error {
			results[i] = r.runEntry(ctx, entry)
			done()
			return nil
		})
	}
	_ = g.Wait()

	results = append(results, failures...)

	var errs []error
	for _, res := range results {
		if res.Failed() {
			errs = append(errs, fmt.Errorf("%s: %w", res.Key, res.Err))
		}
	}
	return results, errors.Join(errs...)
}

func (r *Runner) runEntry(ctx context.Context, entry *config.Entry) *Result {
	start := time.Now()
	logger := log.ForEntry(entry.Key)
	res := &Result{Key: entry.Key}
	defer func() {
		res.Duration = time.Since(start)
	}()

	if entry.IsInheriting() {
		r.progress.Waiting(entry.Key, entry.InheritFrom)
	} else {
		r.progress.Ranking(entry.Key)
	}

	rk, err := r.engine.Rank(ctx, entry)
	if err != nil {
		r.fail(res, err, logger)
		return res
	}
	res.Ranking = rk
	count := len(rk.Ranked)

	if r.publisher == nil || !r.shouldPublish(entry.Key) {
		r.progress.Ranked(entry.Key, count)
		return res
	}

	r.progress.Publishing(entry.Key, count)
	content := report.Render(rk.Issues(), entry.Header, entry.Footer)
	target := report.Target{
		Repo:   entry.OutputRepo(),
		Path:   entry.Output.Path,
		Branch: entry.Output.Branch,
	}

	outcome, err := r.publisher.Publish(ctx, target, content)
	if err != nil {
		r.fail(res, err, logger)
		return res
	}

	res.Published = true
	res.Outcome = outcome
	logger.Info("published report", "target", target.String(), "outcome", outcome.String(), "issues", count)
	r.progress.Published(entry.Key, outcome.String(), count)
	return res
}

func (r *Runner) shouldPublish(key string) bool {
	return r.publish == nil || r.publish[key]
}

func (r *Runner) fail(res *Result, err error, logger log.Entry) {
	res.Err = err
	logger.Debug("entry failed", "error", err)
	r.progress.Failed(res.Key, err)

	if errors.Is(err, ghclient.ErrRateLimited) && r.rateLimit != nil {
		if _, _, resetAt, limited := r.rateLimit.Status(); limited {
			r.progress.RateLimited(resetAt)
		}
	}
}
