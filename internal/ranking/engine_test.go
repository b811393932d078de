package ranking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/spiffcs/glance/config"
	"github.com/spiffcs/glance/internal/model"
)

// fakeSearcher answers searches from a table keyed by "repo query".
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]*model.Issue
	errs    map[string]error
	calls   []string
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		results: make(map[string][]*model.Issue),
		errs:    make(map[string]error),
	}
}

func (f *fakeSearcher) on(repo, query string, issues ...*model.Issue) {
	f.results[repo+" "+query] = issues
}

func (f *fakeSearcher) fail(repo, query string, err error) {
	f.errs[repo+" "+query] = err
}

func (f *fakeSearcher) SearchIssues(_ context.Context, repo model.Repo, query string) ([]*model.Issue, error) {
	key := repo.String() + " " + query
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, key)
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.results[key], nil
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func makeIssue(repo string, n int, title string, labels ...string) *model.Issue {
	i := &model.Issue{
		ID:         fmt.Sprintf("https://github.com/%s/issues/%d", repo, n),
		Number:     n,
		Title:      title,
		Repository: repo,
	}
	for _, l := range labels {
		i.Labels = append(i.Labels, model.Label{Name: l})
	}
	return i
}

func entry(key string, rules ...config.WeightRule) *config.Entry {
	return &config.Entry{
		Key:     key,
		Repos:   []string{"o/r"},
		Filter:  "is:open",
		Weights: rules,
		Output:  config.Output{Repo: "o/reports", Path: key + ".md"},
	}
}

func rule(f string, w float64) config.WeightRule {
	return config.WeightRule{Filter: f, Weight: w}
}

type ranked struct {
	Title  string
	Weight float64
}

func summarize(r *Ranking) []ranked {
	out := make([]ranked, 0, len(r.Ranked))
	for _, rec := range r.Ranked {
		out = append(out, ranked{Title: rec.Issue.Title, Weight: rec.Weight})
	}
	return out
}

func TestRankEndToEnd(t *testing.T) {
	s := newFakeSearcher()
	s.on("o/r", "is:open",
		makeIssue("o/r", 1, "Crash on start", "bug"),
		makeIssue("o/r", 2, "Add dark mode", "feature"),
		makeIssue("o/r", 3, "Update docs"),
	)

	e := NewEngine(s, NewCache())
	r, err := e.Rank(context.Background(), entry("triage", rule("label:bug", 2)))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	want := []ranked{{Title: "Crash on start", Weight: 2.0}}
	if diff := cmp.Diff(want, summarize(r)); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
	if r.Set.Len() != 3 {
		t.Errorf("set has %d issues, want 3", r.Set.Len())
	}
	for _, rec := range r.Set.Ordered() {
		if rec.Issue.Number != 1 && rec.Weight != 1.0 {
			t.Errorf("unmatched issue %d has weight %v, want 1.0", rec.Issue.Number, rec.Weight)
		}
	}
}

func TestRankProductOfWeights(t *testing.T) {
	s := newFakeSearcher()
	s.on("o/r", "is:open",
		makeIssue("o/r", 1, "a", "bug", "p1", "stale"),
		makeIssue("o/r", 2, "b", "bug"),
		makeIssue("o/r", 3, "c", "p1", "wontfix"),
		makeIssue("o/r", 4, "d"),
	)

	e := NewEngine(s, NewCache())
	r, err := e.Rank(context.Background(), entry("e",
		rule("label:bug", 2),
		rule("label:p1", 3),
		rule("label:stale", 0.5),
		rule("label:wontfix", 0),
	))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	want := map[int]float64{1: 3.0, 2: 2.0, 3: 0, 4: 1.0}
	for _, rec := range r.Set.Ordered() {
		if got := rec.Weight; got != want[rec.Issue.Number] {
			t.Errorf("issue %d weight = %v, want %v", rec.Issue.Number, got, want[rec.Issue.Number])
		}
	}

	wantRanked := []ranked{{"a", 3.0}, {"b", 2.0}}
	if diff := cmp.Diff(wantRanked, summarize(r)); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestRankThresholdAndRounding(t *testing.T) {
	s := newFakeSearcher()
	s.on("o/r", "is:open",
		makeIssue("o/r", 1, "exactly one", "one"),
		makeIssue("o/r", 2, "rounds down to one", "down"),
		makeIssue("o/r", 3, "rounds up", "up"),
		makeIssue("o/r", 4, "demoted", "one", "half"),
	)

	e := NewEngine(s, NewCache())
	r, err := e.Rank(context.Background(), entry("e",
		rule("label:one", 1),
		rule("label:down", 1.04),
		rule("label:up", 1.06),
		rule("label:half", 0.5),
	))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	want := []ranked{{"rounds up", 1.1}}
	if diff := cmp.Diff(want, summarize(r)); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
	for _, rec := range r.Ranked {
		if rec.Weight <= 1.0 {
			t.Errorf("issue %q at weight %v must not be ranked", rec.Issue.Title, rec.Weight)
		}
	}
}

func TestRankOrdering(t *testing.T) {
	issues := []*model.Issue{
		makeIssue("o/r", 1, "beta", "x"),
		makeIssue("o/r", 2, "Alpha", "x"),
		makeIssue("o/r", 3, "gamma", "x", "y"),
		makeIssue("o/r", 4, "alpha", "x"),
		makeIssue("o/r", 5, "delta", "x", "z"),
	}
	rules := []config.WeightRule{rule("label:x", 2), rule("label:y", 3), rule("label:z", 1.5)}

	var first []string
	for run := 0; run < 5; run++ {
		// Rotate the fetch order on every run.
		rotated := append(append([]*model.Issue{}, issues[run:]...), issues[:run]...)
		s := newFakeSearcher()
		s.on("o/r", "is:open", rotated...)

		r, err := NewEngine(s, NewCache()).Rank(context.Background(), entry("e", rules...))
		if err != nil {
			t.Fatalf("Rank() error = %v", err)
		}

		var got []string
		for _, rec := range r.Ranked {
			got = append(got, fmt.Sprintf("%s#%d", rec.Issue.Title, rec.Issue.Number))
		}

		if run == 0 {
			want := []string{"gamma#3", "delta#5", "Alpha#2", "alpha#4", "beta#1"}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Fatalf("order mismatch (-want +got):\n%s", diff)
			}
			first = got
			continue
		}
		if diff := cmp.Diff(first, got); diff != "" {
			t.Errorf("run %d not deterministic (-first +got):\n%s", run, diff)
		}
	}
}

func TestRankMetadataRules(t *testing.T) {
	withDue := makeIssue("o/r", 1, "Ship it", "release")
	withDue.Body = "Plan\nDue: 2024-02-15\n"
	withDue.Author = &model.User{Login: "alice"}

	noDue := makeIssue("o/r", 2, "Someday", "release")
	noDue.Author = &model.User{Login: "bob"}
	noDue.Assignee = &model.User{Login: "carol"}

	s := newFakeSearcher()
	s.on("o/r", "is:open", withDue, noDue)

	e := NewEngine(s, NewCache())
	r, err := e.Rank(context.Background(), entry("e",
		config.WeightRule{Filter: `due:"2024-01-01 .. 2024-03-31"`, Weight: 2},
		config.WeightRule{Filter: "label:release", Weight: 1.5, Assignee: config.AssigneeOwner, Suffix: " [{{due}}]"},
	))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	got := map[int]*model.Issue{}
	for _, rec := range r.Set.Ordered() {
		got[rec.Issue.Number] = rec.Issue
	}

	if got[1].Title != "Ship it [2024-02-15]" {
		t.Errorf("title = %q", got[1].Title)
	}
	if got[1].Due == nil || got[1].Due.Format("2006-01-02") != "2024-02-15" {
		t.Errorf("due = %v", got[1].Due)
	}
	if got[1].AssigneeLogin() != "alice" {
		t.Errorf("assignee = %q, want alice", got[1].AssigneeLogin())
	}
	if got[2].Title != "Someday []" {
		t.Errorf("title = %q", got[2].Title)
	}
	if got[2].AssigneeLogin() != "bob" {
		t.Errorf("assignee = %q, want bob", got[2].AssigneeLogin())
	}

	// Fetched issues are cloned; the collaborator's values are untouched.
	if withDue.Title != "Ship it" || withDue.AssigneeLogin() != "" || withDue.Due != nil {
		t.Errorf("source issue was mutated: %+v", withDue)
	}
}

func TestRankRemoteRule(t *testing.T) {
	a := makeIssue("o/r", 1, "a")
	b := makeIssue("o/r", 2, "b")
	outside := makeIssue("o/r", 99, "closed elsewhere")

	s := newFakeSearcher()
	s.on("o/r", "is:open", a, b)
	s.on("o/r", "is:open comments:>10", b, outside)

	r, err := NewEngine(s, NewCache()).Rank(context.Background(), entry("e", rule("comments:>10", 4)))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	want := []ranked{{"b", 4.0}}
	if diff := cmp.Diff(want, summarize(r)); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
	if _, ok := r.Set.Get(outside.ID); ok {
		t.Error("remote match outside the base set must not be added")
	}
}

func TestRankSkipsFailingRule(t *testing.T) {
	s := newFakeSearcher()
	s.on("o/r", "is:open", makeIssue("o/r", 1, "a", "bug"))
	s.fail("o/r", "is:open sort:bogus", errors.New("validation failed"))

	r, err := NewEngine(s, NewCache()).Rank(context.Background(), entry("e",
		rule("sort:bogus", 10),
		rule("label:bug", 2),
	))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0].Error(), "sort:bogus") {
		t.Errorf("warnings = %v", r.Warnings)
	}
	want := []ranked{{"a", 2.0}}
	if diff := cmp.Diff(want, summarize(r)); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestRankMultipleRepos(t *testing.T) {
	shared := makeIssue("o/a", 1, "shared", "bug")
	s := newFakeSearcher()
	s.on("o/a", "is:open", shared, makeIssue("o/a", 2, "first", "bug"))
	s.on("o/b", "is:open", shared, makeIssue("o/b", 3, "second", "bug"))

	en := entry("e", rule("label:bug", 2))
	en.Repos = []string{"o/a", "o/b"}

	r, err := NewEngine(s, NewCache()).Rank(context.Background(), en)
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	var got []string
	for _, i := range r.Set.Issues() {
		got = append(got, i.Title)
	}
	if diff := cmp.Diff([]string{"shared", "first", "second"}, got); diff != "" {
		t.Errorf("fetch order mismatch (-want +got):\n%s", diff)
	}
	if len(r.Set.Repos()) != 2 {
		t.Errorf("repos = %v", r.Set.Repos())
	}
}

func TestRankPlaceholders(t *testing.T) {
	next := makeIssue("o/r", 1, "next month")
	next.Milestone = &model.Milestone{Title: "2024-04"}
	s := newFakeSearcher()
	s.on("o/r", "is:open", next, makeIssue("o/r", 2, "other"))

	e := NewEngine(s, NewCache(), WithPlaceholders(strings.NewReplacer("{{month_1}}", "04")))
	r, err := e.Rank(context.Background(), entry("e", rule("milestone:2024-{{month_1}}", 2)))
	if err != nil {
		t.Fatalf("Rank() error = %v", err)
	}

	want := []ranked{{"next month", 2.0}}
	if diff := cmp.Diff(want, summarize(r)); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestRankBaseFetchFailure(t *testing.T) {
	boom := errors.New("boom")
	s := newFakeSearcher()
	s.fail("o/r", "is:open", boom)

	cache := NewCache()
	e := NewEngine(s, cache)
	_, err := e.Rank(context.Background(), entry("parent", rule("label:bug", 2)))
	if !errors.Is(err, boom) {
		t.Fatalf("Rank() error = %v, want boom", err)
	}

	child := entry("child")
	child.InheritFrom = "parent"
	_, err = e.Rank(context.Background(), child)
	if !errors.Is(err, ErrParentFailed) {
		t.Fatalf("child error = %v, want ErrParentFailed", err)
	}

	grandchild := entry("grandchild")
	grandchild.InheritFrom = "child"
	_, err = e.Rank(context.Background(), grandchild)
	if !errors.Is(err, ErrParentFailed) {
		t.Errorf("grandchild error = %v, want ErrParentFailed", err)
	}
}

func TestRankInheritance(t *testing.T) {
	assigned := makeIssue("o/r", 1, "assigned", "bug")
	assigned.Assignee = &model.User{Login: "alice"}
	free := makeIssue("o/r", 2, "free", "bug")
	owned := makeIssue("o/r", 3, "owned", "bug")
	owned.Author = &model.User{Login: "bob"}

	s := newFakeSearcher()
	s.on("o/r", "is:open", assigned, free, owned)

	cache := NewCache()
	e := NewEngine(s, cache)

	parent, err := e.Rank(context.Background(), entry("parent",
		rule("label:bug", 2),
		config.WeightRule{Filter: "label:bug", Weight: 1, Suffix: "!"},
	))
	if err != nil {
		t.Fatalf("parent Rank() error = %v", err)
	}
	calls := s.callCount()

	child := entry("child")
	child.Repos = nil
	child.InheritFrom = "parent"
	child.InheritFilter = "no:assignee"

	r, err := e.Rank(context.Background(), child)
	if err != nil {
		t.Fatalf("child Rank() error = %v", err)
	}

	if r.Set != parent.Set {
		t.Error("inheriting entry must share the parent's set")
	}
	if !r.Inherited {
		t.Error("expected Inherited")
	}
	if s.callCount() != calls {
		t.Errorf("inheriting entry issued %d searches", s.callCount()-calls)
	}

	want := []ranked{{"free!", 2.0}, {"owned!", 2.0}}
	if diff := cmp.Diff(want, summarize(r)); diff != "" {
		t.Errorf("visible ranking mismatch (-want +got):\n%s", diff)
	}
	if len(parent.Ranked) != 3 {
		t.Errorf("parent ranking changed: %v", summarize(parent))
	}

	cached, ok := cache.Get("child")
	if !ok || cached != parent.Set {
		t.Error("inheriting entry must also be cached")
	}
}

func TestRankInheritFilterRemoteScope(t *testing.T) {
	s := newFakeSearcher()
	a := makeIssue("o/r", 1, "a", "bug")
	b := makeIssue("o/r", 2, "b", "bug")
	s.on("o/r", "is:open", a, b)
	s.on("o/r", "is:open involves:alice", b)

	e := NewEngine(s, NewCache())
	if _, err := e.Rank(context.Background(), entry("parent", rule("label:bug", 2))); err != nil {
		t.Fatalf("parent Rank() error = %v", err)
	}

	child := entry("child")
	child.Repos = nil
	child.InheritFrom = "parent"
	child.InheritFilter = "involves:alice"

	r, err := e.Rank(context.Background(), child)
	if err != nil {
		t.Fatalf("child Rank() error = %v", err)
	}
	want := []ranked{{"b", 2.0}}
	if diff := cmp.Diff(want, summarize(r)); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestRankWaitsForParent(t *testing.T) {
	s := newFakeSearcher()
	s.on("o/r", "is:open", makeIssue("o/r", 1, "a", "bug"))

	e := NewEngine(s, NewCache())
	child := entry("child")
	child.InheritFrom = "parent"

	done := make(chan *Ranking)
	go func() {
		r, err := e.Rank(context.Background(), child)
		if err != nil {
			t.Errorf("child Rank() error = %v", err)
		}
		done <- r
	}()

	select {
	case <-done:
		t.Fatal("child finished before its parent was cached")
	case <-time.After(20 * time.Millisecond):
	}

	if _, err := e.Rank(context.Background(), entry("parent", rule("label:bug", 2))); err != nil {
		t.Fatalf("parent Rank() error = %v", err)
	}

	select {
	case r := <-done:
		if r == nil || len(r.Ranked) != 1 {
			t.Errorf("unexpected child ranking: %+v", r)
		}
	case <-time.After(time.Second):
		t.Fatal("child never finished")
	}
}
