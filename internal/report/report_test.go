package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
	"github.com/spiffcs/glance/internal/ghclient"
	"github.com/spiffcs/glance/internal/model"
)

func init() {
	color.NoColor = true
}

func issues(titles ...string) []*model.Issue {
	out := make([]*model.Issue, 0, len(titles))
	for i, title := range titles {
		out = append(out, &model.Issue{
			ID:    fmt.Sprintf("https://github.com/o/r/issues/%d", i+1),
			Title: title,
		})
	}
	return out
}

func TestRender(t *testing.T) {
	tests := []struct {
		name   string
		issues []*model.Issue
		header string
		footer string
		want   string
	}{
		{
			name:   "header and footer",
			issues: issues("Crash", "Leak"),
			header: "  # Triage\n",
			footer: "\n_generated_  ",
			want: "# Triage\n\n" +
				"1. [Crash](https://github.com/o/r/issues/1)\n" +
				"2. [Leak](https://github.com/o/r/issues/2)\n" +
				"\n_generated_\n",
		},
		{
			name:   "no header or footer",
			issues: issues("a", "b", "c"),
			want: "1. [a](https://github.com/o/r/issues/1)\n" +
				"2. [b](https://github.com/o/r/issues/2)\n" +
				"3. [c](https://github.com/o/r/issues/3)\n",
		},
		{
			name:   "blank header is ignored",
			issues: issues("a"),
			header: "   \n ",
			want:   "1. [a](https://github.com/o/r/issues/1)\n",
		},
		{
			name:   "brackets in titles are escaped",
			issues: issues("[WIP] fix"),
			want:   "1. [\\[WIP\\] fix](https://github.com/o/r/issues/1)\n",
		},
		{
			name: "empty ranking",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Render(tt.issues, tt.header, tt.footer)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Render() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderLinksRoundTrip(t *testing.T) {
	content := Render(issues("[WIP] a", "b"), "# Header with [a link](https://example.com)", "")
	want := []string{
		"https://example.com",
		"https://github.com/o/r/issues/1",
		"https://github.com/o/r/issues/2",
	}
	if diff := cmp.Diff(want, Links(content)); diff != "" {
		t.Errorf("Links() mismatch (-want +got):\n%s", diff)
	}
}

func TestLinks(t *testing.T) {
	src := "1. [a](https://x/1)\n2. [b](https://x/2)\n\nSee <https://x/auto>\n"
	want := []string{"https://x/1", "https://x/2", "https://x/auto"}
	if diff := cmp.Diff(want, Links(src)); diff != "" {
		t.Errorf("Links() mismatch (-want +got):\n%s", diff)
	}
	if got := Links(""); len(got) != 0 {
		t.Errorf("Links(\"\") = %v", got)
	}
}

func TestChurn(t *testing.T) {
	prev := "1. [a](https://x/1)\n2. [b](https://x/2)\n"
	next := "1. [b](https://x/2)\n2. [c](https://x/3)\n3. [d](https://x/4)\n"
	entered, left := churn(prev, next)
	if entered != 2 || left != 1 {
		t.Errorf("churn() = %d, %d, want 2, 1", entered, left)
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize(" a \t b\r\n c\u00a0"); got != "abc" {
		t.Errorf("Normalize() = %q", got)
	}
}

// memStore is an in-memory FileStore.
type memStore struct {
	files   map[string]*ghclient.File
	writes  []write
	readErr error
	nextSHA int
}

type write struct {
	path, branch, content, message, sha string
}

func newMemStore() *memStore {
	return &memStore{files: make(map[string]*ghclient.File)}
}

func (m *memStore) ReadFile(_ context.Context, repo model.Repo, path, branch string) (*ghclient.File, error) {
	if m.readErr != nil {
		return nil, m.readErr
	}
	f, ok := m.files[repo.String()+"/"+path]
	if !ok {
		return nil, ghclient.ErrNotFound
	}
	return f, nil
}

func (m *memStore) WriteFile(_ context.Context, repo model.Repo, path, branch, content, message, sha string) error {
	m.writes = append(m.writes, write{path, branch, content, message, sha})
	m.nextSHA++
	m.files[repo.String()+"/"+path] = &ghclient.File{Content: content, SHA: fmt.Sprintf("sha%d", m.nextSHA)}
	return nil
}

var target = Target{Repo: model.Repo{Owner: "o", Name: "reports"}, Path: "triage.md", Branch: "main"}

func TestPublishIdempotent(t *testing.T) {
	store := newMemStore()
	p := NewPublisher(store)
	content := Render(issues("a", "b"), "# Triage", "")

	outcome, err := p.Publish(context.Background(), target, content)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if outcome != OutcomeCreated {
		t.Errorf("first Publish() = %v, want created", outcome)
	}

	outcome, err = p.Publish(context.Background(), target, content)
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if outcome != OutcomeUnchanged {
		t.Errorf("second Publish() = %v, want unchanged", outcome)
	}

	if len(store.writes) != 1 {
		t.Fatalf("expected exactly 1 write, got %d", len(store.writes))
	}
	w := store.writes[0]
	if w.sha != "" || w.message != "Updated by Glance" || w.branch != "main" {
		t.Errorf("unexpected create: %+v", w)
	}
}

func TestPublishUpdate(t *testing.T) {
	store := newMemStore()
	store.files["o/reports/triage.md"] = &ghclient.File{Content: "1. [old](https://x/1)\n", SHA: "abc"}

	outcome, err := NewPublisher(store).Publish(context.Background(), target, "1. [new](https://x/2)\n")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Errorf("Publish() = %v, want updated", outcome)
	}
	if len(store.writes) != 1 || store.writes[0].sha != "abc" {
		t.Errorf("expected update with existing sha, got %+v", store.writes)
	}
}

func TestPublishWhitespaceOnlyChange(t *testing.T) {
	store := newMemStore()
	store.files["o/reports/triage.md"] = &ghclient.File{Content: "1. [a](https://x/1)\n\n\n", SHA: "abc"}

	outcome, err := NewPublisher(store).Publish(context.Background(), target, "1.  [a](https://x/1)\n")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if outcome != OutcomeUnchanged || len(store.writes) != 0 {
		t.Errorf("whitespace-only change must not write: outcome=%v writes=%d", outcome, len(store.writes))
	}
}

func TestPublishReadError(t *testing.T) {
	store := newMemStore()
	store.readErr = errors.New("boom")

	_, err := NewPublisher(store).Publish(context.Background(), target, "x")
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Errorf("Publish() error = %v", err)
	}
	if len(store.writes) != 0 {
		t.Error("no write may happen after a failed read")
	}
}

func TestPublishDryRun(t *testing.T) {
	store := newMemStore()
	store.files["o/reports/triage.md"] = &ghclient.File{Content: "1. [a](https://x/1)\n", SHA: "abc"}

	var buf bytes.Buffer
	p := NewPublisher(store, WithDryRun(&buf))
	if !p.DryRun() {
		t.Error("expected DryRun()")
	}

	outcome, err := p.Publish(context.Background(), target, "1. [b](https://x/2)\n")
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if outcome != OutcomeUpdated {
		t.Errorf("Publish() = %v, want updated", outcome)
	}
	if len(store.writes) != 0 {
		t.Error("dry run must not write")
	}

	out := buf.String()
	for _, want := range []string{"o/reports:triage.md@main (updated)", "- 1. [a](https://x/1)", "+ 1. [b](https://x/2)"} {
		if !strings.Contains(out, want) {
			t.Errorf("dry run output missing %q:\n%s", want, out)
		}
	}
}

func TestDiff(t *testing.T) {
	old := "h\n\n1. a\n2. b\n3. c\n4. d\n5. e\n6. f\n"
	next := "h\n\n1. a\n2. b\n3. c\n4. X\n5. e\n6. f\n"

	want := "  ...\n" +
		"  2. b\n" +
		"  3. c\n" +
		"- 4. d\n" +
		"+ 4. X\n" +
		"  5. e\n" +
		"  6. f\n"
	if diff := cmp.Diff(want, Diff(old, next)); diff != "" {
		t.Errorf("Diff() mismatch (-want +got):\n%s", diff)
	}

	if Diff("same", "same") != "" {
		t.Error("Diff of equal texts must be empty")
	}
}

func TestOutcomeString(t *testing.T) {
	if OutcomeCreated.String() != "created" || OutcomeUpdated.String() != "updated" || OutcomeUnchanged.String() != "unchanged" {
		t.Error("unexpected outcome names")
	}
}
