package tui

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTaskStatus(t *testing.T) {
	// Verify statuses are distinct
	statuses := []TaskStatus{StatusPending, StatusRunning, StatusComplete, StatusError, StatusSkipped}
	seen := make(map[TaskStatus]bool)

	for _, status := range statuses {
		if seen[status] {
			t.Errorf("duplicate status: %d", status)
		}
		seen[status] = true
	}
}

func TestNewTask(t *testing.T) {
	task := NewTask("triage")

	if task.Key != "triage" {
		t.Errorf("expected key 'triage', got %q", task.Key)
	}
	if task.Status != StatusPending {
		t.Errorf("expected status %d, got %d", StatusPending, task.Status)
	}
	if task.Done() {
		t.Error("pending task must not be done")
	}
}

func TestEventsImplementEvent(t *testing.T) {
	var _ Event = TaskEvent{}
	var _ Event = RateLimitEvent{}
	var _ Event = DoneEvent{}
}

func TestReporter(t *testing.T) {
	boom := errors.New("boom")
	reset := time.Now().Add(time.Minute)

	tests := []struct {
		name string
		send func(r *Reporter)
		want Event
	}{
		{"waiting", func(r *Reporter) { r.Waiting("urgent", "triage") },
			TaskEvent{Key: "urgent", Status: StatusRunning, Message: "waiting for triage"}},
		{"ranking", func(r *Reporter) { r.Ranking("triage") },
			TaskEvent{Key: "triage", Status: StatusRunning, Message: "ranking"}},
		{"publishing", func(r *Reporter) { r.Publishing("triage", 4) },
			TaskEvent{Key: "triage", Status: StatusRunning, Message: "publishing", Count: 4}},
		{"ranked", func(r *Reporter) { r.Ranked("triage", 4) },
			TaskEvent{Key: "triage", Status: StatusSkipped, Message: "ranked", Count: 4}},
		{"published", func(r *Reporter) { r.Published("triage", "updated", 4) },
			TaskEvent{Key: "triage", Status: StatusComplete, Message: "updated", Count: 4}},
		{"failed", func(r *Reporter) { r.Failed("triage", boom) },
			TaskEvent{Key: "triage", Status: StatusError, Error: boom}},
		{"rate limited", func(r *Reporter) { r.RateLimited(reset) },
			RateLimitEvent{Limited: true, ResetAt: reset}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := make(chan Event, 1)
			tt.send(NewReporter(ch))
			if got := <-ch; got != tt.want {
				t.Errorf("event = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReporterWithoutChannel(t *testing.T) {
	var nilReporter *Reporter
	nilReporter.Ranking("triage")
	NewReporter(nil).Failed("triage", errors.New("boom"))
}

func TestReporterNeverBlocks(t *testing.T) {
	ch := make(chan Event, 1)
	r := NewReporter(ch)
	r.Ranking("a")
	r.Ranking("b")
	if len(ch) != 1 {
		t.Errorf("expected 1 buffered event, got %d", len(ch))
	}
}

func TestModelUpdateTask(t *testing.T) {
	m := NewModel(nil, []string{"a", "b"})

	m = m.updateTask(TaskEvent{Key: "a", Status: StatusRunning, Message: "ranking"})
	m = m.updateTask(TaskEvent{Key: "a", Status: StatusComplete, Message: "updated", Count: 3})

	if got := m.tasks[0]; got.Status != StatusComplete || got.Message != "updated" || got.Count != 3 {
		t.Errorf("task a = %+v", got)
	}
	if m.completion() != 0.5 {
		t.Errorf("completion() = %v, want 0.5", m.completion())
	}

	m = m.updateTask(TaskEvent{Key: "late", Status: StatusError, Error: errors.New("boom")})
	if len(m.tasks) != 3 || m.tasks[2].Key != "late" {
		t.Errorf("unknown keys must add a task, got %+v", m.tasks)
	}
}

func TestModelView(t *testing.T) {
	m := NewModel(nil, []string{"triage", "backend"})
	m = m.updateTask(TaskEvent{Key: "triage", Status: StatusComplete, Message: "created", Count: 4})
	m = m.updateTask(TaskEvent{Key: "backend", Status: StatusError, Error: errors.New("boom")})
	m.rateLimited = true
	m.rateLimitReset = time.Now().Add(time.Minute)

	view := m.View()
	for _, want := range []string{"2/2 entries", "triage", "created", "(4 ranked)", "backend", "boom", "Rate limited"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestAvailableInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if Available() {
		t.Error("TUI must be disabled in CI")
	}
}

func TestStatusIcon(t *testing.T) {
	statuses := []TaskStatus{StatusPending, StatusRunning, StatusComplete, StatusError, StatusSkipped}
	seen := map[string]TaskStatus{}
	for _, status := range statuses {
		icon := StatusIcon(status, ">")
		if icon == "" {
			t.Errorf("StatusIcon returned empty string for status %d", status)
		}
		if prev, ok := seen[icon]; ok {
			t.Errorf("statuses %d and %d share icon %q", prev, status, icon)
		}
		seen[icon] = status
	}
	if !strings.Contains(StatusIcon(StatusRunning, "@"), "@") {
		t.Error("running tasks must show the spinner frame")
	}
}
