package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Model is the Bubble Tea model for the run progress display.
type Model struct {
	tasks          []Task
	spinner        spinner.Model
	progress       progress.Model
	events         <-chan Event
	done           bool
	windowWidth    int
	windowHeight   int
	rateLimited    bool
	rateLimitReset time.Time
}

// doneMsg signals that all events have been processed.
type doneMsg struct{}

// NewModel creates a model showing one task per entry key.
func NewModel(events <-chan Event, keys []string) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	p := progress.New(
		progress.WithScaledGradient("#60a5fa", "#1e3a8a"),
		progress.WithWidth(25),
		progress.WithoutPercentage(),
	)

	tasks := make([]Task, 0, len(keys))
	for _, key := range keys {
		tasks = append(tasks, NewTask(key))
	}

	return Model{
		tasks:    tasks,
		spinner:  s,
		progress: p,
		events:   events,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		waitForEvent(m.events),
	)
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.windowWidth = msg.Width
		m.windowHeight = msg.Height
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progress.FrameMsg:
		progressModel, cmd := m.progress.Update(msg)
		m.progress = progressModel.(progress.Model)
		return m, cmd

	case TaskEvent:
		m = m.updateTask(msg)
		return m, tea.Batch(m.progress.SetPercent(m.completion()), waitForEvent(m.events))

	case RateLimitEvent:
		m.rateLimited = msg.Limited
		m.rateLimitReset = msg.ResetAt
		return m, waitForEvent(m.events)

	case DoneEvent:
		m.done = true
		return m, tea.Quit

	case doneMsg:
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// updateTask applies a TaskEvent. Events for unknown keys add a task.
func (m Model) updateTask(e TaskEvent) Model {
	tasks := make([]Task, len(m.tasks))
	copy(tasks, m.tasks)
	m.tasks = tasks

	i := m.taskIndex(e.Key)
	if i < 0 {
		m.tasks = append(m.tasks, NewTask(e.Key))
		i = len(m.tasks) - 1
	}

	t := &m.tasks[i]
	t.Status = e.Status
	if e.Message != "" {
		t.Message = e.Message
	}
	if e.Count > 0 {
		t.Count = e.Count
	}
	if e.Error != nil {
		t.Error = e.Error
	}
	return m
}

func (m Model) taskIndex(key string) int {
	for i := range m.tasks {
		if m.tasks[i].Key == key {
			return i
		}
	}
	return -1
}

// completion returns the share of tasks that finished.
func (m Model) completion() float64 {
	if len(m.tasks) == 0 {
		return 0
	}
	done := 0
	for _, t := range m.tasks {
		if t.Done() {
			done++
		}
	}
	return float64(done) / float64(len(m.tasks))
}

// View renders the model.
func (m Model) View() string {
	done := 0
	for _, t := range m.tasks {
		if t.Done() {
			done++
		}
	}

	s := fmt.Sprintf("  %s %s\n\n",
		m.progress.View(),
		messageStyle.Render(fmt.Sprintf("%d/%d entries", done, len(m.tasks))))

	for _, task := range m.tasks {
		s += task.View(m.spinner.View()) + "\n"
	}

	// Show rate limit warning if applicable
	if m.rateLimited {
		duration := time.Until(m.rateLimitReset).Round(time.Second)
		if duration > 0 {
			s += warnStyle.Render(fmt.Sprintf("\n  Rate limited by GitHub (resets in %s)\n", duration))
		}
	}

	// Only show cancel hint while running
	if !m.done {
		s += footerStyle.Render("\n  Press Ctrl+C to cancel")
	}
	s += "\n"

	return s
}

// waitForEvent creates a command that waits for the next event.
func waitForEvent(events <-chan Event) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return doneMsg{}
		}
		return event
	}
}
