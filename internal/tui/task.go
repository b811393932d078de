package tui

import (
	"fmt"
)

// Task is the progress line of one configuration entry.
type Task struct {
	Key     string
	Status  TaskStatus
	Message string
	Count   int
	Error   error
}

// NewTask creates a pending task for the entry key.
func NewTask(key string) Task {
	return Task{
		Key:    key,
		Status: StatusPending,
	}
}

// Done reports whether the task reached a final status.
func (t Task) Done() bool {
	return t.Status == StatusComplete || t.Status == StatusError || t.Status == StatusSkipped
}

// View renders the task as a string.
func (t Task) View(spinnerFrame string) string {
	icon := StatusIcon(t.Status, spinnerFrame)

	var name string
	if t.Status == StatusPending {
		name = taskDimStyle.Render(t.Key)
	} else {
		name = taskNameStyle.Render(t.Key)
	}

	line := fmt.Sprintf("  %s %s", icon, name)

	if t.Message != "" {
		line += " " + messageStyle.Render(t.Message)
	}

	// Add count if available
	if t.Count > 0 {
		line += " " + messageStyle.Render(fmt.Sprintf("(%d ranked)", t.Count))
	}

	// Add error if present
	if t.Error != nil {
		line += " " + errorStyle.Render(t.Error.Error())
	}

	return line
}
