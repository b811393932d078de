package tui

import "time"

// TaskStatus represents the current status of a task.
type TaskStatus int

const (
	StatusPending TaskStatus = iota
	StatusRunning
	StatusComplete
	StatusError
	StatusSkipped
)

// Event is the interface for all TUI events.
type Event interface {
	isEvent()
}

// TaskEvent updates the task of one configuration entry.
type TaskEvent struct {
	Key     string     // Entry key
	Status  TaskStatus // New status
	Message string     // Optional message (e.g., "ranking", "updated")
	Count   int        // Count of ranked issues
	Error   error      // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

// RateLimitEvent reports that GitHub stopped serving requests.
type RateLimitEvent struct {
	Limited bool
	ResetAt time.Time
}

func (RateLimitEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
