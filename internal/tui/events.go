package tui

import "time"

// TaskID identifies a task in the TUI progress display.
type TaskID int

const (
	TaskPullRequests TaskID = iota // Reading open pull requests and their threads
	TaskBranches                   // Listing branches and applying the policy
	TaskNotify                     // Formatting and delivering the three batches
)

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

// ProjectEvent starts a new project. Tasks are reset to pending.
type ProjectEvent struct {
	Name  string
	Index int // zero-based
	Total int
}

func (ProjectEvent) isEvent() {}

// TaskEvent represents an update to a task's status.
type TaskEvent struct {
	Task    TaskID
	Status  TaskStatus
	Message string // Optional message (e.g., "2 delivered")
	Count   int    // Count of items found
	Error   error  // Error if status is StatusError
}

func (TaskEvent) isEvent() {}

// RateLimitEvent reports that the API quota is exhausted.
type RateLimitEvent struct {
	Limited bool
	ResetAt time.Time
}

func (RateLimitEvent) isEvent() {}

// DoneEvent signals that all work is complete.
type DoneEvent struct{}

func (DoneEvent) isEvent() {}
