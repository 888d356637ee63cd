package tui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/spiffcs/nudge/internal/nudge"
)

// Run starts the TUI and blocks until it completes.
func Run(events <-chan Event, opts ...ModelOption) error {
	model := NewModel(events, opts...)
	// Don't use alt screen - render inline
	p := tea.NewProgram(model)
	_, err := p.Run()
	return err
}

// ShouldUseTUI returns true if the TUI should be used based on environment.
func ShouldUseTUI() bool {
	// Check if stdout is a TTY
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return false
	}

	// Check for CI environment variables
	ciVars := []string{
		"CI",
		"TF_BUILD",
		"GITHUB_ACTIONS",
		"JENKINS_URL",
		"TRAVIS",
		"CIRCLECI",
		"GITLAB_CI",
		"BUILDKITE",
	}

	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			return false
		}
	}

	return true
}

// SendEvent sends an event to the channel in a non-blocking manner.
func SendEvent(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	select {
	case ch <- e:
	default:
		// Non-blocking send - drop event if channel is full
	}
}

// SendTaskEvent is a convenience function for sending task events.
func SendTaskEvent(ch chan<- Event, task TaskID, status TaskStatus, opts ...TaskEventOption) {
	e := TaskEvent{
		Task:   task,
		Status: status,
	}
	for _, opt := range opts {
		opt(&e)
	}
	SendEvent(ch, e)
}

// TaskEventOption is a functional option for TaskEvent.
type TaskEventOption func(*TaskEvent)

// WithMessage sets the message on a TaskEvent.
func WithMessage(msg string) TaskEventOption {
	return func(e *TaskEvent) {
		e.Message = msg
	}
}

// WithCount sets the count on a TaskEvent.
func WithCount(count int) TaskEventOption {
	return func(e *TaskEvent) {
		e.Count = count
	}
}

// WithError sets the error on a TaskEvent.
func WithError(err error) TaskEventOption {
	return func(e *TaskEvent) {
		e.Error = err
	}
}

var stepTasks = map[nudge.Step]TaskID{
	nudge.StepPullRequests: TaskPullRequests,
	nudge.StepBranches:     TaskBranches,
	nudge.StepNotify:       TaskNotify,
}

// ProgressHandler translates runner progress into events on ch.
func ProgressHandler(ch chan<- Event) func(nudge.Progress) {
	return func(p nudge.Progress) {
		task := stepTasks[p.Step]

		if !p.Done {
			if p.Step == nudge.StepPullRequests {
				SendEvent(ch, ProjectEvent{Name: p.Project, Index: p.Index, Total: p.Total})
			}
			SendTaskEvent(ch, task, StatusRunning)
			return
		}

		if p.Err != nil {
			SendTaskEvent(ch, task, StatusError, WithError(p.Err))
			for t := task + 1; t <= TaskNotify; t++ {
				SendTaskEvent(ch, t, StatusSkipped)
			}
			return
		}

		opts := []TaskEventOption{WithCount(p.Count)}
		if p.Step == nudge.StepNotify {
			opts = append(opts, WithMessage(fmt.Sprintf("%d delivered", p.Count)))
		}
		SendTaskEvent(ch, task, StatusComplete, opts...)
	}
}
