package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/spiffcs/nudge/internal/format"
)

// Model is the Bubble Tea model for the TUI progress display.
type Model struct {
	tasks          []Task
	spinner        spinner.Model
	progress       progress.Model
	events         <-chan Event
	done           bool
	project        string
	index          int
	total          int
	finished       []string
	windowWidth    int
	windowHeight   int
	rateLimited    bool
	rateLimitReset time.Time
}

// doneMsg signals that all events have been processed.
type doneMsg struct{}

// ModelOption is a functional option for configuring a Model.
type ModelOption func(*Model)

// WithTasks sets the tasks to display for each project.
func WithTasks(tasks []Task) ModelOption {
	return func(m *Model) {
		m.tasks = tasks
	}
}

// DefaultTasks returns the steps run for every project.
func DefaultTasks() []Task {
	return []Task{
		NewTask(TaskPullRequests, "Reading pull requests"),
		NewTask(TaskBranches, "Checking branches"),
		NewTask(TaskNotify, "Sending notifications"),
	}
}

// NewModel creates a new TUI model.
func NewModel(events <-chan Event, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	p := progress.New(
		progress.WithScaledGradient("#60a5fa", "#1e3a8a"),
		progress.WithWidth(25),
		progress.WithoutPercentage(),
	)

	m := Model{
		tasks:    DefaultTasks(),
		spinner:  s,
		progress: p,
		events:   events,
	}

	for _, opt := range opts {
		opt(&m)
	}

	return m
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

	case ProjectEvent:
		m = m.finishProject()
		m.project = msg.Name
		m.index = msg.Index
		m.total = msg.Total
		for i := range m.tasks {
			m.tasks[i] = m.tasks[i].reset()
		}
		var cmd tea.Cmd
		if msg.Total > 0 {
			cmd = m.progress.SetPercent(float64(msg.Index) / float64(msg.Total))
		}
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case TaskEvent:
		m = m.updateTask(msg)
		return m, waitForEvent(m.events)

	case RateLimitEvent:
		m.rateLimited = msg.Limited
		m.rateLimitReset = msg.ResetAt
		return m, waitForEvent(m.events)

	case DoneEvent, doneMsg:
		m = m.finishProject()
		m.done = true
		return m, tea.Quit
	}

	return m, nil
}

// updateTask updates a task based on a TaskEvent.
func (m Model) updateTask(e TaskEvent) Model {
	for i := range m.tasks {
		if m.tasks[i].ID != e.Task {
			continue
		}
		m.tasks[i].Status = e.Status
		if e.Message != "" {
			m.tasks[i].Message = e.Message
		}
		if e.Count > 0 {
			m.tasks[i].Count = e.Count
		}
		if e.Error != nil {
			m.tasks[i].Error = e.Error
		}
		break
	}
	return m
}

// finishProject moves the current project into the summary lines.
func (m Model) finishProject() Model {
	if m.project == "" {
		return m
	}
	m.finished = append(m.finished, m.summary())
	m.project = ""
	return m
}

// summary renders one line for a finished project.
func (m Model) summary() string {
	icon := iconComplete
	var parts []string
	for _, t := range m.tasks {
		switch t.Status {
		case StatusError:
			icon = iconError
			if t.Error != nil {
				parts = append(parts, errorStyle.Render(t.Error.Error()))
			}
		case StatusComplete:
			parts = append(parts, t.summary())
		case StatusPending, StatusRunning:
			if icon == iconComplete {
				icon = iconPending
			}
		}
	}
	line := fmt.Sprintf("  %s %s", icon, projectStyle.Render(m.project))
	if len(parts) > 0 {
		line += " " + messageStyle.Render(strings.Join(parts, ", "))
	}
	return line
}

// summary describes what a completed task found.
func (t Task) summary() string {
	switch t.ID {
	case TaskPullRequests:
		return format.Plural(t.Count, "pull request", "pull requests")
	case TaskBranches:
		return format.Plural(t.Count, "branch finding", "branch findings")
	default:
		return fmt.Sprintf("%d delivered", t.Count)
	}
}

// View renders the model.
func (m Model) View() string {
	var s string

	for _, line := range m.finished {
		s += line + "\n"
	}

	if m.project != "" {
		s += fmt.Sprintf("  %s %s %s\n",
			projectStyle.Render(m.project),
			messageStyle.Render(fmt.Sprintf("(%d/%d)", m.index+1, m.total)),
			m.progress.View())
		for _, task := range m.tasks {
			s += task.View(m.spinner.View()) + "\n"
		}
	}

	// Show rate limit warning if applicable
	if m.rateLimited {
		duration := time.Until(m.rateLimitReset).Round(time.Second)
		if duration > 0 {
			s += warnStyle.Render(fmt.Sprintf("\n  Rate limited (resets in %s)\n", duration))
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
